package server

// Row payloads double as change-event new_row bodies and as the snapshot a
// client reconciles against on reconnect.

func huntRow(hunt *Hunt) map[string]any {
	return map[string]any{
		"id":                    hunt.ID,
		"code":                  hunt.Code,
		"pack":                  hunt.Pack,
		"completion_mode":       string(hunt.CompletionMode),
		"required_prompt_count": hunt.RequiredPromptCount,
		"status":                string(hunt.Status),
		"status_changed_at":     hunt.StatusChangedAt,
	}
}

func memberRow(hunt *Hunt, member *HuntPlayer) map[string]any {
	row := map[string]any{
		"hunt_id":      hunt.ID,
		"player_id":    member.PlayerID,
		"display_name": member.DisplayName,
		"role":         string(member.Role),
		"joined_at":    member.JoinedAt,
	}
	if member.FinishedAt != nil {
		row["finished_at"] = *member.FinishedAt
	} else {
		row["finished_at"] = nil
	}
	return row
}

func submissionRow(hunt *Hunt, sub *Submission) map[string]any {
	return map[string]any{
		"id":        sub.ID,
		"hunt_id":   hunt.ID,
		"player_id": sub.PlayerID,
		"prompt_id": sub.PromptID,
		"fulfilled": sub.Fulfilled(),
	}
}

func voteRow(hunt *Hunt, vote *Vote) map[string]any {
	return map[string]any{
		"id":            vote.ID,
		"hunt_id":       hunt.ID,
		"submission_id": vote.SubmissionID,
		"player_id":     vote.PlayerID,
		"category":      vote.Category,
	}
}

func snapshotHunt(hunt *Hunt) map[string]any {
	players := make([]map[string]any, 0, len(hunt.Players))
	for i := range hunt.Players {
		players = append(players, memberRow(hunt, &hunt.Players[i]))
	}
	submissions := make([]map[string]any, 0, len(hunt.Submissions))
	for i := range hunt.Submissions {
		submissions = append(submissions, submissionRow(hunt, &hunt.Submissions[i]))
	}
	votes := make([]map[string]any, 0, len(hunt.Votes))
	for i := range hunt.Votes {
		votes = append(votes, voteRow(hunt, &hunt.Votes[i]))
	}
	return map[string]any{
		"hunt":        huntRow(hunt),
		"players":     players,
		"submissions": submissions,
		"votes":       votes,
	}
}
