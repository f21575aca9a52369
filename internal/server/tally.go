package server

import "sort"

type WinningSubmission struct {
	SubmissionID int    `json:"submission_id"`
	PlayerID     string `json:"player_id"`
	DisplayName  string `json:"display_name"`
	Votes        int    `json:"votes"`
}

type PromptResult struct {
	PromptID uint               `json:"prompt_id"`
	Text     string             `json:"text"`
	Winner   *WinningSubmission `json:"winner"`
}

type LeaderboardEntry struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	Votes       int    `json:"votes"`
}

type TallyResult struct {
	Prompts     []PromptResult     `json:"prompts"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

// tallyHunt derives winners and the leaderboard from ledger snapshots. It is
// deterministic and side-effect free: ties on vote count go to the submission
// encountered first in input order, and leaderboard ties keep membership
// order. A prompt's winner exists whenever it has at least one submission,
// possibly with zero votes.
func tallyHunt(prompts []Prompt, players []HuntPlayer, submissions []Submission, votes []Vote) TallyResult {
	voteCounts := make(map[int]int, len(submissions))
	for _, vote := range votes {
		voteCounts[vote.SubmissionID]++
	}

	names := make(map[string]string, len(players))
	for _, member := range players {
		names[member.PlayerID] = member.DisplayName
	}

	results := make([]PromptResult, 0, len(prompts))
	for _, prompt := range prompts {
		result := PromptResult{PromptID: prompt.ID, Text: prompt.Text}
		for _, sub := range submissions {
			if sub.PromptID != prompt.ID {
				continue
			}
			count := voteCounts[sub.ID]
			if result.Winner == nil || count > result.Winner.Votes {
				result.Winner = &WinningSubmission{
					SubmissionID: sub.ID,
					PlayerID:     sub.PlayerID,
					DisplayName:  names[sub.PlayerID],
					Votes:        count,
				}
			}
		}
		results = append(results, result)
	}

	totals := make(map[string]int, len(players))
	for _, sub := range submissions {
		totals[sub.PlayerID] += voteCounts[sub.ID]
	}
	leaderboard := make([]LeaderboardEntry, 0, len(players))
	for _, member := range players {
		leaderboard = append(leaderboard, LeaderboardEntry{
			PlayerID:    member.PlayerID,
			DisplayName: member.DisplayName,
			Votes:       totals[member.PlayerID],
		})
	}
	sort.SliceStable(leaderboard, func(i, j int) bool {
		return leaderboard[i].Votes > leaderboard[j].Votes
	})

	return TallyResult{Prompts: results, Leaderboard: leaderboard}
}
