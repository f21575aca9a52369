package server

import "errors"

var (
	errNotVoting    = errors.New("hunt is not in voting")
	errAlreadyVoted = errors.New("already voted on this prompt")
)

// CastVote appends a vote row. The ledger is append-only; the one guard is
// one vote per (player, prompt), resolved through the submission's prompt.
func (s *Store) CastVote(huntID, playerID string, submissionID int) (*Hunt, *Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hunt, ok := s.hunts[huntID]
	if !ok {
		return nil, nil, errHuntNotFound
	}
	if hunt.Status != StatusVoting {
		return nil, nil, errNotVoting
	}
	if _, ok := findMember(hunt, playerID); !ok {
		return nil, nil, errPlayerNotFound
	}
	target, ok := findSubmission(hunt, submissionID)
	if !ok {
		return nil, nil, errors.New("submission not found")
	}

	promptBySubmission := make(map[int]uint, len(hunt.Submissions))
	for _, sub := range hunt.Submissions {
		promptBySubmission[sub.ID] = sub.PromptID
	}
	for _, vote := range hunt.Votes {
		if vote.PlayerID == playerID && promptBySubmission[vote.SubmissionID] == target.PromptID {
			return nil, nil, errAlreadyVoted
		}
	}

	vote := Vote{
		ID:           s.nextVoteID,
		SubmissionID: submissionID,
		PlayerID:     playerID,
		Category:     voteCategoryBest,
		CreatedAt:    timeNowUTC(),
	}
	s.nextVoteID++
	hunt.Votes = append(hunt.Votes, vote)
	return hunt, &hunt.Votes[len(hunt.Votes)-1], nil
}
