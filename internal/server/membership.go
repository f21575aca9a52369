package server

import (
	"errors"
	"time"
)

// joinHunt is insert-if-absent membership. Repeat joins return the existing
// row so a host is never downgraded to player.
func (s *Server) joinHunt(huntIDOrCode, playerID, displayName string) (*Hunt, *HuntPlayer, error) {
	name := sanitizeDisplayName(displayName)
	hunt, member, created, err := s.store.Join(huntIDOrCode, playerID, name)
	if err != nil {
		return nil, nil, err
	}
	if created {
		if err := s.persistMember(hunt, member); err != nil {
			return nil, nil, err
		}
		s.notifyChange(hunt, tableHuntPlayers, eventInsert, memberRow(hunt, member))
	}
	return hunt, member, nil
}

func (s *Server) setDisplayName(huntID, playerID, name string) (*HuntPlayer, error) {
	clean := sanitizeDisplayName(name)
	var member *HuntPlayer
	hunt, err := s.store.UpdateHunt(huntID, func(hunt *Hunt) error {
		found, ok := findMember(hunt, playerID)
		if !ok {
			return errPlayerNotFound
		}
		found.DisplayName = clean
		member = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.persistMemberUpdate(hunt, member); err != nil {
		return nil, err
	}
	s.notifyChange(hunt, tableHuntPlayers, eventUpdate, memberRow(hunt, member))
	return member, nil
}

// markFinished toggles a player's own completion timestamp. A nil at clears
// it. Neither direction ever regresses the hunt status; advancing on "all
// finished" is tryFinishHunt's job.
func (s *Server) markFinished(huntID, playerID string, at *time.Time) (*Hunt, *HuntPlayer, error) {
	var member *HuntPlayer
	hunt, err := s.store.UpdateHunt(huntID, func(hunt *Hunt) error {
		if hunt.Status == StatusLobby {
			return errors.New("hunt has not started")
		}
		found, ok := findMember(hunt, playerID)
		if !ok {
			return errPlayerNotFound
		}
		found.FinishedAt = at
		member = found
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if err := s.persistMemberUpdate(hunt, member); err != nil {
		return nil, nil, err
	}
	s.notifyChange(hunt, tableHuntPlayers, eventUpdate, memberRow(hunt, member))
	return hunt, member, nil
}

// leaveHunt deletes the membership row. Only the player's own hunt-history
// surface calls this; it is not a mid-game kick.
func (s *Server) leaveHunt(huntID, playerID string) error {
	var removed HuntPlayer
	hunt, err := s.store.UpdateHunt(huntID, func(hunt *Hunt) error {
		for i := range hunt.Players {
			if hunt.Players[i].PlayerID == playerID {
				removed = hunt.Players[i]
				hunt.Players = append(hunt.Players[:i], hunt.Players[i+1:]...)
				return nil
			}
		}
		return errPlayerNotFound
	})
	if err != nil {
		return err
	}
	if err := s.persistMemberDelete(hunt, &removed); err != nil {
		return err
	}
	s.notifyChange(hunt, tableHuntPlayers, eventDelete, memberRow(hunt, &removed))
	return nil
}

// finishEligible enforces the all_required completion mode: a player may only
// declare themselves done once they have fulfilled the required number of
// prompts. Anytime mode has no bar.
func finishEligible(hunt *Hunt, playerID string, promptCount int) bool {
	if hunt.CompletionMode != ModeAllRequired {
		return true
	}
	required := hunt.RequiredPromptCount
	if required <= 0 || required > promptCount {
		required = promptCount
	}
	fulfilled := 0
	for _, sub := range hunt.Submissions {
		if sub.PlayerID == playerID && sub.Fulfilled() {
			fulfilled++
		}
	}
	return fulfilled >= required
}
