package server

import (
	"errors"
	"log"
)

// startHunt performs lobby -> active. Any member may start; an empty prompt
// or player situation degrades gracefully rather than blocking the start.
func (s *Server) startHunt(huntID, playerID string) (*Hunt, error) {
	hunt, err := s.store.UpdateHunt(huntID, func(hunt *Hunt) error {
		if _, ok := findMember(hunt, playerID); !ok {
			return errPlayerNotFound
		}
		return applyStatus(hunt, StatusActive)
	})
	if err != nil {
		return nil, err
	}
	if err := s.persistStatus(hunt, "hunt_started"); err != nil {
		return nil, err
	}
	log.Printf("hunt started hunt_id=%s player_id=%s", hunt.ID, playerID)
	s.notifyChange(hunt, tableHunts, eventUpdate, huntRow(hunt))
	return hunt, nil
}

// tryFinishHunt is the cooperative check-then-act transition out of active.
// Whichever client observes "everyone finished" first advances the status;
// a concurrent duplicate attempt re-reads the ledger, sees the hunt already
// advanced, and does nothing. Voting is skipped entirely when no prompt has
// photos from two distinct players.
func (s *Server) tryFinishHunt(huntID string) (*Hunt, bool, error) {
	advanced := false
	var target HuntStatus
	hunt, err := s.store.UpdateHunt(huntID, func(hunt *Hunt) error {
		if hunt.Status != StatusActive {
			return nil
		}
		if !allPlayersFinished(hunt) {
			return nil
		}
		target = StatusFinished
		if hasContestedPrompt(hunt) {
			target = StatusVoting
		}
		if err := applyStatus(hunt, target); err != nil {
			return err
		}
		advanced = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if !advanced {
		return hunt, false, nil
	}
	if err := s.persistStatus(hunt, "status_changed"); err != nil {
		return nil, false, err
	}
	log.Printf("hunt advanced hunt_id=%s status=%s", hunt.ID, hunt.Status)
	s.notifyChange(hunt, tableHunts, eventUpdate, huntRow(hunt))
	return hunt, true, nil
}

// finishVoting performs voting -> finished. Idempotent: a hunt already
// finished reports no change, so simultaneous last-prompt advances from
// several clients converge on one transition.
func (s *Server) finishVoting(huntID string) (*Hunt, bool, error) {
	advanced := false
	hunt, err := s.store.UpdateHunt(huntID, func(hunt *Hunt) error {
		if hunt.Status == StatusFinished {
			return nil
		}
		if hunt.Status != StatusVoting {
			return errors.New("hunt is not in voting")
		}
		if err := applyStatus(hunt, StatusFinished); err != nil {
			return err
		}
		advanced = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if !advanced {
		return hunt, false, nil
	}
	if err := s.persistStatus(hunt, "status_changed"); err != nil {
		return nil, false, err
	}
	log.Printf("voting complete hunt_id=%s", hunt.ID)
	s.notifyChange(hunt, tableHunts, eventUpdate, huntRow(hunt))
	return hunt, true, nil
}
