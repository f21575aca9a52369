package server

import (
	"fmt"
	"time"
)

// validTransitions lists every legal forward edge. active -> finished is the
// skip-voting shortcut taken when no prompt has a contested submission set.
var validTransitions = map[HuntStatus][]HuntStatus{
	StatusLobby:  {StatusActive},
	StatusActive: {StatusVoting, StatusFinished},
	StatusVoting: {StatusFinished},
}

func (s HuntStatus) Valid() bool {
	switch s {
	case StatusLobby, StatusActive, StatusVoting, StatusFinished:
		return true
	}
	return false
}

func canTransition(from, to HuntStatus) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// applyStatus advances a hunt to target. A hunt already at target is a no-op,
// which is what makes concurrent duplicate transition attempts harmless.
func applyStatus(hunt *Hunt, target HuntStatus) error {
	if hunt.Status == target {
		return nil
	}
	if !canTransition(hunt.Status, target) {
		return fmt.Errorf("illegal status transition %s -> %s", hunt.Status, target)
	}
	hunt.Status = target
	hunt.StatusChangedAt = time.Now().UTC()
	return nil
}

// hasContestedPrompt reports whether any prompt has photos from at least two
// distinct players, i.e. whether a voting round would have a real choice.
func hasContestedPrompt(hunt *Hunt) bool {
	submitters := make(map[uint]map[string]struct{})
	for _, sub := range hunt.Submissions {
		if !sub.Fulfilled() {
			continue
		}
		players := submitters[sub.PromptID]
		if players == nil {
			players = make(map[string]struct{})
			submitters[sub.PromptID] = players
		}
		players[sub.PlayerID] = struct{}{}
		if len(players) >= 2 {
			return true
		}
	}
	return false
}

func allPlayersFinished(hunt *Hunt) bool {
	if len(hunt.Players) == 0 {
		return false
	}
	for _, member := range hunt.Players {
		if member.FinishedAt == nil {
			return false
		}
	}
	return true
}
