package server

import (
	"errors"
	"fmt"
	"math/rand"
)

// shuffledPromptIDs produces an unbiased Fisher-Yates permutation of the
// pack's prompt ids. Each player shuffles independently; orders are not
// required to match across devices.
func shuffledPromptIDs(prompts []Prompt) []uint {
	order := make([]uint, len(prompts))
	for i, prompt := range prompts {
		order[i] = prompt.ID
	}
	for i := len(order) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		order[i], order[j] = order[j], order[i]
	}
	return order
}

// promptOrderFor returns the player's play order for a hunt, shuffling once
// on first load and treating the order as stable afterward. Prompts added to
// the pack mid-hunt (an accepted design choice) are appended at the end.
func (s *Server) promptOrderFor(huntID, playerID string) ([]uint, []Prompt, error) {
	hunt, ok := s.store.GetHunt(huntID)
	if !ok {
		return nil, nil, errHuntNotFound
	}
	prompts, err := s.content.ListPrompts(hunt.Pack)
	if err != nil {
		return nil, nil, fmt.Errorf("list prompts: %w", err)
	}

	var order []uint
	_, err = s.store.UpdateHunt(huntID, func(hunt *Hunt) error {
		member, ok := findMember(hunt, playerID)
		if !ok {
			return errPlayerNotFound
		}
		if len(member.PromptOrder) == 0 && len(prompts) > 0 {
			member.PromptOrder = shuffledPromptIDs(prompts)
		}
		known := make(map[uint]struct{}, len(member.PromptOrder))
		for _, id := range member.PromptOrder {
			known[id] = struct{}{}
		}
		for _, prompt := range prompts {
			if _, ok := known[prompt.ID]; !ok {
				member.PromptOrder = append(member.PromptOrder, prompt.ID)
			}
		}
		order = append([]uint(nil), member.PromptOrder...)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return order, prompts, nil
}

// playOrder floats prompts the player has not yet fulfilled above completed
// ones, preserving relative order within each group. Presentation only; the
// shuffled order itself never changes.
func playOrder(order []uint, submissions []Submission, playerID string) []uint {
	fulfilled := make(map[uint]struct{})
	for _, sub := range submissions {
		if sub.PlayerID == playerID && sub.Fulfilled() {
			fulfilled[sub.PromptID] = struct{}{}
		}
	}
	sorted := make([]uint, 0, len(order))
	for _, id := range order {
		if _, done := fulfilled[id]; !done {
			sorted = append(sorted, id)
		}
	}
	for _, id := range order {
		if _, done := fulfilled[id]; done {
			sorted = append(sorted, id)
		}
	}
	return sorted
}

// promptInPack checks the invariant that every submission references a prompt
// belonging to the hunt's pack.
func (s *Server) promptInPack(pack string, promptID uint) (Prompt, error) {
	prompts, err := s.content.ListPrompts(pack)
	if err != nil {
		return Prompt{}, fmt.Errorf("list prompts: %w", err)
	}
	for _, prompt := range prompts {
		if prompt.ID == promptID {
			return prompt, nil
		}
	}
	return Prompt{}, errors.New("prompt does not belong to this pack")
}
