package server

import "testing"

func TestShuffledPromptIDsIsPermutation(t *testing.T) {
	prompts := defaultContent().prompts["downtown"]
	order := shuffledPromptIDs(prompts)
	if len(order) != len(prompts) {
		t.Fatalf("expected %d ids, got %d", len(prompts), len(order))
	}
	seen := make(map[uint]struct{}, len(order))
	for _, id := range order {
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %d in order %v", id, order)
		}
		seen[id] = struct{}{}
	}
	for _, prompt := range prompts {
		if _, ok := seen[prompt.ID]; !ok {
			t.Fatalf("prompt %d missing from order %v", prompt.ID, order)
		}
	}
}

func TestPromptOrderStableAcrossCalls(t *testing.T) {
	srv := newServerForTest(t)
	hunt, ids := setupActiveHunt(t, srv, "Ada")

	first, _, err := srv.promptOrderFor(hunt.ID, ids[0])
	if err != nil {
		t.Fatalf("order: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, _, err := srv.promptOrderFor(hunt.ID, ids[0])
		if err != nil {
			t.Fatalf("repeat order: %v", err)
		}
		if len(again) != len(first) {
			t.Fatalf("order length changed: %v vs %v", first, again)
		}
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("order changed between calls: %v vs %v", first, again)
			}
		}
	}
}

func TestPlayOrderFloatsIncompleteFirst(t *testing.T) {
	order := []uint{3, 1, 2}
	subs := []Submission{
		{ID: 1, PlayerID: "x", PromptID: 1, PhotoPath: "done"},
		{ID: 2, PlayerID: "x", PromptID: 2},
		{ID: 3, PlayerID: "y", PromptID: 3, PhotoPath: "someone-else"},
	}
	got := playOrder(order, subs, "x")
	want := []uint{3, 2, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("play order = %v, want %v", got, want)
		}
	}
}

func TestPromptInPack(t *testing.T) {
	srv := newServerForTest(t)
	if _, err := srv.promptInPack("downtown", 1); err != nil {
		t.Fatalf("prompt 1 should be in the pack: %v", err)
	}
	if _, err := srv.promptInPack("downtown", 99); err == nil {
		t.Fatal("prompt 99 should not be in the pack")
	}
}
