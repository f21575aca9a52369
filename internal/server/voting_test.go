package server

import (
	"errors"
	"sync"
	"testing"
)

func contestPrompts(t *testing.T, srv *Server, huntID string, ids []string, prompts ...uint) map[uint][2]int {
	t.Helper()
	subs := make(map[uint][2]int, len(prompts))
	for _, prompt := range prompts {
		a := submitPhoto(t, srv, huntID, ids[0], prompt, []byte("a"))
		b := submitPhoto(t, srv, huntID, ids[1], prompt, []byte("b"))
		subs[prompt] = [2]int{a, b}
	}
	return subs
}

func TestVotingWalkFinishesHunt(t *testing.T) {
	srv := newServerForTest(t)
	hunt, ids := setupActiveHunt(t, srv, "Ada", "Ben")
	subs := contestPrompts(t, srv, hunt.ID, ids, 1, 2)
	advanceToVoting(t, srv, hunt.ID, ids...)

	// The walk visits prompts in ascending id order.
	hunt, done, err := srv.castVote(hunt.ID, ids[0], subs[1][1])
	if err != nil {
		t.Fatalf("vote on prompt 1: %v", err)
	}
	if done || hunt.Status != StatusVoting {
		t.Fatalf("voting ended early: done=%v status=%s", done, hunt.Status)
	}
	hunt, done, err = srv.castVote(hunt.ID, ids[0], subs[2][1])
	if err != nil {
		t.Fatalf("vote on prompt 2: %v", err)
	}
	if !done || hunt.Status != StatusFinished {
		t.Fatalf("expected finished after last vote: done=%v status=%s", done, hunt.Status)
	}
}

func TestVoteOffCurrentPromptRejected(t *testing.T) {
	srv := newServerForTest(t)
	hunt, ids := setupActiveHunt(t, srv, "Ada", "Ben")
	subs := contestPrompts(t, srv, hunt.ID, ids, 1, 2)
	advanceToVoting(t, srv, hunt.ID, ids...)

	// The session starts on prompt 1, so a vote for prompt 2 is off-walk.
	if _, _, err := srv.castVote(hunt.ID, ids[0], subs[2][0]); err == nil {
		t.Fatal("expected vote off the current prompt to be rejected")
	}
}

func TestSecondVoteOnSamePromptRejected(t *testing.T) {
	srv := newServerForTest(t)
	hunt, ids := setupActiveHunt(t, srv, "Ada", "Ben")
	subs := contestPrompts(t, srv, hunt.ID, ids, 1)
	advanceToVoting(t, srv, hunt.ID, ids...)

	if _, _, err := srv.store.CastVote(hunt.ID, ids[0], subs[1][1]); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	if _, _, err := srv.store.CastVote(hunt.ID, ids[0], subs[1][0]); !errors.Is(err, errAlreadyVoted) {
		t.Fatalf("expected duplicate vote rejection, got %v", err)
	}
}

func TestSkipAdvancesAndFinishes(t *testing.T) {
	srv := newServerForTest(t)
	hunt, ids := setupActiveHunt(t, srv, "Ada", "Ben")
	contestPrompts(t, srv, hunt.ID, ids, 1)
	advanceToVoting(t, srv, hunt.ID, ids...)

	hunt, done, err := srv.skipVote(hunt.ID, ids[0])
	if err != nil {
		t.Fatalf("skip: %v", err)
	}
	if !done || hunt.Status != StatusFinished {
		t.Fatalf("expected skip on the last prompt to finish: done=%v status=%s", done, hunt.Status)
	}
	hunt, _ = srv.store.GetHunt(hunt.ID)
	if len(hunt.Votes) != 0 {
		t.Fatalf("skip recorded a vote: %d rows", len(hunt.Votes))
	}
}

func TestConcurrentSkipsFromOnePlayerAreSerialized(t *testing.T) {
	srv := newServerForTest(t)
	hunt, ids := setupActiveHunt(t, srv, "Ada", "Ben")
	contestPrompts(t, srv, hunt.ID, ids, 1, 2, 3)
	advanceToVoting(t, srv, hunt.ID, ids...)

	// A double-submitting client fires the same skip many times at once; the
	// session walk must stay consistent and never record a vote.
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := srv.skipVote(hunt.ID, ids[0]); err != nil && !errors.Is(err, errNotVoting) {
				t.Errorf("skip: %v", err)
			}
		}()
	}
	wg.Wait()

	hunt, _ = srv.store.GetHunt(hunt.ID)
	if hunt.Status != StatusFinished {
		t.Fatalf("expected skipping the whole walk to finish the hunt, got %s", hunt.Status)
	}
	if len(hunt.Votes) != 0 {
		t.Fatalf("skips recorded votes: %d rows", len(hunt.Votes))
	}
}

func TestConcurrentDuplicateVotesYieldOneRow(t *testing.T) {
	srv := newServerForTest(t)
	hunt, ids := setupActiveHunt(t, srv, "Ada", "Ben")
	subs := contestPrompts(t, srv, hunt.ID, ids, 1, 2)
	advanceToVoting(t, srv, hunt.ID, ids...)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := srv.castVote(hunt.ID, ids[0], subs[1][1])
			if err != nil && !errors.Is(err, errAlreadyVoted) && !errors.Is(err, errNotVoting) &&
				err.Error() != "submission is not on the current prompt" {
				t.Errorf("vote: %v", err)
			}
		}()
	}
	wg.Wait()

	hunt, _ = srv.store.GetHunt(hunt.ID)
	if len(hunt.Votes) != 1 {
		t.Fatalf("expected exactly one vote row, got %d", len(hunt.Votes))
	}
}

func TestVoteRequiresVotingStatus(t *testing.T) {
	srv := newServerForTest(t)
	hunt, ids := setupActiveHunt(t, srv, "Ada", "Ben")
	sub := submitPhoto(t, srv, hunt.ID, ids[0], 1, []byte("a"))

	if _, _, err := srv.castVote(hunt.ID, ids[1], sub); !errors.Is(err, errNotVoting) {
		t.Fatalf("expected vote during active hunt to be rejected, got %v", err)
	}
}
