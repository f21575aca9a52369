package server

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestStartHunt(t *testing.T) {
	srv := newServerForTest(t)
	hunt := srv.store.CreateHunt("downtown", ModeAnytime, 0)
	_, member, err := srv.joinHunt(hunt.ID, "", "Ada")
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	if _, err := srv.startHunt(hunt.ID, "stranger"); !errors.Is(err, errPlayerNotFound) {
		t.Fatalf("expected non-member start to fail, got %v", err)
	}

	hunt, err = srv.startHunt(hunt.ID, member.PlayerID)
	if err != nil || hunt.Status != StatusActive {
		t.Fatalf("start failed: status=%s err=%v", hunt.Status, err)
	}
	// Starting an already-active hunt converges on the same state.
	hunt, err = srv.startHunt(hunt.ID, member.PlayerID)
	if err != nil || hunt.Status != StatusActive {
		t.Fatalf("repeat start failed: status=%s err=%v", hunt.Status, err)
	}
}

func TestFinishAdvancesToVotingWhenContested(t *testing.T) {
	srv := newServerForTest(t)
	hunt, ids := setupActiveHunt(t, srv, "Ada", "Ben")
	submitPhoto(t, srv, hunt.ID, ids[0], 1, []byte("ada-photo"))
	submitPhoto(t, srv, hunt.ID, ids[1], 1, []byte("ben-photo"))

	finishPlayers(t, srv, hunt.ID, ids[0])
	hunt, advanced, err := srv.tryFinishHunt(hunt.ID)
	if err != nil {
		t.Fatalf("try finish: %v", err)
	}
	if advanced || hunt.Status != StatusActive {
		t.Fatalf("hunt advanced before everyone finished: status=%s", hunt.Status)
	}

	finishPlayers(t, srv, hunt.ID, ids[1])
	hunt, advanced, err = srv.tryFinishHunt(hunt.ID)
	if err != nil || !advanced {
		t.Fatalf("try finish: advanced=%v err=%v", advanced, err)
	}
	if hunt.Status != StatusVoting {
		t.Fatalf("expected voting, got %s", hunt.Status)
	}
}

func TestFinishSkipsVotingWhenUncontested(t *testing.T) {
	srv := newServerForTest(t)
	hunt, ids := setupActiveHunt(t, srv, "Ada", "Ben")
	// Every prompt's photos come from a single player, so voting would have
	// no contested choice.
	submitPhoto(t, srv, hunt.ID, ids[0], 1, []byte("ada-1"))
	submitPhoto(t, srv, hunt.ID, ids[0], 2, []byte("ada-2"))
	submitPhoto(t, srv, hunt.ID, ids[1], 3, []byte("ben-3"))

	finishPlayers(t, srv, hunt.ID, ids...)
	hunt, advanced, err := srv.tryFinishHunt(hunt.ID)
	if err != nil || !advanced {
		t.Fatalf("try finish: advanced=%v err=%v", advanced, err)
	}
	if hunt.Status != StatusFinished {
		t.Fatalf("expected finished (voting skipped), got %s", hunt.Status)
	}
}

func TestUndoFinishDoesNotRollBackStatus(t *testing.T) {
	srv := newServerForTest(t)
	hunt, ids := setupActiveHunt(t, srv, "Ada", "Ben")
	submitPhoto(t, srv, hunt.ID, ids[0], 1, []byte("ada"))
	submitPhoto(t, srv, hunt.ID, ids[1], 1, []byte("ben"))
	advanceToVoting(t, srv, hunt.ID, ids...)

	hunt, member, err := srv.markFinished(hunt.ID, ids[0], nil)
	if err != nil {
		t.Fatalf("undo finish: %v", err)
	}
	if member.FinishedAt != nil {
		t.Fatal("finished_at not cleared")
	}
	if hunt.Status != StatusVoting {
		t.Fatalf("undo finish rolled back status to %s", hunt.Status)
	}
}

func TestConcurrentFinishAttemptsConverge(t *testing.T) {
	srv := newServerForTest(t)
	hunt, ids := setupActiveHunt(t, srv, "Ada", "Ben")
	submitPhoto(t, srv, hunt.ID, ids[0], 1, []byte("ada"))
	submitPhoto(t, srv, hunt.ID, ids[1], 1, []byte("ben"))
	finishPlayers(t, srv, hunt.ID, ids...)

	var advancedCount atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, advanced, err := srv.tryFinishHunt(hunt.ID)
			if err != nil {
				t.Errorf("concurrent try finish: %v", err)
			}
			if advanced {
				advancedCount.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := advancedCount.Load(); got != 1 {
		t.Fatalf("expected exactly one client to perform the transition, got %d", got)
	}
	hunt, _ = srv.store.GetHunt(hunt.ID)
	if hunt.Status != StatusVoting {
		t.Fatalf("expected voting, got %s", hunt.Status)
	}
}
