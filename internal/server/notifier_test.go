package server

import "testing"

func TestSnapshotHuntIncludesAllLedgers(t *testing.T) {
	srv := newServerForTest(t)
	hunt, ids := setupActiveHunt(t, srv, "Ada", "Ben")
	submitPhoto(t, srv, hunt.ID, ids[0], 1, []byte("a"))
	submitPhoto(t, srv, hunt.ID, ids[1], 1, []byte("b"))
	advanceToVoting(t, srv, hunt.ID, ids...)

	hunt, _ = srv.store.GetHunt(hunt.ID)
	snapshot := snapshotHunt(hunt)

	huntBody, ok := snapshot["hunt"].(map[string]any)
	if !ok || huntBody["status"] != "voting" {
		t.Fatalf("snapshot hunt wrong: %v", snapshot["hunt"])
	}
	if players := snapshot["players"].([]map[string]any); len(players) != 2 {
		t.Fatalf("expected 2 players, got %d", len(players))
	}
	subs := snapshot["submissions"].([]map[string]any)
	if len(subs) != 2 || subs[0]["fulfilled"] != true {
		t.Fatalf("submissions snapshot wrong: %v", subs)
	}
	if votes := snapshot["votes"].([]map[string]any); len(votes) != 0 {
		t.Fatalf("expected no votes yet, got %v", votes)
	}
}

func TestMemberRowFinishedAt(t *testing.T) {
	srv := newServerForTest(t)
	hunt, ids := setupActiveHunt(t, srv, "Ada")
	row := func() map[string]any {
		hunt, member, ok := srv.store.GetPlayer(hunt.ID, ids[0])
		if !ok {
			t.Fatal("member missing")
		}
		return memberRow(hunt, member)
	}

	if row()["finished_at"] != nil {
		t.Fatalf("expected nil finished_at, got %v", row()["finished_at"])
	}
	finishPlayers(t, srv, hunt.ID, ids[0])
	if row()["finished_at"] == nil {
		t.Fatal("expected finished_at to be set")
	}
}
