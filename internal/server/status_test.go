package server

import "testing"

func TestStatusTransitionTable(t *testing.T) {
	cases := []struct {
		from    HuntStatus
		to      HuntStatus
		allowed bool
	}{
		{StatusLobby, StatusActive, true},
		{StatusActive, StatusVoting, true},
		{StatusActive, StatusFinished, true},
		{StatusVoting, StatusFinished, true},
		{StatusLobby, StatusVoting, false},
		{StatusLobby, StatusFinished, false},
		{StatusActive, StatusLobby, false},
		{StatusVoting, StatusActive, false},
		{StatusFinished, StatusVoting, false},
		{StatusFinished, StatusActive, false},
		{StatusFinished, StatusLobby, false},
	}
	for _, tc := range cases {
		if got := canTransition(tc.from, tc.to); got != tc.allowed {
			t.Errorf("canTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestApplyStatusIdempotentAtTarget(t *testing.T) {
	hunt := &Hunt{Status: StatusVoting}
	if err := applyStatus(hunt, StatusVoting); err != nil {
		t.Fatalf("same-state transition should be a no-op, got %v", err)
	}
	if hunt.Status != StatusVoting {
		t.Fatalf("status changed on no-op: %s", hunt.Status)
	}
}

func TestApplyStatusRejectsRegression(t *testing.T) {
	hunt := &Hunt{Status: StatusFinished}
	if err := applyStatus(hunt, StatusActive); err == nil {
		t.Fatal("expected error for finished -> active")
	}
	if hunt.Status != StatusFinished {
		t.Fatalf("status regressed to %s", hunt.Status)
	}
}

func TestHasContestedPrompt(t *testing.T) {
	hunt := &Hunt{
		Submissions: []Submission{
			{ID: 1, PlayerID: "x", PromptID: 1, PhotoPath: "a.jpg"},
			{ID: 2, PlayerID: "x", PromptID: 2, PhotoPath: "b.jpg"},
			{ID: 3, PlayerID: "y", PromptID: 2},
		},
	}
	if hasContestedPrompt(hunt) {
		t.Fatal("intent-only submission should not make a prompt contested")
	}
	hunt.Submissions[2].PhotoPath = "c.jpg"
	if !hasContestedPrompt(hunt) {
		t.Fatal("two distinct players with photos on one prompt should be contested")
	}
}
