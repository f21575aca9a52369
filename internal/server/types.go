package server

import "time"

// HuntStatus is the authoritative lifecycle state of a hunt. It only moves
// forward along the edges in validTransitions.
type HuntStatus string

const (
	StatusLobby    HuntStatus = "lobby"
	StatusActive   HuntStatus = "active"
	StatusVoting   HuntStatus = "voting"
	StatusFinished HuntStatus = "finished"
)

type CompletionMode string

const (
	ModeAnytime     CompletionMode = "anytime"
	ModeAllRequired CompletionMode = "all_required"
)

type Role string

const (
	RoleHost   Role = "host"
	RolePlayer Role = "player"
)

const voteCategoryBest = "best"

type HuntSummary struct {
	ID      string
	Code    string
	Status  HuntStatus
	Players int
}

type Hunt struct {
	ID                  string
	DBID                uint
	Code                string
	Pack                string
	CompletionMode      CompletionMode
	RequiredPromptCount int
	Status              HuntStatus
	StatusChangedAt     time.Time
	CreatedAt           time.Time
	Players             []HuntPlayer
	Submissions         []Submission
	Votes               []Vote
}

type HuntPlayer struct {
	PlayerID    string
	DisplayName string
	Role        Role
	JoinedAt    time.Time
	FinishedAt  *time.Time
	PromptOrder []uint
	DBID        uint
}

// Submission starts as an intent (empty PhotoPath) and is fulfilled exactly
// once when a photo is attached.
type Submission struct {
	ID        int
	PlayerID  string
	PromptID  uint
	PhotoPath string
	CreatedAt time.Time
	DBID      uint
}

type Vote struct {
	ID           int
	SubmissionID int
	PlayerID     string
	Category     string
	CreatedAt    time.Time
	DBID         uint
}

func (s Submission) Fulfilled() bool {
	return s.PhotoPath != ""
}
