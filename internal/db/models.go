package db

import (
	"time"

	"gorm.io/datatypes"
)

type Hunt struct {
	ID                  uint      `gorm:"primaryKey"`
	Code                string    `gorm:"size:5;uniqueIndex;not null"`
	Pack                string    `gorm:"size:64;index;not null"`
	CompletionMode      string    `gorm:"size:32;not null"`
	RequiredPromptCount int       `gorm:"not null;default:0"`
	Status              string    `gorm:"size:32;not null"`
	CreatedAt           time.Time `gorm:"not null"`
	UpdatedAt           time.Time `gorm:"not null"`
	Players             []HuntPlayer
	Submissions         []Submission
	Events              []Event
}

type HuntPlayer struct {
	ID          uint       `gorm:"primaryKey"`
	HuntID      uint       `gorm:"index;not null;uniqueIndex:idx_hunt_players_hunt_player"`
	PlayerID    string     `gorm:"size:36;not null;uniqueIndex:idx_hunt_players_hunt_player"`
	DisplayName string     `gorm:"size:64;not null"`
	Role        string     `gorm:"size:16;not null"`
	JoinedAt    time.Time  `gorm:"not null"`
	FinishedAt  *time.Time `gorm:"index"`
	CreatedAt   time.Time  `gorm:"not null"`
	UpdatedAt   time.Time  `gorm:"not null"`
}

type Pack struct {
	ID          uint      `gorm:"primaryKey"`
	Slug        string    `gorm:"size:64;uniqueIndex;not null"`
	Name        string    `gorm:"size:128;not null"`
	Description string    `gorm:"size:512"`
	Lat         float64   `gorm:"not null;default:0"`
	Lon         float64   `gorm:"not null;default:0"`
	RadiusKM    float64   `gorm:"not null;default:0"`
	Area        string    `gorm:"size:128"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

type Prompt struct {
	ID        uint      `gorm:"primaryKey"`
	Pack      string    `gorm:"size:64;index;not null;uniqueIndex:idx_prompts_pack_text"`
	Text      string    `gorm:"size:280;not null;uniqueIndex:idx_prompts_pack_text"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type Submission struct {
	ID        uint      `gorm:"primaryKey"`
	HuntID    uint      `gorm:"index;not null;uniqueIndex:idx_submissions_hunt_player_prompt"`
	PlayerID  string    `gorm:"size:36;not null;uniqueIndex:idx_submissions_hunt_player_prompt"`
	PromptID  uint      `gorm:"not null;uniqueIndex:idx_submissions_hunt_player_prompt"`
	PhotoPath string    `gorm:"size:255"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	Votes     []Vote
}

type Vote struct {
	ID           uint      `gorm:"primaryKey"`
	SubmissionID uint      `gorm:"index;not null"`
	PlayerID     string    `gorm:"size:36;index;not null"`
	Category     string    `gorm:"size:32;not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

type Event struct {
	ID        uint           `gorm:"primaryKey"`
	HuntID    uint           `gorm:"index;not null"`
	PlayerID  *string        `gorm:"size:36;index"`
	Type      string         `gorm:"size:64;not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
}
