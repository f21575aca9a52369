package server

type EventPayload struct {
	HuntID       string `json:"hunt_id,omitempty"`
	Code         string `json:"code,omitempty"`
	Pack         string `json:"pack,omitempty"`
	PlayerID     string `json:"player_id,omitempty"`
	DisplayName  string `json:"display_name,omitempty"`
	Status       string `json:"status,omitempty"`
	PromptID     uint   `json:"prompt_id,omitempty"`
	SubmissionID int    `json:"submission_id,omitempty"`
	PhotoPath    string `json:"photo_path,omitempty"`
	Category     string `json:"category,omitempty"`
	Finished     bool   `json:"finished,omitempty"`
}
