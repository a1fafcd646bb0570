package entities

import "time"

// CycleReport summarizes one notification cycle run.
type CycleReport struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Checked    int       `json:"checked"`
	Matched    int       `json:"matched"`
	Notified   int       `json:"notified"`
	Failed     int       `json:"failed"`
}
