package models

import "time"

// Workout is a tracked training session.
type Workout struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Finished   bool       `json:"finished"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
