package model

import "time"

// Project is a cause donations are allocated to.
type Project struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProjectTotal is the amount collected for one project over a period.
type ProjectTotal struct {
	ProjectID   int64   `json:"project_id"`
	ProjectName string  `json:"project_name"`
	Total       float64 `json:"total"`
}
