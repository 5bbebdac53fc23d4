package models

import "time"

// Event is a civic event announced by a user.
type Event struct {
	ID          string     `db:"id" json:"id"`
	Description string     `db:"description" json:"description"`
	StartDate   time.Time  `db:"start_date" json:"start_date"`
	EndDate     *time.Time `db:"end_date" json:"end_date"`
	CreatedBy   string     `db:"created_by" json:"created_by"`
	Category    *string    `db:"category" json:"category"`
	Address     *string    `db:"address" json:"address"`
	Latitude    *float64   `db:"latitude" json:"latitude"`
	Longitude   *float64   `db:"longitude" json:"longitude"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`

	// Filled by list queries from the creator's row.
	CreatorName  *string `db:"creator_name" json:"creator_name,omitempty"`
	CreatorEmail *string `db:"creator_email" json:"creator_email,omitempty"`
}
