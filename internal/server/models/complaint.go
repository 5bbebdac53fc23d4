package models

import "time"

// Complaint is a problem report filed by a user. Photos live in object
// storage under the complaint id, not in this row.
type Complaint struct {
	ID             string    `db:"id" json:"id"`
	Description    string    `db:"description" json:"description"`
	OccurrenceDate time.Time `db:"occurrence_date" json:"occurrence_date"`
	CreatedBy      string    `db:"created_by" json:"created_by"`
	Category       *string   `db:"category" json:"category"`
	Address        *string   `db:"address" json:"address"`
	Latitude       *float64  `db:"latitude" json:"latitude"`
	Longitude      *float64  `db:"longitude" json:"longitude"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`

	CreatorName  *string `db:"creator_name" json:"creator_name,omitempty"`
	CreatorEmail *string `db:"creator_email" json:"creator_email,omitempty"`
}
