// Package models holds the client-side shapes of API payloads.
package models

import "time"

// User is the profile the server returns for a logged-in user.
type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      *string    `json:"name"`
	Phone     *string    `json:"phone"`
	CPF       *string    `json:"cpf"`
	BirthDate *time.Time `json:"birth_date"`
	PhotoURL  *string    `json:"photo_url"`
	CreatedAt time.Time  `json:"created_at"`
}

// DisplayName is the name if set, else the email.
func (u *User) DisplayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return u.Email
}
