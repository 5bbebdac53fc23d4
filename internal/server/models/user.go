// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a full users row. PasswordHash and Salt never leave the server;
// use Public for anything sent to a client.
type User struct {
	ID           string     `db:"id"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password"`
	Salt         string     `db:"salt"`
	Name         *string    `db:"name"`
	Phone        *string    `db:"phone"`
	CPF          *string    `db:"cpf"`
	BirthDate    *time.Time `db:"birth_date"`
	PhotoURL     *string    `db:"photo_url"`
	PhotoPath    *string    `db:"photo_path"`
	CreatedAt    time.Time  `db:"created_at"`
}

// PublicUser is the client-facing projection of a User.
type PublicUser struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      *string    `json:"name"`
	Phone     *string    `json:"phone"`
	CPF       *string    `json:"cpf"`
	BirthDate *time.Time `json:"birth_date"`
	PhotoURL  *string    `json:"photo_url"`
	CreatedAt time.Time  `json:"created_at"`
}

func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Phone:     u.Phone,
		CPF:       u.CPF,
		BirthDate: u.BirthDate,
		PhotoURL:  u.PhotoURL,
		CreatedAt: u.CreatedAt,
	}
}

// ProfileUpdate carries the editable profile fields. A nil photo pair leaves
// the stored photo untouched.
type ProfileUpdate struct {
	Name      *string
	Phone     *string
	CPF       *string
	BirthDate *time.Time
	PhotoURL  *string
	PhotoPath *string
}
