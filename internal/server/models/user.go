// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a full users row. PasswordHash never leaves the service layer.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// PublicUser is the projection of a user that is safe to return to clients.
type PublicUser struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email}
}
