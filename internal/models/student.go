package models

import "time"

// Student is a row of the students table.
type Student struct {
	StudentID      string     `db:"student_id" json:"student_id"`
	FirstName      string     `db:"first_name" json:"first_name"`
	LastName       string     `db:"last_name" json:"last_name"`
	Email          string     `db:"email" json:"email"`
	Department     string     `db:"department" json:"department"`
	Strand         string     `db:"strand" json:"strand"`
	ProfilePicture *string    `db:"profile_picture" json:"profile_picture,omitempty"`
	Verified       bool       `db:"is_verified" json:"is_verified"`
	CreatedAt      *time.Time `db:"created_at" json:"created_at,omitempty"`
}

// StudentCredentials carries what login and password reset need.
type StudentCredentials struct {
	StudentID         string     `db:"student_id"`
	DisplayName       string     `db:"display_name"`
	Email             string     `db:"email"`
	PasswordHash      string     `db:"password"`
	ResetToken        *string    `db:"reset_token"`
	ResetTokenExpires *time.Time `db:"reset_token_expires"`
}
