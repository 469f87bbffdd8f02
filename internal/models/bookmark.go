package models

import "time"

// Bookmark links a student to a saved submission.
type Bookmark struct {
	StudentID string    `db:"student_id" json:"student_id"`
	BookID    int64     `db:"book_id" json:"book_id"`
	Title     string    `db:"title" json:"title"`
	Author    string    `db:"author" json:"author"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
