package models

import "time"

// StatusApproved is the only status a submission is ever stored with.
const StatusApproved = 1

// Submission is a research paper stored in cap_books.
type Submission struct {
	ID           int64     `db:"id" json:"id"`
	Title        string    `db:"title" json:"title"`
	Abstract     string    `db:"abstract" json:"abstract"`
	Keywords     string    `db:"keywords" json:"keywords"`
	Author       string    `db:"author" json:"author"`
	Department   string    `db:"department" json:"department"`
	Strand       string    `db:"strand" json:"strand"`
	StudentID    *string   `db:"student_id" json:"student_id,omitempty"`
	AdviserID    *int64    `db:"adviser_id" json:"adviser_id,omitempty"`
	Status       int       `db:"status" json:"status"`
	Views        int64     `db:"views" json:"views"`
	ImagePath    *string   `db:"image_path" json:"image_path,omitempty"`
	DocumentPath *string   `db:"document_path" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// NewSubmission holds the values inserted for an upload.
type NewSubmission struct {
	Title        string
	Abstract     string
	Keywords     string
	Author       string
	Department   string
	Strand       string
	StudentID    *string
	AdviserID    *int64
	ImagePath    *string
	DocumentPath *string
}

// SubmissionFilter narrows research listings.
type SubmissionFilter struct {
	Department string `form:"department"`
	Strand     string `form:"strand"`
	Keyword    string `form:"q"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

// SubmissionView is returned when a paper is opened.
type SubmissionView struct {
	Submission
	DocumentURL string     `json:"document_url,omitempty"`
	URLExpires  *time.Time `json:"document_url_expires_at,omitempty"`
	Bookmarked  bool       `json:"bookmarked"`
}
