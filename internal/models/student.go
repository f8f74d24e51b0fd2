package models

import "time"

// Student represents a learner on the college roster. RegNo is the
// registration number students log in with and is unique across the roster.
type Student struct {
	ID            string `db:"id" json:"id"`
	RegNo         string `db:"reg_no" json:"regNo"`
	Name          string `db:"name" json:"name"`
	Email         string `db:"email" json:"email"`
	YearOfStudy   int    `db:"year_of_study" json:"yearOfStudy"`
	Semester      int    `db:"semester" json:"semester"`
	Department    string `db:"department" json:"department"`
	ContactNumber string `db:"contact_number" json:"contactNumber"`
	Photo         string `db:"photo" json:"photo"`
	// Avatar is a display alias for Photo, populated when the student is
	// placed in a session. It is never persisted.
	Avatar string `db:"-" json:"avatar,omitempty"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search     string
	Department string
	Semester   *int
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// FeeStatusEntry records a per-semester fee obligation for a student.
type FeeStatusEntry struct {
	ID        string     `db:"id" json:"id"`
	StudentID string     `db:"student_id" json:"studentId"`
	Semester  int        `db:"semester" json:"semester"`
	Amount    float64    `db:"amount" json:"amount"`
	Paid      bool       `db:"paid" json:"paid"`
	DueDate   time.Time  `db:"due_date" json:"dueDate"`
	PaidDate  *time.Time `db:"paid_date" json:"paidDate,omitempty"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
