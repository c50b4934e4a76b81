package models

import "time"

// Period identifies a study year and semester.
type Period struct {
	YearLevel int `db:"year_level" json:"year_level"`
	Semester  int `db:"semester" json:"semester"`
}

// CourseGrade is a course outcome reported by a student.
type CourseGrade struct {
	ID         string    `db:"id" json:"id"`
	AccountID  string    `db:"account_id" json:"account_id"`
	CourseCode string    `db:"course_code" json:"course_code"`
	CourseName string    `db:"course_name" json:"course_name"`
	Credits    float64   `db:"credits" json:"credits"`
	Grade      string    `db:"grade" json:"grade"`
	YearLevel  int       `db:"year_level" json:"year_level"`
	Semester   int       `db:"semester" json:"semester"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// ManualGPA is the GPA a student reports for a period.
type ManualGPA struct {
	ID        string    `db:"id" json:"id"`
	AccountID string    `db:"account_id" json:"account_id"`
	YearLevel int       `db:"year_level" json:"year_level"`
	Semester  int       `db:"semester" json:"semester"`
	GPA       float64   `db:"gpa" json:"gpa"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CourseRequirement is one required course for a major and period.
type CourseRequirement struct {
	ID         string    `db:"id" json:"id"`
	Major      string    `db:"major" json:"major"`
	YearLevel  int       `db:"year_level" json:"year_level"`
	Semester   int       `db:"semester" json:"semester"`
	CourseCode string    `db:"course_code" json:"course_code"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// GradeFilter narrows course grade listings. Nil period fields match every period.
type GradeFilter struct {
	AccountID string
	YearLevel *int
	Semester  *int
}
