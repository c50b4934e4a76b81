package dto

import "github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/models"

// CreateAccountRequest is the POST /accounts payload.
type CreateAccountRequest struct {
	Email       string          `json:"email" validate:"required,email"`
	Password    string          `json:"password" validate:"required,min=8"`
	FullName    string          `json:"full_name" validate:"required,max=200"`
	Role        models.UserRole `json:"role" validate:"required,oneof=ADMIN TEACHER STUDENT"`
	StudentCode *string         `json:"student_code" validate:"required_if=Role STUDENT,omitempty,max=32"`
	Major       *string         `json:"major" validate:"required_if=Role STUDENT,omitempty,max=64"`
	YearLevel   *int            `json:"year_level" validate:"required_if=Role STUDENT,omitempty,min=1,max=8"`
}

// UpdateAccountRequest is the PUT /accounts/:id payload. Nil fields are left unchanged.
type UpdateAccountRequest struct {
	FullName  *string          `json:"full_name" validate:"omitempty,max=200"`
	Role      *models.UserRole `json:"role" validate:"omitempty,oneof=ADMIN TEACHER STUDENT"`
	Major     *string          `json:"major" validate:"omitempty,max=64"`
	YearLevel *int             `json:"year_level" validate:"omitempty,min=1,max=8"`
	Active    *bool            `json:"active"`
}
