package dto

// SessionTypeRequest creates or replaces a session type.
type SessionTypeRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	IsOffTheJob bool   `json:"is_off_the_job"`
	IsActive    *bool  `json:"is_active"`
}

// ReorderSessionTypeRequest moves a session type one rank.
type ReorderSessionTypeRequest struct {
	ID        string `json:"id" validate:"required"`
	Direction string `json:"direction" validate:"required"`
}
