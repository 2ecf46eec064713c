package models

import (
	"fmt"
	"strings"
	"time"
)

// SessionType classifies timelog sessions and their off-the-job status.
type SessionType struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	IsOffTheJob bool      `db:"is_off_the_job" json:"is_off_the_job"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	Order       int       `db:"sort_order" json:"order"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ReorderDirection moves a session type one rank up or down.
type ReorderDirection string

const (
	DirectionUp   ReorderDirection = "UP"
	DirectionDown ReorderDirection = "DOWN"
)

// ParseReorderDirection accepts UP or DOWN in any case.
func ParseReorderDirection(raw string) (ReorderDirection, error) {
	switch ReorderDirection(strings.ToUpper(strings.TrimSpace(raw))) {
	case DirectionUp:
		return DirectionUp, nil
	case DirectionDown:
		return DirectionDown, nil
	}
	return "", fmt.Errorf("unknown direction %q", raw)
}
