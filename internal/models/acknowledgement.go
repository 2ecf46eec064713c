package models

import "time"

// Acknowledgement is a notice shown to learners, optionally with an attached file.
type Acknowledgement struct {
	ID        string                  `db:"id" json:"id"`
	Message   string                  `db:"message" json:"message"`
	Severity  AcknowledgementSeverity `db:"severity" json:"severity"`
	FileName  *string                 `db:"file_name" json:"file_name,omitempty"`
	FilePath  *string                 `db:"file_path" json:"-"`
	MimeType  *string                 `db:"mime_type" json:"mime_type,omitempty"`
	CreatedBy string                  `db:"created_by" json:"created_by"`
	CreatedAt time.Time               `db:"created_at" json:"created_at"`
	UpdatedAt time.Time               `db:"updated_at" json:"updated_at"`
	FileURL   string                  `db:"-" json:"file_url,omitempty"`
}
