package models

import "time"

// Audit actions recorded for mutations.
const (
	AuditActionPlanCreate         = "SAMPLE_PLAN_CREATE"
	AuditActionPlanDelete         = "SAMPLE_PLAN_DELETE"
	AuditActionSampleApply        = "SAMPLE_APPLY"
	AuditActionSampleDetailUpdate = "SAMPLE_DETAIL_UPDATE"
	AuditActionSampleRemove       = "SAMPLE_REMOVE"
	AuditActionQuestionWrite      = "IQA_QUESTION_WRITE"
	AuditActionSessionTypeWrite   = "SESSION_TYPE_WRITE"
	AuditActionAcknowledgement    = "ACKNOWLEDGEMENT_WRITE"
	AuditActionDocumentUpload     = "DOCUMENT_UPLOAD"
)

// AuditLog is one audit trail row. RequestID ties the HTTP access entry to the domain entries
// written while serving the same request.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	RequestID  string    `db:"request_id" json:"request_id,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
