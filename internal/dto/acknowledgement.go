package dto

// AcknowledgementRequest holds the text part of an acknowledgement form. An empty severity means
// Info on create and "unchanged" on update.
type AcknowledgementRequest struct {
	Message  string `form:"message" json:"message" validate:"required,min=1,max=2000"`
	Severity string `form:"severity" json:"severity"`
}
