package dto

// TimelogExportQuery captures timelog export filters. Dates use YYYY-MM-DD.
type TimelogExportQuery struct {
	LearnerID     string `form:"learner_id"`
	CourseID      string `form:"course_id"`
	DateFrom      string `form:"date_from"`
	DateTo        string `form:"date_to"`
	OffTheJobOnly bool   `form:"off_the_job_only"`
}

// FeedbackExportQuery captures the feedback export filter. Format is csv (default) or pdf.
type FeedbackExportQuery struct {
	CourseID string `form:"course_id"`
	Format   string `form:"format"`
}

// ExportFile is a rendered export ready to stream.
type ExportFile struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Payload     []byte `json:"-"`
	Path        string `json:"-"`
}
