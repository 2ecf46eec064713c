package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/learner-hub-api/internal/dto"
	"github.com/noah-isme/learner-hub-api/internal/models"
	appErrors "github.com/noah-isme/learner-hub-api/pkg/errors"
	"github.com/noah-isme/learner-hub-api/pkg/export"
	applog "github.com/noah-isme/learner-hub-api/pkg/logger"
	"github.com/noah-isme/learner-hub-api/pkg/storage"
)

// Export content types.
const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"
	ContentTypeCSV  = "text/csv; charset=utf-8"
)

// Feedback export formats.
const (
	FeedbackFormatCSV = "csv"
	FeedbackFormatPDF = "pdf"
)

// PDF rendering modes for form submissions.
const (
	PDFModeText     = "text"
	PDFModeSnapshot = "snapshot"
)

var timelogHeaders = []string{"Date", "Learner", "Course", "Session Type", "Activity", "Duration", "Minutes", "Off The Job", "Description"}

var timelogColumnWidths = []float64{12, 24, 28, 20, 28, 10, 10, 12, 48}

type exportSource interface {
	ListTimelogs(ctx context.Context, filter models.TimelogFilter) ([]models.Timelog, error)
	FindSubmission(ctx context.Context, id string) (*models.FormSubmission, error)
	SetSubmissionSnapshot(ctx context.Context, id, path string) error
	ListFeedback(ctx context.Context, courseID string) ([]models.Feedback, error)
}

type resultStorage interface {
	Save(name string, data []byte) (string, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type xlsxRenderer interface {
	Render(sheets ...export.Sheet) ([]byte, error)
}

type documentRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	RenderDocument(doc export.Document) ([]byte, error)
	RenderSnapshot(doc export.Document, png []byte) ([]byte, bool, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	ResultTTL      time.Duration
	SnapshotPolicy storage.UploadPolicy
	Now            func() time.Time
}

// ExportService turns timelogs, form submissions and feedback into downloadable files.
type ExportService struct {
	source  exportSource
	results resultStorage
	assets  fileStorage
	csv     csvRenderer
	xlsx    xlsxRenderer
	pdf     documentRenderer
	metrics *MetricsService
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService. results holds rendered exports; assets holds uploaded snapshots.
func NewExportService(source exportSource, results resultStorage, assets fileStorage, metrics *MetricsService, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.SnapshotPolicy.MaxBytes <= 0 {
		cfg.SnapshotPolicy = storage.NewUploadPolicy(5*1024*1024, []string{"image/png"})
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &ExportService{
		source:  source,
		results: results,
		assets:  assets,
		csv:     export.NewCSVExporter(),
		xlsx:    export.NewXLSXExporter(),
		pdf:     export.NewPDFExporter(),
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
	}
}

// TimelogFilterFromQuery validates the query and normalises the date range to whole days.
func TimelogFilterFromQuery(q dto.TimelogExportQuery) (models.TimelogFilter, error) {
	filter := models.TimelogFilter{
		LearnerID:     strings.TrimSpace(q.LearnerID),
		CourseID:      strings.TrimSpace(q.CourseID),
		OffTheJobOnly: q.OffTheJobOnly,
	}
	from, err := parseDate(q.DateFrom)
	if err != nil {
		return filter, validationError(err, "invalid date_from")
	}
	to, err := parseDate(q.DateTo)
	if err != nil {
		return filter, validationError(err, "invalid date_to")
	}
	if from != nil {
		start := export.StartOfDay(*from)
		filter.DateFrom = &start
	}
	if to != nil {
		end := export.EndOfDay(*to)
		filter.DateTo = &end
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateFrom.After(*filter.DateTo) {
		return filter, appErrors.ErrInvalidDateRange
	}
	return filter, nil
}

// TimelogFilename names a timelog workbook. Date or course filters add _filtered; off-the-job only adds _offjob.
func TimelogFilename(filter models.TimelogFilter, now time.Time) string {
	var suffixes []string
	if filter.HasRangeOrCourse() {
		suffixes = append(suffixes, "filtered")
	}
	if filter.OffTheJobOnly {
		suffixes = append(suffixes, "offjob")
	}
	return export.TimestampedFilename("timelog_export", now, "xlsx", suffixes...)
}

// TimelogWorkbook renders the timelog data and an export summary into a two-sheet workbook.
func (s *ExportService) TimelogWorkbook(ctx context.Context, q dto.TimelogExportQuery) (file *dto.ExportFile, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveExport("timelog", err, time.Since(start)) }()

	filter, err := TimelogFilterFromQuery(q)
	if err != nil {
		return nil, err
	}
	logs, err := s.source.ListTimelogs(ctx, filter)
	if err != nil {
		return nil, repoError(err, "timelog not found", "failed to load timelogs")
	}
	if len(logs) == 0 {
		return nil, appErrors.ErrEmptyDataset
	}

	now := s.cfg.Now()
	data, totals := timelogDataset(logs)
	payload, err := s.xlsx.Render(
		export.Sheet{Name: "Timelog Data", Data: data, ColumnWidths: timelogColumnWidths},
		export.Sheet{Name: "Export Summary", Data: timelogSummary(filter, totals, now), ColumnWidths: []float64{28, 40}},
	)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render timelog workbook")
	}
	return s.store(TimelogFilename(filter, now), ContentTypeXLSX, payload)
}

type timelogTotals struct {
	entries        int
	minutes        int
	offTheJobMins  int
	learners       map[string]struct{}
	offTheJobCount int
}

func timelogDataset(logs []models.Timelog) (export.Dataset, timelogTotals) {
	totals := timelogTotals{learners: map[string]struct{}{}}
	rows := make([]map[string]string, 0, len(logs))
	for _, l := range logs {
		minutes := export.ConvertDurationToMinutes(l.Duration)
		totals.entries++
		totals.minutes += minutes
		totals.learners[l.LearnerID] = struct{}{}
		offJob := "No"
		if l.IsOffTheJob {
			offJob = "Yes"
			totals.offTheJobMins += minutes
			totals.offTheJobCount++
		}
		rows = append(rows, map[string]string{
			"Date":         l.ActivityDate.Format("2006-01-02"),
			"Learner":      l.LearnerName,
			"Course":       l.CourseName,
			"Session Type": l.SessionTypeName,
			"Activity":     l.Activity,
			"Duration":     l.Duration,
			"Minutes":      strconv.Itoa(minutes),
			"Off The Job":  offJob,
			"Description":  l.Description,
		})
	}
	return export.Dataset{Headers: timelogHeaders, Rows: rows}, totals
}

func timelogSummary(filter models.TimelogFilter, totals timelogTotals, now time.Time) export.Dataset {
	orAll := func(v string) string {
		if v == "" {
			return "All"
		}
		return v
	}
	date := func(t *time.Time) string {
		if t == nil {
			return "Not set"
		}
		return t.Format("2006-01-02")
	}
	offJob := "No"
	if filter.OffTheJobOnly {
		offJob = "Yes"
	}
	pairs := [][2]string{
		{"Learner", orAll(filter.LearnerID)},
		{"Course", orAll(filter.CourseID)},
		{"Date From", date(filter.DateFrom)},
		{"Date To", date(filter.DateTo)},
		{"Off The Job Only", offJob},
		{"Total Entries", strconv.Itoa(totals.entries)},
		{"Learners", strconv.Itoa(len(totals.learners))},
		{"Total Time (H:MM)", export.FormatMinutes(totals.minutes)},
		{"Total Minutes", strconv.Itoa(totals.minutes)},
		{"Off The Job Entries", strconv.Itoa(totals.offTheJobCount)},
		{"Off The Job Time (H:MM)", export.FormatMinutes(totals.offTheJobMins)},
		{"Generated At", now.Format("2006-01-02 15:04:05")},
	}
	rows := make([]map[string]string, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, map[string]string{"Filter": p[0], "Value": p[1]})
	}
	return export.Dataset{Headers: []string{"Filter", "Value"}, Rows: rows}
}

// FormSubmissionPDF renders a submission in text mode, or from its stored snapshot image.
// Snapshot mode falls back to text when no snapshot exists or the image cannot be embedded.
func (s *ExportService) FormSubmissionPDF(ctx context.Context, id, mode string) (file *dto.ExportFile, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveExport("form_pdf", err, time.Since(start)) }()

	mode = strings.ToLower(strings.TrimSpace(mode))
	if mode == "" {
		mode = PDFModeText
	}
	if mode != PDFModeText && mode != PDFModeSnapshot {
		return nil, appErrors.Clone(appErrors.ErrValidation, "mode must be text or snapshot")
	}
	sub, err := s.source.FindSubmission(ctx, id)
	if err != nil {
		return nil, repoError(err, "form submission not found", "failed to load form submission")
	}
	doc := submissionDocument(sub)

	var payload []byte
	if mode == PDFModeSnapshot {
		payload, err = s.renderSnapshot(doc, sub)
	} else {
		payload, err = s.pdf.RenderDocument(doc)
	}
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render form submission")
	}
	name := export.TimestampedFilename("form_submission_"+sanitizeFilename(sub.FormName), s.cfg.Now(), "pdf")
	return s.store(name, ContentTypePDF, payload)
}

func (s *ExportService) renderSnapshot(doc export.Document, sub *models.FormSubmission) ([]byte, error) {
	var image []byte
	if sub.SnapshotPath != nil && s.assets != nil {
		raw, err := s.readAsset(*sub.SnapshotPath)
		if err != nil {
			s.logger.Warn("snapshot unreadable, rendering text", zap.String("submission_id", sub.ID), zap.Error(err))
		}
		image = raw
	}
	payload, fellBack, err := s.pdf.RenderSnapshot(doc, image)
	if fellBack {
		s.logger.Info("snapshot pdf fell back to text", zap.String("submission_id", sub.ID))
	}
	return payload, err
}

func (s *ExportService) readAsset(path string) ([]byte, error) {
	f, err := s.assets.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck
	return io.ReadAll(f)
}

func submissionDocument(sub *models.FormSubmission) export.Document {
	doc := export.Document{
		Title: sub.FormName,
		Meta: []export.Field{
			{Label: "Learner", Value: sub.LearnerName},
			{Label: "Submitted By", Value: sub.SubmittedBy},
			{Label: "Submitted At", Value: sub.SubmittedAt.Format("2006-01-02 15:04")},
		},
	}
	index := map[string]int{}
	for _, a := range sub.Answers {
		pos, ok := index[a.Section]
		if !ok {
			pos = len(doc.Sections)
			index[a.Section] = pos
			doc.Sections = append(doc.Sections, export.Section{Heading: a.Section})
		}
		value := a.Answer
		if strings.TrimSpace(value) == "" {
			value = "-"
		}
		doc.Sections[pos].Fields = append(doc.Sections[pos].Fields, export.Field{Label: a.Question, Value: value})
	}
	return doc
}

// UploadSubmissionSnapshot stores a PNG capture of a submission for snapshot-mode PDFs.
func (s *ExportService) UploadSubmissionSnapshot(ctx context.Context, id string, upload storage.Upload) error {
	if _, err := s.cfg.SnapshotPolicy.Inspect(upload); err != nil {
		return uploadError(err)
	}
	sub, err := s.source.FindSubmission(ctx, id)
	if err != nil {
		return repoError(err, "form submission not found", "failed to load form submission")
	}
	path, err := s.assets.SaveStream(storage.GenerateName("snapshots", "submission_"+id+".png", "image/png", s.cfg.Now()), upload.Content)
	if err != nil {
		return appErrors.Internal(err, "failed to persist snapshot")
	}
	if err := s.source.SetSubmissionSnapshot(ctx, id, path); err != nil {
		_ = s.assets.Delete(path)
		return repoError(err, "form submission not found", "failed to record snapshot")
	}
	if sub.SnapshotPath != nil && *sub.SnapshotPath != path {
		if err := s.assets.Delete(*sub.SnapshotPath); err != nil {
			applog.WithContext(ctx, s.logger).Warn("failed to delete previous snapshot", zap.String("path", *sub.SnapshotPath), zap.Error(err))
		}
	}
	return nil
}

// FeedbackExport renders course feedback as a CSV sheet or a PDF table.
func (s *ExportService) FeedbackExport(ctx context.Context, q dto.FeedbackExportQuery) (file *dto.ExportFile, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveExport("feedback", err, time.Since(start)) }()

	format := strings.ToLower(strings.TrimSpace(q.Format))
	if format == "" {
		format = FeedbackFormatCSV
	}
	if format != FeedbackFormatCSV && format != FeedbackFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	courseID := strings.TrimSpace(q.CourseID)
	items, err := s.source.ListFeedback(ctx, courseID)
	if err != nil {
		return nil, repoError(err, "feedback not found", "failed to load feedback")
	}
	if len(items) == 0 {
		return nil, appErrors.ErrEmptyDataset
	}
	headers := []string{"Course", "Learner", "Rating", "Comment", "Submitted At"}
	rows := make([]map[string]string, 0, len(items))
	for _, f := range items {
		rows = append(rows, map[string]string{
			"Course":       f.CourseName,
			"Learner":      f.LearnerName,
			"Rating":       strconv.Itoa(f.Rating),
			"Comment":      f.Comment,
			"Submitted At": f.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	data := export.Dataset{Headers: headers, Rows: rows}
	var suffixes []string
	if courseID != "" {
		suffixes = append(suffixes, "filtered")
	}
	name := export.TimestampedFilename("feedback_export", s.cfg.Now(), format, suffixes...)

	if format == FeedbackFormatPDF {
		payload, err := s.pdf.Render(data, "Course feedback")
		if err != nil {
			return nil, appErrors.Internal(err, "failed to render feedback pdf")
		}
		return s.store(name, ContentTypePDF, payload)
	}
	payload, err := s.csv.Render(data)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render feedback csv")
	}
	return s.store(name, ContentTypeCSV, payload)
}

func (s *ExportService) store(name, contentType string, payload []byte) (*dto.ExportFile, error) {
	file := &dto.ExportFile{Filename: name, ContentType: contentType, Payload: payload}
	if s.results == nil {
		return file, nil
	}
	path, err := s.results.Save(name, payload)
	if err != nil {
		// The payload is still streamed; only the retained copy is lost.
		s.logger.Warn("failed to retain export", zap.String("filename", name), zap.Error(err))
		return file, nil
	}
	file.Path = path
	return file, nil
}

// Cleanup removes retained exports older than ttl (defaults to the configured ResultTTL).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if s.results == nil {
		return nil, nil
	}
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	removed, err := s.results.CleanupOlderThan(ttl)
	if err != nil {
		return nil, fmt.Errorf("cleanup exports: %w", err)
	}
	return removed, nil
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "form"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := strings.ToLower(replacer.Replace(strings.TrimSpace(raw)))
	if len(result) > 60 {
		return result[:60]
	}
	return result
}
