package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-ledger-api/internal/models"
	appErrors "github.com/noah-isme/campus-ledger-api/pkg/errors"
	"github.com/noah-isme/campus-ledger-api/pkg/export"
)

// TranscriptFormat selects the rendered transcript encoding.
type TranscriptFormat string

const (
	TranscriptCSV TranscriptFormat = "csv"
	TranscriptPDF TranscriptFormat = "pdf"
)

type reportSource interface {
	StudentGradeReport(ctx context.Context, principal models.Principal, studentID string) (*models.GradeReport, error)
}

type tableRenderer interface {
	Render(table export.Table) ([]byte, error)
}

// Transcript is a rendered document ready to be served.
type Transcript struct {
	Filename    string
	ContentType string
	Data        []byte
}

var transcriptColumns = []string{"Course", "Assignment", "Kind", "Marks", "Max", "Percentage", "Letter", "Graded At"}

// ExportService renders grade reports as downloadable transcripts.
type ExportService struct {
	reports reportSource
	csv     tableRenderer
	pdf     tableRenderer
	logger  *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(reports reportSource, logger *zap.Logger, csv, pdf tableRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{reports: reports, csv: csv, pdf: pdf, logger: logger}
}

// Transcript renders the student's grade report. Visibility follows the
// grade report: students export their own, admins anyone's.
func (s *ExportService) Transcript(ctx context.Context, principal models.Principal, studentID string, format TranscriptFormat) (*Transcript, error) {
	if !principal.Can(models.CapExportTranscript) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorizedAction, "role may not export transcripts")
	}
	format = TranscriptFormat(strings.ToLower(string(format)))
	if format == "" {
		format = TranscriptCSV
	}
	if format != TranscriptCSV && format != TranscriptPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	report, err := s.reports.StudentGradeReport(ctx, principal, studentID)
	if err != nil {
		return nil, err
	}
	table := transcriptTable(report)

	out := &Transcript{Filename: fmt.Sprintf("transcript-%s.%s", transcriptName(report), format)}
	switch format {
	case TranscriptPDF:
		out.ContentType = "application/pdf"
		out.Data, err = s.pdf.Render(table)
	default:
		out.ContentType = "text/csv"
		out.Data, err = s.csv.Render(table)
	}
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render transcript")
	}
	s.logger.Debug("transcript rendered",
		zap.String("student_id", report.StudentID),
		zap.String("format", string(format)),
		zap.Int("grades", len(report.Grades)),
	)
	return out, nil
}

func transcriptName(r *models.GradeReport) string {
	if r.StudentNumber != "" {
		return r.StudentNumber
	}
	return r.StudentID
}

func transcriptTable(r *models.GradeReport) export.Table {
	rows := make([][]string, 0, len(r.Grades))
	for _, g := range r.Grades {
		rows = append(rows, []string{
			g.CourseCode,
			g.AssignmentTitle,
			string(g.AssignmentKind),
			formatMarks(g.MarksObtained),
			formatMarks(g.MaxMarks),
			strconv.FormatFloat(g.Percentage, 'f', 2, 64),
			string(g.Letter),
			g.GradedAt.UTC().Format("2006-01-02"),
		})
	}
	return export.Table{
		Title: "Academic Transcript",
		Fields: []export.Field{
			{Label: "Student", Value: r.FullName},
			{Label: "Student Number", Value: r.StudentNumber},
			{Label: "GPA", Value: strconv.FormatFloat(r.GPA, 'f', 2, 64)},
		},
		Columns: transcriptColumns,
		Rows:    rows,
	}
}

func formatMarks(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
