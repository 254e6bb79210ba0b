package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-ledger-api/internal/models"
	"github.com/noah-isme/campus-ledger-api/internal/service"
	"github.com/noah-isme/campus-ledger-api/pkg/response"
)

type transcriptExporter interface {
	Transcript(ctx context.Context, principal models.Principal, studentID string, format service.TranscriptFormat) (*service.Transcript, error)
}

// ExportHandler serves transcript downloads.
type ExportHandler struct {
	exporter transcriptExporter
}

// NewExportHandler constructs an export handler.
func NewExportHandler(exporter transcriptExporter) *ExportHandler {
	return &ExportHandler{exporter: exporter}
}

// Transcript godoc
// @Summary Download transcript
// @Tags Grades
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Student ID or me"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /students/{id}/transcript [get]
func (h *ExportHandler) Transcript(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	doc, err := h.exporter.Transcript(c.Request.Context(), p, studentParam(c), service.TranscriptFormat(c.DefaultQuery("format", "csv")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, doc.Filename, doc.ContentType, doc.Data)
}
