package v1

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskflow-app/taskflow/internal/services"
)

const exportDateFormat = "2006-01-02"

// parseExportDate accepts a full ISO-8601 timestamp or a bare date.
func parseExportDate(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, exportDateFormat} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}

func (h *handlerImpl) HandleExport(c *gin.Context) {
	params := services.ExportParams{
		Format: services.FormatJSON,
	}
	if format := c.Query("format"); format != "" {
		params.Format = format
	}
	if projectID := c.Query("projectId"); projectID != "" {
		params.ProjectID = &projectID
	}
	if c.Query("completed") == "true" {
		params.CompletedOnly = true
	}
	if raw := c.Query("startDate"); raw != "" {
		start, err := parseExportDate(raw)
		if err != nil {
			abort(c, newBadRequestError("Invalid startDate, expected an ISO-8601 date"))
			return
		}
		params.StartDate = &start
	}
	if raw := c.Query("endDate"); raw != "" {
		end, err := parseExportDate(raw)
		if err != nil {
			abort(c, newBadRequestError("Invalid endDate, expected an ISO-8601 date"))
			return
		}
		params.EndDate = &end
	}

	result, err := h.exports.Export(c, params)
	if err != nil {
		if errors.Is(err, services.ErrInvalidExportFormat) {
			abort(c, newBadRequestError("Invalid format. Use json, csv, or markdown"))
			return
		}
		h.logger.Error().
			Err(err).
			Str("format", params.Format).
			Msg("failed to export")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	h.logger.Info().
		Str("format", params.Format).
		Str("filename", result.Filename).
		Msg("exported tasks")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

func (h *handlerImpl) readImportFile(c *gin.Context) (string, []byte, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		abort(c, newBadRequestError("No file provided"))
		return "", nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return "", nil, false
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return "", nil, false
	}
	return fileHeader.Filename, data, true
}

func (h *handlerImpl) HandleImport(c *gin.Context) {
	filename, data, ok := h.readImportFile(c)
	if !ok {
		return
	}

	policy := c.PostForm("duplicateHandling")
	if policy == "" {
		policy = services.PolicySkip
	}

	summary, err := h.imports.Import(c, filename, data, policy)
	if err != nil {
		if errors.Is(err, services.ErrUnsupportedFile) ||
			errors.Is(err, services.ErrInvalidPayload) {
			abort(c, newBadRequestError(err.Error()))
			return
		}
		h.logger.Error().
			Err(err).
			Str("filename", filename).
			Msg("failed to import")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	h.logger.Info().
		Str("filename", filename).
		Int("imported", summary.Imported).
		Int("skipped", summary.Skipped).
		Msg("imported tasks")
	c.JSON(http.StatusOK, summary)
}

func (h *handlerImpl) HandleValidateImport(c *gin.Context) {
	filename, data, ok := h.readImportFile(c)
	if !ok {
		return
	}

	// Validation never fails the request; a broken file comes back as
	// a report with valid=false.
	report, err := h.imports.Validate(c, filename, data)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("filename", filename).
			Msg("failed to validate import file")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, report)
}
