package services

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidExportFormat signals an export format outside
	// json/csv/markdown.
	ErrInvalidExportFormat = errors.New("invalid export format")

	// ErrUnsupportedFile signals an import file whose extension is
	// neither .json nor .csv.
	ErrUnsupportedFile = errors.New("unsupported file format, use JSON or CSV")

	// ErrInvalidPayload signals a structurally broken import file;
	// no partial import is attempted.
	ErrInvalidPayload = errors.New("invalid import payload")
)

const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
)

// Duplicate-handling policies. Merge is accepted from clients but
// behaves as skip; the engine has no distinct merge semantics.
const (
	PolicySkip      = "skip"
	PolicyMerge     = "merge"
	PolicyOverwrite = "overwrite"
)

type ExportService interface {
	// Export serializes the filtered task set (plus the full project
	// and label catalogs for JSON) into the requested format.
	Export(ctx context.Context, params ExportParams) (*ExportResult, error)
}

type ImportService interface {
	// Import parses the file (format detected by extension), merges
	// its entities into the store under the given duplicate policy,
	// and reports counts plus per-record errors.
	Import(ctx context.Context, filename string, data []byte, policy string) (*ImportSummary, error)

	// Validate is a dry run: it inspects the file without touching
	// the store.
	Validate(ctx context.Context, filename string, data []byte) (*ValidationReport, error)
}

type OrderService interface {
	// NextTaskOrder returns max+1 over the scope, or 0 for an empty
	// scope. A nil projectID means the inbox.
	NextTaskOrder(ctx context.Context, projectID *string) (int, error)
	NextSubtaskOrder(ctx context.Context, taskID string) (int, error)

	// ReorderTasks rewrites every order in the given display order:
	// order = index. Updates are independent; on failure the scope is
	// left partially rewritten and the error says how far it got.
	ReorderTasks(ctx context.Context, taskIDs []string) error
	ReorderSubtasks(ctx context.Context, subtaskIDs []string) error
}

type ExportParams struct {
	Format        string
	ProjectID     *string
	CompletedOnly bool
	StartDate     *time.Time
	EndDate       *time.Time
}

type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ImportSummary struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

type ValidationReport struct {
	Valid       bool             `json:"valid"`
	Format      string           `json:"format"`
	RecordCount int              `json:"recordCount"`
	Preview     []map[string]any `json:"preview,omitempty"`
	Errors      []string         `json:"errors"`
	Warnings    []string         `json:"warnings"`
}
