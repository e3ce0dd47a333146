// Package transfer converts the task list to and from the portable export file.
package transfer

import (
	"errors"
	"fmt"
	"io"

	"github.com/bytedance/sonic"

	"weekly-planner/domain"
)

// ExportFileName is the fixed name offered for downloaded exports.
const ExportFileName = "planner-data.json"

// DefaultImportLimit bounds the size of an import payload.
const DefaultImportLimit = 4 << 20

var (
	// ErrUnreadable means the payload is not valid JSON or could not be read.
	ErrUnreadable = errors.New("import payload unreadable")
	// ErrInvalidFile means the payload is JSON but not a list of tasks.
	ErrInvalidFile = errors.New("import payload is not a task list")
	// ErrTooLarge means the payload exceeded the import limit.
	ErrTooLarge = errors.New("import payload too large")
)

// Export renders tasks as a two-space indented JSON array.
func Export(tasks []domain.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return sonic.ConfigStd.MarshalIndent(tasks, "", "  ")
}

// ParseImport decodes an exported task list. The top-level value must be an
// array; its entries are taken as-is with unknown fields ignored, except that
// exports of the Portuguese release are translated to current day and period values.
func ParseImport(data []byte) ([]domain.Task, error) {
	var probe any
	if err := sonic.ConfigStd.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if _, ok := probe.([]any); !ok {
		return nil, ErrInvalidFile
	}
	var entries []importedTask
	if err := sonic.ConfigStd.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	tasks := make([]domain.Task, len(entries))
	for i, it := range entries {
		tasks[i] = it.task()
	}
	return tasks, nil
}

// ReadImport reads at most limit bytes from r and parses them.
func ReadImport(r io.Reader, limit int64) ([]domain.Task, error) {
	if limit <= 0 {
		limit = DefaultImportLimit
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if int64(len(data)) > limit {
		return nil, ErrTooLarge
	}
	return ParseImport(data)
}

// UserMessage returns the message shown when an import is rejected.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidFile):
		return "Error: invalid JSON file."
	case errors.Is(err, ErrTooLarge):
		return "Error: file is too large."
	default:
		return "Error reading the file."
	}
}
