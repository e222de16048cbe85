package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"

	"eventboard/internal/domain"
)

// memberRow is the CSV layout of one roster entry.
type memberRow struct {
	ID       string `csv:"id"`
	Name     string `csv:"name"`
	LastName string `csv:"last_name"`
	Email    string `csv:"email"`
}

// CSVExporter writes member rosters as CSV files under Dir. It implements
// domain.RosterExporter.
type CSVExporter struct {
	Dir string
}

func NewCSVExporter(dir string) *CSVExporter {
	return &CSVExporter{Dir: dir}
}

// Export writes the roster and returns the file path. File names embed a
// random suffix so concurrent exports of the same event never collide.
func (e *CSVExporter) Export(eventID string, members []*domain.User) (string, error) {
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(e.Dir, fmt.Sprintf("members_event_%s_%s.csv", eventID, uuid.NewString()[:8]))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	rows := make([]*memberRow, 0, len(members))
	for _, m := range members {
		rows = append(rows, &memberRow{
			ID:       m.ID,
			Name:     m.Name,
			LastName: m.LastName,
			Email:    m.Email,
		})
	}
	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return "", fmt.Errorf("write export file: %w", err)
	}
	return path, nil
}
