package export

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventboard/internal/domain"
)

func TestCSVExporter_Export(t *testing.T) {
	dir := t.TempDir()
	exporter := NewCSVExporter(dir)

	members := []*domain.User{
		{ID: "u1", Name: "Ada", LastName: "Lovelace", Email: "ada@example.com"},
		{ID: "u2", Name: "Grace", LastName: "Hopper", Email: "grace@example.com"},
	}

	path, err := exporter.Export("ev-1", members)
	require.NoError(t, err)
	assert.Contains(t, path, "members_event_ev-1_")
	assert.True(t, strings.HasSuffix(path, ".csv"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,name,last_name,email", strings.TrimSpace(lines[0]))
	assert.Contains(t, content, "u1,Ada,Lovelace,ada@example.com")
	assert.Contains(t, content, "u2,Grace,Hopper,grace@example.com")
}

func TestCSVExporter_ExportEmptyRoster(t *testing.T) {
	exporter := NewCSVExporter(t.TempDir())

	path, err := exporter.Export("ev-1", nil)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	// Header only.
	assert.Equal(t, "id,name,last_name,email", strings.TrimSpace(string(data)))
}

func TestCSVExporter_UniquePaths(t *testing.T) {
	exporter := NewCSVExporter(t.TempDir())

	first, err := exporter.Export("ev-1", nil)
	require.NoError(t, err)
	second, err := exporter.Export("ev-1", nil)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
