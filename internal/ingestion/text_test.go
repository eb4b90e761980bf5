package ingestion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "only whitespace", input: "   \n  \n  ", want: ""},
		{name: "headings lose indentation", input: "  # Title\n## Subtitle\nContent here", want: "# Title\n## Subtitle\nContent here"},
		{name: "bullets preserved", input: "- Item 1\n  * Item 2\n• Item 3", want: "- Item 1\n  * Item 2\n• Item 3"},
		{name: "inner whitespace collapsed", input: "Line    with \t multiple    spaces", want: "Line with multiple spaces"},
		{name: "blank runs collapsed", input: "Line 1\n\n\n\n\nLine 2", want: "Line 1\n\nLine 2"},
		{name: "line endings normalized", input: "Line 1\r\nLine 2\rLine 3\nLine 4", want: "Line 1\nLine 2\nLine 3\nLine 4"},
		{name: "unicode kept", input: "Test with émojis 🚀  and spéciàl chàracters", want: "Test with émojis 🚀 and spéciàl chàracters"},
		{name: "relative indentation kept", input: "Header\n    Indented line\n  Less indented", want: "Header\n    Indented line\n  Less indented"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.input))
		})
	}
}

func TestCleanText_Idempotent(t *testing.T) {
	input := "Test content   with   spaces\n\n\nMultiple   blank   lines\n - bullet"
	once := CleanText(input)
	assert.Equal(t, once, CleanText(once))
}

func TestIngestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jd.txt")
	require.NoError(t, os.WriteFile(path, []byte("# Job Title\r\n\r\n\r\n\r\nDescription   here"), 0o644))

	text, meta, err := IngestFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "# Job Title\n\nDescription here", text)
	assert.Equal(t, SourceFile, meta.Source)
	assert.Len(t, meta.Hash, 64)
	assert.Equal(t, len([]rune(text)), meta.Chars)
}

func TestIngestFromFile_FileNotFound(t *testing.T) {
	text, meta, err := IngestFromFile("/nonexistent/file.txt")

	require.Error(t, err)
	assert.Empty(t, text)
	assert.Nil(t, meta)
	assert.Contains(t, err.Error(), "file not found")
}
