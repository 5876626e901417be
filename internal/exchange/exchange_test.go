package exchange

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/twiced-technology-gmbh/todowatch/internal/clierr"
	"github.com/twiced-technology-gmbh/todowatch/internal/tasklist"
)

func sampleList() *tasklist.List {
	return tasklist.FromLines([]string{
		"(A) 2024-03-01 Call Mom @phone +Family",
		"",
		"x 2024-03-02 Pay rent +Home due:2024-03-01",
	})
}

func TestNewDocumentSkipsBlankLines(t *testing.T) {
	doc := NewDocument(sampleList(), time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC))

	assert.Equal(t, DocumentVersion, doc.Version)
	assert.Equal(t, "2024-03-05T10:00:00Z", doc.ExportedAt)
	require.Len(t, doc.Tasks, 2)
	assert.Equal(t, 1, doc.Tasks[0].ItemNumber)
	assert.Equal(t, "A", doc.Tasks[0].Priority)
	assert.Equal(t, "2024-03-01", doc.Tasks[0].CreatedDate.String())
	assert.Equal(t, 3, doc.Tasks[1].ItemNumber)
	assert.Equal(t, "2024-03-01", doc.Tasks[1].Metadata["due"])
}

func TestEncodeFormats(t *testing.T) {
	doc := NewDocument(sampleList(), time.Time{})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, doc, FormatYAML))
		var back Document
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
		assert.Equal(t, doc.Tasks[0].Line, back.Tasks[0].Line)
		assert.Equal(t, "2024-03-01", back.Tasks[0].CreatedDate.String())
	})

	t.Run("toml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, doc, FormatTOML))
		assert.Contains(t, buf.String(), "[[tasks]]")
		var back Document
		_, err := toml.Decode(buf.String(), &back)
		require.NoError(t, err)
		assert.Equal(t, doc.Tasks[1].Line, back.Tasks[1].Line)
	})

	t.Run("invalid", func(t *testing.T) {
		err := Encode(&bytes.Buffer{}, doc, "csv")
		var ce *clierr.Error
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, clierr.InvalidFormat, ce.Code)
	})
}

func TestDecodeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, NewDocument(sampleList(), time.Now()), FormatJSON))

	tasks, err := Decode(&buf)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "(A) 2024-03-01 Call Mom @phone +Family", tasks[0].String())
	assert.Equal(t, 0, tasks[0].ItemNumber)
	assert.True(t, tasks[1].Completed)
}

func TestDecodeRejectsSchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "missing tasks", doc: `{"version": 1}`},
		{name: "wrong version", doc: `{"version": 2, "tasks": []}`},
		{name: "missing line", doc: `{"version": 1, "tasks": [{"body": "x"}]}`},
		{name: "bad priority", doc: `{"version": 1, "tasks": [{"line": "x", "priority": "a"}]}`},
		{name: "multi-line", doc: `{"version": 1, "tasks": [{"line": "a\nb"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc))
			var ce *clierr.Error
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, clierr.InvalidInput, ce.Code)
			assert.NotEmpty(t, ce.Details["violations"])
		})
	}
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"version": 1,`))
	var ce *clierr.Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, clierr.InvalidInput, ce.Code)
}
