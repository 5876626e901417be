// Package exchange converts task lists to and from portable export
// documents in JSON, YAML and TOML.
package exchange

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.yaml.in/yaml/v3"

	"github.com/twiced-technology-gmbh/todowatch/internal/clierr"
	"github.com/twiced-technology-gmbh/todowatch/internal/date"
	"github.com/twiced-technology-gmbh/todowatch/internal/task"
	"github.com/twiced-technology-gmbh/todowatch/internal/tasklist"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// DocumentVersion is the current export document version.
const DocumentVersion = 1

const schemaURL = "todowatch-export.json"

//go:embed schema.json
var schemaJSON string

// Document is the top-level export shape.
type Document struct {
	Version    int      `json:"version" yaml:"version" toml:"version"`
	ExportedAt string   `json:"exported_at,omitempty" yaml:"exported_at,omitempty" toml:"exported_at,omitempty"`
	Tasks      []Record `json:"tasks" yaml:"tasks" toml:"tasks"`
}

// Record is one exported task. Line is authoritative on import; the other
// fields are derived from it and exist for consumers that do not parse
// todo.txt.
type Record struct {
	ItemNumber    int               `json:"item_number,omitempty" yaml:"item_number,omitempty" toml:"item_number,omitempty"`
	Line          string            `json:"line" yaml:"line" toml:"line"`
	Completed     bool              `json:"completed" yaml:"completed" toml:"completed"`
	CompletedDate *date.Date        `json:"completed_date,omitempty" yaml:"completed_date,omitempty" toml:"completed_date,omitempty"`
	CreatedDate   *date.Date        `json:"created_date,omitempty" yaml:"created_date,omitempty" toml:"created_date,omitempty"`
	Priority      string            `json:"priority,omitempty" yaml:"priority,omitempty" toml:"priority,omitempty"`
	Body          string            `json:"body" yaml:"body" toml:"body"`
	Projects      []string          `json:"projects,omitempty" yaml:"projects,omitempty" toml:"projects,omitempty"`
	Contexts      []string          `json:"contexts,omitempty" yaml:"contexts,omitempty" toml:"contexts,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty" toml:"metadata,omitempty"`
}

// ValidFormats returns the supported export formats.
func ValidFormats() []string {
	return []string{FormatJSON, FormatYAML, FormatTOML}
}

// NewDocument builds a document from the non-blank tasks in l.
func NewDocument(l *tasklist.List, exportedAt time.Time) Document {
	doc := Document{Version: DocumentVersion, Tasks: []Record{}}
	if !exportedAt.IsZero() {
		doc.ExportedAt = exportedAt.UTC().Format(time.RFC3339)
	}
	for _, t := range l.Tasks() {
		if t.IsEmpty() {
			continue
		}
		doc.Tasks = append(doc.Tasks, Record{
			ItemNumber:    t.ItemNumber,
			Line:          t.String(),
			Completed:     t.Completed,
			CompletedDate: t.CompletedDate,
			CreatedDate:   t.CreatedDate,
			Priority:      t.Priority,
			Body:          t.Body,
			Projects:      t.Projects,
			Contexts:      t.Contexts,
			Metadata:      t.Metadata,
		})
	}
	return doc
}

// Encode writes doc to w in the given format.
func Encode(w io.Writer, doc Document, format string) error {
	switch strings.ToLower(format) {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2) //nolint:mnd // yaml indent
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(doc); err != nil {
			return fmt.Errorf("encoding TOML: %w", err)
		}
	default:
		return clierr.Newf(clierr.InvalidFormat, "invalid export format %q", format).
			WithDetails(map[string]any{"allowed": ValidFormats()})
	}
	return nil
}

// Decode reads a JSON export document, validates it against the export
// schema and returns its tasks parsed from their lines. Item numbers are
// cleared so the caller can append the tasks to another list.
func Decode(r io.Reader) ([]*task.Task, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, clierr.Wrap(clierr.IOError, "reading import", err)
	}

	if err := validate(data); err != nil {
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, clierr.Wrap(clierr.InvalidInput, "decoding import", err)
	}

	tasks := make([]*task.Task, 0, len(doc.Tasks))
	for _, rec := range doc.Tasks {
		t := task.Parse(rec.Line)
		if t.IsEmpty() {
			continue
		}
		tasks = append(tasks, t)
	}
	log.Debug("decoded import", "records", len(doc.Tasks), "tasks", len(tasks))
	return tasks, nil
}

func validate(data []byte) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
		return clierr.Wrap(clierr.InternalError, "loading export schema", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return clierr.Wrap(clierr.InternalError, "compiling export schema", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return clierr.Wrap(clierr.InvalidInput, "import is not valid JSON", err)
	}

	if err := schema.Validate(v); err != nil {
		return clierr.New(clierr.InvalidInput, "import does not match the export schema").
			WithDetails(map[string]any{"violations": violations(err)})
	}
	return nil
}

// violations flattens a schema validation error into "location: message"
// strings.
func violations(err error) []string {
	ve, ok := err.(*jsonschema.ValidationError) //nolint:errorlint // concrete type from Validate
	if !ok {
		return []string{err.Error()}
	}
	var out []string
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			out = append(out, loc+": "+e.Message)
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	slices.Sort(out)
	return out
}
