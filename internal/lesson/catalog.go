package lesson

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/lessonflow/internal/progress"
)

// ErrUnknownLesson is returned when a lesson id is not in the catalog.
var ErrUnknownLesson = errors.New("unknown lesson")

//go:embed lessons.yaml
var defaultCatalogYAML []byte

//go:embed catalog.schema.json
var catalogSchemaJSON []byte

const catalogSchemaURL = "schema://lessonflow/catalog.json"

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

// Catalog is the ordered set of lessons a learner progresses through.
type Catalog struct {
	lessons []*Lesson
	byID    map[progress.LessonID]int
}

type catalogFile struct {
	Lessons []*Lesson `yaml:"lessons"`
}

// DefaultCatalog returns the catalog built into the binary.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalogYAML)
}

// LoadCatalog reads a YAML catalog from path.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	if err := validateSchema(data); err != nil {
		return nil, err
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return NewCatalog(file.Lessons)
}

// NewCatalog builds a catalog from lessons in order, checking ids and
// slide content. Lesson ids must be 0..n-1 in catalog order: completing
// lesson id unlocks id+1.
func NewCatalog(lessons []*Lesson) (*Catalog, error) {
	if len(lessons) == 0 {
		return nil, fmt.Errorf("catalog has no lessons")
	}
	c := &Catalog{
		lessons: lessons,
		byID:    make(map[progress.LessonID]int, len(lessons)),
	}
	for i, l := range lessons {
		if _, dup := c.byID[l.ID]; dup {
			return nil, fmt.Errorf("duplicate lesson id %d", l.ID)
		}
		if err := checkLesson(l); err != nil {
			return nil, fmt.Errorf("lesson %d: %w", l.ID, err)
		}
		if l.ID != progress.LessonID(i) {
			return nil, fmt.Errorf("lesson id %d at position %d: ids must run from 0 in order", l.ID, i)
		}
		c.byID[l.ID] = i
	}
	return c, nil
}

func checkLesson(l *Lesson) error {
	if len(l.Slides) == 0 {
		return fmt.Errorf("no slides")
	}
	seen := make(map[progress.SlideID]bool, len(l.Slides))
	for _, s := range l.Slides {
		if s.ID == "" {
			return fmt.Errorf("slide without id")
		}
		if seen[s.ID] {
			return fmt.Errorf("duplicate slide id %q", s.ID)
		}
		seen[s.ID] = true

		if d := s.Content.Duration; d != nil && *d <= 0 {
			return fmt.Errorf("slide %q: duration must be positive", s.ID)
		}
		if s.Type.RequiresCorrectness() && s.Content.Answer == "" {
			return fmt.Errorf("slide %q: interactive slide needs an answer", s.ID)
		}
		if t := s.Content.AnswerType; t != "" && t != AnswerText {
			if _, err := normalizeAnswer(s.Content.Answer, t); err != nil {
				return fmt.Errorf("slide %q: answer does not match %s: %w", s.ID, t, err)
			}
		}
	}
	return nil
}

func validateSchema(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode catalog: %w", err)
	}
	// The validator wants JSON values, so round-trip through JSON.
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("catalog is not JSON-compatible: %w", err)
	}
	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("parse catalog: %w", err)
	}

	schema, err := catalogSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(parsed); err != nil {
		return fmt.Errorf("catalog schema validation failed: %w", err)
	}
	return nil
}

func catalogSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		def, err := jsonschema.UnmarshalJSON(bytes.NewReader(catalogSchemaJSON))
		if err != nil {
			compileErr = fmt.Errorf("parse catalog schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(catalogSchemaURL, def); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(catalogSchemaURL)
		if compileErr != nil {
			compileErr = fmt.Errorf("compile catalog schema: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}

// Lessons returns the lessons in catalog order.
func (c *Catalog) Lessons() []*Lesson {
	return c.lessons
}

// Len returns the number of lessons.
func (c *Catalog) Len() int {
	return len(c.lessons)
}

// Get returns the lesson with the given id.
func (c *Catalog) Get(id progress.LessonID) (*Lesson, error) {
	i, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLesson, id)
	}
	return c.lessons[i], nil
}

// Next returns the lesson after id in catalog order, if there is one.
func (c *Catalog) Next(id progress.LessonID) (*Lesson, bool) {
	i, ok := c.byID[id]
	if !ok || i+1 >= len(c.lessons) {
		return nil, false
	}
	return c.lessons[i+1], true
}
