// Package catalog holds the immutable, ordered list of course lessons.
package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/msomdec/vecino-digital/internal/domain"
)

// Catalog is an ordered set of lessons. Sequencing is defined by Lesson.Order,
// not by the position a lesson was declared at.
type Catalog struct {
	lessons []domain.Lesson
	index   map[string]int // lesson ID → position in lessons
}

// Default returns the built-in course.
func Default() *Catalog {
	c, err := New(defaultLessons)
	if err != nil {
		panic(fmt.Sprintf("built-in catalog is invalid: %v", err))
	}
	return c
}

var defaultLessons = []domain.Lesson{
	{
		ID:          "1",
		Title:       "Primeros Pasos con Internet",
		Description: "Aprende qué es internet de forma sencilla, comparándolo con una ciudad conectada.",
		Duration:    "3:45",
		Thumbnail:   "/caratula1.png",
		VideoURL:    "/video1.mp4",
		Order:       1,
	},
	{
		ID:          "2",
		Title:       "Navegar sin Miedo",
		Description: "Diferencia entre el navegador y el buscador para moverte con seguridad.",
		Duration:    "4:20",
		Thumbnail:   "/caratula2.png",
		VideoURL:    "/video2.mp4",
		Order:       2,
	},
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// New validates lessons and returns them as a Catalog sorted by Order.
// IDs and orders must be unique.
func New(lessons []domain.Lesson) (*Catalog, error) {
	if len(lessons) == 0 {
		return nil, fmt.Errorf("%w: catalog has no lessons", domain.ErrInvalidInput)
	}

	sorted := slices.Clone(lessons)
	ids := make(map[string]bool, len(sorted))
	orders := make(map[int]string, len(sorted))
	var errs []error
	for _, l := range sorted {
		if err := validate.Struct(l); err != nil {
			errs = append(errs, fmt.Errorf("lesson %q: %w", l.ID, err))
			continue
		}
		if ids[l.ID] {
			errs = append(errs, fmt.Errorf("lesson %q: duplicate id", l.ID))
		}
		if other, ok := orders[l.Order]; ok {
			errs = append(errs, fmt.Errorf("lesson %q: order %d already used by %q", l.ID, l.Order, other))
		}
		ids[l.ID] = true
		orders[l.Order] = l.ID
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, errors.Join(errs...))
	}

	slices.SortFunc(sorted, func(a, b domain.Lesson) int { return a.Order - b.Order })

	index := make(map[string]int, len(sorted))
	for i, l := range sorted {
		index[l.ID] = i
	}
	return &Catalog{lessons: sorted, index: index}, nil
}

type catalogFile struct {
	Lessons []domain.Lesson `yaml:"lessons"`
}

// LoadFile reads a YAML catalog of the form `lessons: [...]`.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: parse catalog: %w", domain.ErrInvalidInput, err)
	}
	return New(f.Lessons)
}

// Lessons returns the lessons in order. The slice must not be modified.
func (c *Catalog) Lessons() []domain.Lesson {
	return c.lessons
}

// Len returns the number of lessons.
func (c *Catalog) Len() int {
	return len(c.lessons)
}

// Get returns the lesson with the given ID.
func (c *Catalog) Get(id string) (domain.Lesson, bool) {
	i, ok := c.index[id]
	if !ok {
		return domain.Lesson{}, false
	}
	return c.lessons[i], true
}

// Exists reports whether id names a catalog lesson.
func (c *Catalog) Exists(id string) bool {
	_, ok := c.index[id]
	return ok
}

// Next returns the lesson after id, or false when id is last or unknown.
func (c *Catalog) Next(id string) (domain.Lesson, bool) {
	i, ok := c.index[id]
	if !ok || i == len(c.lessons)-1 {
		return domain.Lesson{}, false
	}
	return c.lessons[i+1], true
}

// Prev returns the lesson before id, or false when id is first or unknown.
func (c *Catalog) Prev(id string) (domain.Lesson, bool) {
	i, ok := c.index[id]
	if !ok || i == 0 {
		return domain.Lesson{}, false
	}
	return c.lessons[i-1], true
}

// IsFirst reports whether id is the first lesson by order.
func (c *Catalog) IsFirst(id string) bool {
	i, ok := c.index[id]
	return ok && i == 0
}

// IsLast reports whether id is the last lesson by order.
func (c *Catalog) IsLast(id string) bool {
	i, ok := c.index[id]
	return ok && i == len(c.lessons)-1
}
