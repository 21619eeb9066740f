package questionbank

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// ErrQuestionNotFound is returned by Question for ids outside the catalog.
var ErrQuestionNotFound = errors.New("question not found")

// Bank is an immutable, validated question catalog with precomputed indices.
// It is safe for concurrent use; accessors hand out copies.
type Bank struct {
	profile   string
	title     string
	areas     []Area
	areaIndex map[string]int
	questions []Question // ascending id
	byID      map[int]int
}

// New validates c and builds a Bank from it.
func New(c Catalog) (*Bank, error) {
	if err := validateCatalog(c); err != nil {
		return nil, err
	}

	b := &Bank{
		profile:   c.Profile,
		title:     c.Title,
		areas:     make([]Area, len(c.Areas)),
		areaIndex: make(map[string]int, len(c.Areas)),
		questions: make([]Question, len(c.Questions)),
		byID:      make(map[int]int, len(c.Questions)),
	}
	for i, a := range c.Areas {
		b.areas[i] = a.clone()
		b.areaIndex[a.Key] = i
	}
	for i, q := range c.Questions {
		b.questions[i] = q.clone()
	}
	slices.SortFunc(b.questions, func(x, y Question) int { return cmp.Compare(x.ID, y.ID) })
	for i, q := range b.questions {
		b.byID[q.ID] = i
	}
	return b, nil
}

// MustNew is like New but panics on an invalid catalog.
func MustNew(c Catalog) *Bank {
	b, err := New(c)
	if err != nil {
		panic(err)
	}
	return b
}

// Profile returns the catalog variant name.
func (b *Bank) Profile() string { return b.profile }

// Title returns the human-readable catalog title.
func (b *Bank) Title() string { return b.title }

// Total returns the number of questions in the catalog.
func (b *Bank) Total() int { return len(b.questions) }

// Question returns the question with the given id.
func (b *Bank) Question(id int) (Question, error) {
	i, ok := b.byID[id]
	if !ok {
		return Question{}, fmt.Errorf("%w: %d", ErrQuestionNotFound, id)
	}
	return b.questions[i].clone(), nil
}

// NextUnanswered returns the lowest-id question not present in answered.
// The second return value is false once every question has been answered.
func (b *Bank) NextUnanswered(answered map[int]bool) (Question, bool) {
	for _, q := range b.questions {
		if !answered[q.ID] {
			return q.clone(), true
		}
	}
	return Question{}, false
}

// Questions returns every question in canonical (ascending id) order.
func (b *Bank) Questions() []Question {
	out := make([]Question, len(b.questions))
	for i, q := range b.questions {
		out[i] = q.clone()
	}
	return out
}

// Areas returns the declared areas in catalog order.
func (b *Bank) Areas() []Area {
	out := make([]Area, len(b.areas))
	for i, a := range b.areas {
		out[i] = a.clone()
	}
	return out
}

// Area returns the area with the given key.
func (b *Bank) Area(key string) (Area, bool) {
	i, ok := b.areaIndex[key]
	if !ok {
		return Area{}, false
	}
	return b.areas[i].clone(), true
}

// CountByDimension returns the number of questions per area and dimension.
func (b *Bank) CountByDimension() map[string]map[string]int {
	out := make(map[string]map[string]int, len(b.areas))
	for _, a := range b.areas {
		out[a.Key] = make(map[string]int, len(a.Dimensions))
	}
	for _, q := range b.questions {
		out[q.Area][q.Dimension]++
	}
	return out
}

// IDs returns every question id in canonical order.
func (b *Bank) IDs() []int {
	ids := make([]int, len(b.questions))
	for i, q := range b.questions {
		ids[i] = q.ID
	}
	return ids
}
