package service

import (
	"fmt"

	"evamed-backend/internal/questionbank"
	"evamed-backend/internal/scoring"
)

// Questionnaire pairs a catalog with the engine that scores it.
type Questionnaire struct {
	Bank   *questionbank.Bank
	Engine *scoring.Engine
}

// ProfileInfo describes one served catalog.
type ProfileInfo struct {
	Profile string `json:"profile"`
	Title   string `json:"title"`
	Total   int    `json:"total"`
	Default bool   `json:"default"`
}

// Questionnaires is the read-only registry of catalogs by profile.
type Questionnaires struct {
	byProfile      map[string]*Questionnaire
	order          []string
	defaultProfile string
}

// NewQuestionnaires registers banks; defaultProfile must be among them.
func NewQuestionnaires(banks []*questionbank.Bank, defaultProfile string) (*Questionnaires, error) {
	q := &Questionnaires{
		byProfile:      make(map[string]*Questionnaire, len(banks)),
		defaultProfile: defaultProfile,
	}
	for _, b := range banks {
		if _, dup := q.byProfile[b.Profile()]; dup {
			return nil, fmt.Errorf("duplicate questionnaire profile %q", b.Profile())
		}
		q.byProfile[b.Profile()] = &Questionnaire{Bank: b, Engine: scoring.NewEngine(b)}
		q.order = append(q.order, b.Profile())
	}
	if _, ok := q.byProfile[defaultProfile]; !ok {
		return nil, fmt.Errorf("%w: default %q", ErrUnknownProfile, defaultProfile)
	}
	return q, nil
}

// LoadQuestionnaires reads catalogs from dir, or the embedded ones when dir is empty.
func LoadQuestionnaires(dir, defaultProfile string) (*Questionnaires, error) {
	var (
		banks []*questionbank.Bank
		err   error
	)
	if dir == "" {
		banks, err = questionbank.LoadEmbedded()
	} else {
		banks, err = questionbank.LoadDir(dir)
	}
	if err != nil {
		return nil, err
	}
	return NewQuestionnaires(banks, defaultProfile)
}

// Get returns the questionnaire for profile; empty means the default.
func (q *Questionnaires) Get(profile string) (*Questionnaire, error) {
	if profile == "" {
		profile = q.defaultProfile
	}
	qn, ok := q.byProfile[profile]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, profile)
	}
	return qn, nil
}

func (q *Questionnaires) Default() string {
	return q.defaultProfile
}

// Profiles lists the registered catalogs in registration order.
func (q *Questionnaires) Profiles() []ProfileInfo {
	out := make([]ProfileInfo, 0, len(q.order))
	for _, p := range q.order {
		b := q.byProfile[p].Bank
		out = append(out, ProfileInfo{
			Profile: p,
			Title:   b.Title(),
			Total:   b.Total(),
			Default: p == q.defaultProfile,
		})
	}
	return out
}
