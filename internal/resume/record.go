// Package resume defines the canonical structured resume representation
// exchanged between pipeline stages. Records are created by the extractor or
// the rewriter and consumed read-only by the renderers; transformations
// always produce new records.
package resume

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"github.com/mitchellh/mapstructure"
)

// PlaceholderName is used for the contact name when nothing better is known.
const PlaceholderName = "Resume Owner"

const fallbackSummary = "Professional with relevant experience and skills."

// DefaultSkillOrder is the category flattening order. A tuning default, not
// load-bearing: category maps with other keys are appended in sorted order.
var DefaultSkillOrder = []string{"technical_skills", "soft_skills", "other_skills"}

type ContactInfo struct {
	Name     string `json:"name,omitempty" mapstructure:"name"`
	Email    string `json:"email,omitempty" mapstructure:"email"`
	Phone    string `json:"phone,omitempty" mapstructure:"phone"`
	Location string `json:"location,omitempty" mapstructure:"location"`
	LinkedIn string `json:"linkedin,omitempty" mapstructure:"linkedin"`
	GitHub   string `json:"github,omitempty" mapstructure:"github"`
	Website  string `json:"website,omitempty" mapstructure:"website"`
}

type Experience struct {
	Title       string   `json:"title,omitempty" mapstructure:"title"`
	Company     string   `json:"company,omitempty" mapstructure:"company"`
	Location    string   `json:"location,omitempty" mapstructure:"location"`
	Dates       string   `json:"dates,omitempty" mapstructure:"dates"`
	Description []string `json:"description,omitempty" mapstructure:"description"`
}

type Education struct {
	Degree      string `json:"degree,omitempty" mapstructure:"degree"`
	Institution string `json:"institution,omitempty" mapstructure:"institution"`
	Dates       string `json:"dates,omitempty" mapstructure:"dates"`
	Details     string `json:"details,omitempty" mapstructure:"details"`
}

type Project struct {
	Title        string   `json:"title,omitempty" mapstructure:"title"`
	Description  []string `json:"description,omitempty" mapstructure:"description"`
	Technologies string   `json:"technologies,omitempty" mapstructure:"technologies"`
	URL          string   `json:"url,omitempty" mapstructure:"url"`
}

type Certification struct {
	Name   string `json:"name,omitempty" mapstructure:"name"`
	Issuer string `json:"issuer,omitempty" mapstructure:"issuer"`
	Date   string `json:"date,omitempty" mapstructure:"date"`
}

// Record is the canonical structured resume entity.
type Record struct {
	ContactInfo    *ContactInfo    `json:"contact_info,omitempty" mapstructure:"contact_info"`
	Summary        string          `json:"summary,omitempty" mapstructure:"summary"`
	Skills         *Skills         `json:"skills,omitempty" mapstructure:"skills"`
	Experience     []Experience    `json:"experience" mapstructure:"experience"`
	Education      []Education     `json:"education" mapstructure:"education"`
	Projects       []Project       `json:"projects,omitempty" mapstructure:"projects"`
	Certifications []Certification `json:"certifications,omitempty" mapstructure:"certifications"`
	Activities     []string        `json:"activities,omitempty" mapstructure:"activities"`
	Leadership     []string        `json:"leadership,omitempty" mapstructure:"leadership"`
}

// Skills holds either a flat ordered list or a category -> skills mapping,
// matching the two shapes generative output produces.
type Skills struct {
	Flat       []string
	Categories map[string][]string
}

func (s *Skills) UnmarshalJSON(data []byte) error {
	var flat []string
	if err := json.Unmarshal(data, &flat); err == nil {
		s.Flat = flat
		s.Categories = nil
		return nil
	}

	var categories map[string][]string
	if err := json.Unmarshal(data, &categories); err == nil {
		s.Flat = nil
		s.Categories = categories
		return nil
	}

	return fmt.Errorf("skills must be a list or a category mapping")
}

func (s Skills) MarshalJSON() ([]byte, error) {
	if s.Flat != nil {
		return json.Marshal(s.Flat)
	}
	if s.Categories != nil {
		return json.Marshal(s.Categories)
	}
	return []byte("[]"), nil
}

// Flatten returns all skills as a single ordered list. Categories named in
// order come first; remaining categories follow in sorted name order.
func (s *Skills) Flatten(order []string) []string {
	if s == nil {
		return nil
	}
	if s.Flat != nil {
		out := make([]string, len(s.Flat))
		copy(out, s.Flat)
		return out
	}

	if len(order) == 0 {
		order = DefaultSkillOrder
	}

	var out []string
	seen := make(map[string]bool, len(order))
	for _, name := range order {
		seen[name] = true
		out = append(out, s.Categories[name]...)
	}

	rest := make([]string, 0, len(s.Categories))
	for name := range s.Categories {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		out = append(out, s.Categories[name]...)
	}

	return out
}

// IsEmpty reports whether no skills are recorded at all.
func (s *Skills) IsEmpty() bool {
	if s == nil {
		return true
	}
	if len(s.Flat) > 0 {
		return false
	}
	for _, skills := range s.Categories {
		if len(skills) > 0 {
			return false
		}
	}
	return true
}

// Renderable reports whether the record satisfies the minimum shape the
// renderers require: contact info plus at least one of experience/education.
func (r *Record) Renderable() bool {
	if r == nil || r.ContactInfo == nil {
		return false
	}
	return r.Experience != nil || r.Education != nil
}

// FromMap decodes a generic JSON-shaped mapping into a Record. Decoding is
// weakly typed so salvaged values (e.g. numbers where strings are expected,
// a single string where a list is expected) still land in the record.
func FromMap(data map[string]any) (*Record, error) {
	var record Record

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &record,
		WeaklyTypedInput: true,
		DecodeHook:       skillsDecodeHook,
	})
	if err != nil {
		return nil, fmt.Errorf("build record decoder: %w", err)
	}

	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}

	return &record, nil
}

// skillsDecodeHook lets mapstructure fill the dual-shape Skills type from
// either a list or a category mapping.
func skillsDecodeHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(Skills{}) {
		return data, nil
	}

	switch v := data.(type) {
	case []any:
		flat := make([]string, 0, len(v))
		for _, item := range v {
			flat = append(flat, fmt.Sprintf("%v", item))
		}
		return Skills{Flat: flat}, nil
	case map[string]any:
		categories := make(map[string][]string, len(v))
		for name, raw := range v {
			switch skills := raw.(type) {
			case []any:
				list := make([]string, 0, len(skills))
				for _, item := range skills {
					list = append(list, fmt.Sprintf("%v", item))
				}
				categories[name] = list
			case string:
				categories[name] = []string{skills}
			}
		}
		return Skills{Categories: categories}, nil
	case string:
		return Skills{Flat: []string{v}}, nil
	}

	return data, nil
}

// Fallback builds the minimal valid record used when generation or repair
// cannot produce anything better, reusing whatever fields of the original
// record are available. A nil original yields the bare placeholder record.
func Fallback(original *Record) *Record {
	fallback := &Record{
		ContactInfo: &ContactInfo{Name: PlaceholderName},
		Summary:     fallbackSummary,
		Skills:      &Skills{Categories: map[string][]string{"technical_skills": {}}},
		Experience:  []Experience{},
		Education:   []Education{},
	}

	if original == nil {
		return fallback
	}

	if original.ContactInfo != nil {
		contact := *original.ContactInfo
		if contact.Name == "" {
			contact.Name = PlaceholderName
		}
		fallback.ContactInfo = &contact
	}
	if original.Summary != "" {
		fallback.Summary = original.Summary
	}
	if original.Skills != nil {
		fallback.Skills = original.Skills
	}
	if original.Experience != nil {
		fallback.Experience = original.Experience
	}
	if original.Education != nil {
		fallback.Education = original.Education
	}

	return fallback
}
