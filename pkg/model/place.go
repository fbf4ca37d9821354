package model

import "strings"

// StudyPlaceTypes are the suggested place categories. Any other non-empty value
// is accepted as a custom type.
var StudyPlaceTypes = []string{"library", "cafe", "park", "university", "bookstore", "other"}

// SourceRemote marks study places that came from the remote directory and are
// replaced wholesale on refresh. Places the user added have no source.
const SourceRemote = "remote"

// StudyPlace is a saved location to study at.
type StudyPlace struct {
	ID        string  `json:"id"`
	Name      string  `json:"name" validate:"required"`
	Type      string  `json:"type" validate:"required"`
	State     string  `json:"state,omitempty"`
	Country   string  `json:"country,omitempty"`
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
	Source    string  `json:"source,omitempty"`
}

func (p *StudyPlace) RecordKind() Kind { return KindPlace }
func (p *StudyPlace) RecordID() string { return p.ID }

// Clone returns a copy of p.
func (p *StudyPlace) Clone() *StudyPlace {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

// Region renders "State, Country" skipping empty parts.
func (p *StudyPlace) Region() string {
	parts := make([]string, 0, 2)
	for _, s := range []string{p.State, p.Country} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// ResolvePlaceType picks the stored type for a place. Choosing "other" with a
// custom value stores the custom value instead.
func ResolvePlaceType(choice, custom string) string {
	choice = strings.TrimSpace(choice)
	custom = strings.TrimSpace(custom)
	if strings.EqualFold(choice, "other") && custom != "" {
		return custom
	}
	return strings.ToLower(choice)
}
