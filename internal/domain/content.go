package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

var ErrUnknownSection = errors.New("unknown content section")

// Section is one CMS-edited page block. Each section name maps to exactly
// one concrete type below.
type Section interface {
	SectionName() string
}

type HomeContent struct {
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle"`
	HeroImage string `json:"hero_image"`
	Intro     string `json:"intro"`
}

type StoryContent struct {
	Title string `json:"title"`
	Intro string `json:"intro"`
}

type Venue struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Time    string `json:"time"`
	MapURL  string `json:"map_url"`
}

type EventContent struct {
	Ceremony  Venue  `json:"ceremony"`
	Reception Venue  `json:"reception"`
	DressCode string `json:"dress_code"`
	Notes     string `json:"notes"`
}

type GiftsContent struct {
	Intro   string `json:"intro"`
	PixNote string `json:"pix_note"`
}

type RSVPContent struct {
	Intro    string `json:"intro"`
	Deadline string `json:"deadline"`
}

func (HomeContent) SectionName() string  { return "home" }
func (StoryContent) SectionName() string { return "story" }
func (EventContent) SectionName() string { return "event" }
func (GiftsContent) SectionName() string { return "gifts" }
func (RSVPContent) SectionName() string  { return "rsvp" }

var sectionFactories = map[string]func() Section{
	"home":  func() Section { return &HomeContent{} },
	"story": func() Section { return &StoryContent{} },
	"event": func() Section { return &EventContent{} },
	"gifts": func() Section { return &GiftsContent{} },
	"rsvp":  func() Section { return &RSVPContent{} },
}

// SectionNames lists the known sections in a stable order.
func SectionNames() []string {
	names := make([]string, 0, len(sectionFactories))
	for n := range sectionFactories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewSection returns the zero value of the named section.
func NewSection(name string) (Section, error) {
	f, ok := sectionFactories[name]
	if !ok {
		return nil, ErrUnknownSection
	}
	return f(), nil
}

// DecodeSection strictly decodes raw into the named section's schema.
// Unknown fields are rejected.
func DecodeSection(name string, raw []byte) (Section, error) {
	s, err := NewSection(name)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(s); err != nil {
		return nil, fmt.Errorf("decode %s content: %w", name, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decode %s content: trailing data", name)
	}
	return s, nil
}
