package models

import (
	"strings"
	"time"
)

// DocumentationLink tracks one published documentation version mirrored from
// the remote docs repository. The cached fragments (intro, gallery, tutorials)
// are only trusted for display once IsUpdated is true; sync is eventually
// consistent, so a record can hold stale or partially refreshed fragments
// while a background refresh is running.
type DocumentationLink struct {
	ID        string          `json:"id" db:"id"`
	Version   string          `json:"version" db:"version"`
	URL       string          `json:"url" db:"url"`
	Displayed bool            `json:"displayed" db:"displayed"`
	IsUpdated bool            `json:"is_updated" db:"is_updated"`
	Intro     IntroFragments  `json:"intro" db:"intro"`
	Gallery   []Example       `json:"gallery" db:"gallery"`
	Tutorials []ExampleGroup  `json:"tutorials" db:"tutorials"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// IsDev reports whether the version is a development snapshot. Development
// versions are excluded when resolving the latest release.
func (d DocumentationLink) IsDev() bool {
	return strings.Contains(d.Version, "dev")
}

// IntroFragments holds the three cached intro page fragments as rendered HTML.
type IntroFragments struct {
	Text          string `json:"text"`
	Announcements string `json:"announcements"`
	Highlights    string `json:"highlights"`
}

// Empty reports whether no intro fragment was extracted.
func (f IntroFragments) Empty() bool {
	return f.Text == "" && f.Announcements == "" && f.Highlights == ""
}

// Example is one documentation example with its extracted presentation data.
type Example struct {
	Title       string   `json:"title"`
	Link        string   `json:"link"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
}

// ExampleGroup is a titled section of the tutorial index. A group that yielded
// no examples is kept in the output with Valid set to false.
type ExampleGroup struct {
	Title    string         `json:"title"`
	Valid    bool           `json:"valid"`
	Examples []Example      `json:"examples"`
	Groups   []ExampleGroup `json:"groups,omitempty"`
}
