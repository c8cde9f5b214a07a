// Package models defines the record types persisted by site-manager.
package models

import "time"

// Publication is a bibliography entry shown on the publications dashboard.
// Duplicates are permitted; there is no uniqueness constraint on any field.
type Publication struct {
	ID            string    `json:"id" db:"id"`
	Title         string    `json:"title" binding:"required" db:"title"`
	Authors       string    `json:"authors" binding:"required" db:"authors"`
	URL           string    `json:"url" binding:"required" db:"url"`
	EntryType     string    `json:"entry_type,omitempty" db:"entry_type"`
	DOI           string    `json:"doi,omitempty" db:"doi"`
	PublishedIn   string    `json:"published_in,omitempty" db:"published_in"`
	Publisher     string    `json:"publisher,omitempty" db:"publisher"`
	Year          string    `json:"year,omitempty" db:"year"`
	Month         string    `json:"month,omitempty" db:"month"`
	Bibtex        string    `json:"bibtex,omitempty" db:"bibtex"`
	IsHighlighted bool      `json:"is_highlighted" db:"is_highlighted"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
