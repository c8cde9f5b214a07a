package models

import "time"

// WebsiteSection is a labeled content block placed at a fixed position on the
// site. Handlers treat sections as read-only.
type WebsiteSection struct {
	ID           string    `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	BodyMarkdown string    `json:"body_markdown" db:"body_markdown"`
	BodyHTML     string    `json:"body_html" db:"body_html"`
	PositionID   string    `json:"website_position_id" db:"website_position_id"`
	SectionType  string    `json:"section_type" db:"section_type"`
	ShowInNav    bool      `json:"show_in_nav" db:"show_in_nav"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// NewsPost is a dated announcement. Handlers treat posts as read-only and
// list them newest first.
type NewsPost struct {
	ID           string    `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	BodyMarkdown string    `json:"body_markdown" db:"body_markdown"`
	BodyHTML     string    `json:"body_html" db:"body_html"`
	Description  string    `json:"description" db:"description"`
	PostDate     time.Time `json:"post_date" db:"post_date"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
