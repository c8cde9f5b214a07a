package models

import "time"

// Workshop registration states derived from the registration window.
const (
	WorkshopComingSoon = "coming_soon"
	WorkshopOpen       = "open"
	WorkshopClosed     = "closed"
)

// Workshop is a time-bounded event with its own landing page. Only published
// workshops are reachable from the public surface.
type Workshop struct {
	ID                    string    `json:"id" db:"id"`
	Slug                  string    `json:"slug" db:"slug"`
	CodeName              string    `json:"code_name" db:"code_name"`
	Description           string    `json:"description" db:"description"`
	StartDate             time.Time `json:"start_date" db:"start_date"`
	EndDate               time.Time `json:"end_date" db:"end_date"`
	RegistrationStartDate time.Time `json:"registration_start_date" db:"registration_start_date"`
	RegistrationEndDate   time.Time `json:"registration_end_date" db:"registration_end_date"`
	BodyMarkdown          string    `json:"body_markdown" db:"body_markdown"`
	BodyHTML              string    `json:"body_html" db:"body_html"`
	IsOnline              bool      `json:"is_online" db:"is_online"`
	IsPublished           bool      `json:"is_published" db:"is_published"`
	Speakers              []Speaker `json:"speakers,omitempty" db:"-"`
	CreatedAt             time.Time `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time `json:"updated_at" db:"updated_at"`
}

// RegistrationState returns the workshop's registration state at the given time.
func (w Workshop) RegistrationState(now time.Time) string {
	switch {
	case now.Before(w.RegistrationStartDate):
		return WorkshopComingSoon
	case now.After(w.RegistrationEndDate):
		return WorkshopClosed
	default:
		return WorkshopOpen
	}
}

// RenderBody renders BodyMarkdown into BodyHTML.
func (w *Workshop) RenderBody() error {
	html, err := renderMarkdown(w.BodyMarkdown)
	if err != nil {
		return err
	}
	w.BodyHTML = html
	return nil
}

// Speaker presents a workshop speaker. AvatarURL is empty until an image is
// uploaded.
type Speaker struct {
	ID         string    `json:"id" db:"id"`
	FullName   string    `json:"fullname" db:"fullname"`
	Department string    `json:"department" db:"department"`
	University string    `json:"university" db:"university"`
	AvatarURL  string    `json:"avatar_url" db:"avatar_url"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// AvatarOrDefault returns the speaker's avatar URL, falling back to the stock
// image when none was uploaded.
func (s Speaker) AvatarOrDefault(stockURL string) string {
	if s.AvatarURL != "" {
		return s.AvatarURL
	}
	return stockURL
}

// Pricing is a registration tier for a workshop.
type Pricing struct {
	ID            string    `json:"id" db:"id"`
	WorkshopID    string    `json:"workshop_id" db:"workshop_id"`
	Name          string    `json:"name" db:"name"`
	Slug          string    `json:"slug" db:"slug"`
	StripePriceID string    `json:"stripe_price_id" db:"stripe_price_id"`
	Price         float64   `json:"price" db:"price"`
	Currency      string    `json:"currency" db:"currency"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
