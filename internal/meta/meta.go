// Package meta builds per-page metadata for social sharing tags.
package meta

import "github.com/corticalabs/site-manager/internal/config"

// Tags is the metadata set a page renders into its title, description and
// Open Graph / Twitter card tags.
type Tags struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	URL         string   `json:"url"`
	Image       string   `json:"image"`
	ObjectType  string   `json:"object_type"`
}

// Builder fills page metadata from configured defaults.
type Builder struct {
	defaults config.MetaConfig
}

func NewBuilder(defaults config.MetaConfig) *Builder {
	return &Builder{defaults: defaults}
}

// ForPage merges page overrides with the defaults. Empty fields take the
// default value; page keywords are prepended to the default keywords.
func (b *Builder) ForPage(page Tags) Tags {
	tags := Tags{
		Title:       page.Title,
		Description: page.Description,
		URL:         page.URL,
		Image:       page.Image,
		ObjectType:  page.ObjectType,
	}

	if tags.Title == "" {
		tags.Title = b.defaults.DefaultTitle
	}
	if tags.Description == "" {
		tags.Description = b.defaults.DefaultDescription
	}
	if tags.URL == "" {
		tags.URL = "/"
	}
	if tags.Image == "" {
		tags.Image = b.defaults.DefaultLogoURL
	}
	if tags.ObjectType == "" {
		tags.ObjectType = "website"
	}

	tags.Keywords = append(append([]string{}, page.Keywords...), b.defaults.DefaultKeywords...)

	return tags
}
