package models

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
)

func renderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// RenderBody renders BodyMarkdown into BodyHTML.
func (s *WebsiteSection) RenderBody() error {
	html, err := renderMarkdown(s.BodyMarkdown)
	if err != nil {
		return err
	}
	s.BodyHTML = html
	return nil
}

// RenderBody renders BodyMarkdown into BodyHTML.
func (p *NewsPost) RenderBody() error {
	html, err := renderMarkdown(p.BodyMarkdown)
	if err != nil {
		return err
	}
	p.BodyHTML = html
	return nil
}
