// Package export produces downloadable postmortem documents from
// committed incidents, as markdown or PDF.
package export

import (
	"bytes"
	"embed"
	"fmt"
	"regexp"
	"strings"
	"text/template"
	"time"

	"github.com/karthiBP/aegis-incidents/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// MarkdownRenderer renders incidents to markdown documents.
type MarkdownRenderer struct {
	tmpl *template.Template
}

// NewMarkdownRenderer creates a renderer and parses the report template.
func NewMarkdownRenderer() (*MarkdownRenderer, error) {
	funcMap := template.FuncMap{
		"title":      titleCase,
		"lower":      strings.ToLower,
		"formatTime": formatTime,
		"orPending":  orPending,
	}

	content, err := templatesFS.ReadFile("templates/report.md.tmpl")
	if err != nil {
		return nil, fmt.Errorf("read report template: %w", err)
	}
	tmpl, err := template.New("report").Funcs(funcMap).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}

	return &MarkdownRenderer{tmpl: tmpl}, nil
}

// Render returns the markdown document for the incident. If the incident
// carries a generated report, that report is the document; otherwise one
// is rendered from the structured fields.
func (r *MarkdownRenderer) Render(incident *domain.Incident) ([]byte, error) {
	if incident.ReportMarkdown != "" {
		return []byte(incident.ReportMarkdown), nil
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, incident); err != nil {
		return nil, fmt.Errorf("execute report template: %w", err)
	}
	return []byte(strings.TrimSpace(buf.String()) + "\n"), nil
}

var slugPattern = regexp.MustCompile(`\s+`)

// Filename builds the download filename for an incident document with the
// given extension, e.g. "db-pool-exhaustion-postmortem.md".
func Filename(incident *domain.Incident, ext string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(incident.Title), "-")
	return fmt.Sprintf("%s-postmortem.%s", slug, ext)
}

// Template functions

var titleCaser = cases.Title(language.English)

func titleCase(s string) string {
	return titleCaser.String(s)
}

func formatTime(t time.Time) string {
	return t.UTC().Format("Jan 2, 2006 15:04 UTC")
}

func orPending(s string) string {
	if s == "" {
		return "_Pending investigation._"
	}
	return s
}
