// Package report renders an assessment result as an HTML email body and a
// plain-text alternative carrying the same facts.
package report

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"ipo-readiness/internal/models"
)

const (
	disclaimer = "This assessment provides an initial evaluation of your IPO readiness and should not be " +
		"considered as financial or legal advice. For comprehensive guidance tailored to your specific " +
		"situation, please consult with our qualified professionals."
	closingFallback  = "Thank you for completing the assessment."
	greetingFallback = "Valued Client"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var funcs = map[string]interface{}{
	"inc": func(i int) int { return i + 1 },
}

var (
	markupTemplate = htmltemplate.Must(
		htmltemplate.New("report.html.tmpl").Funcs(htmltemplate.FuncMap(funcs)).ParseFS(templateFS, "templates/report.html.tmpl"),
	)
	textTemplate = texttemplate.Must(
		texttemplate.New("report.txt.tmpl").Funcs(texttemplate.FuncMap(funcs)).ParseFS(templateFS, "templates/report.txt.tmpl"),
	)
)

// Document is a rendered report ready for the mail transport.
type Document struct {
	Subject string
	HTML    string
	Text    string
}

type view struct {
	UserName   string
	TrackName  string
	Score      string
	Label      string
	Total      int
	Points     []string
	Closing    string
	Contact    models.Contact
	Date       string
	Year       int
	Disclaimer string
}

func newView(content models.ReportContent) view {
	filtered := Filter(content.Track, content.Points)
	points := make([]string, 0, len(filtered))
	for _, p := range filtered {
		points = append(points, p.Text)
	}

	name := strings.TrimSpace(content.UserName)
	if name == "" {
		name = greetingFallback
	}
	closing := strings.TrimSpace(content.Closing)
	if closing == "" {
		closing = closingFallback
	}

	v := view{
		UserName:   name,
		TrackName:  content.Track.DisplayName(),
		Score:      content.Score.FormattedScore(),
		Label:      content.Score.ReadinessLabel,
		Total:      content.Score.TotalWeight,
		Points:     points,
		Closing:    closing,
		Contact:    content.Contact,
		Disclaimer: disclaimer,
	}
	if !content.AssessedAt.IsZero() {
		v.Date = content.AssessedAt.Format("2 January 2006")
		v.Year = content.AssessedAt.Year()
	}
	return v
}

// RenderMarkup renders the HTML body. userName and every other interpolated
// value is escaped for its HTML context.
func RenderMarkup(content models.ReportContent) (string, error) {
	var buf bytes.Buffer
	if err := markupTemplate.Execute(&buf, newView(content)); err != nil {
		return "", fmt.Errorf("render markup: %w", err)
	}
	return buf.String(), nil
}

// RenderText renders the plain-text body with the same sections, in the same order, as the markup.
func RenderText(content models.ReportContent) (string, error) {
	var buf bytes.Buffer
	if err := textTemplate.Execute(&buf, newView(content)); err != nil {
		return "", fmt.Errorf("render text: %w", err)
	}
	return buf.String(), nil
}

// Subject builds the mail subject line.
func Subject(track models.Track, label string) string {
	return fmt.Sprintf("%s IPO Readiness Assessment Report - %s", track.DisplayName(), label)
}

// Render produces the subject and both bodies in one call.
func Render(content models.ReportContent) (Document, error) {
	html, err := RenderMarkup(content)
	if err != nil {
		return Document{}, err
	}
	text, err := RenderText(content)
	if err != nil {
		return Document{}, err
	}
	return Document{
		Subject: Subject(content.Track, content.Score.ReadinessLabel),
		HTML:    html,
		Text:    text,
	}, nil
}
