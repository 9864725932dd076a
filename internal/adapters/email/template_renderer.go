package email

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"conferencereg/internal/domain"
)

//go:embed templates/*
var templateFS embed.FS

// Every template named X has X_subject.txt and X.html. X.txt is optional; without it
// the mailer derives the plain-text part from the HTML.
var (
	htmlTemplates = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/*.html"))
	textTemplates = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/*.txt"))
)

type templateRenderer struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

// NewTemplateRenderer returns an EmailTemplateRenderer over the embedded templates.
func NewTemplateRenderer() domain.EmailTemplateRenderer {
	return &templateRenderer{html: htmlTemplates, text: textTemplates}
}

func (r *templateRenderer) Render(name string, data any) (subject, htmlBody, textBody string, err error) {
	subjectTmpl := r.text.Lookup(name + "_subject.txt")
	htmlTmpl := r.html.Lookup(name + ".html")
	if subjectTmpl == nil || htmlTmpl == nil {
		return "", "", "", fmt.Errorf("email template %q not found", name)
	}

	var buf bytes.Buffer
	if err := subjectTmpl.Execute(&buf, data); err != nil {
		return "", "", "", fmt.Errorf("render subject: %w", err)
	}
	subject = strings.TrimSpace(buf.String())

	buf.Reset()
	if err := htmlTmpl.Execute(&buf, data); err != nil {
		return "", "", "", fmt.Errorf("render html: %w", err)
	}
	htmlBody = buf.String()

	if textTmpl := r.text.Lookup(name + ".txt"); textTmpl != nil {
		buf.Reset()
		if err := textTmpl.Execute(&buf, data); err != nil {
			return "", "", "", fmt.Errorf("render text: %w", err)
		}
		textBody = buf.String()
	}
	return subject, htmlBody, textBody, nil
}
