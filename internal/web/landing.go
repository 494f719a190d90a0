// Package web renders the static landing page.
package web

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/yuin/goldmark"
)

//go:embed content/index.md
var indexMarkdown []byte

var layout = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
</head>
<body>
<main>
{{.Body}}
</main>
</body>
</html>
`))

// Landing serves the pre-rendered landing page.
type Landing struct {
	page []byte
}

// NewLanding renders the embedded markdown once.
func NewLanding(title string) (*Landing, error) {
	var body bytes.Buffer
	if err := goldmark.Convert(indexMarkdown, &body); err != nil {
		return nil, fmt.Errorf("render landing markdown: %w", err)
	}

	var page bytes.Buffer
	err := layout.Execute(&page, struct {
		Title string
		Body  template.HTML
	}{Title: title, Body: template.HTML(body.String())})
	if err != nil {
		return nil, fmt.Errorf("render landing layout: %w", err)
	}
	return &Landing{page: page.Bytes()}, nil
}

// ServeHTTP writes the rendered page.
func (l *Landing) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(l.page)
}
