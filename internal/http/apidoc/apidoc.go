// Package apidoc reflects the request and response types declared by the HTTP
// handlers into an OpenAPI 3.0 document and serves it together with a
// browsable docs page.
package apidoc

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"sync"

	"github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

const sessionScheme = "sessionCookie"

// Route describes one operation. Request and the Responses values are sample
// values of the payload types (typically new(dto.X)); a nil response body
// documents a status without content.
type Route struct {
	Method      string
	Path        string
	Namespace   string
	OperationID string
	Summary     string
	Request     any
	// CookieAuth marks operations that read the session cookie.
	CookieAuth bool
	Responses  map[int]any
}

// Namespace groups routes under a tag, as the docs page shows them.
type Namespace struct {
	Name        string
	Description string
}

// Spec collects namespaces and routes and renders them lazily.
type Spec struct {
	title      string
	version    string
	cookieName string

	mu         sync.Mutex
	namespaces []Namespace
	routes     []Route
	doc        []byte
}

// New creates an empty document. cookieName names the session cookie in the security scheme.
func New(title, version, cookieName string) *Spec {
	return &Spec{title: title, version: version, cookieName: cookieName}
}

// AddNamespace registers a tag.
func (s *Spec) AddNamespace(ns Namespace) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.namespaces = append(s.namespaces, ns)
	s.doc = nil
}

// AddRoutes registers operations.
func (s *Spec) AddRoutes(routes ...Route) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes = append(s.routes, routes...)
	s.doc = nil
}

// Document returns the rendered OpenAPI JSON.
func (s *Spec) Document() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		doc, err := s.build()
		if err != nil {
			return nil, err
		}
		s.doc = doc
	}
	return s.doc, nil
}

func (s *Spec) build() ([]byte, error) {
	r := openapi3.NewReflector()
	r.Spec = &openapi3.Spec{Openapi: "3.0.3"}
	r.Spec.Info.WithTitle(s.title).WithVersion(s.version)

	for _, ns := range s.namespaces {
		tag := openapi3.Tag{Name: ns.Name}
		tag.WithDescription(ns.Description)
		r.Spec.Tags = append(r.Spec.Tags, tag)
	}

	secured := false
	for _, rt := range s.routes {
		oc, err := r.NewOperationContext(rt.Method, rt.Path)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", rt.Method, rt.Path, err)
		}
		oc.SetID(rt.OperationID)
		oc.SetSummary(rt.Summary)
		oc.SetTags(rt.Namespace)
		if rt.Request != nil {
			oc.AddReqStructure(rt.Request)
		}
		for _, code := range statusCodes(rt.Responses) {
			oc.AddRespStructure(rt.Responses[code], openapi.WithHTTPStatus(code))
		}
		if rt.CookieAuth {
			oc.AddSecurity(sessionScheme)
			secured = true
		}
		if err := r.AddOperation(oc); err != nil {
			return nil, fmt.Errorf("%s %s: %w", rt.Method, rt.Path, err)
		}
	}

	if secured {
		r.Spec.SetAPIKeySecurity(sessionScheme, s.cookieName, openapi.InCookie, "Session cookie issued by POST /auth/login")
	}
	return json.MarshalIndent(r.Spec, "", "  ")
}

func statusCodes(in map[int]any) []int {
	codes := make([]int, 0, len(in))
	for code := range in {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}

// Register serves the JSON document and the docs page.
func (s *Spec) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /swagger.json", s.handleJSON)
	mux.HandleFunc("GET /docs", s.handlePage)
}

func (s *Spec) handleJSON(w http.ResponseWriter, r *http.Request) {
	doc, err := s.Document()
	if err != nil {
		http.Error(w, "failed to render api document", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(doc)
}

var pageTmpl = template.Must(template.New("docs").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
<script>
window.ui = SwaggerUIBundle({url: "{{.SpecURL}}", dom_id: "#swagger-ui", withCredentials: true});
</script>
</body>
</html>
`))

func (s *Spec) handlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = pageTmpl.Execute(w, struct {
		Title   string
		SpecURL string
	}{Title: s.title, SpecURL: "/swagger.json"})
}
