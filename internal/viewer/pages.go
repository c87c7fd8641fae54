package viewer

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/msalah0e/tripgraph/internal/api"
	"github.com/msalah0e/tripgraph/internal/graphmodel"
	"github.com/msalah0e/tripgraph/internal/nav"
	"github.com/msalah0e/tripgraph/internal/render"
	"github.com/msalah0e/tripgraph/internal/selection"
	"go.uber.org/zap"
)

var pages = template.Must(template.New("layout").Funcs(template.FuncMap{
	"join":    strings.Join,
	"safeCSS": func(s string) template.CSS { return template.CSS(s) },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}} · tripgraph</title>
<style>
body { margin: 0; background: #0a0e17; color: #e0e0e0; font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; }
header { padding: 16px 24px; border-bottom: 1px solid #1e2736; }
header a { color: #2DB682; text-decoration: none; font-weight: bold; }
main { padding: 16px 24px; }
.sub { color: #848484; font-size: 13px; }
.legend span { display: inline-block; margin-right: 14px; font-size: 13px; }
.legend i { display: inline-block; width: 10px; height: 10px; border-radius: 50%; margin-right: 5px; }
.error { color: #E74C3C; }
input[type=text] { width: 420px; padding: 6px; background: #111827; color: #e0e0e0; border: 1px solid #1e2736; }
button { padding: 6px 14px; background: #2DB682; color: #0a0e17; border: 0; font-weight: bold; }
</style>
</head>
<body>
<header><a href="/">tripgraph</a> <span class="sub">{{.Backend}}</span></header>
<main>
{{if eq .Page "index"}}
<h2>Open a graph</h2>
<p class="sub">Enter entity IDs separated by commas, for example hoi_an, quang_nam.</p>
<form action="/open" method="get">
<input type="text" name="ids" autofocus>
<button type="submit">Visualize</button>
</form>
{{else}}
<h2>Visualizing relationships for {{len .IDs}} selected {{if eq (len .IDs) 1}}node{{else}}nodes{{end}}</h2>
{{if .IDs}}<p class="sub">{{join .IDs ", "}}{{if .Model}} · {{len .Model.Order}} nodes · {{len .Model.Edges}} edges{{end}}</p>{{end}}
{{if .Err}}
<p class="error">⚠ {{.Err}}</p>
<p><a href="{{.Retry}}">Retry</a> · <a href="/">Back</a></p>
{{else}}
{{if .Legend}}<p class="legend">{{range .Legend}}<span><i style="background: {{index . 1 | safeCSS}}"></i>{{index . 0}}</span>{{end}}</p>{{end}}
{{.SVG}}
{{if not .IDs}}<p><a href="/">Open a graph</a></p>{{end}}
{{end}}
{{end}}
</main>
</body>
</html>
`))

type pageData struct {
	Page    string
	Title   string
	Backend string
	IDs     []string
	Model   *graphmodel.Model
	SVG     template.HTML
	Legend  [][2]string
	Err     string
	Retry   string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.page(w, http.StatusOK, pageData{Page: "index", Title: "Open a graph"})
}

// handleOpen turns the index form into a graph URL.
func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	ids := nav.IDsFromQuery(r.URL.Query())
	http.Redirect(w, r, nav.GraphURL(selection.New(ids...)), http.StatusSeeOther)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	ids := nav.IDsFromRawQuery(r.URL.RawQuery)
	data := pageData{Page: "graph", Title: "Graph", IDs: ids}

	d, err := s.draw(r.Context(), ids)
	if err != nil {
		data.Err = api.UserMessage(err)
		data.Retry = r.URL.RequestURI()
		s.page(w, statusFor(err), data)
		return
	}
	if !d.model.IsEmpty() {
		data.Model = d.model
	}
	data.SVG = template.HTML(d.markup)
	data.Legend = d.legend
	s.page(w, http.StatusOK, data)
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	d, err := s.draw(r.Context(), nav.IDsFromRawQuery(r.URL.RawQuery))
	if err != nil {
		http.Error(w, api.UserMessage(err), statusFor(err))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write([]byte(d.markup))
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	model, err := s.fetcher.Fetch(r.Context(), nav.IDsFromRawQuery(r.URL.RawQuery))
	if err != nil {
		writeJSON(w, statusFor(err), map[string]string{"error": api.UserMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, model)
}

type drawing struct {
	model  *graphmodel.Model
	markup string
	legend [][2]string
}

// draw fetches the graph for ids and renders its settled layout. An empty
// list renders the placeholder without contacting the backend.
func (s *Server) draw(ctx context.Context, ids []string) (drawing, error) {
	model, err := s.fetcher.Fetch(ctx, ids)
	if err != nil {
		return drawing{}, err
	}

	svg := render.NewSVG(s.cfg.Width, s.cfg.Height)
	rd := render.New(model, s.cfg.Render)
	defer rd.Dispose()
	if err := rd.Mount(svg); err != nil {
		return drawing{}, err
	}
	if err := rd.Settle(ctx, s.cfg.MaxTicks); err != nil {
		if !errors.Is(err, render.ErrNotSettled) {
			return drawing{}, err
		}
		s.logger.Warn("layout did not settle, rendering as is", zap.Int("nodes", len(model.Order)))
	}
	// Dispose releases the surface; the markup is taken before it runs.
	return drawing{model: model, markup: svg.Render(), legend: svg.Legend()}, nil
}

func (s *Server) page(w http.ResponseWriter, status int, data pageData) {
	data.Backend = s.cfg.Backend
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pages.Execute(w, data); err != nil {
		s.logger.Error("render page", zap.String("page", data.Page), zap.Error(err))
	}
}

func statusFor(err error) int {
	switch api.KindOf(err) {
	case api.NetworkFailure, api.DecodeFailure:
		return http.StatusBadGateway
	case api.EmptyInput:
		return http.StatusBadRequest
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
