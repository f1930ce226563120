// Package server serves the web dashboard: subscriptions overview, live
// mention scans, and per-ticker analysis.
package server

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/aazamm/stockfeed/internal/report"
	"github.com/aazamm/stockfeed/internal/scan"
	"github.com/aazamm/stockfeed/internal/stock"
	"github.com/aazamm/stockfeed/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var md = goldmark.New()

// Server is the HTTP server for the dashboard.
type Server struct {
	db     *store.DB
	runner *scan.Runner
	pages  map[string]*template.Template
	mux    *http.ServeMux
}

// New creates a new Server.
func New(db *store.DB, runner *scan.Runner) (*Server, error) {
	funcMap := template.FuncMap{
		"markdown": renderMarkdown,
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}

	// Parse base template first
	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// For each page template, clone the base and parse the page into the clone.
	// This gives each page its own {{define "content"}} and {{define "title"}}.
	pageNames := []string{"index.html", "scan.html", "analyze.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		_, err = clone.ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{db: db, runner: runner, pages: pages, mux: http.NewServeMux()}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	// Static files
	staticSub, _ := fs.Sub(staticFS, "static")
	s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	// Routes
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/scan", s.handleScan)
	s.mux.HandleFunc("/analyze/", s.handleAnalyze)
	s.mux.HandleFunc("/healthz", s.handleHealth)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	feeds, err := s.db.ListFeeds()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	investments, err := s.db.ListInvestments()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.render(w, "index.html", map[string]any{
		"Feeds":       feeds,
		"Investments": investments,
	})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	result, err := s.runner.Scan(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, scan.ErrNoInvestments):
			s.render(w, "scan.html", map[string]any{
				"Message": "No investments tracked yet. Add one with 'stockfeed stock add <ticker>'.",
			})
		case errors.Is(err, scan.ErrNoFeeds):
			s.render(w, "scan.html", map[string]any{
				"Message": "No feeds subscribed yet. Add one with 'stockfeed add <url>'.",
			})
		default:
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	s.render(w, "scan.html", map[string]any{
		"ArticlesScanned": result.ArticlesScanned,
		"MentionCount":    len(result.Mentions),
		"FeedErrors":      result.FeedErrors,
		"Digest":          report.ScanDigestMarkdown(result.Mentions),
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ticker := strings.TrimPrefix(r.URL.Path, "/analyze/")
	if ticker == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	ticker = strings.ToUpper(ticker)
	data := map[string]any{"Ticker": ticker}

	result, err := s.runner.Analyze(r.Context(), ticker)
	switch {
	case errors.Is(err, scan.ErrNotTracked):
		data["Message"] = fmt.Sprintf("Ticker %s is not being tracked.", ticker)
		s.render(w, "analyze.html", data)
		return
	case errors.Is(err, scan.ErrNoFeeds):
		data["Message"] = "No feeds to scan."
	case err != nil:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if result != nil {
		if result.HistoryErr != nil {
			data["HistoryError"] = result.HistoryErr.Error()
		}
		data["Prices"] = lastPrices(result.Prices, 5)
		if len(result.Correlations) > 0 {
			data["Report"] = report.CorrelationTableMarkdown(result.Correlations)
		} else if err == nil {
			data["Message"] = fmt.Sprintf("No recent news mentions found for %s.", ticker)
		}
	}

	s.render(w, "analyze.html", data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "ok")
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Printf("Template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
	}
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

func lastPrices(prices []stock.DailyPrice, n int) []stock.DailyPrice {
	if len(prices) <= n {
		return prices
	}
	return prices[len(prices)-n:]
}

// Serve starts the HTTP server on the given port.
func Serve(db *store.DB, runner *scan.Runner, port int) error {
	s, err := New(db, runner)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	log.Printf("Server listening on http://%s", addr)
	return srv.ListenAndServe()
}
