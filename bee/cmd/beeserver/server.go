package main

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cespare/spellingbee/bee"
	"github.com/dustin/go-humanize"
	"github.com/felixge/fgprof"
	"github.com/go-chi/chi/v4"
	"github.com/google/uuid"
	"github.com/ua-parser/uap-go/uaparser"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	//go:embed index.html
	indexHTML string
	//go:embed about.md
	aboutMarkdown []byte
)

// solverState is the current index, or the reason there isn't one.
type solverState struct {
	solver *bee.Solver
	err    error
}

type server struct {
	load  func() (*bee.Index, error)
	state atomic.Pointer[solverState]

	ua    *uaparser.Parser
	tmpl  *template.Template
	about template.HTML
}

func newServer(load func() (*bee.Index, error)) (*server, error) {
	s := &server{
		load: load,
		ua:   uaparser.NewFromSaved(),
	}
	funcs := template.FuncMap{
		"comma": func(n int) string { return humanize.Comma(int64(n)) },
	}
	tmpl, err := template.New("index").Funcs(funcs).Parse(indexHTML)
	if err != nil {
		return nil, err
	}
	s.tmpl = tmpl
	var buf bytes.Buffer
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert(aboutMarkdown, &buf); err != nil {
		return nil, fmt.Errorf("error rendering about page: %s", err)
	}
	s.about = template.HTML(buf.String())
	s.state.Store(&solverState{err: new(bee.IndexMissingError)})
	return s, nil
}

// reload loads the index again and swaps in a solver (with a new cache)
// for it. If loading fails, a previously loaded index stays in use.
func (s *server) reload() {
	start := time.Now()
	idx, err := s.load()
	if err != nil {
		log.Printf("Error loading word index: %s", err)
		if old := s.state.Load(); old.solver == nil {
			s.state.Store(&solverState{err: err})
		}
		return
	}
	s.state.Store(&solverState{
		solver: bee.NewSolver(idx, bee.NewCache(idx)),
	})
	log.Printf("Loaded %s words in %s", humanize.Comma(int64(idx.Len())), time.Since(start).Round(time.Millisecond))
}

func (s *server) handler() http.Handler {
	r := chi.NewRouter()
	r.Use(withRequestID, withCORS)
	r.Get("/", s.handleIndex)
	r.Post("/", s.handleIndex)
	r.Get("/api/solve", s.handleAPISolve)
	r.Get("/about", s.handleAbout)
	r.Handle("/debug/fgprof", fgprof.Handler())
	return r
}

type ctxKey int

const requestIDKey ctxKey = 0

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		next.ServeHTTP(w, r)
	})
}

func logf(r *http.Request, format string, args ...any) {
	id, _ := r.Context().Value(requestIDKey).(string)
	if id == "" {
		id = "no_request_id"
	}
	log.Printf("[%s] "+format, append([]any{id}, args...)...)
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// solve runs q and logs the outcome. source says where the query came
// from (form, URL, or API).
func (s *server) solve(r *http.Request, source string, q bee.Query) (bee.Solution, error) {
	ip := remoteIP(r)
	browser := s.ua.ParseUserAgent(r.UserAgent()).Family
	logf(r, "%s request - IP: %s, Browser: %s, Mandatory: %s, Allowed: %s, Show All Words: %t",
		source, ip, browser, q.Mandatory, q.Allowed, !q.PuzzleOnly)

	st := s.state.Load()
	var sol bee.Solution
	_, err := bee.ParsePuzzle(q.Mandatory, q.Allowed)
	if err == nil {
		if st.solver == nil {
			err = st.err
		} else {
			sol, err = st.solver.Solve(q)
		}
	}
	switch {
	case isInputError(err):
		logf(r, "Invalid submission - IP: %s, Error: %s, Mandatory: %s, Allowed: %s",
			ip, err, q.Mandatory, q.Allowed)
	case err != nil:
		logf(r, "Index error - IP: %s, Error: %s", ip, err)
	default:
		logf(r, "Successful search - IP: %s, Words Found: %d, Pangrams Found: %d",
			ip, len(sol.Words), len(sol.Pangrams))
	}
	return sol, err
}

func isInputError(err error) bool {
	return errors.Is(err, bee.ErrInvalidMandatory) || errors.Is(err, bee.ErrInvalidAllowed)
}

type page struct {
	Mandatory string
	Allowed   string
	AllWords  bool
	Error     string
	Solved    bool
	Solution  bee.Solution
	IndexSize int
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var p page
	var source string
	switch r.Method {
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		source = "Form"
		p.Mandatory = r.PostForm.Get("mandatory")
		p.Allowed = r.PostForm.Get("allowed")
		p.AllWords = r.PostForm.Get("all_words") != ""
	default:
		source = "URL"
		query := r.URL.Query()
		p.Mandatory = query.Get("mandatory")
		p.Allowed = query.Get("allowed")
		p.AllWords = parseBool(query.Get("all-words"))
	}
	p.Mandatory = strings.ToLower(strings.TrimSpace(p.Mandatory))
	p.Allowed = strings.ToLower(strings.TrimSpace(p.Allowed))

	// A bare GET shows the empty form.
	if source == "Form" || p.Mandatory != "" || p.Allowed != "" {
		q := bee.Query{
			Mandatory:  p.Mandatory,
			Allowed:    p.Allowed,
			PuzzleOnly: !p.AllWords,
		}
		sol, err := s.solve(r, source, q)
		if err != nil {
			p.Error = err.Error()
		} else {
			p.Solved = true
			p.Solution = sol
		}
	}
	if st := s.state.Load(); st.solver != nil {
		p.IndexSize = st.solver.Index().Len()
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, p); err != nil {
		logf(r, "Error rendering page: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

type apiError struct {
	Error string `json:"error"`
}

func (s *server) handleAPISolve(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := bee.Query{
		Mandatory:  query.Get("mandatory"),
		Allowed:    query.Get("allowed"),
		PuzzleOnly: !parseBool(query.Get("all-words")),
	}
	sol, err := s.solve(r, "API", q)
	var resp any
	status := http.StatusOK
	switch {
	case isInputError(err):
		status = http.StatusBadRequest
		resp = apiError{err.Error()}
	case err != nil:
		status = http.StatusServiceUnavailable
		resp = apiError{err.Error()}
	default:
		sol.Words = nonNil(sol.Words)
		sol.Pangrams = nonNil(sol.Pangrams)
		resp = sol
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logf(r, "Error writing response: %s", err)
	}
}

// nonNil makes empty results encode as [] rather than null.
func nonNil(results []bee.Result) []bee.Result {
	if results == nil {
		return []bee.Result{}
	}
	return results
}

func (s *server) handleAbout(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<!DOCTYPE html>\n<html><head><title>About the Spelling Bee Solver</title></head><body>\n%s</body></html>\n", s.about)
}
