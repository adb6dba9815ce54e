// Package testutil holds fakes shared by package tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// PullRequest is a pull request held by FakeGitHub
type PullRequest struct {
	Number int
	Title  string
	Head   string
	Base   string
	Body   string
	Draft  bool
	State  string
}

// FakeGitHub serves the pull request endpoints of the GitHub REST API for one owner
type FakeGitHub struct {
	Server *httptest.Server

	mu      sync.Mutex
	owner   string
	repo    string
	pulls   []*PullRequest
	auth    []string
	queries []string
	writes  int
}

// NewFakeGitHub starts a fake API for owner/repo, closed when the test ends
func NewFakeGitHub(t *testing.T, owner, repo string) *FakeGitHub {
	t.Helper()

	f := &FakeGitHub{owner: owner, repo: repo}
	f.Server = httptest.NewServer(f.router())
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the API root
func (f *FakeGitHub) URL() string {
	return f.Server.URL
}

// Seed adds an open pull request and returns its number
func (f *FakeGitHub) Seed(head, body string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	pr := &PullRequest{
		Number: len(f.pulls) + 1,
		Title:  head,
		Head:   head,
		Base:   "main",
		Body:   body,
		Draft:  true,
		State:  "open",
	}
	f.pulls = append(f.pulls, pr)
	return pr.Number
}

// Pulls returns a copy of every pull request
func (f *FakeGitHub) Pulls() []PullRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]PullRequest, 0, len(f.pulls))
	for _, pr := range f.pulls {
		out = append(out, *pr)
	}
	return out
}

// Writes counts create and update calls
func (f *FakeGitHub) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

// Authorizations returns the Authorization header of every request
func (f *FakeGitHub) Authorizations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.auth...)
}

// Queries returns the raw query of every list request
func (f *FakeGitHub) Queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func (f *FakeGitHub) router() http.Handler {
	r := chi.NewRouter()
	r.Use(f.recordAuth)
	r.Route("/repos/{owner}/{repo}/pulls", func(r chi.Router) {
		r.Use(f.requireRepo)
		r.Get("/", f.list)
		r.Post("/", f.create)
		r.Patch("/{number}", f.edit)
	})
	return r
}

func (f *FakeGitHub) recordAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.auth = append(f.auth, r.Header.Get("Authorization"))
		f.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (f *FakeGitHub) requireRepo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "owner") != f.owner || chi.URLParam(r, "repo") != f.repo {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeGitHub) list(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.queries = append(f.queries, r.URL.RawQuery)
	head := r.URL.Query().Get("head")
	state := r.URL.Query().Get("state")

	out := []map[string]any{}
	for _, pr := range f.pulls {
		if head != "" && f.owner+":"+pr.Head != head {
			continue
		}
		if state != "" && state != "all" && pr.State != state {
			continue
		}
		out = append(out, f.render(pr))
	}
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeGitHub) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
		Head  string `json:"head"`
		Base  string `json:"base"`
		Body  string `json:"body"`
		Draft bool   `json:"draft"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.writes++
	pr := &PullRequest{
		Number: len(f.pulls) + 1,
		Title:  req.Title,
		Head:   req.Head,
		Base:   req.Base,
		Body:   req.Body,
		Draft:  req.Draft,
		State:  "open",
	}
	f.pulls = append(f.pulls, pr)
	writeJSON(w, http.StatusCreated, f.render(pr))
}

func (f *FakeGitHub) edit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Body *string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || number < 1 || number > len(f.pulls) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}

	f.writes++
	pr := f.pulls[number-1]
	if req.Body != nil {
		pr.Body = *req.Body
	}
	writeJSON(w, http.StatusOK, f.render(pr))
}

func (f *FakeGitHub) render(pr *PullRequest) map[string]any {
	return map[string]any{
		"number":   pr.Number,
		"html_url": "https://github.com/" + f.owner + "/" + f.repo + "/pull/" + strconv.Itoa(pr.Number),
		"title":    pr.Title,
		"head":     map[string]any{"ref": pr.Head, "label": f.owner + ":" + pr.Head},
		"base":     map[string]any{"ref": pr.Base},
		"body":     pr.Body,
		"draft":    pr.Draft,
		"state":    pr.State,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
