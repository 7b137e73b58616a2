package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/adamancini/neosearch/internal/catalog"
	"github.com/adamancini/neosearch/internal/config"
	"github.com/adamancini/neosearch/internal/pager"
	"github.com/adamancini/neosearch/internal/search"
)

// RepositoryRequest is the request body for adding or deleting a repository.
type RepositoryRequest struct {
	Path string `json:"path"`
}

// MessageResponse is the response for successful mutations.
type MessageResponse struct {
	Message string `json:"message"`
}

// ListResponse is the response for listing repositories.
type ListResponse struct {
	Repositories []string `json:"repositories"`
	LocalFiles   []string `json:"local_files"`
	URLs         []string `json:"urls"`
}

// SearchResponse is the response for a search. Page and TotalPages are
// omitted when the request did not ask for a page.
type SearchResponse struct {
	Results    []catalog.Entry `json:"results"`
	Total      int             `json:"total"`
	Page       int             `json:"page,omitempty"`
	TotalPages int             `json:"total_pages,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeRepositoryRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req RepositoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return "", false
	}
	path := strings.TrimSpace(req.Path)
	if path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return "", false
	}
	return path, true
}

func (s *Server) addRepository(w http.ResponseWriter, r *http.Request) {
	path, ok := decodeRepositoryRequest(w, r)
	if !ok {
		return
	}

	if err := s.updateConfig(r, func(c *config.Config) error { return c.Add(path) }); err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Repository added successfully."})
}

func (s *Server) deleteRepository(w http.ResponseWriter, r *http.Request) {
	path, ok := decodeRepositoryRequest(w, r)
	if !ok {
		return
	}

	if err := s.updateConfig(r, func(c *config.Config) error { return c.Remove(path) }); err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Repository deleted successfully."})
}

// updateConfig applies fn to the config file and reloads the store. The
// whole sequence holds writeMu so concurrent requests never overwrite each
// other's edits.
func (s *Server) updateConfig(r *http.Request, fn func(*config.Config) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, err := config.Update(s.configPath, fn); err != nil {
		return err
	}
	if err := s.Reload(r.Context()); err != nil {
		s.logger.Error("reload failed", "err", err)
	}
	return nil
}

func (s *Server) listRepositories(w http.ResponseWriter, r *http.Request) {
	cfg, err := config.Load(s.configPath)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ListResponse{
		Repositories: cfg.Repositories(),
		LocalFiles:   cfg.LocalFiles,
		URLs:         cfg.URLs,
	})
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	criteria := search.Criteria{
		Keyword:    q.Get("keyword"),
		Field:      q.Get("field"),
		Repository: q.Get("repository"),
	}

	page, err := positiveParam(q.Get("page"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "page must be a positive integer")
		return
	}
	perPage, err := positiveParam(q.Get("per_page"), s.perPage)
	if err != nil {
		writeError(w, http.StatusBadRequest, "per_page must be a positive integer")
		return
	}

	_, store := s.snapshot()
	results := search.Apply(store.Entries(), criteria)

	resp := SearchResponse{Results: results, Total: len(results)}
	if page > 0 {
		resp.Results = pager.Slice(results, page, perPage)
		if resp.Results == nil {
			resp.Results = []catalog.Entry{}
		}
		resp.Page = page
		resp.TotalPages = pager.TotalPages(len(results), perPage)
	}
	writeJSON(w, http.StatusOK, resp)
}

// positiveParam parses an optional positive integer query parameter.
func positiveParam(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, strconv.ErrSyntax
	}
	return n, nil
}

// statusFor maps an application error code to an HTTP status.
func statusFor(err error) int {
	switch catalog.ErrorCode(err) {
	case catalog.ENOTFOUND:
		return http.StatusNotFound
	case catalog.ECONFLICT, catalog.EINVALIDINPUT:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeAppError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), catalog.ErrorMessage(err))
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
