package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/onexay/gitobs/internal/repo"
	"github.com/onexay/gitobs/internal/types"
)

const headerAuthorName = "X-Author-Name"

// Handler builds the REST routes for the service.
func Handler(svc *Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/swagger") {
			svc.handleSwagger(w, r, strings.TrimPrefix(r.URL.Path, "/swagger"))
			return
		}

		path := strings.TrimPrefix(r.URL.Path, "/api/v1")
		if path == "" || path == "/" {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown endpoint"})
			return
		}

		switch {
		case strings.HasPrefix(path, "/branches"):
			svc.handleBranches(w, r, strings.TrimPrefix(path, "/branches"))
		case path == "/commits":
			svc.handleCommits(w, r)
		case path == "/merges":
			svc.handleMerges(w, r)
		case path == "/compare":
			svc.handleCompare(w, r)
		case strings.HasPrefix(path, "/webhooks"):
			svc.handleWebHooks(w, r, strings.TrimPrefix(path, "/webhooks"))
		default:
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown resource"})
		}
	})
}

func (s *Service) handleBranches(w http.ResponseWriter, r *http.Request, tail string) {
	tail = strings.TrimPrefix(tail, "/")
	switch {
	case tail == "" && r.Method == http.MethodGet:
		branches, err := s.Branches()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, branches)
	case tail == "" && r.Method == http.MethodPost:
		var req struct {
			Source string `json:"source"`
			Name   string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		branch, err := s.CreateBranch(req.Source, req.Name)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, branch)
	case r.Method == http.MethodGet:
		branch, commits, err := s.Branch(tail)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"branch":  branch,
			"commits": commits,
		})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (s *Service) handleCommits(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	author, err := authorFromHeaders(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	var req struct {
		Branch  string   `json:"branch"`
		Changes []string `json:"changes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}

	commit, err := s.Commit(req.Branch, author, req.Changes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"branch": req.Branch,
		"commit": commit,
	})
}

func (s *Service) handleMerges(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Source string `json:"source"`
		Target string `json:"target"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}

	branch, err := s.Merge(req.Source, req.Target)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, branch)
}

func (s *Service) handleCompare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	query := r.URL.Query()
	source, target := query.Get("source"), query.Get("target")
	diff, err := s.Compare(source, target)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"source":    source,
		"target":    target,
		"identical": diff == "",
		"diff":      diff,
	})
}

func (s *Service) handleWebHooks(w http.ResponseWriter, r *http.Request, tail string) {
	tail = strings.Trim(tail, "/")
	id, sub, _ := strings.Cut(tail, "/")

	switch {
	case id == "" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, s.WebHooks())
	case id == "" && r.Method == http.MethodPost:
		var req struct {
			Branch string `json:"branch"`
			Event  string `json:"event"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		hook, err := s.AddWebHook(req.Branch, req.Event)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, hook.Model())
	case r.Method != http.MethodGet:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	case sub == "":
		hook, err := s.WebHook(id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, hook.Model())
	case sub == "events":
		hook, err := s.WebHook(id)
		if err != nil {
			writeError(w, err)
			return
		}
		caught := hook.CaughtEvents()
		events := make([]types.Event, 0, len(caught))
		for _, ev := range caught {
			events = append(events, ev.Model())
		}
		writeJSON(w, http.StatusOK, events)
	case sub == "deliveries":
		deliveries, err := s.Deliveries(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, deliveries)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown resource"})
	}
}

func authorFromHeaders(r *http.Request) (string, error) {
	name := strings.TrimSpace(r.Header.Get(headerAuthorName))
	if name == "" {
		return "", fmt.Errorf("%s header is required", headerAuthorName)
	}
	return name, nil
}

func writeError(w http.ResponseWriter, err error) {
	var notFound *repo.NotFoundError
	if errors.As(err, &notFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": notFound.Error()})
		return
	}

	var hookNotFound *HookNotFoundError
	if errors.As(err, &hookNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": hookNotFound.Error()})
		return
	}

	var conflict *repo.ConflictError
	if errors.As(err, &conflict) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": conflict.Error()})
		return
	}

	var validation *ValidationError
	if errors.As(err, &validation) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": validation.Error()})
		return
	}

	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
