package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	log "github.com/go-pkgz/lgr"

	"github.com/careerhub/jobboard/app/store"
	"github.com/careerhub/jobboard/app/store/enums"
)

// handleListJobs returns the collection, optionally filtered by a search
// term (title/department substring) and by status. Filtering is a
// convenience derivation, the authoritative collection is the store's.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.store.List()
	if err != nil {
		log.Printf("[ERROR] failed to list jobs: %v", err)
		s.writeJSONError(w, http.StatusInternalServerError, "failed to load jobs")
		return
	}

	query := strings.ToLower(r.URL.Query().Get("q"))
	statusParam := r.URL.Query().Get("status")

	var statusFilter *enums.Status
	if statusParam != "" {
		parsed, err := enums.ParseStatus(statusParam)
		if err != nil {
			s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid status filter %q", statusParam))
			return
		}
		statusFilter = &parsed
	}

	filtered := make([]store.Job, 0, len(jobs))
	for _, job := range jobs {
		if query != "" &&
			!strings.Contains(strings.ToLower(job.Title), query) &&
			!strings.Contains(strings.ToLower(job.Department), query) {
			continue
		}
		if statusFilter != nil && job.Status != *statusFilter {
			continue
		}
		filtered = append(filtered, job)
	}

	s.writeJSON(w, http.StatusOK, filtered)
}

// handleGetJob returns a single posting by id
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.store.Get(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeJSONError(w, http.StatusNotFound, "job not found")
			return
		}
		log.Printf("[ERROR] failed to get job: %v", err)
		s.writeJSONError(w, http.StatusInternalServerError, "failed to load job")
		return
	}
	s.writeJSON(w, http.StatusOK, job)
}

// handleCreateJob creates a posting from a JobInput payload
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var input store.JobInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid payload: %v", err))
		return
	}

	job, err := s.store.Create(input)
	if err != nil {
		log.Printf("[ERROR] failed to create job: %v", err)
		s.writeJSONError(w, http.StatusInternalServerError, "failed to create job")
		return
	}

	s.notifyAsync(func(ctx context.Context) { s.notifier.OnCreated(ctx, job) })
	s.writeJSON(w, http.StatusCreated, job)
}

// handleUpdateJob merges a partial patch over the stored posting
func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	var patch store.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid payload: %v", err))
		return
	}

	job, err := s.store.Update(r.PathValue("id"), patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeJSONError(w, http.StatusNotFound, "job not found")
			return
		}
		log.Printf("[ERROR] failed to update job: %v", err)
		s.writeJSONError(w, http.StatusInternalServerError, "failed to update job")
		return
	}
	s.writeJSON(w, http.StatusOK, job)
}

// handleArchiveJob transitions a posting to the archived state
func (s *Server) handleArchiveJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.store.Archive(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeJSONError(w, http.StatusNotFound, "job not found")
			return
		}
		log.Printf("[ERROR] failed to archive job: %v", err)
		s.writeJSONError(w, http.StatusInternalServerError, "failed to archive job")
		return
	}

	s.notifyAsync(func(ctx context.Context) { s.notifier.OnArchived(ctx, job) })
	s.writeJSON(w, http.StatusOK, job)
}

// handleDeleteJob removes a posting, deleting an unknown id is a no-op
func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.PathValue("id")); err != nil {
		log.Printf("[ERROR] failed to delete job: %v", err)
		s.writeJSONError(w, http.StatusInternalServerError, "failed to delete job")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handlePolishJob rewrites the posting description through the polishing
// collaborator and persists the result. Collaborator failure shows up as an
// unchanged description, never as an error.
func (s *Server) handlePolishJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	job, err := s.store.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeJSONError(w, http.StatusNotFound, "job not found")
			return
		}
		log.Printf("[ERROR] failed to get job for polish: %v", err)
		s.writeJSONError(w, http.StatusInternalServerError, "failed to load job")
		return
	}

	polished := s.polisher.Polish(r.Context(), job.Title, job.Description)
	if polished == job.Description {
		// nothing changed, don't bump updatedAt
		s.writeJSON(w, http.StatusOK, job)
		return
	}

	updated, err := s.store.Update(id, store.Patch{Description: &polished})
	if err != nil {
		log.Printf("[ERROR] failed to save polished description: %v", err)
		s.writeJSONError(w, http.StatusInternalServerError, "failed to save polished description")
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

// handleExport streams the collection as a downloadable dated JSON backup
func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	data, filename, err := s.store.Export()
	if err != nil {
		log.Printf("[ERROR] failed to export jobs: %v", err)
		s.writeJSONError(w, http.StatusInternalServerError, "failed to export jobs")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Printf("[WARN] failed to write export response: %v", err)
	}
}

// handleImport replaces the collection with an uploaded backup
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "failed to read payload")
		return
	}

	if err := s.store.Import(data); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"result": "imported"})
}

// handleReset clears the storage slot, the next list call re-seeds
func (s *Server) handleReset(w http.ResponseWriter, _ *http.Request) {
	if err := s.store.Reset(); err != nil {
		log.Printf("[ERROR] failed to reset store: %v", err)
		s.writeJSONError(w, http.StatusInternalServerError, "failed to reset store")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"result": "reset"})
}

// notifyAsync runs the notification callback detached from the request,
// a slow destination must never delay the API response
func (s *Server) notifyAsync(fn func(ctx context.Context)) {
	if s.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()
		fn(ctx)
	}()
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[WARN] failed to encode JSON response: %v", err)
	}
}

// writeJSONError writes a JSON error response
func (s *Server) writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]string{"error": message}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("[WARN] failed to encode JSON error response: %v", err)
	}
}
