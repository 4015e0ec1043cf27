package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/dharsanguruparan/CreativeBrief/internal/export"
	"github.com/dharsanguruparan/CreativeBrief/internal/navigation"
	"github.com/dharsanguruparan/CreativeBrief/internal/repository"
	"github.com/dharsanguruparan/CreativeBrief/internal/session"
	"github.com/dharsanguruparan/CreativeBrief/internal/signing"
)

// maxJSONBody bounds answer and email request bodies.
const maxJSONBody = 64 << 10

var errNotCompleted = errors.New("questionnaire not completed")

func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	qs := s.nav.Catalog().Questions()
	out := make([]questionView, len(qs))
	for i, q := range qs {
		out[i] = newQuestionView(q)
	}
	respondJSON(w, http.StatusOK, map[string]any{"questions": out})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	fs := session.New()
	s.sessions.Save(fs)
	respondJSON(w, http.StatusCreated, newStepView(fs.ID, s.nav.Step(fs)))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var view stepView
	err := s.sessions.View(id, func(fs *session.FormSession) {
		view = newStepView(fs.ID, s.nav.Step(fs))
	})
	if err != nil {
		respondTransitionError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// transition runs fn under the session lock and renders the resulting step.
func (s *Server) transition(w http.ResponseWriter, r *http.Request, fn func(*session.FormSession) error) {
	id := mux.Vars(r)["id"]
	var view stepView
	err := s.sessions.Update(id, func(fs *session.FormSession) error {
		err := fn(fs)
		view = newStepView(fs.ID, s.nav.Step(fs))
		return err
	})
	if err != nil {
		respondTransitionError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Answer session.Answer `json:"answer"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.transition(w, r, func(fs *session.FormSession) error {
		return s.nav.Answer(r.Context(), fs, req.Answer)
	})
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	// Reject unknown sessions before reading a potentially large body.
	if err := s.sessions.View(id, func(*session.FormSession) {}); err != nil {
		respondTransitionError(w, r, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	batch, err := readUploads(r)
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		s.transition(w, r, func(fs *session.FormSession) error {
			return s.nav.RejectOversized(fs, maxErr.Limit)
		})
		return
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer batch.Close()
	files, err := batch.Files()
	if err != nil {
		log.Printf("session %s: %v", id, err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.transition(w, r, func(fs *session.FormSession) error {
		return s.nav.Upload(r.Context(), fs, files)
	})
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.nav.Retreat)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := mux.Vars(r)["id"]
	var (
		view stepView
		done *navigation.Completion
	)
	err := s.sessions.Update(id, func(fs *session.FormSession) error {
		var err error
		done, err = s.nav.SubmitEmail(r.Context(), fs, req.Email)
		view = newStepView(fs.ID, s.nav.Step(fs))
		return err
	})
	if err != nil {
		respondTransitionError(w, r, err)
		return
	}
	s.recordDelivery(r, id, done)

	query, expires := s.signer.Query(id, s.cfg.SignedURLTTL)
	delivery := "sent"
	switch {
	case !done.Delivered:
		delivery = "failed"
	case s.queued:
		delivery = "queued"
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"session":      view,
		"delivery":     delivery,
		"email":        *done.Document.Metadata.UserEmail,
		"download_url": fmt.Sprintf("/sessions/%s/export?%s", id, query.Encode()),
		"expires":      expires.Unix(),
		"filename":     export.Filename(id),
	})
}

// recordDelivery updates the archived submission. A queued email is recorded
// by the worker once it runs, so only an enqueue failure is written here.
func (s *Server) recordDelivery(r *http.Request, id string, done *navigation.Completion) {
	if s.archive == nil || (s.queued && done.Delivered) {
		return
	}
	var err error
	if done.Delivered {
		err = s.archive.MarkSent(r.Context(), id)
	} else {
		err = s.archive.MarkFailed(r.Context(), id, done.DeliveryErr.Error())
	}
	if err != nil {
		log.Printf("record delivery for %s: %v", id, err)
	}
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := s.sessions.Get(id); err != nil {
		respondTransitionError(w, r, err)
		return
	}
	s.sessions.Delete(id)
	fresh := s.nav.Reset()
	s.sessions.Save(fresh)
	respondJSON(w, http.StatusCreated, newStepView(fresh.ID, s.nav.Step(fresh)))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	q := r.URL.Query()
	if err := s.signer.Validate(id, q.Get("expires"), q.Get("signature")); err != nil {
		if errors.Is(err, signing.ErrExpired) {
			respondError(w, http.StatusGone, "download link expired")
			return
		}
		respondError(w, http.StatusForbidden, "invalid download link")
		return
	}
	data, err := s.exportData(r, id)
	if err != nil {
		respondTransitionError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(id)))
	http.ServeContent(w, r, export.Filename(id), time.Time{}, bytes.NewReader(data))
}

// exportData renders a live completed session, falling back to the archive
// when the session is no longer in memory.
func (s *Server) exportData(r *http.Request, id string) ([]byte, error) {
	fs, err := s.sessions.Get(id)
	if errors.Is(err, session.ErrNotFound) && s.archive != nil {
		sub, aerr := s.archive.Get(r.Context(), id)
		if aerr != nil {
			if errors.Is(aerr, repository.ErrNotFound) {
				return nil, session.ErrNotFound
			}
			return nil, aerr
		}
		return sub.Document, nil
	}
	if err != nil {
		return nil, err
	}
	if !fs.Completed {
		return nil, errNotCompleted
	}
	_, data, err := s.nav.Export(fs)
	return data, err
}

func (s *Server) handleSubmission(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		respondError(w, http.StatusNotFound, "submission archive not configured")
		return
	}
	sub, err := s.archive.Get(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, repository.ErrNotFound) {
		respondError(w, http.StatusNotFound, "submission not found")
		return
	}
	if err != nil {
		log.Printf("load submission: %v", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, sub)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
