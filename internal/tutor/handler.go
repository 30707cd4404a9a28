package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ayush/science-tutor/internal/auth"
	"github.com/ayush/science-tutor/internal/conversation"
	"github.com/ayush/science-tutor/internal/logger"
	"github.com/ayush/science-tutor/internal/models"
	"github.com/ayush/science-tutor/internal/store"
)

const (
	actionResearchPlan      = "research-plan"
	actionExperimentReport  = "experiment-report"
	actionCompetitionSearch = "competition-search"
)

// OutcomeStats reports how often each component fell back.
type OutcomeStats interface {
	FallbackRate(ctx context.Context) (map[string][2]int, error)
}

// Handler serves /api/tutor.
type Handler struct {
	sessions *Registry
	docs     DocumentStore
	files    FileStore
	stats    OutcomeStats
	validate *validator.Validate
	logger   *zap.Logger
}

func NewHandler(sessions *Registry, docs DocumentStore, files FileStore, stats OutcomeStats, l *zap.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		docs:     docs,
		files:    files,
		stats:    stats,
		validate: validator.New(),
		logger:   logger.Component(l, "tutor"),
	}
}

// Routes mounts the tutor endpoints on r. Callers add authentication.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/session", h.Session)
	r.Post("/session/messages", h.SubmitTurn)
	r.Post("/session/actions/{action}", h.Action)
	r.Delete("/session/document", h.CloseDocument)
	r.Post("/session/reset", h.Reset)

	r.Get("/documents", h.ListDocuments)
	r.Get("/documents/{id}", h.GetDocument)
	r.Get("/documents/{id}/html", h.DocumentHTML)
	r.Delete("/documents/{id}", h.DeleteDocument)

	r.Get("/outcomes", h.Outcomes)
}

func (h *Handler) controller(r *http.Request) *conversation.Controller {
	return h.sessions.Get(auth.UserID(r.Context()))
}

// Session returns the current snapshot.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.controller(r).Snapshot())
}

// SubmitTurn accepts a user message. The reply arrives in later snapshots.
func (h *Handler) SubmitTurn(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitTurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "text is required and must be at most 4000 characters")
		return
	}

	ctrl := h.controller(r)
	if err := ctrl.SubmitUserTurn(context.WithoutCancel(r.Context()), req.Text); err != nil {
		h.writeIntentError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ctrl.Snapshot())
}

// Action starts a document or a competition search.
func (h *Handler) Action(w http.ResponseWriter, r *http.Request) {
	ctrl := h.controller(r)
	ctx := context.WithoutCancel(r.Context())

	var err error
	switch chi.URLParam(r, "action") {
	case actionResearchPlan:
		err = ctrl.InvokeDocument(ctx, models.KindResearchPlan)
	case actionExperimentReport:
		err = ctrl.InvokeDocument(ctx, models.KindExperimentReport)
	case actionCompetitionSearch:
		err = ctrl.SearchCompetitions(ctx)
	default:
		writeError(w, http.StatusNotFound, "unknown action")
		return
	}
	if err != nil {
		h.writeIntentError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ctrl.Snapshot())
}

func (h *Handler) CloseDocument(w http.ResponseWriter, r *http.Request) {
	ctrl := h.controller(r)
	ctrl.CloseDocument()
	writeJSON(w, http.StatusOK, ctrl.Snapshot())
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	ctrl := h.controller(r)
	ctrl.Reset()
	writeJSON(w, http.StatusOK, ctrl.Snapshot())
}

func (h *Handler) writeIntentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, conversation.ErrEmptyInput):
		writeError(w, http.StatusBadRequest, "message is empty")
	case errors.Is(err, conversation.ErrTurnInFlight):
		writeError(w, http.StatusConflict, "a reply is still being prepared")
	case errors.Is(err, conversation.ErrBudgetExhausted):
		writeError(w, http.StatusTooManyRequests, "token budget exhausted")
	case errors.Is(err, conversation.ErrActionUnavailable):
		writeError(w, http.StatusConflict, "action is not available right now")
	default:
		h.logger.Error("intent failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// ---------------------------------------------------------------------------
// Archive
// ---------------------------------------------------------------------------

func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.docs.ListByUser(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("failed to list documents", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if docs == nil {
		docs = []models.ArchivedDocument{}
	}
	writeJSON(w, http.StatusOK, docs)
}

func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.ownedDocument(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// DocumentHTML serves the stored HTML as a standalone page.
func (h *Handler) DocumentHTML(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.ownedDocument(w, r)
	if !ok {
		return
	}

	data, ct, err := h.files.Download(r.Context(), doc.ObjectKey)
	switch {
	case errors.Is(err, store.ErrNotFound):
		// object gone; the record still has the content
		data, ct = []byte(doc.HTMLContent), htmlContentType
	case err != nil:
		h.logger.Error("failed to download document", zap.String("key", doc.ObjectKey), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "download failed")
		return
	}
	if ct == "" {
		ct = htmlContentType
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", "inline; filename="+string(doc.Kind)+".html")
	w.Write(data)
}

// DeleteDocument removes the record and its object.
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.ownedDocument(w, r)
	if !ok {
		return
	}

	if doc.ObjectKey != "" {
		if err := h.files.Remove(r.Context(), doc.ObjectKey); err != nil {
			h.logger.Warn("failed to remove object", zap.String("key", doc.ObjectKey), zap.Error(err))
		}
	}
	if err := h.docs.Delete(r.Context(), doc.ID.Hex()); err != nil {
		h.logger.Error("failed to delete document", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "delete failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

// ownedDocument loads {id} and writes a 404 unless it belongs to the caller.
func (h *Handler) ownedDocument(w http.ResponseWriter, r *http.Request) (*models.ArchivedDocument, bool) {
	doc, err := h.docs.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil || doc.UserID != auth.UserID(r.Context()) {
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			h.logger.Error("failed to load document", zap.Error(err))
		}
		writeError(w, http.StatusNotFound, "not found")
		return nil, false
	}
	return doc, true
}

type outcomeRate struct {
	Total    int     `json:"total"`
	Fallback int     `json:"fallback"`
	Rate     float64 `json:"rate"`
}

// Outcomes reports per-component fallback counts across all sessions.
func (h *Handler) Outcomes(w http.ResponseWriter, r *http.Request) {
	if h.stats == nil {
		writeJSON(w, http.StatusOK, map[string]outcomeRate{})
		return
	}
	counts, err := h.stats.FallbackRate(r.Context())
	if err != nil {
		h.logger.Error("failed to load outcomes", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	out := make(map[string]outcomeRate, len(counts))
	for component, c := range counts {
		rate := outcomeRate{Total: c[0], Fallback: c[1]}
		if c[0] > 0 {
			rate.Rate = float64(c[1]) / float64(c[0])
		}
		out[component] = rate
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
