package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"bloodlink/internal/inventory/models"
	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
	"bloodlink/pkg/platform/httputil"
	authmw "bloodlink/pkg/platform/middleware/auth"
	"bloodlink/pkg/requestcontext"
)

type Service interface {
	List(ctx context.Context, actor domain.Actor) ([]*models.Unit, error)
	Recent(ctx context.Context, actor domain.Actor, limit int) ([]*models.Unit, error)
	Summary(ctx context.Context, actor domain.Actor) ([]models.SummaryRow, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the staff-only inventory views.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireRole(h.logger, domain.RoleStaff, domain.RoleAdmin))
		r.Get("/inventory", h.HandleList)
		r.Get("/inventory/summary", h.HandleSummary)
		r.Get("/inventory/recent", h.HandleRecent)
	})
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	units, err := h.service.List(ctx, requestcontext.Actor(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"units": units})
}

func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rows, err := h.service.Summary(ctx, requestcontext.Actor(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"summary": rows})
}

func (h *Handler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	units, err := h.service.Recent(ctx, requestcontext.Actor(ctx), limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"units": units})
}
