package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bloodlink/internal/bloodtype/models"
	"bloodlink/pkg/domain"
	"bloodlink/pkg/platform/httputil"
	authmw "bloodlink/pkg/platform/middleware/auth"
	"bloodlink/pkg/requestcontext"
)

type Service interface {
	List(ctx context.Context) ([]*models.BloodType, error)
	Get(ctx context.Context, id domain.BloodTypeID) (*models.BloodType, error)
	Create(ctx context.Context, actor domain.Actor, req *models.CreateBloodTypeRequest) (*models.BloodType, error)
	Update(ctx context.Context, actor domain.Actor, id domain.BloodTypeID, req *models.UpdateBloodTypeRequest) (*models.BloodType, error)
	Delete(ctx context.Context, actor domain.Actor, id domain.BloodTypeID) error
	AddRule(ctx context.Context, actor domain.Actor, req *models.SetRuleRequest) (*models.CompatibilityRule, error)
	CompatibleDonorTypes(ctx context.Context, recipient domain.BloodTypeID) (*models.Compatibility, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the catalog routes. Callers must already require
// authentication.
func (h *Handler) Register(r chi.Router) {
	r.Get("/blood-types", h.HandleList)
	r.Get("/blood-types/{id}", h.HandleGet)
	r.Get("/blood-types/{id}/donors", h.HandleCompatibleDonors)
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireRole(h.logger, domain.RoleAdmin))
		r.Post("/blood-types", h.HandleCreate)
		r.Post("/blood-types/compatibility", h.HandleSetRule)
		r.Patch("/blood-types/{id}", h.HandleUpdate)
		r.Delete("/blood-types/{id}", h.HandleDelete)
	})
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	types, err := h.service.List(r.Context())
	if err != nil {
		h.fail(w, r, "failed to list blood types", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"blood_types": types})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseBloodTypeID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	bt, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, "failed to get blood type", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, bt)
}

func (h *Handler) HandleCompatibleDonors(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseBloodTypeID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	compat, err := h.service.CompatibleDonorTypes(r.Context(), id)
	if err != nil {
		h.fail(w, r, "failed to resolve compatible donors", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, compat)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.CreateBloodTypeRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	bt, err := h.service.Create(ctx, requestcontext.Actor(ctx), req)
	if err != nil {
		h.fail(w, r, "failed to create blood type", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, bt)
}

func (h *Handler) HandleSetRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.SetRuleRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	rule, err := h.service.AddRule(ctx, requestcontext.Actor(ctx), req)
	if err != nil {
		h.fail(w, r, "failed to set compatibility rule", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rule)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseBloodTypeID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.UpdateBloodTypeRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	bt, err := h.service.Update(ctx, requestcontext.Actor(ctx), id, req)
	if err != nil {
		h.fail(w, r, "failed to update blood type", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, bt)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseBloodTypeID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Delete(ctx, requestcontext.Actor(ctx), id); err != nil {
		h.fail(w, r, "failed to delete blood type", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}
