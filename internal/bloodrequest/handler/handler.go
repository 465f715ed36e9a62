package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bloodlink/internal/bloodrequest/models"
	"bloodlink/pkg/domain"
	"bloodlink/pkg/platform/httputil"
	authmw "bloodlink/pkg/platform/middleware/auth"
	platformstrings "bloodlink/pkg/platform/strings"
	"bloodlink/pkg/requestcontext"
)

type Service interface {
	CreateRequest(ctx context.Context, actor domain.Actor, in *models.CreateRequest) (*models.Request, error)
	CancelRequest(ctx context.Context, actor domain.Actor, id domain.RequestID) (*models.Request, error)
	Get(ctx context.Context, actor domain.Actor, id domain.RequestID) (*models.Request, error)
	ListByStatus(ctx context.Context, actor domain.Actor, statuses ...models.Status) ([]*models.Request, error)
	Pledge(ctx context.Context, actor domain.Actor, id domain.RequestID) (*models.PledgeResult, error)
	ListPledgers(ctx context.Context, actor domain.Actor, id domain.RequestID) ([]models.Pledger, error)
	RoomStatuses(ctx context.Context, actor domain.Actor) ([]models.RoomStatus, error)
}

// Handler serves blood requests, pledges and the room view.
type Handler struct {
	service      Service
	logger       *slog.Logger
	pledgeLimits []func(http.Handler) http.Handler
}

type Option func(*Handler)

// WithPledgeMiddleware wraps the pledge route, typically with a rate limiter.
func WithPledgeMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		h.pledgeLimits = append(h.pledgeLimits, mw...)
	}
}

func New(service Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{service: service, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/blood-requests", h.HandleList)
	r.Get("/blood-requests/{id}", h.HandleGet)
	r.With(h.pledgeLimits...).Post("/blood-requests/{id}/pledges", h.HandlePledge)

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireRole(h.logger, domain.RoleStaff, domain.RoleAdmin))
		r.Post("/blood-requests", h.HandleCreate)
		r.Get("/blood-requests/{id}/pledges", h.HandleListPledgers)
		r.Post("/blood-requests/{id}/cancel", h.HandleCancel)
		r.Get("/rooms", h.HandleRooms)
	})
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	in, ok := httputil.DecodeAndPrepare[models.CreateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	req, err := h.service.CreateRequest(ctx, requestcontext.Actor(ctx), in)
	if err != nil {
		h.logger.WarnContext(ctx, "blood request rejected",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, req)
}

// HandleList accepts ?status=PENDING,FULFILLED. Without it only pending
// requests are listed.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var statuses []models.Status
	for _, part := range platformstrings.SplitList(r.URL.Query().Get("status")) {
		st, err := models.ParseStatus(part)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		statuses = append(statuses, st)
	}
	reqs, err := h.service.ListByStatus(ctx, requestcontext.Actor(ctx), statuses...)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"requests": reqs})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseRequestID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := h.service.Get(ctx, requestcontext.Actor(ctx), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) HandlePledge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseRequestID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.service.Pledge(ctx, requestcontext.Actor(ctx), id)
	if err != nil {
		h.logger.InfoContext(ctx, "pledge rejected",
			"request_id", requestcontext.RequestID(ctx),
			"blood_request_id", id.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) HandleListPledgers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseRequestID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	pledgers, err := h.service.ListPledgers(ctx, requestcontext.Actor(ctx), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"pledgers": pledgers})
}

func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseRequestID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := h.service.CancelRequest(ctx, requestcontext.Actor(ctx), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) HandleRooms(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rooms, err := h.service.RoomStatuses(ctx, requestcontext.Actor(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"rooms": rooms})
}
