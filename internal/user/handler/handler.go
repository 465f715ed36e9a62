package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"bloodlink/internal/user/models"
	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
	"bloodlink/pkg/platform/httputil"
	authmw "bloodlink/pkg/platform/middleware/auth"
	"bloodlink/pkg/requestcontext"
)

type Service interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error)
	Get(ctx context.Context, actor domain.Actor, id domain.UserID) (*models.User, error)
	Me(ctx context.Context, actor domain.Actor) (*models.User, error)
	SetRole(ctx context.Context, actor domain.Actor, id domain.UserID, req *models.SetRoleRequest) (*models.User, error)
	UpdateProfile(ctx context.Context, actor domain.Actor, req *models.UpdateProfileRequest) (*models.User, error)
	SearchDonorsNearby(ctx context.Context, actor domain.Actor, req *models.NearbyDonorsRequest) ([]models.NearbyDonor, error)
	ListUsers(ctx context.Context, actor domain.Actor, filter models.ListFilter) ([]*models.User, error)
	CreateUser(ctx context.Context, actor domain.Actor, req *models.AdminCreateUserRequest) (*models.User, error)
	UpdateUser(ctx context.Context, actor domain.Actor, id domain.UserID, req *models.AdminUpdateUserRequest) (*models.User, error)
	SuspendUser(ctx context.Context, actor domain.Actor, id domain.UserID) (*models.User, error)
}

// Handler serves registration, login and profile endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the unauthenticated routes.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/auth/register", h.HandleRegister)
	r.Post("/auth/login", h.HandleLogin)
}

// Register mounts routes that need an authenticated actor.
func (h *Handler) Register(r chi.Router) {
	r.Get("/me", h.HandleMe)
	r.Patch("/me", h.HandleUpdateProfile)
	r.Get("/users/{id}", h.HandleGet)
	r.With(authmw.RequireRole(h.logger, domain.RoleStaff, domain.RoleAdmin)).Post("/donors/search", h.HandleSearchNearby)

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireRole(h.logger, domain.RoleAdmin))
		r.Get("/users", h.HandleList)
		r.Post("/users", h.HandleCreate)
		r.Patch("/users/{id}", h.HandleUpdate)
		r.Delete("/users/{id}", h.HandleSuspend)
		r.Post("/users/{id}/role", h.HandleSetRole)
	})
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[models.RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	user, err := h.service.Register(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "registration failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, user)
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[models.LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	resp, err := h.service.Login(ctx, req)
	if err != nil {
		h.logger.InfoContext(ctx, "login rejected",
			"request_id", requestID,
			"client_ip", requestcontext.ClientIP(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := h.service.Me(ctx, requestcontext.Actor(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	user, err := h.service.Get(ctx, requestcontext.Actor(ctx), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) HandleSetRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	id, err := domain.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.SetRoleRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	user, err := h.service.SetRole(ctx, requestcontext.Actor(ctx), id, req)
	if err != nil {
		h.logger.WarnContext(ctx, "role change failed",
			"request_id", requestID,
			"user_id", id.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[models.UpdateProfileRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	user, err := h.service.UpdateProfile(ctx, requestcontext.Actor(ctx), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) HandleSearchNearby(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[models.NearbyDonorsRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	hits, err := h.service.SearchDonorsNearby(ctx, requestcontext.Actor(ctx), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"donors": hits})
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter, err := parseListFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	users, err := h.service.ListUsers(ctx, requestcontext.Actor(ctx), filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[models.AdminCreateUserRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	user, err := h.service.CreateUser(ctx, requestcontext.Actor(ctx), req)
	if err != nil {
		h.logger.WarnContext(ctx, "user creation failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, user)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	id, err := domain.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.AdminUpdateUserRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	user, err := h.service.UpdateUser(ctx, requestcontext.Actor(ctx), id, req)
	if err != nil {
		h.logger.WarnContext(ctx, "user update failed",
			"request_id", requestID,
			"user_id", id.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) HandleSuspend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	user, err := h.service.SuspendUser(ctx, requestcontext.Actor(ctx), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

func parseListFilter(r *http.Request) (models.ListFilter, error) {
	q := r.URL.Query()
	var filter models.ListFilter
	if raw := q.Get("role"); raw != "" {
		role, err := domain.ParseRole(raw)
		if err != nil {
			return filter, err
		}
		filter.Role = role
	}
	if raw := q.Get("status"); raw != "" {
		st, err := models.ParseStatus(raw)
		if err != nil {
			return filter, err
		}
		filter.Status = st
	}
	var err error
	if filter.Limit, err = queryInt(q.Get("limit"), "limit"); err != nil {
		return filter, err
	}
	if filter.Offset, err = queryInt(q.Get("offset"), "offset"); err != nil {
		return filter, err
	}
	return filter, nil
}

func queryInt(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, dErrors.New(dErrors.CodeValidation, name+" must be a non-negative integer")
	}
	return n, nil
}
