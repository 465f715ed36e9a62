package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bloodlink/internal/donation/models"
	"bloodlink/pkg/domain"
	"bloodlink/pkg/platform/httputil"
	authmw "bloodlink/pkg/platform/middleware/auth"
	platformstrings "bloodlink/pkg/platform/strings"
	"bloodlink/pkg/requestcontext"
)

type Service interface {
	RequestDonation(ctx context.Context, actor domain.Actor) (*models.Process, error)
	Get(ctx context.Context, actor domain.Actor, id domain.ProcessID) (*models.Process, error)
	ListMine(ctx context.Context, actor domain.Actor) ([]*models.Process, error)
	List(ctx context.Context, actor domain.Actor, statuses ...models.Status) ([]*models.Process, error)
	Decide(ctx context.Context, actor domain.Actor, id domain.ProcessID, in *models.DecisionRequest) (*models.Process, error)
	ScheduleAppointment(ctx context.Context, actor domain.Actor, id domain.ProcessID, in *models.ScheduleRequest) (*models.Process, error)
	RequestReschedule(ctx context.Context, actor domain.Actor, id domain.AppointmentID, in *models.RescheduleRequest) (*models.Process, error)
	RecordHealthCheck(ctx context.Context, actor domain.Actor, id domain.ProcessID, in *models.HealthCheckRequest) (*models.Process, error)
	CollectBlood(ctx context.Context, actor domain.Actor, id domain.ProcessID, in *models.CollectRequest) (*models.Process, error)
	RecordLabResult(ctx context.Context, actor domain.Actor, id domain.ProcessID, in *models.LabResultRequest) (*models.Process, error)
}

// Handler serves the donation workflow.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/donations", h.HandleRequest)
	r.Get("/donations/mine", h.HandleListMine)
	r.Get("/donations/{id}", h.HandleGet)

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireRole(h.logger, domain.RoleStaff, domain.RoleAdmin))
		r.Get("/donations", h.HandleList)
		r.Post("/donations/{id}/decision", h.HandleDecide)
		r.Post("/donations/{id}/appointment", h.HandleSchedule)
		r.Post("/appointments/{id}/reschedule", h.HandleReschedule)
		r.Post("/donations/{id}/health-check", h.HandleHealthCheck)
		r.Post("/donations/{id}/collection", h.HandleCollect)
		r.Post("/donations/{id}/lab-result", h.HandleLabResult)
	})
}

func (h *Handler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := h.service.RequestDonation(ctx, requestcontext.Actor(ctx))
	if err != nil {
		h.logger.InfoContext(ctx, "donation request rejected",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseProcessID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := h.service.Get(ctx, requestcontext.Actor(ctx), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	out, err := h.service.ListMine(ctx, requestcontext.Actor(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"donations": out})
}

// HandleList accepts ?status=PENDING_APPROVAL,BLOOD_COLLECTED.
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
	out, err := h.service.List(ctx, requestcontext.Actor(ctx), statuses...)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"donations": out})
}

func (h *Handler) HandleDecide(w http.ResponseWriter, r *http.Request) {
	handleStep(h, w, r, h.service.Decide)
}

func (h *Handler) HandleSchedule(w http.ResponseWriter, r *http.Request) {
	handleStep(h, w, r, h.service.ScheduleAppointment)
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	handleStep(h, w, r, h.service.RecordHealthCheck)
}

func (h *Handler) HandleCollect(w http.ResponseWriter, r *http.Request) {
	handleStep(h, w, r, h.service.CollectBlood)
}

func (h *Handler) HandleLabResult(w http.ResponseWriter, r *http.Request) {
	handleStep(h, w, r, h.service.RecordLabResult)
}

func (h *Handler) HandleReschedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	id, err := domain.ParseAppointmentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	in, ok := httputil.DecodeAndPrepare[models.RescheduleRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	p, err := h.service.RequestReschedule(ctx, requestcontext.Actor(ctx), id, in)
	if err != nil {
		h.logStepRejected(ctx, "reschedule", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

// handleStep decodes T, runs one workflow step on the process named in the
// path and writes the updated process.
func handleStep[T any](h *Handler, w http.ResponseWriter, r *http.Request,
	step func(context.Context, domain.Actor, domain.ProcessID, *T) (*models.Process, error),
) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	id, err := domain.ParseProcessID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	in, ok := httputil.DecodeAndPrepare[T](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	p, err := step(ctx, requestcontext.Actor(ctx), id, in)
	if err != nil {
		h.logStepRejected(ctx, id.String(), err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) logStepRejected(ctx context.Context, target string, err error) {
	h.logger.InfoContext(ctx, "donation step rejected",
		"request_id", requestcontext.RequestID(ctx),
		"target", target,
		"error", err,
	)
}
