package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodlink/internal/bloodrequest/models"
	"bloodlink/internal/bloodrequest/service"
	"bloodlink/internal/bloodrequest/store"
	"bloodlink/pkg/domain"
	"bloodlink/pkg/platform/sentinel"
	txcontext "bloodlink/pkg/platform/tx"
	"bloodlink/pkg/testutil"
)

type stubCatalog struct{ known domain.BloodTypeID }

func (c stubCatalog) Group(_ context.Context, id domain.BloodTypeID) (string, error) {
	if id != c.known {
		return "", sentinel.ErrNotFound
	}
	return "AB-", nil
}

func (stubCatalog) CompatibleDonors(context.Context, domain.BloodTypeID) (service.Compatibility, error) {
	return nil, nil
}

type stubDonors struct{}

func (stubDonors) ListReadyDonors(context.Context) ([]service.Donor, error) { return nil, nil }

func (stubDonors) FindDonor(_ context.Context, id domain.UserID) (*service.Donor, error) {
	return &service.Donor{ID: id, Email: "d@x.org", FullName: "D"}, nil
}

func TestBloodRequestRoutes(t *testing.T) {
	bt := domain.BloodTypeID(uuid.New())
	svc := service.New(store.NewInMemory(), txcontext.NewLockRunner(), stubCatalog{known: bt}, stubDonors{})
	limited := 0
	countingLimiter := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limited++
			next.ServeHTTP(w, r)
		})
	}

	r := chi.NewRouter()
	New(svc, slog.New(slog.NewTextHandler(io.Discard, nil)), WithPledgeMiddleware(countingLimiter)).Register(r)

	staffID := domain.UserID(uuid.New())
	donorID := domain.UserID(uuid.New())
	body := map[string]any{
		"patient_name":  "Jane Roe",
		"hospital":      "General",
		"blood_type_id": uuid.UUID(bt).String(),
		"quantity":      1,
		"urgency":       "urgent",
		"room_number":   4,
		"bed_number":    2,
	}

	var created models.Request
	t.Run("staff creates a request", func(t *testing.T) {
		req := testutil.AsStaff(testutil.NewJSONRequest(t, http.MethodPost, "/blood-requests", body), staffID)
		rr := testutil.DoRequest(r, req)
		testutil.AssertStatus(t, rr, http.StatusCreated)
		created = *testutil.UnmarshalResponse[models.Request](t, rr)
		assert.Equal(t, models.UrgencyUrgent, created.Urgency)
	})

	t.Run("same bed conflicts", func(t *testing.T) {
		req := testutil.AsStaff(testutil.NewJSONRequest(t, http.MethodPost, "/blood-requests", body), staffID)
		testutil.AssertStatusAndError(t, testutil.DoRequest(r, req), http.StatusConflict, "conflict")
	})

	t.Run("donors cannot create", func(t *testing.T) {
		req := testutil.AsDonor(testutil.NewJSONRequest(t, http.MethodPost, "/blood-requests", body), donorID)
		testutil.AssertStatus(t, testutil.DoRequest(r, req), http.StatusForbidden)
	})

	t.Run("invalid room", func(t *testing.T) {
		bad := map[string]any{}
		for k, v := range body {
			bad[k] = v
		}
		bad["room_number"] = 17
		req := testutil.AsStaff(testutil.NewJSONRequest(t, http.MethodPost, "/blood-requests", bad), staffID)
		testutil.AssertStatusAndError(t, testutil.DoRequest(r, req), http.StatusBadRequest, "validation_error")
	})

	t.Run("pledge fulfils and repeats are rejected", func(t *testing.T) {
		path := "/blood-requests/" + created.ID.String() + "/pledges"
		rr := testutil.DoRequest(r, testutil.AsDonor(testutil.NewJSONRequest(t, http.MethodPost, path, nil), donorID))
		testutil.AssertStatus(t, rr, http.StatusCreated)
		res := testutil.UnmarshalResponse[models.PledgeResult](t, rr)
		assert.True(t, res.Fulfilled)

		rr = testutil.DoRequest(r, testutil.AsDonor(testutil.NewJSONRequest(t, http.MethodPost, path, nil), donorID))
		testutil.AssertStatusAndError(t, rr, http.StatusConflict, "invalid_state")
		assert.Equal(t, 2, limited)
	})

	t.Run("pledge on unknown request", func(t *testing.T) {
		path := "/blood-requests/" + uuid.NewString() + "/pledges"
		rr := testutil.DoRequest(r, testutil.AsDonor(testutil.NewJSONRequest(t, http.MethodPost, path, nil), donorID))
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})

	t.Run("list by status", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.AsStaff(testutil.NewJSONRequest(t, http.MethodGet, "/blood-requests?status=fulfilled", nil), staffID))
		testutil.AssertStatus(t, rr, http.StatusOK)
		out := testutil.UnmarshalResponse[struct {
			Requests []models.Request `json:"requests"`
		}](t, rr)
		require.Len(t, out.Requests, 1)
		assert.Equal(t, 1, out.Requests[0].PledgeCount)

		rr = testutil.DoRequest(r, testutil.AsStaff(testutil.NewJSONRequest(t, http.MethodGet, "/blood-requests?status=LOST", nil), staffID))
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("rooms", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.AsStaff(testutil.NewJSONRequest(t, http.MethodGet, "/rooms", nil), staffID))
		testutil.AssertStatus(t, rr, http.StatusOK)
		out := testutil.UnmarshalResponse[struct {
			Rooms []models.RoomStatus `json:"rooms"`
		}](t, rr)
		assert.Len(t, out.Rooms, models.RoomCount)
		assert.Zero(t, out.Rooms[3].Occupancy, "fulfilled requests free their bed")
	})
}
