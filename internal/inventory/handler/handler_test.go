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

	"bloodlink/internal/inventory/models"
	"bloodlink/internal/inventory/service"
	"bloodlink/internal/inventory/store"
	"bloodlink/pkg/domain"
	"bloodlink/pkg/testutil"
)

func TestInventoryRoutes(t *testing.T) {
	svc := service.New(store.NewInMemory())
	staff := domain.Actor{UserID: domain.UserID(uuid.New()), Role: domain.RoleStaff}
	bt := domain.BloodTypeID(uuid.New())
	for _, code := range []string{"U-1", "U-2", "U-3"} {
		_, err := svc.CreditUnit(context.Background(), staff, models.Credit{
			UnitCode: code, ProcessID: domain.ProcessID(uuid.New()), BloodTypeID: bt, VolumeMl: 450,
		})
		require.NoError(t, err)
	}

	r := chi.NewRouter()
	New(svc, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)

	t.Run("recent honours limit", func(t *testing.T) {
		req := testutil.AsStaff(testutil.NewJSONRequest(t, http.MethodGet, "/inventory/recent?limit=2", nil), staff.UserID)
		rr := testutil.DoRequest(r, req)
		testutil.AssertStatus(t, rr, http.StatusOK)
		body := testutil.UnmarshalResponse[struct {
			Units []models.Unit `json:"units"`
		}](t, rr)
		assert.Len(t, body.Units, 2)
	})

	t.Run("bad limit", func(t *testing.T) {
		req := testutil.AsStaff(testutil.NewJSONRequest(t, http.MethodGet, "/inventory/recent?limit=abc", nil), staff.UserID)
		testutil.AssertStatusAndError(t, testutil.DoRequest(r, req), http.StatusBadRequest, "invalid_input")
	})

	t.Run("summary", func(t *testing.T) {
		req := testutil.AsStaff(testutil.NewJSONRequest(t, http.MethodGet, "/inventory/summary", nil), staff.UserID)
		rr := testutil.DoRequest(r, req)
		testutil.AssertStatus(t, rr, http.StatusOK)
		body := testutil.UnmarshalResponse[struct {
			Summary []models.SummaryRow `json:"summary"`
		}](t, rr)
		require.Len(t, body.Summary, 1)
		assert.Equal(t, models.StockCritical, body.Summary[0].Level)
		assert.Equal(t, 1350, body.Summary[0].TotalVolumeMl)
	})

	t.Run("donors are forbidden", func(t *testing.T) {
		req := testutil.AsDonor(testutil.NewJSONRequest(t, http.MethodGet, "/inventory", nil), domain.UserID(uuid.New()))
		testutil.AssertStatus(t, testutil.DoRequest(r, req), http.StatusForbidden)
	})
}
