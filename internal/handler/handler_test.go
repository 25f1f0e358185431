package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mmeshcher/kues-bloodbank/internal/metrics"
	"github.com/mmeshcher/kues-bloodbank/internal/middleware"
	"github.com/mmeshcher/kues-bloodbank/internal/model"
	"github.com/mmeshcher/kues-bloodbank/internal/repository"
	"github.com/mmeshcher/kues-bloodbank/internal/service"
)

var testNow = time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)

// stubService реализует только нужные тесту методы, остальные паникуют.
type stubService struct {
	Service

	dashboardResp *model.DonorOverview
	dashboardErr  error

	searchResp []model.DonorOverview
	searchErr  error
}

func (s *stubService) Dashboard(ctx context.Context, donorID string) (*model.DonorOverview, error) {
	return s.dashboardResp, s.dashboardErr
}

func (s *stubService) SearchDonors(ctx context.Context, filter model.DonorFilter) ([]model.DonorOverview, error) {
	return s.searchResp, s.searchErr
}

func newTestHandler(t *testing.T, svc Service) *Handler {
	t.Helper()

	logger, err := zap.NewDevelopment()
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	auth := middleware.NewAuthMiddleware("test-secret")

	return NewHandler(svc, logger, auth, metrics.New(), nil)
}

func newTestRouter(t *testing.T) (http.Handler, *Handler) {
	t.Helper()

	svc := service.NewService(repository.NewMemoryRepository(), nil,
		service.WithClock(func() time.Time { return testNow }),
	)
	h := newTestHandler(t, svc)
	return h.SetupRouter(), h
}

func do(t *testing.T, h http.Handler, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func authCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, c := range rec.Result().Cookies() {
		if c.Name == "auth_token" {
			return c
		}
	}
	t.Fatalf("auth cookie not set")
	return nil
}

func registerBody(email string) map[string]any {
	return map[string]any{
		"fullName":        "Rahim Uddin",
		"bloodType":       "O+",
		"dateOfBirth":     "1995-05-10",
		"email":           email,
		"city":            "Khulna",
		"password":        "abc12345",
		"confirmPassword": "abc12345",
	}
}

func TestRegister(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/donors/register", registerBody("a@x.com"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var donor model.Donor
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&donor))
	assert.True(t, strings.HasPrefix(donor.ID, "D"))
	assert.Equal(t, model.DonorStatusActive, donor.Status)

	dash := do(t, router, http.MethodGet, "/api/donor/dashboard", nil, authCookie(t, rec))
	require.Equal(t, http.StatusOK, dash.Code)

	var ov model.DonorOverview
	require.NoError(t, json.NewDecoder(dash.Body).Decode(&ov))
	assert.True(t, ov.Eligibility.IsEligible)
	assert.Equal(t, donor.ID, ov.Donor.ID)
}

func TestRegister_Errors(t *testing.T) {
	router, _ := newTestRouter(t)
	require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/api/donors/register", registerBody("taken@x.com")).Code)

	tests := []struct {
		name         string
		mutate       func(b map[string]any)
		want         int
		wantStrength string
	}{
		{name: "underage", mutate: func(b map[string]any) { b["dateOfBirth"] = "2008-10-17" }, want: http.StatusUnprocessableEntity},
		{name: "too old", mutate: func(b map[string]any) { b["dateOfBirth"] = "1960-10-16" }, want: http.StatusUnprocessableEntity},
		{
			name: "weak password",
			mutate: func(b map[string]any) {
				b["password"], b["confirmPassword"] = "abcdefgh", "abcdefgh"
			},
			want:         http.StatusUnprocessableEntity,
			wantStrength: "weak",
		},
		{name: "mismatch", mutate: func(b map[string]any) { b["confirmPassword"] = "abc99999" }, want: http.StatusUnprocessableEntity},
		{name: "duplicate email", mutate: func(b map[string]any) { b["email"] = "taken@x.com" }, want: http.StatusConflict},
		{name: "bad date", mutate: func(b map[string]any) { b["dateOfBirth"] = "10/05/1995" }, want: http.StatusBadRequest},
		{name: "missing email", mutate: func(b map[string]any) { delete(b, "email") }, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := registerBody("new@x.com")
			tt.mutate(body)

			rec := do(t, router, http.MethodPost, "/api/donors/register", body)
			require.Equal(t, tt.want, rec.Code, rec.Body.String())

			if tt.wantStrength != "" {
				var resp errorResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, tt.wantStrength, resp.PasswordStrength)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	router, _ := newTestRouter(t)
	require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/api/donors/register", registerBody("a@x.com")).Code)

	rec := do(t, router, http.MethodPost, "/api/donors/login", map[string]string{"email": "a@x.com", "password": "nope1234"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/donors/login", map[string]string{"email": "a@x.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/donors/login", map[string]string{"email": "a@x.com", "password": "abc12345"})
	require.Equal(t, http.StatusOK, rec.Code)
	authCookie(t, rec)
}

func TestDonorRoutesRequireDonorSession(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/donor/dashboard", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	admin := do(t, router, http.MethodPost, "/api/admin/login", map[string]string{"username": "admin", "password": "kues2024"})
	require.Equal(t, http.StatusOK, admin.Code)

	rec = do(t, router, http.MethodGet, "/api/donor/dashboard", nil, authCookie(t, admin))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDonationFlow(t *testing.T) {
	router, _ := newTestRouter(t)

	reg := do(t, router, http.MethodPost, "/api/donors/register", registerBody("a@x.com"))
	require.Equal(t, http.StatusOK, reg.Code)
	donor := authCookie(t, reg)

	admin := do(t, router, http.MethodPost, "/api/admin/login", map[string]string{"username": "admin", "password": "kues2024"})
	require.Equal(t, http.StatusOK, admin.Code)
	adminCookie := authCookie(t, admin)

	sub := do(t, router, http.MethodPost, "/api/requests", map[string]any{
		"studentId": "123456", "requestType": "Emergency", "patientName": "P",
		"bloodType": "O+", "unitsRequired": 2, "hospital": "KMCH",
	})
	require.Equal(t, http.StatusCreated, sub.Code, sub.Body.String())
	var created model.BloodRequest
	require.NoError(t, json.NewDecoder(sub.Body).Decode(&created))
	assert.Equal(t, model.PriorityHigh, created.Priority)

	match := do(t, router, http.MethodGet, "/api/donor/requests", nil, donor)
	require.Equal(t, http.StatusOK, match.Code)
	var mr matchingResponse
	require.NoError(t, json.NewDecoder(match.Body).Decode(&mr))
	require.Len(t, mr.Requests, 1)
	assert.True(t, mr.Eligibility.IsEligible)

	for i := 0; i < 2; i++ {
		rec := do(t, router, http.MethodPost, "/api/donor/requests/"+created.ID+"/donate", nil, donor)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	missing := do(t, router, http.MethodPost, "/api/donor/requests/R-missing/donate", nil, donor)
	assert.Equal(t, http.StatusNotFound, missing.Code)

	hist := do(t, router, http.MethodGet, "/api/donor/history", nil, donor)
	require.Equal(t, http.StatusOK, hist.Code)
	var history model.DonorHistory
	require.NoError(t, json.NewDecoder(hist.Body).Decode(&history))
	assert.Equal(t, 2, history.Donor.TotalDonations)
	assert.Len(t, history.Donations, 2)
	assert.False(t, history.Eligibility.IsEligible)
	assert.Equal(t, 90, history.Eligibility.DaysRemaining)

	fulfill := do(t, router, http.MethodPost, "/api/admin/requests/"+created.ID+"/fulfill", nil, adminCookie)
	assert.Equal(t, http.StatusConflict, fulfill.Code)

	stats := do(t, router, http.MethodGet, "/api/admin/stats", nil, adminCookie)
	require.Equal(t, http.StatusOK, stats.Code)
	var st model.Stats
	require.NoError(t, json.NewDecoder(stats.Body).Decode(&st))
	assert.Equal(t, model.Stats{TotalDonors: 1, LivesSaved: 2}, st)
}

func TestUpdateLastDonation(t *testing.T) {
	router, _ := newTestRouter(t)

	reg := do(t, router, http.MethodPost, "/api/donors/register", registerBody("a@x.com"))
	require.Equal(t, http.StatusOK, reg.Code)
	donor := authCookie(t, reg)

	rec := do(t, router, http.MethodPut, "/api/donor/last-donation", map[string]string{"lastDonationDate": "2026-10-17"}, donor)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, router, http.MethodPut, "/api/donor/last-donation", map[string]string{"lastDonationDate": "2026-10-01"}, donor)
	require.Equal(t, http.StatusOK, rec.Code)
	var ov model.DonorOverview
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&ov))
	assert.Equal(t, 75, ov.Eligibility.DaysRemaining)
}

func TestAdminSettings(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodPut, "/api/admin/settings/benefits", map[string]any{"items": []string{"x"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	admin := do(t, router, http.MethodPost, "/api/admin/login", map[string]string{"username": "admin", "password": "kues2024"})
	require.Equal(t, http.StatusOK, admin.Code)
	cookie := authCookie(t, admin)

	rec = do(t, router, http.MethodPut, "/api/admin/settings/benefits", map[string]any{"items": []string{"", " "}}, cookie)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, router, http.MethodPut, "/api/admin/settings/benefits", map[string]any{"items": []string{"Free checkup"}}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	pub := do(t, router, http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, pub.Code)
	var st model.SiteSettings
	require.NoError(t, json.NewDecoder(pub.Body).Decode(&st))
	assert.Equal(t, []string{"Free checkup"}, st.Benefits)
	assert.NotEmpty(t, st.AboutLastUpdated)
}

func TestInventoryEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	admin := do(t, router, http.MethodPost, "/api/admin/login", map[string]string{"username": "admin", "password": "kues2024"})
	require.Equal(t, http.StatusOK, admin.Code)

	rec := do(t, router, http.MethodPost, "/api/admin/inventory", map[string]any{"bloodType": "A-", "units": 5}, authCookie(t, admin))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/inventory?status=Critical", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var items []model.InventoryItem
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&items))
	require.Len(t, items, 1)
	assert.Equal(t, "A-", items[0].BloodType)
}

func TestSearchDonors_NoContent(t *testing.T) {
	h := newTestHandler(t, &stubService{searchResp: []model.DonorOverview{}})

	rec := do(t, h.SetupRouter(), http.MethodGet, "/api/donors/search?q=x", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDashboard_InternalError(t *testing.T) {
	h := newTestHandler(t, &stubService{dashboardErr: errors.New("db down")})

	rec := httptest.NewRecorder()
	require.NoError(t, h.authMiddleware.SetAuthCookie(rec, "D1", middleware.RoleDonor))
	cookie := rec.Result().Cookies()[0]

	resp := do(t, h.SetupRouter(), http.MethodGet, "/api/donor/dashboard", nil, cookie)
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/api/donors/register", registerBody("a@x.com")).Code)

	rec := do(t, router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="POST",route="/api/donors/register",status="200"} 1`)
}
