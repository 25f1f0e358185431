// Package handler содержит HTTP-обработчики API сервиса банка крови.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/kues-bloodbank/internal/eligibility"
	"github.com/mmeshcher/kues-bloodbank/internal/metrics"
	"github.com/mmeshcher/kues-bloodbank/internal/middleware"
	"github.com/mmeshcher/kues-bloodbank/internal/model"
	"github.com/mmeshcher/kues-bloodbank/internal/repository"
	"github.com/mmeshcher/kues-bloodbank/internal/service"
	"github.com/mmeshcher/kues-bloodbank/internal/validation"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	RegisterDonor(ctx context.Context, form model.DonorRegistration) (*model.Donor, error)
	Login(ctx context.Context, email, password string) (*model.Donor, error)
	ChangePassword(ctx context.Context, donorID, current, newPassword, confirm string) error
	ForgotPassword(ctx context.Context, email string) error
	Dashboard(ctx context.Context, donorID string) (*model.DonorOverview, error)
	UpdateProfile(ctx context.Context, donorID string, upd model.ProfileUpdate) (*model.Donor, error)
	UpdateLastDonationDate(ctx context.Context, donorID string, date time.Time, reason string) (*model.DonorOverview, error)
	UpdateNotifications(ctx context.Context, donorID string, email, sms bool) error
	PreviewEligibility(candidate time.Time, dateOfBirth *time.Time) (model.Eligibility, error)

	ProcessDonation(ctx context.Context, donorID, requestID string) (*model.DonationRecord, error)
	MatchingRequests(ctx context.Context, donorID string) ([]model.BloodRequest, error)
	History(ctx context.Context, donorID string) (*model.DonorHistory, error)

	SubmitRequest(ctx context.Context, form model.RequestForm) (*model.BloodRequest, error)
	ListRequests(ctx context.Context, status model.RequestStatus) ([]model.BloodRequest, error)
	FulfillRequest(ctx context.Context, requestID string) (*model.BloodRequest, error)
	RejectRequest(ctx context.Context, requestID string) (*model.BloodRequest, error)

	AddInventory(ctx context.Context, bloodType string, units int, collected *time.Time, location string) error
	Inventory(ctx context.Context, filter model.InventoryFilter) ([]model.InventoryItem, error)
	Stats(ctx context.Context) (*model.Stats, error)
	Donors(ctx context.Context) ([]model.DonorOverview, error)
	SearchDonors(ctx context.Context, filter model.DonorFilter) ([]model.DonorOverview, error)

	AdminLogin(username, password string) error
	AdminForgotPassword(email string)
	AdminAccount() model.AdminAccount
	ChangeAdminUsername(currentPassword, username string) error
	ChangeAdminEmail(currentPassword, email string) error
	ChangeAdminPassword(current, newPassword, confirm string) error

	Settings() model.SiteSettings
	UpdateContent(c model.ContentSettings) model.SiteSettings
	UpdateConfig(c model.WebsiteConfig) (model.SiteSettings, error)
	UpdateAbout(title, description string) model.SiteSettings
	UpdateMissionVision(mission, vision string) model.SiteSettings
	SaveBenefits(items []string) (model.SiteSettings, error)
	SaveRequirements(items []string) (model.SiteSettings, error)
	UpdateContact(c model.ContactInfo) model.SiteSettings
}

// Handler реализует HTTP-обработчики API сервиса банка крови.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
	metrics        *metrics.Metrics
	loginLimit     func(http.Handler) http.Handler
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
// m и loginLimit могут быть nil.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware, m *metrics.Metrics, loginLimit func(http.Handler) http.Handler) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
		metrics:        m,
		loginLimit:     loginLimit,
	}
}

type errorResponse struct {
	Error            string `json:"error"`
	PasswordStrength string `json:"passwordStrength,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func badRequest(w http.ResponseWriter) {
	http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
}

// statusOf сопоставляет доменную ошибку с HTTP-статусом.
func statusOf(err error) (int, bool) {
	switch {
	case errors.Is(err, validation.ErrUnderage),
		errors.Is(err, validation.ErrTooOld),
		errors.Is(err, validation.ErrWeakPassword),
		errors.Is(err, validation.ErrPasswordMismatch),
		errors.Is(err, validation.ErrInvalidStudentID),
		errors.Is(err, validation.ErrInvalidUsername),
		errors.Is(err, eligibility.ErrFutureDate),
		errors.Is(err, eligibility.ErrTooYoung),
		errors.Is(err, service.ErrInvalidBloodType),
		errors.Is(err, service.ErrInvalidUnits),
		errors.Is(err, service.ErrPastRequiredDate),
		errors.Is(err, service.ErrEmptyList),
		errors.Is(err, service.ErrTooManyItems),
		errors.Is(err, service.ErrInvalidStockLevels),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, repository.ErrUnknownBloodType):
		return http.StatusUnprocessableEntity, true
	case errors.Is(err, repository.ErrEmailTaken),
		errors.Is(err, repository.ErrInvalidTransition):
		return http.StatusConflict, true
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, true
	case errors.Is(err, service.ErrWrongCurrentPassword):
		return http.StatusForbidden, true
	case errors.Is(err, repository.ErrDonorNotFound),
		errors.Is(err, repository.ErrRequestNotFound),
		errors.Is(err, repository.ErrCredentialNotFound):
		return http.StatusNotFound, true
	}
	return 0, false
}

// fail отвечает клиенту по доменной ошибке или пишет её в журнал как внутреннюю.
func (h *Handler) fail(w http.ResponseWriter, err error, op string, fields ...zap.Field) {
	if status, ok := statusOf(err); ok {
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}
	h.logger.Error(op+" error", append(fields, zap.Error(err))...)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(time.DateOnly, s)
}

func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func donorID(r *http.Request) (string, bool) {
	return middleware.GetSubjectFromContext(r.Context())
}
