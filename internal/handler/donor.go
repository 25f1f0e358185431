package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/kues-bloodbank/internal/middleware"
	"github.com/mmeshcher/kues-bloodbank/internal/model"
	"github.com/mmeshcher/kues-bloodbank/internal/validation"
)

type registerRequest struct {
	FullName              string `json:"fullName"`
	BloodType             string `json:"bloodType"`
	DateOfBirth           string `json:"dateOfBirth"`
	Gender                string `json:"gender"`
	Phone                 string `json:"phone"`
	Email                 string `json:"email"`
	Address               string `json:"address"`
	City                  string `json:"city"`
	LastDonationDate      string `json:"lastDonationDate"`
	EmergencyContactName  string `json:"emergencyContactName"`
	EmergencyContactPhone string `json:"emergencyContactPhone"`
	MedicalHistory        string `json:"medicalHistory"`
	Password              string `json:"password"`
	ConfirmPassword       string `json:"confirmPassword"`
}

// Register обрабатывает регистрацию нового донора.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w)
		return
	}

	if req.FullName == "" || req.Email == "" || req.DateOfBirth == "" || req.Password == "" {
		badRequest(w)
		return
	}

	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		badRequest(w)
		return
	}
	lastDonation, err := parseOptionalDate(req.LastDonationDate)
	if err != nil {
		badRequest(w)
		return
	}

	donor, err := h.service.RegisterDonor(r.Context(), model.DonorRegistration{
		FullName:              req.FullName,
		BloodType:             req.BloodType,
		DateOfBirth:           dob,
		Gender:                req.Gender,
		Phone:                 req.Phone,
		Email:                 req.Email,
		Address:               req.Address,
		City:                  req.City,
		LastDonationDate:      lastDonation,
		EmergencyContactName:  req.EmergencyContactName,
		EmergencyContactPhone: req.EmergencyContactPhone,
		MedicalHistory:        req.MedicalHistory,
		Password:              req.Password,
		ConfirmPassword:       req.ConfirmPassword,
	})
	if err != nil {
		if errors.Is(err, validation.ErrWeakPassword) {
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
				Error:            err.Error(),
				PasswordStrength: string(validation.PasswordStrength(req.Password)),
			})
			return
		}
		h.fail(w, err, "register donor")
		return
	}

	if err := h.authMiddleware.SetAuthCookie(w, donor.ID, middleware.RoleDonor); err != nil {
		h.logger.Error("set auth cookie error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, donor)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login выполняет аутентификацию донора и устанавливает cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w)
		return
	}

	if req.Email == "" || req.Password == "" {
		badRequest(w)
		return
	}

	donor, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, err, "login donor")
		return
	}

	if err := h.authMiddleware.SetAuthCookie(w, donor.ID, middleware.RoleDonor); err != nil {
		h.logger.Error("set auth cookie error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, donor)
}

// Logout завершает сессию.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authMiddleware.ClearAuthCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type messageResponse struct {
	Message string `json:"message"`
}

const resetMessage = "If an account exists for this email, password reset instructions have been sent."

// ForgotPassword принимает запрос на восстановление пароля донора.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil || req.Email == "" {
		badRequest(w)
		return
	}

	if err := h.service.ForgotPassword(r.Context(), req.Email); err != nil {
		h.fail(w, err, "forgot password")
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: resetMessage})
}

// Dashboard возвращает данные донора и его допуск к донации.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	id, ok := donorID(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	ov, err := h.service.Dashboard(r.Context(), id)
	if err != nil {
		h.fail(w, err, "dashboard", zap.String("donorID", id))
		return
	}
	writeJSON(w, http.StatusOK, ov)
}

// Profile возвращает профиль донора.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	id, ok := donorID(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	ov, err := h.service.Dashboard(r.Context(), id)
	if err != nil {
		h.fail(w, err, "get profile", zap.String("donorID", id))
		return
	}
	writeJSON(w, http.StatusOK, ov.Donor)
}

type profileRequest struct {
	FullName              string `json:"fullName"`
	BloodType             string `json:"bloodType"`
	DateOfBirth           string `json:"dateOfBirth"`
	Gender                string `json:"gender"`
	Phone                 string `json:"phone"`
	Email                 string `json:"email"`
	Address               string `json:"address"`
	City                  string `json:"city"`
	EmergencyContactName  string `json:"emergencyContactName"`
	EmergencyContactPhone string `json:"emergencyContactPhone"`
	MedicalHistory        string `json:"medicalHistory"`
}

// UpdateProfile сохраняет изменения профиля донора.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := donorID(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w)
		return
	}
	if req.FullName == "" || req.Email == "" {
		badRequest(w)
		return
	}
	dob, err := parseOptionalDate(req.DateOfBirth)
	if err != nil {
		badRequest(w)
		return
	}

	donor, err := h.service.UpdateProfile(r.Context(), id, model.ProfileUpdate{
		FullName:              req.FullName,
		BloodType:             req.BloodType,
		DateOfBirth:           dob,
		Gender:                req.Gender,
		Phone:                 req.Phone,
		Email:                 req.Email,
		Address:               req.Address,
		City:                  req.City,
		EmergencyContactName:  req.EmergencyContactName,
		EmergencyContactPhone: req.EmergencyContactPhone,
		MedicalHistory:        req.MedicalHistory,
	})
	if err != nil {
		h.fail(w, err, "update profile", zap.String("donorID", id))
		return
	}
	writeJSON(w, http.StatusOK, donor)
}

type lastDonationRequest struct {
	LastDonationDate string `json:"lastDonationDate"`
	Reason           string `json:"reason"`
}

// UpdateLastDonation исправляет дату последней донации.
func (h *Handler) UpdateLastDonation(w http.ResponseWriter, r *http.Request) {
	id, ok := donorID(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req lastDonationRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w)
		return
	}
	date, err := parseDate(req.LastDonationDate)
	if err != nil {
		badRequest(w)
		return
	}

	ov, err := h.service.UpdateLastDonationDate(r.Context(), id, date, req.Reason)
	if err != nil {
		h.fail(w, err, "update last donation", zap.String("donorID", id))
		return
	}
	writeJSON(w, http.StatusOK, ov)
}

type matchingResponse struct {
	Eligibility model.Eligibility    `json:"eligibility"`
	Requests    []model.BloodRequest `json:"requests"`
}

// MatchingRequests возвращает ожидающие заявки с группой крови донора.
func (h *Handler) MatchingRequests(w http.ResponseWriter, r *http.Request) {
	id, ok := donorID(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	ov, err := h.service.Dashboard(r.Context(), id)
	if err != nil {
		h.fail(w, err, "matching requests", zap.String("donorID", id))
		return
	}
	reqs, err := h.service.MatchingRequests(r.Context(), id)
	if err != nil {
		h.fail(w, err, "matching requests", zap.String("donorID", id))
		return
	}
	writeJSON(w, http.StatusOK, matchingResponse{Eligibility: ov.Eligibility, Requests: reqs})
}

// Donate проводит донацию текущего донора по заявке.
func (h *Handler) Donate(w http.ResponseWriter, r *http.Request) {
	id, ok := donorID(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	requestID := chi.URLParam(r, "requestID")
	rec, err := h.service.ProcessDonation(r.Context(), id, requestID)
	if err != nil {
		h.fail(w, err, "process donation", zap.String("donorID", id), zap.String("requestID", requestID))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// History возвращает историю донаций донора.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := donorID(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	hist, err := h.service.History(r.Context(), id)
	if err != nil {
		h.fail(w, err, "donation history", zap.String("donorID", id))
		return
	}
	writeJSON(w, http.StatusOK, hist)
}

type notificationsRequest struct {
	Email bool `json:"email"`
	SMS   bool `json:"sms"`
}

// UpdateNotifications сохраняет настройки уведомлений.
func (h *Handler) UpdateNotifications(w http.ResponseWriter, r *http.Request) {
	id, ok := donorID(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req notificationsRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w)
		return
	}

	if err := h.service.UpdateNotifications(r.Context(), id, req.Email, req.SMS); err != nil {
		h.fail(w, err, "update notifications", zap.String("donorID", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ChangePassword меняет пароль донора.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := donorID(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w)
		return
	}

	if err := h.service.ChangePassword(r.Context(), id, req.CurrentPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		h.fail(w, err, "change password", zap.String("donorID", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
