package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/kues-bloodbank/internal/middleware"
	"github.com/mmeshcher/kues-bloodbank/internal/model"
)

type adminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AdminLogin выполняет вход администратора.
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w)
		return
	}
	if req.Username == "" || req.Password == "" {
		badRequest(w)
		return
	}

	if err := h.service.AdminLogin(req.Username, req.Password); err != nil {
		h.fail(w, err, "admin login")
		return
	}

	if err := h.authMiddleware.SetAuthCookie(w, req.Username, middleware.RoleAdmin); err != nil {
		h.logger.Error("set auth cookie error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, h.service.AdminAccount())
}

// AdminForgotPassword принимает запрос на восстановление пароля администратора.
func (h *Handler) AdminForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil || req.Email == "" {
		badRequest(w)
		return
	}

	h.service.AdminForgotPassword(req.Email)
	writeJSON(w, http.StatusOK, messageResponse{Message: resetMessage})
}

// AdminDonors возвращает всех доноров с допуском к донации.
func (h *Handler) AdminDonors(w http.ResponseWriter, r *http.Request) {
	donors, err := h.service.Donors(r.Context())
	if err != nil {
		h.fail(w, err, "list donors")
		return
	}
	writeJSON(w, http.StatusOK, donors)
}

// AdminRequests возвращает заявки, при необходимости с фильтром status.
func (h *Handler) AdminRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.service.ListRequests(r.Context(), model.RequestStatus(r.URL.Query().Get("status")))
	if err != nil {
		h.fail(w, err, "list requests")
		return
	}
	writeJSON(w, http.StatusOK, reqs)
}

// FulfillRequest отмечает заявку выполненной.
func (h *Handler) FulfillRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "requestID")
	req, err := h.service.FulfillRequest(r.Context(), id)
	if err != nil {
		h.fail(w, err, "fulfill request", zap.String("requestID", id))
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// RejectRequest отклоняет заявку.
func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "requestID")
	req, err := h.service.RejectRequest(r.Context(), id)
	if err != nil {
		h.fail(w, err, "reject request", zap.String("requestID", id))
		return
	}
	writeJSON(w, http.StatusOK, req)
}

type inventoryRequest struct {
	BloodType      string `json:"bloodType"`
	Units          int    `json:"units"`
	CollectionDate string `json:"collectionDate"`
	Location       string `json:"location"`
}

// AddInventory добавляет единицы крови в запас.
func (h *Handler) AddInventory(w http.ResponseWriter, r *http.Request) {
	var req inventoryRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w)
		return
	}
	collected, err := parseOptionalDate(req.CollectionDate)
	if err != nil {
		badRequest(w)
		return
	}

	if err := h.service.AddInventory(r.Context(), req.BloodType, req.Units, collected, req.Location); err != nil {
		h.fail(w, err, "add inventory", zap.String("bloodType", req.BloodType))
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// UpdateContent сохраняет тексты организации.
func (h *Handler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	var req model.ContentSettings
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w)
		return
	}
	writeJSON(w, http.StatusOK, h.service.UpdateContent(req))
}

// UpdateConfig сохраняет пороги запаса и контакты поддержки.
func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req model.WebsiteConfig
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w)
		return
	}
	st, err := h.service.UpdateConfig(req)
	if err != nil {
		h.fail(w, err, "update config")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type aboutRequest struct {
	Title       string `json:"aboutTitle"`
	Description string `json:"aboutDescription"`
}

// UpdateAbout сохраняет раздел «О нас».
func (h *Handler) UpdateAbout(w http.ResponseWriter, r *http.Request) {
	var req aboutRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w)
		return
	}
	writeJSON(w, http.StatusOK, h.service.UpdateAbout(req.Title, req.Description))
}

type missionRequest struct {
	Mission string `json:"missionStatement"`
	Vision  string `json:"visionStatement"`
}

// UpdateMission сохраняет миссию и видение.
func (h *Handler) UpdateMission(w http.ResponseWriter, r *http.Request) {
	var req missionRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w)
		return
	}
	writeJSON(w, http.StatusOK, h.service.UpdateMissionVision(req.Mission, req.Vision))
}

type listRequest struct {
	Items []string `json:"items"`
}

// SaveBenefits сохраняет список преимуществ.
func (h *Handler) SaveBenefits(w http.ResponseWriter, r *http.Request) {
	var req listRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w)
		return
	}
	st, err := h.service.SaveBenefits(req.Items)
	if err != nil {
		h.fail(w, err, "save benefits")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// SaveRequirements сохраняет список требований.
func (h *Handler) SaveRequirements(w http.ResponseWriter, r *http.Request) {
	var req listRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w)
		return
	}
	st, err := h.service.SaveRequirements(req.Items)
	if err != nil {
		h.fail(w, err, "save requirements")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// UpdateContact сохраняет контакты.
func (h *Handler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	var req model.ContactInfo
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w)
		return
	}
	writeJSON(w, http.StatusOK, h.service.UpdateContact(req))
}

type accountRequest struct {
	CurrentPassword string `json:"currentPassword"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ChangeAdminUsername меняет логин администратора.
func (h *Handler) ChangeAdminUsername(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w)
		return
	}
	if err := h.service.ChangeAdminUsername(req.CurrentPassword, req.Username); err != nil {
		h.fail(w, err, "change admin username")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChangeAdminEmail меняет email администратора.
func (h *Handler) ChangeAdminEmail(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w)
		return
	}
	if err := h.service.ChangeAdminEmail(req.CurrentPassword, req.Email); err != nil {
		h.fail(w, err, "change admin email")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChangeAdminPassword меняет пароль администратора.
func (h *Handler) ChangeAdminPassword(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w)
		return
	}
	if err := h.service.ChangeAdminPassword(req.CurrentPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		h.fail(w, err, "change admin password")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
