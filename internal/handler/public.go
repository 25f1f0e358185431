package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/mmeshcher/kues-bloodbank/internal/model"
)

type requestFormRequest struct {
	StudentID     string `json:"studentId"`
	RequestType   string `json:"requestType"`
	PatientName   string `json:"patientName"`
	BloodType     string `json:"bloodType"`
	UnitsRequired int    `json:"unitsRequired"`
	Hospital      string `json:"hospital"`
	RequiredDate  string `json:"requiredDate"`
	ContactPerson string `json:"contactPerson"`
	ContactPhone  string `json:"contactPhone"`
	Reason        string `json:"reason"`
	Notes         string `json:"notes"`
}

// SubmitRequest принимает заявку на кровь.
func (h *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var req requestFormRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w)
		return
	}
	if req.PatientName == "" || req.Hospital == "" {
		badRequest(w)
		return
	}
	required, err := parseOptionalDate(req.RequiredDate)
	if err != nil {
		badRequest(w)
		return
	}

	created, err := h.service.SubmitRequest(r.Context(), model.RequestForm{
		StudentID:     strings.TrimSpace(req.StudentID),
		RequestType:   req.RequestType,
		PatientName:   req.PatientName,
		BloodType:     req.BloodType,
		UnitsRequired: req.UnitsRequired,
		Hospital:      req.Hospital,
		RequiredDate:  required,
		ContactPerson: req.ContactPerson,
		ContactPhone:  req.ContactPhone,
		Reason:        req.Reason,
		Notes:         req.Notes,
	})
	if err != nil {
		h.fail(w, err, "submit request")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type previewRequest struct {
	LastDonationDate string `json:"lastDonationDate"`
	DateOfBirth      string `json:"dateOfBirth"`
}

// PreviewEligibility рассчитывает допуск от введённой даты донации.
func (h *Handler) PreviewEligibility(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w)
		return
	}
	candidate, err := parseDate(req.LastDonationDate)
	if err != nil {
		badRequest(w)
		return
	}
	dob, err := parseOptionalDate(req.DateOfBirth)
	if err != nil {
		badRequest(w)
		return
	}

	el, err := h.service.PreviewEligibility(candidate, dob)
	if err != nil {
		h.fail(w, err, "preview eligibility")
		return
	}
	writeJSON(w, http.StatusOK, el)
}

// Inventory возвращает запас крови с фильтрами bloodType и status.
func (h *Handler) Inventory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.service.Inventory(r.Context(), model.InventoryFilter{
		BloodType: q.Get("bloodType"),
		Status:    model.StockStatus(q.Get("status")),
	})
	if err != nil {
		h.fail(w, err, "list inventory")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Stats возвращает сводные показатели.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.fail(w, err, "stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type publicDonor struct {
	DonorID          string            `json:"donorId"`
	FullName         string            `json:"fullName"`
	BloodType        string            `json:"bloodType"`
	City             string            `json:"city"`
	Status           model.DonorStatus `json:"status"`
	IsEligible       bool              `json:"isEligible"`
	NextEligibleDate *time.Time        `json:"nextEligibleDate"`
}

// SearchDonors ищет доноров. Контакты доноров в ответ не попадают.
func (h *Handler) SearchDonors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.DonorFilter{
		Text:   q.Get("q"),
		City:   q.Get("city"),
		Status: model.DonorStatus(q.Get("status")),
	}
	for _, bt := range q["bloodType"] {
		for _, part := range strings.Split(bt, ",") {
			if part = strings.TrimSpace(part); part != "" {
				filter.BloodTypes = append(filter.BloodTypes, part)
			}
		}
	}

	found, err := h.service.SearchDonors(r.Context(), filter)
	if err != nil {
		h.fail(w, err, "search donors")
		return
	}

	if len(found) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resp := make([]publicDonor, 0, len(found))
	for _, ov := range found {
		resp = append(resp, publicDonor{
			DonorID:          ov.Donor.ID,
			FullName:         ov.Donor.FullName,
			BloodType:        ov.Donor.BloodType,
			City:             ov.Donor.City,
			Status:           ov.Donor.Status,
			IsEligible:       ov.Eligibility.IsEligible,
			NextEligibleDate: ov.Eligibility.NextEligibleDate,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// Settings возвращает публичные настройки сайта.
func (h *Handler) Settings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Settings())
}
