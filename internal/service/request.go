package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mmeshcher/kues-bloodbank/internal/eligibility"
	"github.com/mmeshcher/kues-bloodbank/internal/ids"
	"github.com/mmeshcher/kues-bloodbank/internal/model"
	"github.com/mmeshcher/kues-bloodbank/internal/validation"
)

// SubmitRequest принимает заявку на кровь со статусом Pending.
func (s *Service) SubmitRequest(ctx context.Context, form model.RequestForm) (*model.BloodRequest, error) {
	if !validation.IsValidStudentID(form.StudentID) {
		return nil, validation.ErrInvalidStudentID
	}
	if !model.IsValidBloodType(form.BloodType) {
		return nil, ErrInvalidBloodType
	}
	if form.UnitsRequired <= 0 {
		return nil, ErrInvalidUnits
	}

	today := s.today()
	var required *time.Time
	if form.RequiredDate != nil {
		d := eligibility.DateOf(*form.RequiredDate)
		if d.Before(today) {
			return nil, ErrPastRequiredDate
		}
		required = &d
	}

	priority := model.PriorityNormal
	if form.RequestType == model.RequestTypeEmergency {
		priority = model.PriorityHigh
	}

	req := model.BloodRequest{
		ID:            ids.New(ids.PrefixRequest),
		StudentID:     form.StudentID,
		RequestType:   form.RequestType,
		PatientName:   form.PatientName,
		BloodType:     form.BloodType,
		UnitsRequired: form.UnitsRequired,
		Hospital:      form.Hospital,
		RequiredDate:  required,
		ContactPerson: form.ContactPerson,
		ContactPhone:  form.ContactPhone,
		Reason:        form.Reason,
		Notes:         form.Notes,
		Priority:      priority,
		Status:        model.RequestStatusPending,
		RequestDate:   today,
	}
	if err := s.repo.CreateRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	s.metrics.RequestsSubmitted.Inc()
	s.enqueue("submitRequest", map[string]any{
		"requestId": req.ID,
		"bloodType": req.BloodType,
		"units":     req.UnitsRequired,
		"priority":  string(req.Priority),
	})
	return &req, nil
}

// ListRequests возвращает заявки в порядке поступления. Пустой status означает все заявки.
func (s *Service) ListRequests(ctx context.Context, status model.RequestStatus) ([]model.BloodRequest, error) {
	reqs, err := s.repo.ListRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	if status == "" {
		return reqs, nil
	}

	res := make([]model.BloodRequest, 0, len(reqs))
	for _, r := range reqs {
		if r.Status == status {
			res = append(res, r)
		}
	}
	return res, nil
}

// FulfillRequest отмечает ожидающую заявку выполненной.
func (s *Service) FulfillRequest(ctx context.Context, requestID string) (*model.BloodRequest, error) {
	return s.repo.TransitionRequest(ctx, requestID, model.RequestStatusFulfilled)
}

// RejectRequest отклоняет ожидающую заявку.
func (s *Service) RejectRequest(ctx context.Context, requestID string) (*model.BloodRequest, error) {
	return s.repo.TransitionRequest(ctx, requestID, model.RequestStatusRejected)
}
