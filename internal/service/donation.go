package service

import (
	"context"
	"fmt"

	"github.com/mmeshcher/kues-bloodbank/internal/eligibility"
	"github.com/mmeshcher/kues-bloodbank/internal/ids"
	"github.com/mmeshcher/kues-bloodbank/internal/model"
	"github.com/mmeshcher/kues-bloodbank/internal/repository"
)

// ProcessDonation проводит донацию донора по заявке.
// Допуск повторно не проверяется, повторный вызов создаёт ещё одну запись.
func (s *Service) ProcessDonation(ctx context.Context, donorID, requestID string) (*model.DonationRecord, error) {
	rec, err := s.repo.RecordDonation(ctx, repository.DonationInput{
		ID:        ids.New(ids.PrefixDonation),
		DonorID:   donorID,
		RequestID: requestID,
		Date:      s.today(),
	})
	if err != nil {
		return nil, err
	}

	s.metrics.DonationsRecorded.Inc()
	s.enqueue("recordDonation", map[string]any{
		"donationId": rec.ID,
		"donorId":    rec.DonorID,
		"requestId":  rec.RequestID,
		"bloodType":  rec.BloodType,
	})
	return rec, nil
}

// MatchingRequests возвращает ожидающие заявки с группой крови донора.
func (s *Service) MatchingRequests(ctx context.Context, donorID string) ([]model.BloodRequest, error) {
	donor, err := s.repo.GetDonor(ctx, donorID)
	if err != nil {
		return nil, err
	}
	reqs, err := s.repo.ListRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return matchRequests(donor.BloodType, reqs), nil
}

func matchRequests(bloodType string, reqs []model.BloodRequest) []model.BloodRequest {
	res := make([]model.BloodRequest, 0)
	for _, r := range reqs {
		if r.Status == model.RequestStatusPending && r.BloodType == bloodType {
			res = append(res, r)
		}
	}
	return res
}

// History возвращает донора, его допуск и журнал донаций.
func (s *Service) History(ctx context.Context, donorID string) (*model.DonorHistory, error) {
	donor, err := s.repo.GetDonor(ctx, donorID)
	if err != nil {
		return nil, err
	}
	donations, err := s.repo.ListDonationsByDonor(ctx, donorID)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	if donations == nil {
		donations = []model.DonationRecord{}
	}

	today := s.today()
	return &model.DonorHistory{
		DonorOverview: s.overview(*donor, today),
		Donations:     donations,
	}, nil
}

// Eligibility рассчитывает текущий допуск донора.
func (s *Service) Eligibility(ctx context.Context, donorID string) (model.Eligibility, error) {
	donor, err := s.repo.GetDonor(ctx, donorID)
	if err != nil {
		return model.Eligibility{}, err
	}
	return eligibility.Compute(*donor, s.today()), nil
}
