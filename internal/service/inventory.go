package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmeshcher/kues-bloodbank/internal/eligibility"
	"github.com/mmeshcher/kues-bloodbank/internal/model"
	"github.com/mmeshcher/kues-bloodbank/internal/repository"
)

// StockStatusFor определяет уровень запаса по порогам настроек.
func StockStatusFor(units, good, low int) model.StockStatus {
	switch {
	case units <= 0:
		return model.StockNone
	case units < low:
		return model.StockCritical
	case units < good:
		return model.StockLow
	default:
		return model.StockGood
	}
}

// AddInventory добавляет единицы крови к запасу.
func (s *Service) AddInventory(ctx context.Context, bloodType string, units int, collected *time.Time, location string) error {
	if !model.IsValidBloodType(bloodType) {
		return ErrInvalidBloodType
	}
	if units <= 0 {
		return ErrInvalidUnits
	}

	day := s.today()
	if collected != nil {
		day = eligibility.DateOf(*collected)
	}
	return s.repo.AddInventory(ctx, repository.InventoryInput{
		BloodType:      bloodType,
		Units:          units,
		CollectionDate: day,
		Location:       location,
	})
}

// Inventory возвращает запас с уровнями по текущим порогам.
func (s *Service) Inventory(ctx context.Context, filter model.InventoryFilter) ([]model.InventoryItem, error) {
	items, err := s.repo.ListInventory(ctx)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}

	st := s.Settings()
	res := make([]model.InventoryItem, 0, len(items))
	for _, it := range items {
		it.Status = StockStatusFor(it.Units, st.GoodStockLevel, st.LowStockLevel)
		if filter.BloodType != "" && it.BloodType != filter.BloodType {
			continue
		}
		if filter.Status != "" && it.Status != filter.Status {
			continue
		}
		res = append(res, it)
	}
	return res, nil
}

// Stats собирает сводные показатели банка крови.
func (s *Service) Stats(ctx context.Context) (*model.Stats, error) {
	donors, err := s.repo.ListDonors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list donors: %w", err)
	}
	items, err := s.repo.ListInventory(ctx)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	reqs, err := s.repo.ListRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	donations, err := s.repo.CountDonations(ctx)
	if err != nil {
		return nil, fmt.Errorf("count donations: %w", err)
	}

	stats := &model.Stats{TotalDonors: len(donors), LivesSaved: donations}
	for _, it := range items {
		stats.TotalUnits += it.Units
	}
	for _, r := range reqs {
		if r.Status == model.RequestStatusPending {
			stats.PendingRequests++
		}
	}
	return stats, nil
}

// Donors возвращает всех доноров с текущим допуском.
func (s *Service) Donors(ctx context.Context) ([]model.DonorOverview, error) {
	return s.SearchDonors(ctx, model.DonorFilter{})
}

// SearchDonors ищет доноров по тексту, городу, статусу и группам крови.
func (s *Service) SearchDonors(ctx context.Context, filter model.DonorFilter) ([]model.DonorOverview, error) {
	donors, err := s.repo.ListDonors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list donors: %w", err)
	}

	today := s.today()
	res := make([]model.DonorOverview, 0, len(donors))
	for _, d := range donors {
		if matchDonor(d, filter) {
			res = append(res, s.overview(d, today))
		}
	}
	return res, nil
}

func matchDonor(d model.Donor, f model.DonorFilter) bool {
	if f.Text != "" {
		q := strings.ToLower(f.Text)
		if !strings.Contains(strings.ToLower(d.FullName), q) &&
			!strings.Contains(strings.ToLower(d.BloodType), q) &&
			!strings.Contains(strings.ToLower(d.City), q) {
			return false
		}
	}
	if f.City != "" && !strings.EqualFold(d.City, f.City) {
		return false
	}
	if f.Status != "" && d.Status != f.Status {
		return false
	}
	if len(f.BloodTypes) > 0 {
		found := false
		for _, bt := range f.BloodTypes {
			if bt == d.BloodType {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
