package service

import (
	"strings"

	"github.com/mmeshcher/kues-bloodbank/internal/model"
)

// Settings возвращает копию текущих настроек сайта.
func (s *Service) Settings() model.SiteSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Clone()
}

// UpdateContent сохраняет тексты организации.
func (s *Service) UpdateContent(c model.ContentSettings) model.SiteSettings {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings.OrgName = c.OrgName
	s.settings.OrgTagline = c.OrgTagline
	s.settings.OrgAddress = c.OrgAddress
	s.settings.OrgEmail = c.OrgEmail
	s.settings.EmergencyPhone = c.EmergencyPhone
	s.settings.OperatingHours = c.OperatingHours
	s.settings.AboutTitle = c.AboutTitle
	s.settings.AboutDescription = c.AboutDescription
	s.settings.MissionStatement = c.MissionStatement
	s.settings.VisionStatement = c.VisionStatement
	return s.settings.Clone()
}

// UpdateConfig сохраняет пороги запаса и контакты поддержки.
func (s *Service) UpdateConfig(c model.WebsiteConfig) (model.SiteSettings, error) {
	if c.LowStockLevel < 0 || c.GoodStockLevel <= c.LowStockLevel {
		return model.SiteSettings{}, ErrInvalidStockLevels
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings.GoodStockLevel = c.GoodStockLevel
	s.settings.LowStockLevel = c.LowStockLevel
	s.settings.SupportEmail = c.SupportEmail
	s.settings.SupportPhone = c.SupportPhone
	return s.settings.Clone(), nil
}

// UpdateAbout сохраняет заголовок и описание страницы «О нас».
func (s *Service) UpdateAbout(title, description string) model.SiteSettings {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings.AboutTitle = title
	s.settings.AboutDescription = description
	s.stampAbout()
	return s.settings.Clone()
}

// UpdateMissionVision сохраняет миссию и видение.
func (s *Service) UpdateMissionVision(mission, vision string) model.SiteSettings {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings.MissionStatement = mission
	s.settings.VisionStatement = vision
	s.stampAbout()
	return s.settings.Clone()
}

// SaveBenefits сохраняет список преимуществ донорства.
func (s *Service) SaveBenefits(items []string) (model.SiteSettings, error) {
	list, err := cleanList(items, model.MaxBenefits)
	if err != nil {
		return model.SiteSettings{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings.Benefits = list
	s.stampAbout()
	return s.settings.Clone(), nil
}

// SaveRequirements сохраняет список требований к донору.
func (s *Service) SaveRequirements(items []string) (model.SiteSettings, error) {
	list, err := cleanList(items, model.MaxRequirements)
	if err != nil {
		return model.SiteSettings{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings.Requirements = list
	s.stampAbout()
	return s.settings.Clone(), nil
}

// UpdateContact сохраняет контакты страницы «О нас».
func (s *Service) UpdateContact(c model.ContactInfo) model.SiteSettings {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings.ContactAddress = c.Address
	s.settings.ContactPhone = c.Phone
	s.settings.ContactEmail = c.Email
	s.settings.ContactEmergency = c.Emergency
	s.settings.ContactHours = c.Hours
	s.stampAbout()
	return s.settings.Clone()
}

// stampAbout вызывается под s.mu.
func (s *Service) stampAbout() {
	s.settings.AboutLastUpdated = s.now().Format(aboutStampLayout)
}

func cleanList(items []string, limit int) ([]string, error) {
	res := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			res = append(res, it)
		}
	}
	if len(res) == 0 {
		return nil, ErrEmptyList
	}
	if len(res) > limit {
		return nil, ErrTooManyItems
	}
	return res, nil
}
