package model

// MaxBenefits и MaxRequirements ограничивают длину списков на странице «О нас».
const (
	MaxBenefits     = 10
	MaxRequirements = 15
)

// SiteSettings содержит редактируемый контент и параметры сайта.
type SiteSettings struct {
	OrgName          string   `json:"orgName"`
	OrgTagline       string   `json:"orgTagline"`
	OrgAddress       string   `json:"orgAddress"`
	OrgEmail         string   `json:"orgEmail"`
	EmergencyPhone   string   `json:"emergencyPhone"`
	OperatingHours   string   `json:"operatingHours"`
	AboutTitle       string   `json:"aboutTitle"`
	AboutDescription string   `json:"aboutDescription"`
	MissionStatement string   `json:"missionStatement"`
	VisionStatement  string   `json:"visionStatement"`
	Benefits         []string `json:"benefits"`
	Requirements     []string `json:"requirements"`
	ContactAddress   string   `json:"contactAddress"`
	ContactPhone     string   `json:"contactPhone"`
	ContactEmail     string   `json:"contactEmail"`
	ContactEmergency string   `json:"contactEmergency"`
	ContactHours     string   `json:"contactHours"`
	GoodStockLevel   int      `json:"goodStockLevel"`
	LowStockLevel    int      `json:"lowStockLevel"`
	SupportEmail     string   `json:"supportEmail"`
	SupportPhone     string   `json:"supportPhone"`
	AboutLastUpdated string   `json:"aboutLastUpdated,omitempty"`
}

// Clone возвращает копию настроек, не разделяющую срезы с оригиналом.
func (s SiteSettings) Clone() SiteSettings {
	c := s
	c.Benefits = append([]string(nil), s.Benefits...)
	c.Requirements = append([]string(nil), s.Requirements...)
	return c
}

// DefaultSiteSettings возвращает настройки, с которыми стартует сессия.
func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		OrgName:          "KUES Blood Bank",
		OrgTagline:       "Saving Lives Through Efficient Blood Management",
		OrgAddress:       "Khulna University of Engineering & Technology, Khulna, Bangladesh",
		OrgEmail:         "info@kuesbloodbank.org",
		EmergencyPhone:   "+880-1XXX-XXXXXX",
		OperatingHours:   "24/7 Available",
		AboutTitle:       "About KUES Blood Bank",
		AboutDescription: "KUES Blood Bank is a vital healthcare facility dedicated to saving lives through efficient blood supply management. We serve hospitals, clinics, and patients across the region with the highest standards of safety and quality.",
		MissionStatement: "To save lives by managing an efficient blood supply and connecting dedicated donors with those in urgent need of blood transfusions",
		VisionStatement:  "To be the most trusted and reliable blood bank service, setting new standards in blood safety and donor care",
		Benefits: []string{
			"Free comprehensive health screening and medical checkup",
			"Donor identification card and certificate",
			"Satisfaction of directly saving lives",
			"Health benefits from regular blood donation",
			"Community recognition and appreciation",
		},
		Requirements: []string{
			"Age: 18-65 years",
			"Weight: Minimum 50 kg",
			"Good general health",
			"No recent illness or infection",
			"No tattoos in the last 6 months",
			"No recent travel to malaria-endemic zones",
			"Minimum 8 weeks gap between donations",
		},
		ContactAddress:   "Khulna University of Engineering & Technology, Khulna, Bangladesh",
		ContactPhone:     "+880-41-769001",
		ContactEmail:     "info@kuesbloodbank.org",
		ContactEmergency: "+880-1XXX-XXXXXX",
		ContactHours:     "24/7 Available",
		GoodStockLevel:   20,
		LowStockLevel:    10,
		SupportEmail:     "support@kuesbloodbank.org",
		SupportPhone:     "+880-XXXX-XXXXXX",
	}
}

// AdminAccount хранит учётные данные администратора на время жизни процесса.
type AdminAccount struct {
	Username string
	Password string
	Email    string
}
