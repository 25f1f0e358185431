package model

import "time"

// DonorRegistration содержит поля формы регистрации донора.
type DonorRegistration struct {
	FullName              string
	BloodType             string
	DateOfBirth           time.Time
	Gender                string
	Phone                 string
	Email                 string
	Address               string
	City                  string
	LastDonationDate      *time.Time
	EmergencyContactName  string
	EmergencyContactPhone string
	MedicalHistory        string
	Password              string
	ConfirmPassword       string
}

// ProfileUpdate содержит редактируемые поля профиля донора.
type ProfileUpdate struct {
	FullName              string
	BloodType             string
	DateOfBirth           *time.Time
	Gender                string
	Phone                 string
	Email                 string
	Address               string
	City                  string
	EmergencyContactName  string
	EmergencyContactPhone string
	MedicalHistory        string
}

// RequestForm содержит поля формы заявки на кровь.
type RequestForm struct {
	StudentID     string
	RequestType   string
	PatientName   string
	BloodType     string
	UnitsRequired int
	Hospital      string
	RequiredDate  *time.Time
	ContactPerson string
	ContactPhone  string
	Reason        string
	Notes         string
}

// DonorOverview объединяет донора и его текущий допуск к донации.
type DonorOverview struct {
	Donor       Donor       `json:"donor"`
	Eligibility Eligibility `json:"eligibility"`
}

// DonorHistory описывает историю донаций донора.
type DonorHistory struct {
	DonorOverview
	Donations []DonationRecord `json:"donations"`
}

// ContentSettings содержит поля формы «Контент» в настройках сайта.
type ContentSettings struct {
	OrgName          string `json:"orgName"`
	OrgTagline       string `json:"orgTagline"`
	OrgAddress       string `json:"orgAddress"`
	OrgEmail         string `json:"orgEmail"`
	EmergencyPhone   string `json:"emergencyPhone"`
	OperatingHours   string `json:"operatingHours"`
	AboutTitle       string `json:"aboutTitle"`
	AboutDescription string `json:"aboutDescription"`
	MissionStatement string `json:"missionStatement"`
	VisionStatement  string `json:"visionStatement"`
}

// WebsiteConfig содержит пороги запаса и контакты поддержки.
type WebsiteConfig struct {
	GoodStockLevel int    `json:"goodStockLevel"`
	LowStockLevel  int    `json:"lowStockLevel"`
	SupportEmail   string `json:"supportEmail"`
	SupportPhone   string `json:"supportPhone"`
}

// ContactInfo содержит контакты страницы «О нас».
type ContactInfo struct {
	Address   string `json:"contactAddress"`
	Phone     string `json:"contactPhone"`
	Email     string `json:"contactEmail"`
	Emergency string `json:"contactEmergency"`
	Hours     string `json:"contactHours"`
}

// InventoryFilter задаёт условия отбора запаса.
type InventoryFilter struct {
	BloodType string
	Status    StockStatus
}
