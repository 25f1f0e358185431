// Package model содержит доменные сущности сервиса банка крови.
package model

import "time"

// BloodTypes перечисляет поддерживаемые группы крови в порядке отображения.
var BloodTypes = []string{"A+", "A-", "B+", "B-", "O+", "O-", "AB+", "AB-"}

// IsValidBloodType проверяет, что группа крови входит в список поддерживаемых.
func IsValidBloodType(bloodType string) bool {
	for _, bt := range BloodTypes {
		if bt == bloodType {
			return true
		}
	}
	return false
}

// DonorStatus описывает состояние учётной записи донора.
type DonorStatus string

const (
	DonorStatusActive  DonorStatus = "Active"
	DonorStatusPending DonorStatus = "Pending"
)

// Donor представляет зарегистрированного донора и его донорское состояние.
type Donor struct {
	ID                    string      `json:"donorId"`
	FullName              string      `json:"fullName"`
	BloodType             string      `json:"bloodType"`
	DateOfBirth           *time.Time  `json:"dateOfBirth,omitempty"`
	Gender                string      `json:"gender,omitempty"`
	Phone                 string      `json:"phone"`
	Email                 string      `json:"email"`
	Address               string      `json:"address"`
	City                  string      `json:"city"`
	EmergencyContactName  string      `json:"emergencyContactName,omitempty"`
	EmergencyContactPhone string      `json:"emergencyContactPhone,omitempty"`
	MedicalHistory        string      `json:"medicalHistory,omitempty"`
	LastDonationDate      *time.Time  `json:"lastDonationDate"`
	LastDonationRequestID string      `json:"lastDonationRequestId,omitempty"`
	NextEligibleDate      *time.Time  `json:"nextEligibleDate"`
	DaysSinceLastDonation *int        `json:"daysSinceLastDonation"`
	TotalDonations        int         `json:"totalDonations"`
	Status                DonorStatus `json:"status"`
	RegistrationDate      time.Time   `json:"registrationDate"`
	LastLoginDate         *time.Time  `json:"lastLoginDate"`
	NotifyEmail           bool        `json:"notificationEmailEnabled"`
	NotifySMS             bool        `json:"notificationSMSEnabled"`
}

// Credential описывает данные входа донора. PasswordHash хранит значение,
// подготовленное PasswordHasher, и при схеме plain совпадает с паролем.
type Credential struct {
	DonorID       string
	Email         string
	PasswordHash  string
	CreatedDate   time.Time
	LastLoginDate *time.Time
	Status        DonorStatus
}

// RequestStatus описывает статус заявки на кровь.
type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "Pending"
	RequestStatusInProgress RequestStatus = "In Progress"
	RequestStatusFulfilled  RequestStatus = "Fulfilled"
	RequestStatusRejected   RequestStatus = "Rejected"
)

// RequestPriority описывает приоритет заявки.
type RequestPriority string

const (
	PriorityNormal RequestPriority = "Normal"
	PriorityHigh   RequestPriority = "High"
)

// RequestTypeEmergency повышает приоритет заявки до High.
const RequestTypeEmergency = "Emergency"

// BloodRequest описывает заявку на получение крови.
type BloodRequest struct {
	ID              string          `json:"requestId"`
	StudentID       string          `json:"studentId"`
	RequestType     string          `json:"requestType"`
	PatientName     string          `json:"patientName"`
	BloodType       string          `json:"bloodType"`
	UnitsRequired   int             `json:"unitsRequired"`
	Hospital        string          `json:"hospital"`
	RequiredDate    *time.Time      `json:"requiredDate,omitempty"`
	ContactPerson   string          `json:"contactPerson"`
	ContactPhone    string          `json:"contactPhone"`
	Reason          string          `json:"reason,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	Priority        RequestPriority `json:"priority"`
	Status          RequestStatus   `json:"status"`
	RequestDate     time.Time       `json:"requestDate"`
	AssignedDonorID string          `json:"assignedDonorId,omitempty"`
	DonationDate    *time.Time      `json:"donationDate,omitempty"`
}

// DonationStatusCompleted является единственным статусом записи о донации.
const DonationStatusCompleted = "Completed"

// DonationRecord описывает неизменяемую запись журнала донаций.
type DonationRecord struct {
	ID           string    `json:"donationId"`
	DonorID      string    `json:"donorId"`
	RequestID    string    `json:"requestId"`
	BloodType    string    `json:"bloodType"`
	Hospital     string    `json:"hospital"`
	DonationDate time.Time `json:"donationDate"`
	Status       string    `json:"status"`
}

// Eligibility описывает результат расчёта окна допуска к донации.
type Eligibility struct {
	IsEligible            bool       `json:"isEligible"`
	DaysRemaining         int        `json:"daysRemaining"`
	NextEligibleDate      *time.Time `json:"nextEligibleDate"`
	DaysSinceLastDonation *int       `json:"daysSinceLastDonation"`
}

// StockStatus описывает уровень запаса крови.
type StockStatus string

const (
	StockGood     StockStatus = "Good Stock"
	StockLow      StockStatus = "Low Stock"
	StockCritical StockStatus = "Critical"
	StockNone     StockStatus = "No Stock"
)

// InventoryItem описывает запас крови одной группы.
type InventoryItem struct {
	BloodType      string      `json:"bloodType"`
	Units          int         `json:"units"`
	CollectionDate *time.Time  `json:"collectionDate"`
	ExpirationDate *time.Time  `json:"expirationDate"`
	Location       string      `json:"location"`
	Status         StockStatus `json:"status"`
}

// Stats содержит сводные показатели для главной страницы и панели администратора.
type Stats struct {
	TotalDonors     int `json:"totalDonors"`
	TotalUnits      int `json:"totalUnits"`
	PendingRequests int `json:"pendingRequests"`
	LivesSaved      int `json:"livesSaved"`
}

// DonorFilter задаёт условия поиска доноров.
type DonorFilter struct {
	Text       string
	City       string
	Status     DonorStatus
	BloodTypes []string
}
