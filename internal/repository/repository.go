// Package repository содержит реализации хранилища доноров, заявок и донаций.
package repository

import (
	"errors"
	"time"

	"github.com/mmeshcher/kues-bloodbank/internal/model"
)

var (
	// ErrEmailTaken возвращается при попытке зарегистрировать уже занятый email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrDonorNotFound возвращается, если донор не найден.
	ErrDonorNotFound = errors.New("donor not found")
	// ErrCredentialNotFound возвращается, если учётные данные не найдены.
	ErrCredentialNotFound = errors.New("credential not found")
	// ErrRequestNotFound возвращается, если заявка на кровь не найдена.
	ErrRequestNotFound = errors.New("blood request not found")
	// ErrInvalidTransition возвращается при недопустимой смене статуса заявки.
	ErrInvalidTransition = errors.New("request status transition not allowed")
	// ErrUnknownBloodType возвращается для группы крови вне списка.
	ErrUnknownBloodType = errors.New("unknown blood type")
)

// DefaultLocation задаёт место хранения запаса по умолчанию.
const DefaultLocation = "Main Bank"

// ShelfLifeDays задаёт срок годности крови с даты забора.
const ShelfLifeDays = 35

// DonationInput описывает донацию, которую нужно провести одной операцией.
type DonationInput struct {
	ID        string
	DonorID   string
	RequestID string
	Date      time.Time
}

// InventoryInput описывает поступление единиц крови на склад.
type InventoryInput struct {
	BloodType      string
	Units          int
	CollectionDate time.Time
	Location       string
}

// canTransition проверяет правила смены статуса заявки администратором.
func canTransition(from, to model.RequestStatus) bool {
	if from != model.RequestStatusPending {
		return false
	}
	switch to {
	case model.RequestStatusFulfilled, model.RequestStatusRejected:
		return true
	default:
		return false
	}
}

// isClosed сообщает, закрыта ли заявка для новых донаций.
func isClosed(status model.RequestStatus) bool {
	return status == model.RequestStatusFulfilled || status == model.RequestStatusRejected
}

func expirationOf(collection time.Time) time.Time {
	return collection.AddDate(0, 0, ShelfLifeDays)
}
