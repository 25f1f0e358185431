// Package eligibility рассчитывает окна допуска доноров к сдаче крови.
package eligibility

import (
	"errors"
	"math"
	"time"

	"github.com/mmeshcher/kues-bloodbank/internal/model"
)

// WaitingPeriodDays задаёт обязательный интервал между донациями в днях.
const WaitingPeriodDays = 90

// MinDonorAge задаёт минимальный возраст на дату донации.
const MinDonorAge = 18

const (
	day = 24 * time.Hour
	// approxYear используется для оценки возраста на дату донации.
	approxYear = time.Duration(365.25 * float64(day))
)

var (
	// ErrFutureDate возвращается, если дата донации позже сегодняшней.
	ErrFutureDate = errors.New("donation date cannot be in the future")
	// ErrTooYoung возвращается, если на дату донации донору не было 18 лет.
	ErrTooYoung = errors.New("donor would have been too young to donate at this date")
)

// DateOf отбрасывает время суток и возвращает полночь UTC того же календарного дня.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween возвращает число целых дней от from до to с округлением вниз.
func DaysBetween(from, to time.Time) int {
	return int(math.Floor(float64(DateOf(to).Sub(DateOf(from))) / float64(day)))
}

// NextEligibleDate возвращает дату, начиная с которой донор снова допускается к донации.
func NextEligibleDate(lastDonation time.Time) time.Time {
	return DateOf(lastDonation).AddDate(0, 0, WaitingPeriodDays)
}

// Compute рассчитывает допуск донора на указанный день.
func Compute(donor model.Donor, today time.Time) model.Eligibility {
	if donor.LastDonationDate == nil {
		return model.Eligibility{IsEligible: true}
	}

	daysSince := DaysBetween(*donor.LastDonationDate, today)
	if daysSince >= WaitingPeriodDays {
		return model.Eligibility{
			IsEligible:            true,
			DaysSinceLastDonation: &daysSince,
		}
	}

	next := NextEligibleDate(*donor.LastDonationDate)
	return model.Eligibility{
		IsEligible:            false,
		DaysRemaining:         WaitingPeriodDays - daysSince,
		NextEligibleDate:      &next,
		DaysSinceLastDonation: &daysSince,
	}
}

// ApproximateAge оценивает возраст через год длиной 365.25 дня.
func ApproximateAge(dateOfBirth, at time.Time) int {
	return int(math.Floor(float64(DateOf(at).Sub(DateOf(dateOfBirth))) / float64(approxYear)))
}

// ValidateDonationDate проверяет дату донации, введённую донором.
// dateOfBirth может быть nil, тогда проверка возраста пропускается.
func ValidateDonationDate(candidate time.Time, dateOfBirth *time.Time, today time.Time) error {
	if DateOf(candidate).After(DateOf(today)) {
		return ErrFutureDate
	}
	if dateOfBirth != nil && ApproximateAge(*dateOfBirth, candidate) < MinDonorAge {
		return ErrTooYoung
	}
	return nil
}

// Refresh пересчитывает производные поля донора на указанный день.
func Refresh(donor *model.Donor, today time.Time) {
	if donor.LastDonationDate == nil {
		donor.NextEligibleDate = nil
		donor.DaysSinceLastDonation = nil
		return
	}
	next := NextEligibleDate(*donor.LastDonationDate)
	days := DaysBetween(*donor.LastDonationDate, today)
	donor.NextEligibleDate = &next
	donor.DaysSinceLastDonation = &days
}
