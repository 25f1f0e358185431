// Package validation содержит функции валидации входных данных.
package validation

import (
	"errors"
	"time"
	"unicode"
	"unicode/utf8"
)

// Возрастные границы регистрации донора, обе включительно.
const (
	MinRegistrationAge = 18
	MaxRegistrationAge = 65
)

// MinPasswordLength задаёт минимальную длину пароля донора и администратора.
const MinPasswordLength = 8

var (
	// ErrUnderage возвращается, если донору меньше 18 лет.
	ErrUnderage = errors.New("donor must be at least 18 years old")
	// ErrTooOld возвращается, если донору больше 65 лет.
	ErrTooOld = errors.New("donor must be 65 years old or younger")
	// ErrWeakPassword возвращается, если пароль короче 8 символов или не содержит букв и цифр.
	ErrWeakPassword = errors.New("password must be at least 8 characters and contain letters and numbers")
	// ErrPasswordMismatch возвращается, если пароль и подтверждение различаются.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrInvalidStudentID возвращается для номера студента не из 6 цифр.
	ErrInvalidStudentID = errors.New("student id must be exactly 6 digits")
	// ErrInvalidUsername возвращается для логина администратора вне формата.
	ErrInvalidUsername = errors.New("username must be 5-20 characters, alphanumeric only")
)

// CalendarAge возвращает полное число лет на дату at с учётом месяца и дня рождения.
func CalendarAge(dateOfBirth, at time.Time) int {
	age := at.Year() - dateOfBirth.Year()
	monthDiff := int(at.Month()) - int(dateOfBirth.Month())
	if monthDiff < 0 || (monthDiff == 0 && at.Day() < dateOfBirth.Day()) {
		age--
	}
	return age
}

// CheckDonorAge проверяет возраст донора при регистрации.
func CheckDonorAge(dateOfBirth, today time.Time) error {
	age := CalendarAge(dateOfBirth, today)
	if age < MinRegistrationAge {
		return ErrUnderage
	}
	if age > MaxRegistrationAge {
		return ErrTooOld
	}
	return nil
}

// CheckNewPassword проверяет стойкость нового пароля и совпадение с подтверждением.
func CheckNewPassword(password, confirm string) error {
	if !IsStrongPassword(password) {
		return ErrWeakPassword
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}

// IsStrongPassword проверяет длину пароля и наличие латинских букв и цифр.
func IsStrongPassword(password string) bool {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return false
	}
	hasLetter, hasDigit, _ := classify(password)
	return hasLetter && hasDigit
}

// Strength описывает уровень стойкости пароля для индикатора.
type Strength string

const (
	StrengthWeak   Strength = "weak"
	StrengthMedium Strength = "medium"
	StrengthStrong Strength = "strong"
)

// PasswordStrength оценивает стойкость пароля.
func PasswordStrength(password string) Strength {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return StrengthWeak
	}
	hasLetter, hasDigit, hasSpecial := classify(password)
	switch {
	case hasLetter && hasDigit && hasSpecial && utf8.RuneCountInString(password) >= 12:
		return StrengthStrong
	case hasLetter && hasDigit:
		return StrengthMedium
	default:
		return StrengthWeak
	}
}

func classify(s string) (hasLetter, hasDigit, hasSpecial bool) {
	for _, ch := range s {
		switch {
		case isASCIILetter(ch):
			hasLetter = true
		case ch >= '0' && ch <= '9':
			hasDigit = true
		default:
			hasSpecial = true
		}
	}
	return hasLetter, hasDigit, hasSpecial
}

func isASCIILetter(ch rune) bool {
	return ch < unicode.MaxASCII && unicode.IsLetter(ch)
}

// IsValidStudentID проверяет, что номер студента состоит ровно из 6 цифр.
func IsValidStudentID(id string) bool {
	if len(id) != 6 {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < '0' || id[i] > '9' {
			return false
		}
	}
	return true
}

// IsValidAdminUsername проверяет логин администратора: 5–20 латинских букв и цифр.
func IsValidAdminUsername(username string) bool {
	if len(username) < 5 || len(username) > 20 {
		return false
	}
	for _, ch := range username {
		if !isASCIILetter(ch) && (ch < '0' || ch > '9') {
			return false
		}
	}
	return true
}
