package service

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher подготавливает пароль к хранению и сверяет его при входе.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(stored, password string) bool
}

// PlainHasher хранит пароль как есть.
type PlainHasher struct{}

// Hash возвращает пароль без изменений.
func (PlainHasher) Hash(password string) (string, error) {
	return password, nil
}

// Verify сравнивает пароль с сохранённым значением.
func (PlainHasher) Verify(stored, password string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}

// BcryptHasher хранит bcrypt-хеш пароля.
type BcryptHasher struct {
	Cost int
}

// Hash вычисляет bcrypt-хеш пароля.
func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify сверяет пароль с bcrypt-хешем.
func (BcryptHasher) Verify(stored, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(password))
	return err == nil
}

// ErrUnknownPasswordScheme возвращается для неподдерживаемой схемы хранения паролей.
var ErrUnknownPasswordScheme = errors.New("unknown password scheme")

// HasherFor возвращает PasswordHasher по имени схемы: plain или bcrypt.
func HasherFor(scheme string) (PasswordHasher, error) {
	switch scheme {
	case "", "plain":
		return PlainHasher{}, nil
	case "bcrypt":
		return BcryptHasher{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownPasswordScheme, scheme)
	}
}
