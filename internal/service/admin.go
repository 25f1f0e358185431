package service

import (
	"crypto/subtle"
	"errors"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/mmeshcher/kues-bloodbank/internal/model"
	"github.com/mmeshcher/kues-bloodbank/internal/validation"
)

// ErrInvalidEmail возвращается для некорректного адреса почты.
var ErrInvalidEmail = errors.New("invalid email address")

// aboutStampLayout повторяет формат отметки о последнем изменении страницы «О нас».
const aboutStampLayout = "1/2/2006, 3:04:05 PM"

// AdminLogin проверяет учётные данные администратора.
func (s *Service) AdminLogin(username, password string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !equal(s.admin.Username, username) || !equal(s.admin.Password, password) {
		s.metrics.LoginFailures.WithLabelValues("admin").Inc()
		return ErrInvalidCredentials
	}
	return nil
}

// AdminForgotPassword принимает запрос на восстановление пароля администратора.
// Ответ не зависит от того, совпал ли адрес.
func (s *Service) AdminForgotPassword(email string) {
	s.mu.RLock()
	matched := strings.EqualFold(s.admin.Email, email)
	s.mu.RUnlock()

	if matched {
		s.logger.Info("admin password reset requested")
	}
}

// AdminAccount возвращает логин и email администратора без пароля.
func (s *Service) AdminAccount() model.AdminAccount {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.AdminAccount{Username: s.admin.Username, Email: s.admin.Email}
}

// ChangeAdminUsername меняет логин администратора после подтверждения паролем.
func (s *Service) ChangeAdminUsername(currentPassword, username string) error {
	if !validation.IsValidAdminUsername(username) {
		return validation.ErrInvalidUsername
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !equal(s.admin.Password, currentPassword) {
		return ErrWrongCurrentPassword
	}
	s.admin.Username = username
	s.logger.Info("admin username changed", zap.String("username", username))
	return nil
}

// ChangeAdminEmail меняет email администратора после подтверждения паролем.
func (s *Service) ChangeAdminEmail(currentPassword, email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !equal(s.admin.Password, currentPassword) {
		return ErrWrongCurrentPassword
	}
	s.admin.Email = email
	return nil
}

// ChangeAdminPassword меняет пароль администратора по тем же правилам, что и у доноров.
func (s *Service) ChangeAdminPassword(current, newPassword, confirm string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !equal(s.admin.Password, current) {
		return ErrWrongCurrentPassword
	}
	if err := validation.CheckNewPassword(newPassword, confirm); err != nil {
		return err
	}
	s.admin.Password = newPassword
	return nil
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
