package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/kues-bloodbank/internal/eligibility"
	"github.com/mmeshcher/kues-bloodbank/internal/ids"
	"github.com/mmeshcher/kues-bloodbank/internal/model"
	"github.com/mmeshcher/kues-bloodbank/internal/repository"
	"github.com/mmeshcher/kues-bloodbank/internal/validation"
)

// RegisterDonor регистрирует нового донора вместе с учётными данными.
func (s *Service) RegisterDonor(ctx context.Context, form model.DonorRegistration) (*model.Donor, error) {
	today := s.today()

	if err := validation.CheckDonorAge(form.DateOfBirth, today); err != nil {
		return nil, err
	}
	if err := validation.CheckNewPassword(form.Password, form.ConfirmPassword); err != nil {
		return nil, err
	}
	if !model.IsValidBloodType(form.BloodType) {
		return nil, ErrInvalidBloodType
	}

	dob := eligibility.DateOf(form.DateOfBirth)
	var lastDonation *time.Time
	if form.LastDonationDate != nil {
		d := eligibility.DateOf(*form.LastDonationDate)
		if err := eligibility.ValidateDonationDate(d, &dob, today); err != nil {
			return nil, err
		}
		lastDonation = &d
	}

	_, err := s.repo.GetCredentialByEmail(ctx, form.Email)
	switch {
	case err == nil:
		return nil, repository.ErrEmailTaken
	case !errors.Is(err, repository.ErrCredentialNotFound):
		return nil, fmt.Errorf("lookup credential: %w", err)
	}

	hash, err := s.hasher.Hash(form.Password)
	if err != nil {
		return nil, err
	}

	donor := model.Donor{
		ID:                    ids.New(ids.PrefixDonor),
		FullName:              form.FullName,
		BloodType:             form.BloodType,
		DateOfBirth:           &dob,
		Gender:                form.Gender,
		Phone:                 form.Phone,
		Email:                 form.Email,
		Address:               form.Address,
		City:                  form.City,
		EmergencyContactName:  form.EmergencyContactName,
		EmergencyContactPhone: form.EmergencyContactPhone,
		MedicalHistory:        form.MedicalHistory,
		LastDonationDate:      lastDonation,
		Status:                model.DonorStatusActive,
		RegistrationDate:      today,
		NotifyEmail:           true,
		NotifySMS:             true,
	}
	cred := model.Credential{
		DonorID:      donor.ID,
		Email:        form.Email,
		PasswordHash: hash,
		CreatedDate:  today,
		Status:       model.DonorStatusActive,
	}

	if err := s.repo.CreateDonor(ctx, donor, cred); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("create donor: %w", err)
	}

	s.metrics.DonorsRegistered.Inc()
	s.enqueue("registerDonor", map[string]any{
		"donorId":   donor.ID,
		"bloodType": donor.BloodType,
		"city":      donor.City,
	})

	eligibility.Refresh(&donor, today)
	return &donor, nil
}

// Login проверяет учётные данные донора и отмечает дату входа.
func (s *Service) Login(ctx context.Context, email, password string) (*model.Donor, error) {
	cred, err := s.repo.GetCredentialByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			s.metrics.LoginFailures.WithLabelValues("donor").Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup credential: %w", err)
	}
	if !s.hasher.Verify(cred.PasswordHash, password) {
		s.metrics.LoginFailures.WithLabelValues("donor").Inc()
		return nil, ErrInvalidCredentials
	}

	today := s.today()
	if err := s.repo.RecordLogin(ctx, cred.DonorID, today); err != nil {
		return nil, err
	}

	donor, err := s.repo.GetDonor(ctx, cred.DonorID)
	if err != nil {
		return nil, err
	}
	eligibility.Refresh(donor, today)
	return donor, nil
}

// ChangePassword меняет пароль донора после проверки текущего.
func (s *Service) ChangePassword(ctx context.Context, donorID, current, newPassword, confirm string) error {
	cred, err := s.repo.GetCredentialByDonor(ctx, donorID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(cred.PasswordHash, current) {
		return ErrWrongCurrentPassword
	}
	if err := validation.CheckNewPassword(newPassword, confirm); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.repo.UpdatePasswordHash(ctx, donorID, hash)
}

// ForgotPassword принимает запрос на восстановление пароля.
// Результат не раскрывает, существует ли учётная запись.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	_, err := s.repo.GetCredentialByEmail(ctx, email)
	switch {
	case err == nil:
		s.logger.Info("password reset requested", zap.String("email", email))
	case errors.Is(err, repository.ErrCredentialNotFound):
		s.logger.Debug("password reset for unknown email")
	default:
		return fmt.Errorf("lookup credential: %w", err)
	}
	return nil
}

// Dashboard возвращает донора с пересчитанным допуском к донации.
func (s *Service) Dashboard(ctx context.Context, donorID string) (*model.DonorOverview, error) {
	donor, err := s.repo.GetDonor(ctx, donorID)
	if err != nil {
		return nil, err
	}
	ov := s.overview(*donor, s.today())
	return &ov, nil
}

// UpdateProfile сохраняет анкетные данные донора.
func (s *Service) UpdateProfile(ctx context.Context, donorID string, upd model.ProfileUpdate) (*model.Donor, error) {
	if !model.IsValidBloodType(upd.BloodType) {
		return nil, ErrInvalidBloodType
	}

	donor, err := s.repo.GetDonor(ctx, donorID)
	if err != nil {
		return nil, err
	}

	donor.FullName = upd.FullName
	donor.BloodType = upd.BloodType
	if upd.DateOfBirth != nil {
		dob := eligibility.DateOf(*upd.DateOfBirth)
		donor.DateOfBirth = &dob
	}
	donor.Gender = upd.Gender
	donor.Phone = upd.Phone
	donor.Email = upd.Email
	donor.Address = upd.Address
	donor.City = upd.City
	donor.EmergencyContactName = upd.EmergencyContactName
	donor.EmergencyContactPhone = upd.EmergencyContactPhone
	donor.MedicalHistory = upd.MedicalHistory

	if err := s.repo.UpdateDonorProfile(ctx, *donor); err != nil {
		return nil, err
	}
	eligibility.Refresh(donor, s.today())
	return donor, nil
}

// UpdateLastDonationDate исправляет дату последней донации.
func (s *Service) UpdateLastDonationDate(ctx context.Context, donorID string, date time.Time, reason string) (*model.DonorOverview, error) {
	donor, err := s.repo.GetDonor(ctx, donorID)
	if err != nil {
		return nil, err
	}

	today := s.today()
	day := eligibility.DateOf(date)
	if err := eligibility.ValidateDonationDate(day, donor.DateOfBirth, today); err != nil {
		return nil, err
	}

	if err := s.repo.SetLastDonationDate(ctx, donorID, day); err != nil {
		return nil, err
	}

	var previous string
	if donor.LastDonationDate != nil {
		previous = donor.LastDonationDate.Format(time.DateOnly)
	}
	s.logger.Info("last donation date updated",
		zap.String("donor_id", donorID),
		zap.String("previous", previous),
		zap.String("new", day.Format(time.DateOnly)),
		zap.String("reason", reason),
	)

	donor.LastDonationDate = &day
	ov := s.overview(*donor, today)
	return &ov, nil
}

// UpdateNotifications сохраняет настройки уведомлений донора.
func (s *Service) UpdateNotifications(ctx context.Context, donorID string, email, sms bool) error {
	return s.repo.UpdateNotifications(ctx, donorID, email, sms)
}

// PreviewEligibility проверяет дату донации и рассчитывает допуск от неё.
func (s *Service) PreviewEligibility(candidate time.Time, dateOfBirth *time.Time) (model.Eligibility, error) {
	today := s.today()
	day := eligibility.DateOf(candidate)
	if err := eligibility.ValidateDonationDate(day, dateOfBirth, today); err != nil {
		return model.Eligibility{}, err
	}
	return eligibility.Compute(model.Donor{LastDonationDate: &day}, today), nil
}
