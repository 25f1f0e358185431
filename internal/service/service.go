// Package service реализует бизнес-логику банка крови: допуск доноров и журнал донаций.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/kues-bloodbank/internal/eligibility"
	"github.com/mmeshcher/kues-bloodbank/internal/metrics"
	"github.com/mmeshcher/kues-bloodbank/internal/model"
	"github.com/mmeshcher/kues-bloodbank/internal/remote"
	"github.com/mmeshcher/kues-bloodbank/internal/repository"
)

var (
	// ErrInvalidCredentials возвращается при неверной паре логин/пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrWrongCurrentPassword возвращается, если текущий пароль указан неверно.
	ErrWrongCurrentPassword = errors.New("current password is incorrect")
	// ErrInvalidBloodType возвращается для неизвестной группы крови.
	ErrInvalidBloodType = errors.New("invalid blood type")
	// ErrInvalidUnits возвращается, если число единиц не положительно.
	ErrInvalidUnits = errors.New("units must be positive")
	// ErrPastRequiredDate возвращается, если дата потребности в прошлом.
	ErrPastRequiredDate = errors.New("required date cannot be in the past")
	// ErrEmptyList возвращается, если после удаления пустых строк список пуст.
	ErrEmptyList = errors.New("list must contain at least one item")
	// ErrTooManyItems возвращается при превышении допустимой длины списка.
	ErrTooManyItems = errors.New("list has too many items")
	// ErrInvalidStockLevels возвращается при некорректных порогах запаса.
	ErrInvalidStockLevels = errors.New("good stock level must exceed low stock level")
)

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error

	CreateDonor(ctx context.Context, donor model.Donor, cred model.Credential) error
	GetDonor(ctx context.Context, id string) (*model.Donor, error)
	ListDonors(ctx context.Context) ([]model.Donor, error)
	UpdateDonorProfile(ctx context.Context, donor model.Donor) error
	SetLastDonationDate(ctx context.Context, donorID string, date time.Time) error
	UpdateNotifications(ctx context.Context, donorID string, email, sms bool) error

	GetCredentialByEmail(ctx context.Context, email string) (*model.Credential, error)
	GetCredentialByDonor(ctx context.Context, donorID string) (*model.Credential, error)
	UpdatePasswordHash(ctx context.Context, donorID, hash string) error
	RecordLogin(ctx context.Context, donorID string, at time.Time) error

	CreateRequest(ctx context.Context, req model.BloodRequest) error
	GetRequest(ctx context.Context, id string) (*model.BloodRequest, error)
	ListRequests(ctx context.Context) ([]model.BloodRequest, error)
	TransitionRequest(ctx context.Context, id string, to model.RequestStatus) (*model.BloodRequest, error)

	RecordDonation(ctx context.Context, in repository.DonationInput) (*model.DonationRecord, error)
	ListDonationsByDonor(ctx context.Context, donorID string) ([]model.DonationRecord, error)
	CountDonations(ctx context.Context) (int, error)

	AddInventory(ctx context.Context, in repository.InventoryInput) error
	ListInventory(ctx context.Context) ([]model.InventoryItem, error)
}

// Service содержит бизнес-логику банка крови.
type Service struct {
	repo         Repository
	remoteClient *remote.Client
	hasher       PasswordHasher
	now          func() time.Time
	logger       *zap.Logger
	metrics      *metrics.Metrics

	syncInterval time.Duration
	events       chan syncEvent

	mu       sync.RWMutex
	settings model.SiteSettings
	admin    model.AdminAccount
}

// Option настраивает Service.
type Option func(*Service)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithHasher задаёт схему хранения паролей.
func WithHasher(h PasswordHasher) Option {
	return func(s *Service) { s.hasher = h }
}

// WithLogger задаёт логгер сервиса.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithMetrics задаёт метрики сервиса.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithAdmin задаёт учётные данные администратора.
func WithAdmin(a model.AdminAccount) Option {
	return func(s *Service) { s.admin = a }
}

// WithSyncInterval задаёт период отправки событий во внешний endpoint.
func WithSyncInterval(d time.Duration) Option {
	return func(s *Service) { s.syncInterval = d }
}

// NewService создаёт новый сервис с указанным хранилищем и клиентом внешнего endpoint.
func NewService(repo Repository, remoteClient *remote.Client, opts ...Option) *Service {
	s := &Service{
		repo:         repo,
		remoteClient: remoteClient,
		hasher:       PlainHasher{},
		now:          time.Now,
		logger:       zap.NewNop(),
		syncInterval: time.Second,
		events:       make(chan syncEvent, syncQueueSize),
		settings:     model.DefaultSiteSettings(),
		admin: model.AdminAccount{
			Username: "admin",
			Password: "kues2024",
			Email:    "admin@kuesbloodbank.org",
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	return s
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

func (s *Service) today() time.Time {
	return eligibility.DateOf(s.now())
}

func (s *Service) overview(donor model.Donor, today time.Time) model.DonorOverview {
	eligibility.Refresh(&donor, today)
	return model.DonorOverview{
		Donor:       donor,
		Eligibility: eligibility.Compute(donor, today),
	}
}
