package repository

import (
	"context"
	"sync"
	"time"

	"github.com/mmeshcher/kues-bloodbank/internal/model"
)

// MemoryRepository хранит все записи в памяти процесса. Данные живут, пока жив процесс.
type MemoryRepository struct {
	mu sync.Mutex

	donors     map[string]*model.Donor
	donorOrder []string

	credByEmail map[string]*model.Credential
	credByDonor map[string]*model.Credential

	requests     map[string]*model.BloodRequest
	requestOrder []string

	donations []model.DonationRecord

	inventory map[string]*model.InventoryItem
}

// NewMemoryRepository создаёт пустое хранилище с нулевым запасом по всем группам крови.
func NewMemoryRepository() *MemoryRepository {
	r := &MemoryRepository{
		donors:      make(map[string]*model.Donor),
		credByEmail: make(map[string]*model.Credential),
		credByDonor: make(map[string]*model.Credential),
		requests:    make(map[string]*model.BloodRequest),
		inventory:   make(map[string]*model.InventoryItem),
	}
	for _, bt := range model.BloodTypes {
		r.inventory[bt] = &model.InventoryItem{BloodType: bt, Location: DefaultLocation}
	}
	return r
}

// Close ничего не освобождает и нужен для совместимости с PostgresRepository.
func (r *MemoryRepository) Close() error {
	return nil
}

// CreateDonor атомарно сохраняет донора и его учётные данные.
func (r *MemoryRepository) CreateDonor(_ context.Context, donor model.Donor, cred model.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.credByEmail[cred.Email]; ok {
		return ErrEmailTaken
	}

	d := donor
	c := cred
	r.donors[d.ID] = &d
	r.donorOrder = append(r.donorOrder, d.ID)
	r.credByEmail[c.Email] = &c
	r.credByDonor[c.DonorID] = &c
	return nil
}

// GetDonor возвращает копию донора по идентификатору.
func (r *MemoryRepository) GetDonor(_ context.Context, id string) (*model.Donor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.donors[id]
	if !ok {
		return nil, ErrDonorNotFound
	}
	cp := *d
	return &cp, nil
}

// ListDonors возвращает доноров в порядке регистрации.
func (r *MemoryRepository) ListDonors(_ context.Context) ([]model.Donor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := make([]model.Donor, 0, len(r.donorOrder))
	for _, id := range r.donorOrder {
		res = append(res, *r.donors[id])
	}
	return res, nil
}

// UpdateDonorProfile обновляет анкетные данные донора. Смена email переносится в учётные данные.
func (r *MemoryRepository) UpdateDonorProfile(_ context.Context, donor model.Donor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.donors[donor.ID]
	if !ok {
		return ErrDonorNotFound
	}

	cred := r.credByDonor[donor.ID]
	if cred != nil && cred.Email != donor.Email {
		if _, taken := r.credByEmail[donor.Email]; taken {
			return ErrEmailTaken
		}
		delete(r.credByEmail, cred.Email)
		cred.Email = donor.Email
		r.credByEmail[cred.Email] = cred
	}

	d.FullName = donor.FullName
	d.BloodType = donor.BloodType
	d.DateOfBirth = donor.DateOfBirth
	d.Gender = donor.Gender
	d.Phone = donor.Phone
	d.Email = donor.Email
	d.Address = donor.Address
	d.City = donor.City
	d.EmergencyContactName = donor.EmergencyContactName
	d.EmergencyContactPhone = donor.EmergencyContactPhone
	d.MedicalHistory = donor.MedicalHistory
	return nil
}

// SetLastDonationDate заменяет дату последней донации донора.
func (r *MemoryRepository) SetLastDonationDate(_ context.Context, donorID string, date time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.donors[donorID]
	if !ok {
		return ErrDonorNotFound
	}
	d.LastDonationDate = &date
	return nil
}

// UpdateNotifications сохраняет настройки уведомлений донора.
func (r *MemoryRepository) UpdateNotifications(_ context.Context, donorID string, email, sms bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.donors[donorID]
	if !ok {
		return ErrDonorNotFound
	}
	d.NotifyEmail = email
	d.NotifySMS = sms
	return nil
}

// GetCredentialByEmail возвращает учётные данные по email.
func (r *MemoryRepository) GetCredentialByEmail(_ context.Context, email string) (*model.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.credByEmail[email]
	if !ok {
		return nil, ErrCredentialNotFound
	}
	cp := *c
	return &cp, nil
}

// GetCredentialByDonor возвращает учётные данные донора.
func (r *MemoryRepository) GetCredentialByDonor(_ context.Context, donorID string) (*model.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.credByDonor[donorID]
	if !ok {
		return nil, ErrCredentialNotFound
	}
	cp := *c
	return &cp, nil
}

// UpdatePasswordHash перезаписывает сохранённый пароль донора.
func (r *MemoryRepository) UpdatePasswordHash(_ context.Context, donorID, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.credByDonor[donorID]
	if !ok {
		return ErrCredentialNotFound
	}
	c.PasswordHash = hash
	return nil
}

// RecordLogin отмечает дату входа в учётных данных и у донора.
func (r *MemoryRepository) RecordLogin(_ context.Context, donorID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.donors[donorID]
	if !ok {
		return ErrDonorNotFound
	}
	c, ok := r.credByDonor[donorID]
	if !ok {
		return ErrCredentialNotFound
	}

	d.LastLoginDate = &at
	c.LastLoginDate = &at
	return nil
}

// CreateRequest сохраняет новую заявку на кровь.
func (r *MemoryRepository) CreateRequest(_ context.Context, req model.BloodRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := req
	r.requests[cp.ID] = &cp
	r.requestOrder = append(r.requestOrder, cp.ID)
	return nil
}

// GetRequest возвращает заявку по идентификатору.
func (r *MemoryRepository) GetRequest(_ context.Context, id string) (*model.BloodRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, ErrRequestNotFound
	}
	cp := *req
	return &cp, nil
}

// ListRequests возвращает заявки в порядке поступления.
func (r *MemoryRepository) ListRequests(_ context.Context) ([]model.BloodRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := make([]model.BloodRequest, 0, len(r.requestOrder))
	for _, id := range r.requestOrder {
		res = append(res, *r.requests[id])
	}
	return res, nil
}

// TransitionRequest меняет статус заявки, если переход разрешён.
func (r *MemoryRepository) TransitionRequest(_ context.Context, id string, to model.RequestStatus) (*model.BloodRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, ErrRequestNotFound
	}
	if !canTransition(req.Status, to) {
		return nil, ErrInvalidTransition
	}
	req.Status = to
	cp := *req
	return &cp, nil
}

// RecordDonation проводит донацию: обновляет донора и заявку и добавляет запись в журнал.
// Повторный вызов для той же заявки снова увеличивает счётчик донаций.
func (r *MemoryRepository) RecordDonation(_ context.Context, in DonationInput) (*model.DonationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[in.RequestID]
	if !ok {
		return nil, ErrRequestNotFound
	}
	if isClosed(req.Status) {
		return nil, ErrInvalidTransition
	}
	donor, ok := r.donors[in.DonorID]
	if !ok {
		return nil, ErrDonorNotFound
	}

	day := in.Date
	donor.LastDonationDate = &day
	donor.LastDonationRequestID = in.RequestID
	donor.TotalDonations++

	req.Status = model.RequestStatusInProgress
	req.AssignedDonorID = in.DonorID
	req.DonationDate = &day

	rec := model.DonationRecord{
		ID:           in.ID,
		DonorID:      in.DonorID,
		RequestID:    in.RequestID,
		BloodType:    req.BloodType,
		Hospital:     req.Hospital,
		DonationDate: day,
		Status:       model.DonationStatusCompleted,
	}
	r.donations = append(r.donations, rec)
	return &rec, nil
}

// ListDonationsByDonor возвращает историю донаций донора в порядке проведения.
func (r *MemoryRepository) ListDonationsByDonor(_ context.Context, donorID string) ([]model.DonationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res []model.DonationRecord
	for _, d := range r.donations {
		if d.DonorID == donorID {
			res = append(res, d)
		}
	}
	return res, nil
}

// CountDonations возвращает общее число проведённых донаций.
func (r *MemoryRepository) CountDonations(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.donations), nil
}

// AddInventory добавляет единицы крови к запасу группы.
func (r *MemoryRepository) AddInventory(_ context.Context, in InventoryInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.inventory[in.BloodType]
	if !ok {
		return ErrUnknownBloodType
	}

	collected := in.CollectionDate
	expires := expirationOf(collected)
	item.Units += in.Units
	item.CollectionDate = &collected
	item.ExpirationDate = &expires
	if in.Location != "" {
		item.Location = in.Location
	}
	return nil
}

// ListInventory возвращает запас по всем группам крови.
func (r *MemoryRepository) ListInventory(_ context.Context) ([]model.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := make([]model.InventoryItem, 0, len(model.BloodTypes))
	for _, bt := range model.BloodTypes {
		res = append(res, *r.inventory[bt])
	}
	return res, nil
}
