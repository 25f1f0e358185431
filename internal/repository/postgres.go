package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"

	"github.com/mmeshcher/kues-bloodbank/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresRepository предоставляет доступ к хранилищу данных в PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository создаёт новый репозиторий и инициализирует схему БД через миграции.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{pool: pool}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// withRetry повторяет fn при конфликтах сериализации, взаимоблокировках и обрывах соединения.
func (r *PostgresRepository) withRetry(ctx context.Context, fn func() error) error {
	backoff := retry.WithMaxRetries(3, retry.NewExponential(time.Second))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn()
		if err != nil && isRetryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
	}
	return isConnectionError(err)
}

func isConnectionError(err error) bool {
	// Упрощенная проверка на ошибки соединения
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "broken pipe") ||
		strings.Contains(err.Error(), "connection reset by peer")
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

const donorColumns = `id, full_name, blood_type, date_of_birth, gender, phone, email, address, city,
	emergency_name, emergency_phone, medical_history, last_donation_date, last_donation_request_id,
	total_donations, status, registration_date, last_login_date, notify_email, notify_sms`

func scanDonor(row pgx.Row) (*model.Donor, error) {
	var (
		d      model.Donor
		status string
	)
	err := row.Scan(
		&d.ID, &d.FullName, &d.BloodType, &d.DateOfBirth, &d.Gender, &d.Phone, &d.Email, &d.Address, &d.City,
		&d.EmergencyContactName, &d.EmergencyContactPhone, &d.MedicalHistory, &d.LastDonationDate, &d.LastDonationRequestID,
		&d.TotalDonations, &status, &d.RegistrationDate, &d.LastLoginDate, &d.NotifyEmail, &d.NotifySMS,
	)
	if err != nil {
		return nil, err
	}
	d.Status = model.DonorStatus(status)
	return &d, nil
}

// CreateDonor атомарно сохраняет донора и его учётные данные.
func (r *PostgresRepository) CreateDonor(ctx context.Context, donor model.Donor, cred model.Credential) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO donors (`+donorColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		donor.ID, donor.FullName, donor.BloodType, donor.DateOfBirth, donor.Gender, donor.Phone, donor.Email, donor.Address, donor.City,
		donor.EmergencyContactName, donor.EmergencyContactPhone, donor.MedicalHistory, donor.LastDonationDate, donor.LastDonationRequestID,
		donor.TotalDonations, string(donor.Status), donor.RegistrationDate, donor.LastLoginDate, donor.NotifyEmail, donor.NotifySMS,
	)
	if err != nil {
		return fmt.Errorf("insert donor: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO credentials (donor_id, email, password_hash, created_date, last_login_date, status)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		cred.DonorID, cred.Email, cred.PasswordHash, cred.CreatedDate, cred.LastLoginDate, string(cred.Status),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%w: %s", ErrEmailTaken, cred.Email)
		}
		return fmt.Errorf("insert credential: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetDonor возвращает донора по идентификатору.
func (r *PostgresRepository) GetDonor(ctx context.Context, id string) (*model.Donor, error) {
	d, err := scanDonor(r.pool.QueryRow(ctx, `SELECT `+donorColumns+` FROM donors WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDonorNotFound
		}
		return nil, fmt.Errorf("get donor: %w", err)
	}
	return d, nil
}

// ListDonors возвращает доноров в порядке регистрации.
func (r *PostgresRepository) ListDonors(ctx context.Context) ([]model.Donor, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+donorColumns+` FROM donors ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("select donors: %w", err)
	}
	defer rows.Close()

	var res []model.Donor
	for rows.Next() {
		d, err := scanDonor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan donor: %w", err)
		}
		res = append(res, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return res, nil
}

// UpdateDonorProfile обновляет анкетные данные донора и email в учётных данных.
func (r *PostgresRepository) UpdateDonorProfile(ctx context.Context, donor model.Donor) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE donors SET full_name = $2, blood_type = $3, date_of_birth = $4, gender = $5, phone = $6,
		 email = $7, address = $8, city = $9, emergency_name = $10, emergency_phone = $11, medical_history = $12
		 WHERE id = $1`,
		donor.ID, donor.FullName, donor.BloodType, donor.DateOfBirth, donor.Gender, donor.Phone,
		donor.Email, donor.Address, donor.City, donor.EmergencyContactName, donor.EmergencyContactPhone, donor.MedicalHistory,
	)
	if err != nil {
		return fmt.Errorf("update donor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDonorNotFound
	}

	_, err = tx.Exec(ctx, `UPDATE credentials SET email = $2 WHERE donor_id = $1`, donor.ID, donor.Email)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%w: %s", ErrEmailTaken, donor.Email)
		}
		return fmt.Errorf("update credential email: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// SetLastDonationDate заменяет дату последней донации донора.
func (r *PostgresRepository) SetLastDonationDate(ctx context.Context, donorID string, date time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE donors SET last_donation_date = $2 WHERE id = $1`, donorID, date)
	if err != nil {
		return fmt.Errorf("update last donation date: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDonorNotFound
	}
	return nil
}

// UpdateNotifications сохраняет настройки уведомлений донора.
func (r *PostgresRepository) UpdateNotifications(ctx context.Context, donorID string, email, sms bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE donors SET notify_email = $2, notify_sms = $3 WHERE id = $1`,
		donorID, email, sms,
	)
	if err != nil {
		return fmt.Errorf("update notifications: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDonorNotFound
	}
	return nil
}

func (r *PostgresRepository) getCredential(ctx context.Context, where string, arg string) (*model.Credential, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT donor_id, email, password_hash, created_date, last_login_date, status
		 FROM credentials WHERE `+where+` = $1`,
		arg,
	)

	var (
		c      model.Credential
		status string
	)
	err := row.Scan(&c.DonorID, &c.Email, &c.PasswordHash, &c.CreatedDate, &c.LastLoginDate, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCredentialNotFound
		}
		return nil, fmt.Errorf("get credential: %w", err)
	}
	c.Status = model.DonorStatus(status)
	return &c, nil
}

// GetCredentialByEmail возвращает учётные данные по email.
func (r *PostgresRepository) GetCredentialByEmail(ctx context.Context, email string) (*model.Credential, error) {
	return r.getCredential(ctx, "email", email)
}

// GetCredentialByDonor возвращает учётные данные донора.
func (r *PostgresRepository) GetCredentialByDonor(ctx context.Context, donorID string) (*model.Credential, error) {
	return r.getCredential(ctx, "donor_id", donorID)
}

// UpdatePasswordHash перезаписывает сохранённый пароль донора.
func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, donorID, hash string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE credentials SET password_hash = $2 WHERE donor_id = $1`, donorID, hash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCredentialNotFound
	}
	return nil
}

// RecordLogin отмечает дату входа в учётных данных и у донора.
func (r *PostgresRepository) RecordLogin(ctx context.Context, donorID string, at time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE donors SET last_login_date = $2 WHERE id = $1`, donorID, at)
	if err != nil {
		return fmt.Errorf("update donor login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDonorNotFound
	}

	tag, err = tx.Exec(ctx, `UPDATE credentials SET last_login_date = $2 WHERE donor_id = $1`, donorID, at)
	if err != nil {
		return fmt.Errorf("update credential login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCredentialNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

const requestColumns = `id, student_id, request_type, patient_name, blood_type, units_required, hospital,
	required_date, contact_person, contact_phone, reason, notes, priority, status, request_date,
	assigned_donor_id, donation_date`

func scanRequest(row pgx.Row) (*model.BloodRequest, error) {
	var (
		req      model.BloodRequest
		priority string
		status   string
		assigned *string
	)
	err := row.Scan(
		&req.ID, &req.StudentID, &req.RequestType, &req.PatientName, &req.BloodType, &req.UnitsRequired, &req.Hospital,
		&req.RequiredDate, &req.ContactPerson, &req.ContactPhone, &req.Reason, &req.Notes, &priority, &status, &req.RequestDate,
		&assigned, &req.DonationDate,
	)
	if err != nil {
		return nil, err
	}
	req.Priority = model.RequestPriority(priority)
	req.Status = model.RequestStatus(status)
	if assigned != nil {
		req.AssignedDonorID = *assigned
	}
	return &req, nil
}

// CreateRequest сохраняет новую заявку на кровь.
func (r *PostgresRepository) CreateRequest(ctx context.Context, req model.BloodRequest) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO blood_requests (id, student_id, request_type, patient_name, blood_type, units_required, hospital,
		 required_date, contact_person, contact_phone, reason, notes, priority, status, request_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		req.ID, req.StudentID, req.RequestType, req.PatientName, req.BloodType, req.UnitsRequired, req.Hospital,
		req.RequiredDate, req.ContactPerson, req.ContactPhone, req.Reason, req.Notes, string(req.Priority), string(req.Status), req.RequestDate,
	)
	if err != nil {
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

// GetRequest возвращает заявку по идентификатору.
func (r *PostgresRepository) GetRequest(ctx context.Context, id string) (*model.BloodRequest, error) {
	req, err := scanRequest(r.pool.QueryRow(ctx, `SELECT `+requestColumns+` FROM blood_requests WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("get request: %w", err)
	}
	return req, nil
}

// ListRequests возвращает заявки в порядке поступления.
func (r *PostgresRepository) ListRequests(ctx context.Context) ([]model.BloodRequest, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+requestColumns+` FROM blood_requests ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("select requests: %w", err)
	}
	defer rows.Close()

	var res []model.BloodRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		res = append(res, *req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return res, nil
}

// TransitionRequest меняет статус заявки, если переход разрешён. Строка заявки блокируется на время проверки.
func (r *PostgresRepository) TransitionRequest(ctx context.Context, id string, to model.RequestStatus) (*model.BloodRequest, error) {
	var res *model.BloodRequest
	err := r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		req, err := scanRequest(tx.QueryRow(ctx, `SELECT `+requestColumns+` FROM blood_requests WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrRequestNotFound
			}
			return fmt.Errorf("lock request: %w", err)
		}
		if !canTransition(req.Status, to) {
			return ErrInvalidTransition
		}

		if _, err := tx.Exec(ctx, `UPDATE blood_requests SET status = $2 WHERE id = $1`, id, string(to)); err != nil {
			return fmt.Errorf("update request status: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}

		req.Status = to
		res = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// RecordDonation проводит донацию одной транзакцией: обновляет донора и заявку и добавляет запись в журнал.
func (r *PostgresRepository) RecordDonation(ctx context.Context, in DonationInput) (*model.DonationRecord, error) {
	var rec *model.DonationRecord
	err := r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		var bloodType, hospital, status string
		err = tx.QueryRow(ctx,
			`SELECT blood_type, hospital, status FROM blood_requests WHERE id = $1 FOR UPDATE`,
			in.RequestID,
		).Scan(&bloodType, &hospital, &status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrRequestNotFound
			}
			return fmt.Errorf("lock request: %w", err)
		}
		if isClosed(model.RequestStatus(status)) {
			return ErrInvalidTransition
		}

		tag, err := tx.Exec(ctx,
			`UPDATE donors SET last_donation_date = $2, last_donation_request_id = $3, total_donations = total_donations + 1
			 WHERE id = $1`,
			in.DonorID, in.Date, in.RequestID,
		)
		if err != nil {
			return fmt.Errorf("update donor: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrDonorNotFound
		}

		_, err = tx.Exec(ctx,
			`UPDATE blood_requests SET status = $2, assigned_donor_id = $3, donation_date = $4 WHERE id = $1`,
			in.RequestID, string(model.RequestStatusInProgress), in.DonorID, in.Date,
		)
		if err != nil {
			return fmt.Errorf("update request: %w", err)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO donations (id, donor_id, request_id, blood_type, hospital, donation_date, status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			in.ID, in.DonorID, in.RequestID, bloodType, hospital, in.Date, model.DonationStatusCompleted,
		)
		if err != nil {
			return fmt.Errorf("insert donation: %w", err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}

		rec = &model.DonationRecord{
			ID:           in.ID,
			DonorID:      in.DonorID,
			RequestID:    in.RequestID,
			BloodType:    bloodType,
			Hospital:     hospital,
			DonationDate: in.Date,
			Status:       model.DonationStatusCompleted,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListDonationsByDonor возвращает историю донаций донора в порядке проведения.
func (r *PostgresRepository) ListDonationsByDonor(ctx context.Context, donorID string) ([]model.DonationRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, donor_id, request_id, blood_type, hospital, donation_date, status
		 FROM donations
		 WHERE donor_id = $1
		 ORDER BY seq`,
		donorID,
	)
	if err != nil {
		return nil, fmt.Errorf("select donations: %w", err)
	}
	defer rows.Close()

	var res []model.DonationRecord
	for rows.Next() {
		var d model.DonationRecord
		if err := rows.Scan(&d.ID, &d.DonorID, &d.RequestID, &d.BloodType, &d.Hospital, &d.DonationDate, &d.Status); err != nil {
			return nil, fmt.Errorf("scan donation: %w", err)
		}
		res = append(res, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return res, nil
}

// CountDonations возвращает общее число проведённых донаций.
func (r *PostgresRepository) CountDonations(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM donations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count donations: %w", err)
	}
	return n, nil
}

// AddInventory добавляет единицы крови к запасу группы.
func (r *PostgresRepository) AddInventory(ctx context.Context, in InventoryInput) error {
	location := in.Location
	if location == "" {
		location = DefaultLocation
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE inventory SET units = units + $2, collection_date = $3, location = $4 WHERE blood_type = $1`,
		in.BloodType, in.Units, in.CollectionDate, location,
	)
	if err != nil {
		return fmt.Errorf("update inventory: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUnknownBloodType
	}
	return nil
}

// ListInventory возвращает запас по всем группам крови.
func (r *PostgresRepository) ListInventory(ctx context.Context) ([]model.InventoryItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT blood_type, units, collection_date, location FROM inventory`)
	if err != nil {
		return nil, fmt.Errorf("select inventory: %w", err)
	}
	defer rows.Close()

	byType := make(map[string]model.InventoryItem)
	for rows.Next() {
		var item model.InventoryItem
		if err := rows.Scan(&item.BloodType, &item.Units, &item.CollectionDate, &item.Location); err != nil {
			return nil, fmt.Errorf("scan inventory: %w", err)
		}
		if item.CollectionDate != nil {
			exp := expirationOf(*item.CollectionDate)
			item.ExpirationDate = &exp
		}
		byType[item.BloodType] = item
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	res := make([]model.InventoryItem, 0, len(model.BloodTypes))
	for _, bt := range model.BloodTypes {
		if item, ok := byType[bt]; ok {
			res = append(res, item)
		}
	}
	return res, nil
}
