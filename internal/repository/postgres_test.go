package repository

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/kues-bloodbank/internal/ids"
	"github.com/mmeshcher/kues-bloodbank/internal/model"
)

// Тест выполняется только при заданной TEST_DATABASE_URI.
func newTestPostgres(t *testing.T) *PostgresRepository {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URI")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URI is not set")
	}

	r, err := NewPostgresRepository(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestPostgresRepository_DonationLedger(t *testing.T) {
	ctx := context.Background()
	r := newTestPostgres(t)

	donorID := ids.New(ids.PrefixDonor)
	email := donorID + "@example.com"
	require.NoError(t, r.CreateDonor(ctx,
		model.Donor{ID: donorID, FullName: "PG Donor", BloodType: "A-", Email: email, Status: model.DonorStatusActive, RegistrationDate: day0},
		model.Credential{DonorID: donorID, Email: email, PasswordHash: "abc12345", CreatedDate: day0, Status: model.DonorStatusActive},
	))

	dupID := ids.New(ids.PrefixDonor)
	err := r.CreateDonor(ctx,
		model.Donor{ID: dupID, Email: email, RegistrationDate: day0},
		model.Credential{DonorID: dupID, Email: email, CreatedDate: day0},
	)
	require.ErrorIs(t, err, ErrEmailTaken)
	_, err = r.GetDonor(ctx, dupID)
	assert.ErrorIs(t, err, ErrDonorNotFound)

	reqID := ids.New(ids.PrefixRequest)
	require.NoError(t, r.CreateRequest(ctx, model.BloodRequest{
		ID: reqID, BloodType: "A-", UnitsRequired: 1, Hospital: "KMCH",
		Priority: model.PriorityNormal, Status: model.RequestStatusPending, RequestDate: day0,
	}))

	for i := 0; i < 2; i++ {
		_, err := r.RecordDonation(ctx, DonationInput{ID: ids.New(ids.PrefixDonation), DonorID: donorID, RequestID: reqID, Date: day0})
		require.NoError(t, err)
	}

	donor, err := r.GetDonor(ctx, donorID)
	require.NoError(t, err)
	assert.Equal(t, 2, donor.TotalDonations)

	history, err := r.ListDonationsByDonor(ctx, donorID)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	_, err = r.TransitionRequest(ctx, reqID, model.RequestStatusFulfilled)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	closedID := ids.New(ids.PrefixRequest)
	require.NoError(t, r.CreateRequest(ctx, model.BloodRequest{
		ID: closedID, BloodType: "A-", UnitsRequired: 1, Hospital: "KMCH",
		Priority: model.PriorityNormal, Status: model.RequestStatusPending, RequestDate: day0,
	}))
	_, err = r.TransitionRequest(ctx, closedID, model.RequestStatusRejected)
	require.NoError(t, err)

	_, err = r.RecordDonation(ctx, DonationInput{ID: ids.New(ids.PrefixDonation), DonorID: donorID, RequestID: closedID, Date: day0})
	require.ErrorIs(t, err, ErrInvalidTransition)

	donor, err = r.GetDonor(ctx, donorID)
	require.NoError(t, err)
	assert.Equal(t, 2, donor.TotalDonations)
}
