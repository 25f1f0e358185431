package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/kues-bloodbank/internal/model"
)

var day0 = time.Date(2026, time.October, 16, 0, 0, 0, 0, time.UTC)

func seedDonor(t *testing.T, r *MemoryRepository, id, email string) {
	t.Helper()

	err := r.CreateDonor(context.Background(),
		model.Donor{ID: id, FullName: "Donor " + id, BloodType: "O+", Email: email, Status: model.DonorStatusActive},
		model.Credential{DonorID: id, Email: email, PasswordHash: "abc12345", Status: model.DonorStatusActive},
	)
	require.NoError(t, err)
}

func seedRequest(t *testing.T, r *MemoryRepository, id, bloodType string) {
	t.Helper()

	err := r.CreateRequest(context.Background(), model.BloodRequest{
		ID:        id,
		BloodType: bloodType,
		Hospital:  "KUET Medical Centre",
		Status:    model.RequestStatusPending,
		Priority:  model.PriorityNormal,
	})
	require.NoError(t, err)
}

func TestMemoryRepository_CreateDonorRejectsDuplicateEmail(t *testing.T) {
	r := NewMemoryRepository()
	seedDonor(t, r, "D1", "a@x.com")

	err := r.CreateDonor(context.Background(),
		model.Donor{ID: "D2", Email: "a@x.com"},
		model.Credential{DonorID: "D2", Email: "a@x.com"},
	)
	require.ErrorIs(t, err, ErrEmailTaken)

	donors, err := r.ListDonors(context.Background())
	require.NoError(t, err)
	assert.Len(t, donors, 1)

	_, err = r.GetCredentialByDonor(context.Background(), "D2")
	assert.ErrorIs(t, err, ErrCredentialNotFound)
}

func TestMemoryRepository_RecordDonationIsNotIdempotent(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	seedDonor(t, r, "D1", "a@x.com")
	seedRequest(t, r, "R1", "O+")

	for i := 0; i < 2; i++ {
		rec, err := r.RecordDonation(ctx, DonationInput{ID: "DON" + string(rune('A'+i)), DonorID: "D1", RequestID: "R1", Date: day0})
		require.NoError(t, err)
		assert.Equal(t, "O+", rec.BloodType)
		assert.Equal(t, "KUET Medical Centre", rec.Hospital)
		assert.Equal(t, model.DonationStatusCompleted, rec.Status)
	}

	donor, err := r.GetDonor(ctx, "D1")
	require.NoError(t, err)
	assert.Equal(t, 2, donor.TotalDonations)
	assert.Equal(t, "R1", donor.LastDonationRequestID)
	require.NotNil(t, donor.LastDonationDate)
	assert.Equal(t, day0, *donor.LastDonationDate)

	req, err := r.GetRequest(ctx, "R1")
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusInProgress, req.Status)
	assert.Equal(t, "D1", req.AssignedDonorID)

	history, err := r.ListDonationsByDonor(ctx, "D1")
	require.NoError(t, err)
	assert.Len(t, history, 2)

	n, err := r.CountDonations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMemoryRepository_RecordDonationMissingRequestLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	seedDonor(t, r, "D1", "a@x.com")

	_, err := r.RecordDonation(ctx, DonationInput{ID: "DON1", DonorID: "D1", RequestID: "missing", Date: day0})
	require.ErrorIs(t, err, ErrRequestNotFound)

	donor, err := r.GetDonor(ctx, "D1")
	require.NoError(t, err)
	assert.Zero(t, donor.TotalDonations)
	assert.Nil(t, donor.LastDonationDate)

	n, err := r.CountDonations(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemoryRepository_TransitionRequest(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	seedRequest(t, r, "R1", "A+")
	seedRequest(t, r, "R2", "A+")

	req, err := r.TransitionRequest(ctx, "R1", model.RequestStatusFulfilled)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusFulfilled, req.Status)

	_, err = r.TransitionRequest(ctx, "R1", model.RequestStatusRejected)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = r.TransitionRequest(ctx, "R2", model.RequestStatusInProgress)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = r.TransitionRequest(ctx, "missing", model.RequestStatusRejected)
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestMemoryRepository_ListRequestsKeepsInsertionOrder(t *testing.T) {
	r := NewMemoryRepository()
	for _, id := range []string{"R3", "R1", "R2"} {
		seedRequest(t, r, id, "B-")
	}

	reqs, err := r.ListRequests(context.Background())
	require.NoError(t, err)
	require.Len(t, reqs, 3)
	assert.Equal(t, "R3", reqs[0].ID)
	assert.Equal(t, "R1", reqs[1].ID)
	assert.Equal(t, "R2", reqs[2].ID)
}

func TestMemoryRepository_UpdateDonorProfileMovesEmail(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	seedDonor(t, r, "D1", "a@x.com")
	seedDonor(t, r, "D2", "b@x.com")

	donor, err := r.GetDonor(ctx, "D1")
	require.NoError(t, err)

	donor.Email = "b@x.com"
	require.ErrorIs(t, r.UpdateDonorProfile(ctx, *donor), ErrEmailTaken)

	donor.Email = "c@x.com"
	donor.City = "Khulna"
	require.NoError(t, r.UpdateDonorProfile(ctx, *donor))

	cred, err := r.GetCredentialByEmail(ctx, "c@x.com")
	require.NoError(t, err)
	assert.Equal(t, "D1", cred.DonorID)

	_, err = r.GetCredentialByEmail(ctx, "a@x.com")
	assert.ErrorIs(t, err, ErrCredentialNotFound)
}

func TestMemoryRepository_RecordLoginUpdatesBoth(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	seedDonor(t, r, "D1", "a@x.com")

	require.NoError(t, r.RecordLogin(ctx, "D1", day0))

	donor, err := r.GetDonor(ctx, "D1")
	require.NoError(t, err)
	cred, err := r.GetCredentialByDonor(ctx, "D1")
	require.NoError(t, err)

	require.NotNil(t, donor.LastLoginDate)
	require.NotNil(t, cred.LastLoginDate)
	assert.Equal(t, day0, *donor.LastLoginDate)
	assert.Equal(t, day0, *cred.LastLoginDate)
}

func TestMemoryRepository_Inventory(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	require.NoError(t, r.AddInventory(ctx, InventoryInput{BloodType: "AB-", Units: 3, CollectionDate: day0}))
	require.NoError(t, r.AddInventory(ctx, InventoryInput{BloodType: "AB-", Units: 2, CollectionDate: day0}))
	assert.ErrorIs(t, r.AddInventory(ctx, InventoryInput{BloodType: "C+", Units: 1, CollectionDate: day0}), ErrUnknownBloodType)

	items, err := r.ListInventory(ctx)
	require.NoError(t, err)
	require.Len(t, items, len(model.BloodTypes))

	for _, item := range items {
		if item.BloodType != "AB-" {
			assert.Zero(t, item.Units)
			continue
		}
		assert.Equal(t, 5, item.Units)
		assert.Equal(t, DefaultLocation, item.Location)
		require.NotNil(t, item.ExpirationDate)
		assert.Equal(t, day0.AddDate(0, 0, ShelfLifeDays), *item.ExpirationDate)
	}
}
