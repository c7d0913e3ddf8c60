package student

import (
	"context"
	"testing"

	"campuspay/internal/config"
	"campuspay/internal/repositories"
	"campuspay/internal/services/wallet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStudentService(t *testing.T) (*repositories.MemoryLedgerRepository, Service) {
	t.Helper()
	repo := repositories.NewMemoryLedgerRepository()
	wallets := wallet.NewService(repo, nil, config.LedgerConfig{})
	return repo, NewService(repo, wallets)
}

func TestStudentService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the student with a wallet", func(t *testing.T) {
		repo, svc := newStudentService(t)

		st, w, err := svc.Create(ctx, CreateInput{
			Name:      "Ahmad Fauzi",
			NIS:       "2024-0134",
			ClassName: "IX-A",
			Dormitory: "Al-Fath",
		})
		require.NoError(t, err)
		assert.Equal(t, st.ID, w.StudentID)
		assert.Equal(t, int64(0), w.Balance)

		stored, err := repo.GetWalletByStudentID(st.ID)
		require.NoError(t, err)
		assert.Equal(t, w.ID, stored.ID)
	})

	t.Run("duplicate student number is rejected", func(t *testing.T) {
		_, svc := newStudentService(t)

		_, _, err := svc.Create(ctx, CreateInput{Name: "Ahmad Fauzi", NIS: "2024-0134"})
		require.NoError(t, err)

		_, _, err = svc.Create(ctx, CreateInput{Name: "Budi Santoso", NIS: "2024-0134"})
		assert.ErrorIs(t, err, ErrDuplicateStudent)
	})

	t.Run("name and student number are required", func(t *testing.T) {
		_, svc := newStudentService(t)

		_, _, err := svc.Create(ctx, CreateInput{NIS: "2024-0134"})
		assert.ErrorIs(t, err, ErrInvalidName)

		_, _, err = svc.Create(ctx, CreateInput{Name: "Ahmad Fauzi"})
		assert.ErrorIs(t, err, ErrInvalidNIS)
	})
}

func TestStudentService_List(t *testing.T) {
	ctx := context.Background()
	_, svc := newStudentService(t)

	for _, nis := range []string{"2024-0001", "2024-0002", "2024-0003"} {
		_, _, err := svc.Create(ctx, CreateInput{Name: "Student " + nis, NIS: nis})
		require.NoError(t, err)
	}

	students, err := svc.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, students, 2)

	students, err = svc.List(ctx, 10, 2)
	require.NoError(t, err)
	assert.Len(t, students, 1)
}
