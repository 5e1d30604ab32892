package services

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	userColumns    = []string{"id", "subject", "email", "first_name", "last_name"}
	profileColumns = []string{"id", "user_id", "role", "phone_number"}
)

func TestGormUserStoreCreate(t *testing.T) {
	t.Run("insert wins", func(t *testing.T) {
		db, mock := testutil.MockDB(t)
		store := NewGormUserStore(db)
		id := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "users" .* ON CONFLICT \("subject"\) DO NOTHING RETURNING "id"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id.String()))
		mock.ExpectCommit()

		user := &models.User{Subject: "sub-1", Email: "a@example.com"}
		require.NoError(t, store.Create(context.Background(), user))
		assert.Equal(t, id, user.ID)
	})

	t.Run("concurrent insert wins the subject", func(t *testing.T) {
		db, mock := testutil.MockDB(t)
		store := NewGormUserStore(db)
		existing := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "users" .* ON CONFLICT \("subject"\) DO NOTHING`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectCommit()
		mock.ExpectQuery(`SELECT \* FROM "users" WHERE subject = \$1`).
			WithArgs("sub-1", 1).
			WillReturnRows(sqlmock.NewRows(userColumns).
				AddRow(existing.String(), "sub-1", "a@example.com", "Rudo", ""))

		user := &models.User{Subject: "sub-1", Email: "a@example.com"}
		require.NoError(t, store.Create(context.Background(), user))
		assert.Equal(t, existing, user.ID)
		assert.Equal(t, "Rudo", user.FirstName)
	})
}

func TestGormUserStoreEnsureProfile(t *testing.T) {
	userID := uuid.New()

	t.Run("existing profile is returned", func(t *testing.T) {
		db, mock := testutil.MockDB(t)
		profileID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "profiles" WHERE user_id = \$1`).
			WithArgs(userID.String(), 1).
			WillReturnRows(sqlmock.NewRows(profileColumns).
				AddRow(profileID.String(), userID.String(), models.RoleSupplier, ""))

		profile, err := NewGormUserStore(db).EnsureProfile(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, profileID, profile.ID)
		assert.Equal(t, models.RoleSupplier, profile.Role)
	})

	t.Run("missing profile is created with the default role and reloaded", func(t *testing.T) {
		db, mock := testutil.MockDB(t)
		profileID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "profiles" WHERE user_id = \$1`).
			WithArgs(userID.String(), 1).
			WillReturnRows(sqlmock.NewRows(profileColumns))
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "profiles" .* ON CONFLICT \("user_id"\) DO NOTHING RETURNING "id"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(profileID.String()))
		mock.ExpectCommit()
		mock.ExpectQuery(`SELECT \* FROM "profiles" WHERE user_id = \$1`).
			WillReturnRows(sqlmock.NewRows(profileColumns).
				AddRow(profileID.String(), userID.String(), models.RoleBuilder, ""))

		profile, err := NewGormUserStore(db).EnsureProfile(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, profileID, profile.ID)
		assert.Equal(t, userID, profile.UserID)
		assert.Equal(t, models.RoleBuilder, profile.Role)
	})
}

func TestGormUserStoreUpdateUserWritesGivenColumns(t *testing.T) {
	db, mock := testutil.MockDB(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET "first_name"=\$1,"last_name"=\$2,"updated_at"=\$3 WHERE id = \$4`).
		WithArgs("Rudo", "Moyo", sqlmock.AnyArg(), id.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := NewGormUserStore(db).UpdateUser(context.Background(), id, map[string]interface{}{
		"first_name": "Rudo",
		"last_name":  "Moyo",
	})
	require.NoError(t, err)
}

func TestSyncOverGormRollsBackUserWriteWhenProfileWriteFails(t *testing.T) {
	db, mock := testutil.MockDB(t)
	svc := NewIdentitySyncService(NewGormUserStore(db))
	userID := uuid.New()
	profileID := uuid.New()
	writeErr := errors.New("deadlock detected")

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE subject = \$1`).
		WithArgs("sub-1", 1).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(userID.String(), "sub-1", "a@example.com", "Old", ""))
	mock.ExpectQuery(`SELECT \* FROM "profiles" WHERE user_id = \$1`).
		WithArgs(userID.String(), 1).
		WillReturnRows(sqlmock.NewRows(profileColumns).
			AddRow(profileID.String(), userID.String(), models.RoleBuilder, ""))
	mock.ExpectExec(`UPDATE "users" SET "first_name"=\$1,"updated_at"=\$2 WHERE id = \$3`).
		WithArgs("A", sqlmock.AnyArg(), userID.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "profiles" SET "role"=\$1,"updated_at"=\$2 WHERE id = \$3`).
		WithArgs(models.RoleSupplier, sqlmock.AnyArg(), profileID.String()).
		WillReturnError(writeErr)
	mock.ExpectRollback()

	_, err := svc.Sync(context.Background(), &identity.Identity{
		Subject:  "sub-1",
		Metadata: map[string]any{"first_name": "A", "role": "SUPPLIER"},
	})
	require.ErrorIs(t, err, writeErr)
}
