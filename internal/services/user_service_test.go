package services

import (
	"context"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func expectUserReload(mock sqlmock.Sqlmock, userID uuid.UUID, first, phone string) {
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "subject", "first_name"}).
			AddRow(userID.String(), "sub-1", first))
	mock.ExpectQuery(`SELECT \* FROM "profiles" WHERE "profiles"."user_id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "role", "phone_number"}).
			AddRow(uuid.New().String(), userID.String(), models.RoleBuilder, phone))
}

func TestUserUpdateWritesOnlyProvidedFields(t *testing.T) {
	db, mock := testutil.MockDB(t)
	svc := NewUserService(db)
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET "first_name"=\$1,"updated_at"=\$2 WHERE id = \$3`).
		WithArgs("Tendai", sqlmock.AnyArg(), userID.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "profiles" SET "phone_number"=\$1,"updated_at"=\$2 WHERE user_id = \$3`).
		WithArgs("+263771234567", sqlmock.AnyArg(), userID.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	expectUserReload(mock, userID, "Tendai", "+263771234567")

	user, err := svc.Update(context.Background(), userID, dto.UpdateUserRequest{
		FirstName:   strPtr("  Tendai "),
		PhoneNumber: strPtr("+263771234567"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Tendai", user.FirstName)
	require.NotNil(t, user.Profile)
	assert.Equal(t, "+263771234567", user.Profile.PhoneNumber)
}

func TestUserUpdateEmptyBodyOnlyReloads(t *testing.T) {
	db, mock := testutil.MockDB(t)
	svc := NewUserService(db)
	userID := uuid.New()

	expectUserReload(mock, userID, "Rudo", "")

	user, err := svc.Update(context.Background(), userID, dto.UpdateUserRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Rudo", user.FirstName)
}

func TestUserUpdateRejectsLongPhone(t *testing.T) {
	db, _ := testutil.MockDB(t)
	svc := NewUserService(db)

	_, err := svc.Update(context.Background(), uuid.New(), dto.UpdateUserRequest{
		PhoneNumber: strPtr(strings.Repeat("1", 21)),
	})
	assert.Equal(t, "phone_number", apperr.Field(err))
}
