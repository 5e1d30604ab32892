package contractor

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var profileColumns = []string{"id", "user_id", "company_name", "license_number", "created_at", "updated_at"}

func TestWIPAAOverUnderBilling(t *testing.T) {
	over := WIPAA{BilledRevenue: 1200, EarnedRevenue: 1000}
	require.NoError(t, over.AfterFind(nil))
	assert.Equal(t, int64(200), over.OverUnderBilling)

	under := WIPAA{BilledRevenue: 700, EarnedRevenue: 1000}
	require.NoError(t, under.AfterFind(nil))
	assert.Equal(t, int64(-300), under.OverUnderBilling)
}

func TestCreateProfile(t *testing.T) {
	userID := uuid.New()

	t.Run("second profile conflicts", func(t *testing.T) {
		db, mock := testutil.MockDB(t)
		svc := NewContractorService(db, events.Noop{})

		mock.ExpectQuery(`SELECT count\(\*\) FROM "contractor_profiles" WHERE user_id = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		_, err := svc.CreateProfile(context.Background(), userID, CreateProfileRequest{CompanyName: "Moyo Builders"})
		assert.ErrorIs(t, err, apperr.ErrConflict)
	})

	t.Run("company name required", func(t *testing.T) {
		db, _ := testutil.MockDB(t)
		svc := NewContractorService(db, events.Noop{})

		_, err := svc.CreateProfile(context.Background(), userID, CreateProfileRequest{CompanyName: "  "})
		assert.Equal(t, "company_name", apperr.Field(err))
	})

	t.Run("creates", func(t *testing.T) {
		db, mock := testutil.MockDB(t)
		svc := NewContractorService(db, events.Noop{})

		mock.ExpectQuery(`SELECT count\(\*\) FROM "contractor_profiles"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "contractor_profiles"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))
		mock.ExpectCommit()

		profile, err := svc.CreateProfile(context.Background(), userID, CreateProfileRequest{
			CompanyName: " Moyo Builders ", LicenseNumber: "ZW-123",
		})
		require.NoError(t, err)
		assert.Equal(t, "Moyo Builders", profile.CompanyName)
		assert.Equal(t, userID, profile.UserID)
	})
}

func TestCreateBid(t *testing.T) {
	userID := uuid.New()
	profileID := uuid.New()
	projectID := uuid.New()
	now := time.Now()

	expectProfile := func(mock sqlmock.Sqlmock) {
		mock.ExpectQuery(`SELECT \* FROM "contractor_profiles" WHERE user_id = \$1`).
			WillReturnRows(sqlmock.NewRows(profileColumns).
				AddRow(profileID.String(), userID.String(), "Moyo Builders", "ZW-123", now, now))
	}

	t.Run("requires a profile", func(t *testing.T) {
		db, mock := testutil.MockDB(t)
		svc := NewContractorService(db, events.Noop{})

		mock.ExpectQuery(`SELECT \* FROM "contractor_profiles"`).
			WillReturnRows(sqlmock.NewRows(profileColumns))

		_, err := svc.CreateBid(context.Background(), userID, CreateBidRequest{ProjectID: projectID})
		assert.ErrorIs(t, err, ErrProfileRequired)
		assert.Equal(t, 400, apperr.Status(err))
	})

	t.Run("closed project", func(t *testing.T) {
		db, mock := testutil.MockDB(t)
		svc := NewContractorService(db, events.Noop{})

		expectProfile(mock)
		mock.ExpectQuery(`SELECT "id","status" FROM "projects"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(projectID.String(), models.ProjectCompleted))

		_, err := svc.CreateBid(context.Background(), userID, CreateBidRequest{ProjectID: projectID})
		assert.ErrorIs(t, err, ErrProjectClosed)
	})

	t.Run("submitted bid totals costs and publishes", func(t *testing.T) {
		db, mock := testutil.MockDB(t)
		pub := &testutil.RecordingPublisher{}
		svc := NewContractorService(db, pub)

		expectProfile(mock)
		mock.ExpectQuery(`SELECT "id","status" FROM "projects"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(projectID.String(), models.ProjectPlanning))
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "bids"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))
		mock.ExpectCommit()

		bid, err := svc.CreateBid(context.Background(), userID, CreateBidRequest{
			ProjectID: projectID, DirectCosts: 50000, Overhead: 7500, NetMargin: 5000, Status: models.BidSubmitted,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(62500), bid.TotalAmount)
		assert.Equal(t, profileID, bid.ContractorID)
		assert.Equal(t, []string{events.BidSubmitted}, pub.Kinds)
	})

	t.Run("contractor cannot accept own bid", func(t *testing.T) {
		db, _ := testutil.MockDB(t)
		svc := NewContractorService(db, events.Noop{})

		_, err := svc.CreateBid(context.Background(), userID, CreateBidRequest{ProjectID: projectID, Status: models.BidAccepted})
		assert.Equal(t, "status", apperr.Field(err))
	})

	t.Run("negative costs rejected", func(t *testing.T) {
		db, _ := testutil.MockDB(t)
		svc := NewContractorService(db, events.Noop{})

		_, err := svc.CreateBid(context.Background(), userID, CreateBidRequest{ProjectID: projectID, Overhead: -1})
		assert.Equal(t, "overhead", apperr.Field(err))
	})
}
