package builder

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

var milestoneColumns = []string{"id", "project_id", "name", "amount", "status", "due_date", "created_at", "updated_at"}

func TestPayMilestone(t *testing.T) {
	payer := uuid.New()
	projectID := uuid.New()
	milestoneID := uuid.New()
	paidAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("pays a pending milestone", func(t *testing.T) {
		db, mock := testutil.MockDB(t)
		pub := &testutil.RecordingPublisher{}
		svc := NewPaymentService(db, pub)
		svc.now = func() time.Time { return paidAt }

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "milestones" WHERE project_id IN \(SELECT id FROM "projects" WHERE owner_id = \$1\)`).
			WillReturnRows(sqlmock.NewRows(milestoneColumns).
				AddRow(milestoneID.String(), projectID.String(), "Roof", 300, models.MilestonePending, paidAt, paidAt, paidAt))
		mock.ExpectExec(`UPDATE "milestones" SET "status"=\$1`).
			WithArgs(models.MilestonePaid, sqlmock.AnyArg(), milestoneID, models.MilestonePaid).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO "payments"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))
		mock.ExpectCommit()

		payment, err := svc.PayMilestone(context.Background(), payer, CreatePaymentRequest{
			ProjectID: projectID, MilestoneID: milestoneID, Method: " EcoCash ", Reference: "TX-1",
		})
		require.NoError(t, err)

		assert.Equal(t, int64(300), payment.Amount)
		assert.Equal(t, projectID, payment.ProjectID)
		assert.Equal(t, payer, payment.PayerID)
		assert.Equal(t, "EcoCash", payment.Method)
		assert.Equal(t, PaymentCompleted, payment.Status)
		assert.Equal(t, paidAt, payment.PaidAt)
		assert.Equal(t, []string{events.MilestonePaid}, pub.Kinds)
	})

	t.Run("already paid milestone conflicts without writing", func(t *testing.T) {
		db, mock := testutil.MockDB(t)
		pub := &testutil.RecordingPublisher{}
		svc := NewPaymentService(db, pub)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "milestones"`).
			WillReturnRows(sqlmock.NewRows(milestoneColumns).
				AddRow(milestoneID.String(), projectID.String(), "Roof", 300, models.MilestonePaid, paidAt, paidAt, paidAt))
		mock.ExpectRollback()

		_, err := svc.PayMilestone(context.Background(), payer, CreatePaymentRequest{MilestoneID: milestoneID})
		assert.ErrorIs(t, err, apperr.ErrConflict)
		assert.Empty(t, pub.Kinds)
	})

	t.Run("concurrent payment loses the conditional update", func(t *testing.T) {
		db, mock := testutil.MockDB(t)
		svc := NewPaymentService(db, events.Noop{})

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "milestones"`).
			WillReturnRows(sqlmock.NewRows(milestoneColumns).
				AddRow(milestoneID.String(), projectID.String(), "Roof", 300, models.MilestonePending, paidAt, paidAt, paidAt))
		mock.ExpectExec(`UPDATE "milestones" SET "status"=\$1`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err := svc.PayMilestone(context.Background(), payer, CreatePaymentRequest{MilestoneID: milestoneID})
		assert.ErrorIs(t, err, apperr.ErrConflict)
		assert.Equal(t, 409, apperr.Status(err))
	})

	t.Run("milestone of another owner is not found", func(t *testing.T) {
		db, mock := testutil.MockDB(t)
		svc := NewPaymentService(db, events.Noop{})

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "milestones"`).
			WillReturnRows(sqlmock.NewRows(milestoneColumns))
		mock.ExpectRollback()

		_, err := svc.PayMilestone(context.Background(), payer, CreatePaymentRequest{MilestoneID: milestoneID})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("project mismatch is a validation error", func(t *testing.T) {
		db, mock := testutil.MockDB(t)
		svc := NewPaymentService(db, events.Noop{})

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "milestones"`).
			WillReturnRows(sqlmock.NewRows(milestoneColumns).
				AddRow(milestoneID.String(), projectID.String(), "Roof", 300, models.MilestonePending, paidAt, paidAt, paidAt))
		mock.ExpectRollback()

		_, err := svc.PayMilestone(context.Background(), payer, CreatePaymentRequest{
			ProjectID: uuid.New(), MilestoneID: milestoneID,
		})
		assert.Equal(t, 400, apperr.Status(err))
		assert.Equal(t, "project_id", apperr.Field(err))
	})

	t.Run("missing milestone id never touches the database", func(t *testing.T) {
		db, _ := testutil.MockDB(t)
		svc := NewPaymentService(db, events.Noop{})

		_, err := svc.PayMilestone(context.Background(), payer, CreatePaymentRequest{})
		assert.Equal(t, "milestone_id", apperr.Field(err))
	})
}
