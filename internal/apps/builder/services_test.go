package builder

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bidColumns = []string{"id", "project_id", "contractor_id", "total_amount", "status"}

func TestReviewBid(t *testing.T) {
	owner := uuid.New()
	projectID := uuid.New()
	bidID := uuid.New()

	expectSubmittedBid := func(mock sqlmock.Sqlmock) {
		mock.ExpectQuery(`SELECT \* FROM "bids" WHERE project_id IN \(SELECT id FROM "projects" WHERE owner_id = \$1\)`).
			WillReturnRows(sqlmock.NewRows(bidColumns).
				AddRow(bidID.String(), projectID.String(), uuid.New().String(), 5000, models.BidSubmitted))
	}
	expectProjectStatus := func(mock sqlmock.Sqlmock, status string) {
		mock.ExpectQuery(`SELECT "id","status" FROM "projects" WHERE id = \$1`).
			WithArgs(projectID.String(), 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(projectID.String(), status))
	}
	expectStatusUpdate := func(mock sqlmock.Sqlmock, status string) {
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "bids" SET "status"=\$1,"updated_at"=\$2 WHERE \(?id = \$3 AND status = \$4`).
			WithArgs(status, sqlmock.AnyArg(), bidID.String(), models.BidSubmitted).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
	}

	t.Run("accepting on a completed project conflicts", func(t *testing.T) {
		db, mock := testutil.MockDB(t)
		svc := NewProjectService(db, events.Noop{}, services.NewContentFilter())

		expectSubmittedBid(mock)
		expectProjectStatus(mock, models.ProjectCompleted)

		_, err := svc.ReviewBid(context.Background(), owner, bidID, models.BidAccepted)
		assert.ErrorIs(t, err, ErrProjectClosed)
		assert.ErrorIs(t, err, apperr.ErrConflict)
	})

	t.Run("accepting on an open project", func(t *testing.T) {
		db, mock := testutil.MockDB(t)
		svc := NewProjectService(db, events.Noop{}, services.NewContentFilter())

		expectSubmittedBid(mock)
		expectProjectStatus(mock, models.ProjectInProgress)
		expectStatusUpdate(mock, models.BidAccepted)

		bid, err := svc.ReviewBid(context.Background(), owner, bidID, models.BidAccepted)
		require.NoError(t, err)
		assert.Equal(t, models.BidAccepted, bid.Status)
	})

	t.Run("rejecting does not depend on project status", func(t *testing.T) {
		db, mock := testutil.MockDB(t)
		svc := NewProjectService(db, events.Noop{}, services.NewContentFilter())

		expectSubmittedBid(mock)
		expectStatusUpdate(mock, models.BidRejected)

		bid, err := svc.ReviewBid(context.Background(), owner, bidID, models.BidRejected)
		require.NoError(t, err)
		assert.Equal(t, models.BidRejected, bid.Status)
	})

	t.Run("invalid status", func(t *testing.T) {
		db, _ := testutil.MockDB(t)
		svc := NewProjectService(db, events.Noop{}, services.NewContentFilter())

		_, err := svc.ReviewBid(context.Background(), owner, bidID, models.BidDraft)
		assert.Equal(t, "status", apperr.Field(err))
	})
}
