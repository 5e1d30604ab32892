package builder

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/session"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/testutil"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func milestone(name string, amount int64, status, due string) models.Milestone {
	return models.Milestone{
		ID: uuid.New(), Name: name, Amount: amount, Status: status, DueDate: day(due),
		CreatedAt: day("2025-01-01"),
	}
}

func TestBuildEscrowSummary(t *testing.T) {
	project := models.Project{ID: uuid.New(), Title: "House", Location: "Harare", Status: models.ProjectInProgress, Budget: 1000}
	milestones := []models.Milestone{
		milestone("Foundation", 400, models.MilestonePaid, "2025-02-01"),
		milestone("Walls", 300, models.MilestonePending, "2025-04-01"),
		milestone("Roof", 300, models.MilestonePending, "2025-03-01"),
	}

	s := BuildEscrowSummary(project, milestones)

	assert.Equal(t, project.ID, s.Project.ID)
	assert.Equal(t, "House", s.Project.Title)
	assert.Equal(t, "Harare", s.Project.Location)
	assert.Equal(t, models.ProjectInProgress, s.Project.Status)
	assert.Equal(t, int64(1000), s.Budget)
	assert.Equal(t, int64(400), s.TotalPaid)
	assert.Equal(t, int64(600), s.RemainingBalance)
	require.NotNil(t, s.NextPayment)
	assert.Equal(t, "Roof", s.NextPayment.Name)
	assert.Equal(t, "2025-03-01", s.NextPayment.DueDate)
	assert.Equal(t, int64(300), s.NextPayment.Amount)
}

func TestBuildEscrowSummaryVerifiedIsNeitherPaidNorNext(t *testing.T) {
	project := models.Project{ID: uuid.New(), Budget: 500}
	s := BuildEscrowSummary(project, []models.Milestone{
		milestone("Inspection", 200, models.MilestoneVerified, "2025-01-10"),
	})

	assert.Zero(t, s.TotalPaid)
	assert.Equal(t, int64(500), s.RemainingBalance)
	assert.Nil(t, s.NextPayment)
}

func TestBuildEscrowSummaryNoMilestones(t *testing.T) {
	s := BuildEscrowSummary(models.Project{ID: uuid.New(), Budget: 0}, nil)

	assert.Zero(t, s.TotalPaid)
	assert.Zero(t, s.RemainingBalance)
	assert.Nil(t, s.NextPayment)
}

func TestBuildEscrowSummaryRemainingCanGoNegative(t *testing.T) {
	project := models.Project{ID: uuid.New(), Budget: 100}
	s := BuildEscrowSummary(project, []models.Milestone{
		milestone("A", 80, models.MilestonePaid, "2025-01-01"),
		milestone("B", 70, models.MilestonePaid, "2025-01-02"),
	})

	assert.Equal(t, int64(150), s.TotalPaid)
	assert.Equal(t, int64(-50), s.RemainingBalance)
}

func TestBuildEscrowSummaryTieBreak(t *testing.T) {
	project := models.Project{ID: uuid.New(), Budget: 1000}

	later := milestone("Later", 100, models.MilestonePending, "2025-05-01")
	later.CreatedAt = day("2025-01-03")
	earlier := milestone("Earlier", 100, models.MilestonePending, "2025-05-01")
	earlier.CreatedAt = day("2025-01-02")

	s := BuildEscrowSummary(project, []models.Milestone{later, earlier})
	require.NotNil(t, s.NextPayment)
	assert.Equal(t, "Earlier", s.NextPayment.Name)

	a := milestone("A", 100, models.MilestonePending, "2025-05-01")
	b := milestone("B", 100, models.MilestonePending, "2025-05-01")
	a.ID = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	b.ID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

	s = BuildEscrowSummary(project, []models.Milestone{a, b})
	require.NotNil(t, s.NextPayment)
	assert.Equal(t, "B", s.NextPayment.Name)
}

func TestBuildEscrowSummaryDoesNotReorderInput(t *testing.T) {
	milestones := []models.Milestone{
		milestone("Second", 10, models.MilestonePending, "2025-02-01"),
		milestone("First", 10, models.MilestonePending, "2025-01-01"),
	}
	BuildEscrowSummary(models.Project{ID: uuid.New(), Budget: 20}, milestones)
	assert.Equal(t, "Second", milestones[0].Name)
}

func TestEscrowSummaryResponseShape(t *testing.T) {
	db, mock := testutil.MockDB(t)
	owner := &models.User{ID: uuid.New()}
	projectID := uuid.New()
	milestoneID := uuid.New()
	created := day("2025-01-01")

	mock.ExpectQuery(`SELECT \* FROM "projects" WHERE owner_id = \$1 ORDER BY created_at DESC`).
		WithArgs(owner.ID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "title", "location", "budget", "status", "created_at"}).
			AddRow(projectID.String(), owner.ID.String(), "House", "Harare", 1000, models.ProjectPlanning, created))
	mock.ExpectQuery(`SELECT \* FROM "milestones" WHERE "milestones"."project_id" = \$1`).
		WithArgs(projectID.String()).
		WillReturnRows(sqlmock.NewRows(milestoneColumns).
			AddRow(milestoneID.String(), projectID.String(), "Slab", 250, models.MilestonePending, day("2025-03-01"), created, created))

	app := fiber.New()
	app.Get("/escrow-summary", func(c *fiber.Ctx) error {
		session.SetUser(c, owner)
		return c.Next()
	}, NewHandler(nil, nil, NewEscrowService(db), nil, nil).EscrowSummary)

	resp, err := app.Test(httptest.NewRequest("GET", "/escrow-summary", nil))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var body map[string][]map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body["projects"], 1)

	item := body["projects"][0]
	assert.Equal(t, map[string]any{
		"id":       projectID.String(),
		"title":    "House",
		"location": "Harare",
		"status":   models.ProjectPlanning,
		"budget":   float64(1000),
	}, item["project"])
	assert.Equal(t, float64(1000), item["budget"])
	assert.Equal(t, float64(0), item["total_paid"])
	assert.Equal(t, float64(1000), item["remaining_balance"])

	next, ok := item["next_payment"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Slab", next["milestone_name"])
	assert.Equal(t, milestoneID.String(), next["milestone_id"])
	assert.Equal(t, "2025-03-01", next["due_date"])
}
