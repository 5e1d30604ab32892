package builder

import (
	"context"
	"fmt"
	"sort"

	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/session"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// BuildEscrowSummary aggregates one project's milestones. The next payment is
// the PENDING milestone due first; ties go to the earlier created, then the
// lower id.
func BuildEscrowSummary(p models.Project, milestones []models.Milestone) EscrowSummary {
	summary := EscrowSummary{
		Project: EscrowProject{
			ID:       p.ID,
			Title:    p.Title,
			Location: p.Location,
			Status:   p.Status,
			Budget:   p.Budget,
		},
		Budget: p.Budget,
	}

	var pending []models.Milestone
	for _, m := range milestones {
		switch m.Status {
		case models.MilestonePaid:
			summary.TotalPaid += m.Amount
		case models.MilestonePending:
			pending = append(pending, m)
		}
	}
	summary.RemainingBalance = p.Budget - summary.TotalPaid

	if len(pending) > 0 {
		sort.Slice(pending, func(i, j int) bool {
			a, b := pending[i], pending[j]
			if !a.DueDate.Equal(b.DueDate) {
				return a.DueDate.Before(b.DueDate)
			}
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.ID.String() < b.ID.String()
		})
		next := pending[0]
		summary.NextPayment = &NextPayment{
			MilestoneID: next.ID,
			Name:        next.Name,
			Amount:      next.Amount,
			DueDate:     next.DueDate.Format(dateLayout),
			Status:      next.Status,
		}
	}
	return summary
}

type EscrowService struct {
	db *gorm.DB
}

func NewEscrowService(db *gorm.DB) *EscrowService {
	return &EscrowService{db: db}
}

// Summaries returns one summary per project owned by userID, newest project
// first. Read-only.
func (s *EscrowService) Summaries(ctx context.Context, userID uuid.UUID) ([]EscrowSummary, error) {
	var projects []models.Project
	if err := s.db.WithContext(ctx).
		Scopes(session.ForOwner(userID)).
		Preload("Milestones").
		Order("created_at DESC").
		Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}

	summaries := make([]EscrowSummary, 0, len(projects))
	for _, p := range projects {
		summaries = append(summaries, BuildEscrowSummary(p, p.Milestones))
	}
	return summaries, nil
}
