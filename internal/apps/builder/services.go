package builder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/session"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrMilestonePaid    = apperr.Conflict("milestone is already paid")
	ErrRatingExists     = apperr.Conflict("you have already rated this contractor for this project")
	ErrOrderNotPending  = apperr.Conflict("only pending orders can be cancelled")
	ErrBidNotReviewable = apperr.Conflict("only submitted bids can be accepted or rejected")
	ErrProjectClosed    = apperr.Conflict("bids can only be accepted on planning or in-progress projects")
)

// ProjectService owns projects and everything hanging off them. Every query
// is scoped to the caller's projects; records of other owners read as not
// found.
type ProjectService struct {
	db        *gorm.DB
	publisher events.Publisher
	filter    *services.ContentFilter
}

func NewProjectService(db *gorm.DB, publisher events.Publisher, filter *services.ContentFilter) *ProjectService {
	return &ProjectService{db: db, publisher: publisher, filter: filter}
}

// --- Projects ---

func (s *ProjectService) CreateProject(ctx context.Context, userID uuid.UUID, req CreateProjectRequest) (*models.Project, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, apperr.Invalid("title", "is required")
	}
	if req.Budget < 0 {
		return nil, apperr.Invalid("budget", "must not be negative")
	}
	if req.Status == "" {
		req.Status = models.ProjectPlanning
	}
	if !models.Contains(models.ProjectStatuses, req.Status) {
		return nil, apperr.Invalid("status", "must be one of %s", strings.Join(models.ProjectStatuses, ", "))
	}
	if req.EngagementTier == "" {
		req.EngagementTier = models.TierDIY
	}
	if !models.Contains(models.EngagementTiers, req.EngagementTier) {
		return nil, apperr.Invalid("engagement_tier", "must be one of %s", strings.Join(models.EngagementTiers, ", "))
	}

	project := models.Project{
		ID:             uuid.New(),
		OwnerID:        userID,
		Title:          req.Title,
		Location:       strings.TrimSpace(req.Location),
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		Budget:         req.Budget,
		Status:         req.Status,
		EngagementTier: req.EngagementTier,
		SI56Verified:   req.SI56Verified,
	}
	if err := s.db.WithContext(ctx).Create(&project).Error; err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	events.Emit(s.publisher, events.ProjectCreated, map[string]any{
		"project_id": project.ID, "owner_id": userID, "budget": project.Budget,
	})
	return &project, nil
}

func (s *ProjectService) ListProjects(ctx context.Context, userID uuid.UUID, status string, limit, offset int) ([]models.Project, int64, error) {
	var projects []models.Project
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Project{}).Scopes(session.ForOwner(userID))
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Scopes(session.Paginate(limit, offset)).Order("created_at DESC").Find(&projects).Error
	return projects, total, err
}

func (s *ProjectService) GetProject(ctx context.Context, userID, projectID uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := s.db.WithContext(ctx).Scopes(session.ForOwner(userID)).
		Preload("Milestones", func(db *gorm.DB) *gorm.DB { return db.Order("due_date ASC") }).
		First(&project, "id = ?", projectID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("project")
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *ProjectService) UpdateProject(ctx context.Context, userID, projectID uuid.UUID, req UpdateProjectRequest) (*models.Project, error) {
	project, err := s.GetProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperr.Invalid("title", "must not be empty")
		}
		updates["title"] = title
	}
	if req.Location != nil {
		updates["location"] = strings.TrimSpace(*req.Location)
	}
	if req.Latitude != nil {
		updates["latitude"] = *req.Latitude
	}
	if req.Longitude != nil {
		updates["longitude"] = *req.Longitude
	}
	if req.Budget != nil {
		if *req.Budget < 0 {
			return nil, apperr.Invalid("budget", "must not be negative")
		}
		updates["budget"] = *req.Budget
	}
	if req.Status != nil {
		if !models.Contains(models.ProjectStatuses, *req.Status) {
			return nil, apperr.Invalid("status", "must be one of %s", strings.Join(models.ProjectStatuses, ", "))
		}
		updates["status"] = *req.Status
	}
	if req.EngagementTier != nil {
		if !models.Contains(models.EngagementTiers, *req.EngagementTier) {
			return nil, apperr.Invalid("engagement_tier", "must be one of %s", strings.Join(models.EngagementTiers, ", "))
		}
		updates["engagement_tier"] = *req.EngagementTier
	}
	if req.SI56Verified != nil {
		updates["si56_verified"] = *req.SI56Verified
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(project).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update project: %w", err)
		}
	}
	return s.GetProject(ctx, userID, projectID)
}

// DeleteProject removes a project with its milestones and change orders.
// Projects that already released payments are kept for the audit trail.
func (s *ProjectService) DeleteProject(ctx context.Context, userID, projectID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.Scopes(session.ForOwner(userID)).First(&project, "id = ?", projectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("project")
			}
			return err
		}

		var paid int64
		if err := tx.Model(&models.Payment{}).Where("project_id = ?", projectID).Count(&paid).Error; err != nil {
			return err
		}
		if paid > 0 {
			return apperr.Conflict("project has released payments and cannot be deleted")
		}

		if err := tx.Where("project_id = ?", projectID).Delete(&models.Milestone{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&ChangeOrder{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&SiteUpdate{}).Error; err != nil {
			return err
		}
		return tx.Delete(&project).Error
	})
}

func ownsProject(ctx context.Context, db *gorm.DB, userID, projectID uuid.UUID) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Project{}).
		Scopes(session.ForOwner(userID)).
		Where("id = ?", projectID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperr.NotFound("project")
	}
	return nil
}

// --- Milestones ---

func parseDate(field, v string) (time.Time, error) {
	d, err := time.Parse(dateLayout, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, apperr.Invalid(field, "must be a date in YYYY-MM-DD format")
	}
	return d, nil
}

// PAID is only reachable through PayMilestone.
func validManualMilestoneStatus(status string) bool {
	return status == models.MilestonePending || status == models.MilestoneVerified
}

func (s *ProjectService) CreateMilestone(ctx context.Context, userID uuid.UUID, req CreateMilestoneRequest) (*models.Milestone, error) {
	if req.ProjectID == uuid.Nil {
		return nil, apperr.Invalid("project_id", "is required")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.Invalid("name", "is required")
	}
	if req.Amount <= 0 {
		return nil, apperr.Invalid("amount", "must be greater than zero")
	}
	due, err := parseDate("due_date", req.DueDate)
	if err != nil {
		return nil, err
	}
	if req.Status == "" {
		req.Status = models.MilestonePending
	}
	if !validManualMilestoneStatus(req.Status) {
		return nil, apperr.Invalid("status", "must be PENDING or VERIFIED")
	}
	if err := ownsProject(ctx, s.db, userID, req.ProjectID); err != nil {
		return nil, err
	}

	milestone := models.Milestone{
		ID:        uuid.New(),
		ProjectID: req.ProjectID,
		Name:      name,
		Amount:    req.Amount,
		Status:    req.Status,
		DueDate:   due,
	}
	if err := s.db.WithContext(ctx).Create(&milestone).Error; err != nil {
		return nil, fmt.Errorf("create milestone: %w", err)
	}
	return &milestone, nil
}

func (s *ProjectService) ListMilestones(ctx context.Context, userID uuid.UUID, projectID *uuid.UUID) ([]models.Milestone, error) {
	query := s.db.WithContext(ctx).
		Where("project_id IN (?)", session.OwnedProjectIDs(s.db, userID))
	if projectID != nil {
		query = query.Where("project_id = ?", *projectID)
	}
	var milestones []models.Milestone
	err := query.Order("due_date ASC, created_at ASC").Find(&milestones).Error
	return milestones, err
}

func (s *ProjectService) GetMilestone(ctx context.Context, userID, milestoneID uuid.UUID) (*models.Milestone, error) {
	var milestone models.Milestone
	err := s.db.WithContext(ctx).
		Where("project_id IN (?)", session.OwnedProjectIDs(s.db, userID)).
		First(&milestone, "id = ?", milestoneID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("milestone")
	}
	if err != nil {
		return nil, err
	}
	return &milestone, nil
}

func (s *ProjectService) UpdateMilestone(ctx context.Context, userID, milestoneID uuid.UUID, req UpdateMilestoneRequest) (*models.Milestone, error) {
	milestone, err := s.GetMilestone(ctx, userID, milestoneID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperr.Invalid("name", "must not be empty")
		}
		updates["name"] = name
	}
	if req.DueDate != nil {
		due, err := parseDate("due_date", *req.DueDate)
		if err != nil {
			return nil, err
		}
		updates["due_date"] = due
	}
	if req.Status != nil && *req.Status != milestone.Status {
		if milestone.Status == models.MilestonePaid {
			return nil, ErrMilestonePaid
		}
		if !validManualMilestoneStatus(*req.Status) {
			return nil, apperr.Invalid("status", "must be PENDING or VERIFIED; use payments to mark a milestone paid")
		}
		updates["status"] = *req.Status
	}

	if len(updates) == 0 {
		return milestone, nil
	}

	// The status guard in WHERE keeps a concurrent payment from being undone.
	result := s.db.WithContext(ctx).Model(&models.Milestone{}).
		Where("id = ? AND status <> ?", milestoneID, models.MilestonePaid).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("update milestone: %w", result.Error)
	}
	if result.RowsAffected == 0 && updates["status"] != nil {
		return nil, ErrMilestonePaid
	}
	return s.GetMilestone(ctx, userID, milestoneID)
}

func (s *ProjectService) DeleteMilestone(ctx context.Context, userID, milestoneID uuid.UUID) error {
	milestone, err := s.GetMilestone(ctx, userID, milestoneID)
	if err != nil {
		return err
	}
	if milestone.Status == models.MilestonePaid {
		return apperr.Conflict("paid milestones cannot be deleted")
	}
	result := s.db.WithContext(ctx).
		Where("id = ? AND status <> ?", milestoneID, models.MilestonePaid).
		Delete(&models.Milestone{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.Conflict("paid milestones cannot be deleted")
	}
	return nil
}

// --- Change orders ---

func (s *ProjectService) CreateChangeOrder(ctx context.Context, userID uuid.UUID, req CreateChangeOrderRequest) (*ChangeOrder, error) {
	if req.ProjectID == uuid.Nil {
		return nil, apperr.Invalid("project_id", "is required")
	}
	desc := strings.TrimSpace(req.Description)
	if desc == "" {
		return nil, apperr.Invalid("description", "is required")
	}
	if err := ownsProject(ctx, s.db, userID, req.ProjectID); err != nil {
		return nil, err
	}

	co := ChangeOrder{
		ID:          uuid.New(),
		ProjectID:   req.ProjectID,
		Description: desc,
		Amount:      req.Amount,
		Status:      ChangeOrderProposed,
	}
	if err := s.db.WithContext(ctx).Create(&co).Error; err != nil {
		return nil, fmt.Errorf("create change order: %w", err)
	}
	return &co, nil
}

func (s *ProjectService) ListChangeOrders(ctx context.Context, userID uuid.UUID, projectID *uuid.UUID) ([]ChangeOrder, error) {
	query := s.db.WithContext(ctx).Where("project_id IN (?)", session.OwnedProjectIDs(s.db, userID))
	if projectID != nil {
		query = query.Where("project_id = ?", *projectID)
	}
	var orders []ChangeOrder
	err := query.Order("created_at DESC").Find(&orders).Error
	return orders, err
}

func (s *ProjectService) getChangeOrder(ctx context.Context, userID, id uuid.UUID) (*ChangeOrder, error) {
	var co ChangeOrder
	err := s.db.WithContext(ctx).
		Where("project_id IN (?)", session.OwnedProjectIDs(s.db, userID)).
		First(&co, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("change order")
	}
	return &co, err
}

func (s *ProjectService) UpdateChangeOrder(ctx context.Context, userID, id uuid.UUID, req UpdateChangeOrderRequest) (*ChangeOrder, error) {
	co, err := s.getChangeOrder(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if req.Description != nil {
		desc := strings.TrimSpace(*req.Description)
		if desc == "" {
			return nil, apperr.Invalid("description", "must not be empty")
		}
		updates["description"] = desc
	}
	if req.Amount != nil {
		updates["amount"] = *req.Amount
	}
	if req.Status != nil {
		if !models.Contains(ChangeOrderStatuses, *req.Status) {
			return nil, apperr.Invalid("status", "must be one of %s", strings.Join(ChangeOrderStatuses, ", "))
		}
		updates["status"] = *req.Status
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(co).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update change order: %w", err)
		}
	}
	return s.getChangeOrder(ctx, userID, id)
}

func (s *ProjectService) DeleteChangeOrder(ctx context.Context, userID, id uuid.UUID) error {
	co, err := s.getChangeOrder(ctx, userID, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(co).Error
}

// --- Bids on the builder's projects ---

func (s *ProjectService) ListProjectBids(ctx context.Context, userID, projectID uuid.UUID) ([]models.Bid, error) {
	if err := ownsProject(ctx, s.db, userID, projectID); err != nil {
		return nil, err
	}
	var bids []models.Bid
	err := s.db.WithContext(ctx).Preload("Contractor").
		Where("project_id = ? AND status <> ?", projectID, models.BidDraft).
		Order("total_amount ASC").
		Find(&bids).Error
	return bids, err
}

// ReviewBid accepts or rejects a submitted bid on one of the caller's projects.
// Accepting also requires the project to still be open.
func (s *ProjectService) ReviewBid(ctx context.Context, userID, bidID uuid.UUID, status string) (*models.Bid, error) {
	if status != models.BidAccepted && status != models.BidRejected {
		return nil, apperr.Invalid("status", "must be ACCEPTED or REJECTED")
	}
	var bid models.Bid
	err := s.db.WithContext(ctx).
		Where("project_id IN (?)", session.OwnedProjectIDs(s.db, userID)).
		First(&bid, "id = ?", bidID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("bid")
	}
	if err != nil {
		return nil, err
	}

	if status == models.BidAccepted {
		var project models.Project
		if err := s.db.WithContext(ctx).Select("id", "status").First(&project, "id = ?", bid.ProjectID).Error; err != nil {
			return nil, err
		}
		if !models.Contains(models.OpenProjectStatuses, project.Status) {
			return nil, ErrProjectClosed
		}
	}

	result := s.db.WithContext(ctx).Model(&models.Bid{}).
		Where("id = ? AND status = ?", bidID, models.BidSubmitted).
		Update("status", status)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrBidNotReviewable
	}
	bid.Status = status
	return &bid, nil
}

// --- Material orders ---

func (s *ProjectService) PlaceOrder(ctx context.Context, userID uuid.UUID, req CreateOrderRequest) (*models.MaterialOrder, error) {
	if req.ProjectID == uuid.Nil {
		return nil, apperr.Invalid("project_id", "is required")
	}
	if req.SupplierID == uuid.Nil {
		return nil, apperr.Invalid("supplier_id", "is required")
	}
	if req.TotalCost < 0 {
		return nil, apperr.Invalid("total_cost", "must not be negative")
	}
	if err := ownsProject(ctx, s.db, userID, req.ProjectID); err != nil {
		return nil, err
	}
	var supplier models.SupplierProfile
	if err := s.db.WithContext(ctx).First(&supplier, "id = ?", req.SupplierID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("supplier")
		}
		return nil, err
	}

	order := models.MaterialOrder{
		ID:         uuid.New(),
		ProjectID:  req.ProjectID,
		SupplierID: req.SupplierID,
		TotalCost:  req.TotalCost,
		TCOScore:   req.TCOScore,
		Status:     models.OrderPending,
	}
	if err := s.db.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	order.Supplier = &supplier

	events.Emit(s.publisher, events.OrderPlaced, map[string]any{
		"order_id": order.ID, "project_id": order.ProjectID, "supplier_id": order.SupplierID, "total_cost": order.TotalCost,
	})
	return &order, nil
}

func (s *ProjectService) ListOrders(ctx context.Context, userID uuid.UUID, projectID *uuid.UUID) ([]models.MaterialOrder, error) {
	query := s.db.WithContext(ctx).Preload("Supplier").
		Where("project_id IN (?)", session.OwnedProjectIDs(s.db, userID))
	if projectID != nil {
		query = query.Where("project_id = ?", *projectID)
	}
	var orders []models.MaterialOrder
	err := query.Order("created_at DESC").Find(&orders).Error
	return orders, err
}

func (s *ProjectService) CancelOrder(ctx context.Context, userID, orderID uuid.UUID) error {
	var order models.MaterialOrder
	err := s.db.WithContext(ctx).
		Where("project_id IN (?)", session.OwnedProjectIDs(s.db, userID)).
		First(&order, "id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("order")
	}
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).Model(&models.MaterialOrder{}).
		Where("id = ? AND status = ?", orderID, models.OrderPending).
		Update("status", models.OrderCancelled)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotPending
	}
	events.Emit(s.publisher, events.OrderStatusChanged, map[string]any{
		"order_id": orderID, "status": models.OrderCancelled,
	})
	return nil
}

// --- Ratings ---

func (s *ProjectService) RateContractor(ctx context.Context, userID uuid.UUID, req CreateRatingRequest) (*models.ContractorRating, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperr.Invalid("rating", "must be between 1 and 5")
	}
	comment := strings.TrimSpace(req.Comment)
	if s.filter != nil {
		if ok, reason := s.filter.FilterContent(comment); !ok {
			return nil, apperr.Invalid("comment", "%s", s.filter.RejectionMessage(reason))
		}
	}
	if err := ownsProject(ctx, s.db, userID, req.ProjectID); err != nil {
		return nil, err
	}

	var bids int64
	if err := s.db.WithContext(ctx).Model(&models.Bid{}).
		Where("project_id = ? AND contractor_id = ?", req.ProjectID, req.ContractorID).
		Count(&bids).Error; err != nil {
		return nil, err
	}
	if bids == 0 {
		return nil, apperr.Invalid("contractor_id", "contractor has not bid on this project")
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.ContractorRating{}).
		Where("contractor_id = ? AND project_id = ? AND builder_id = ?", req.ContractorID, req.ProjectID, userID).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrRatingExists
	}

	rating := models.ContractorRating{
		ID:           uuid.New(),
		ContractorID: req.ContractorID,
		ProjectID:    req.ProjectID,
		BuilderID:    userID,
		Rating:       req.Rating,
		Comment:      comment,
	}
	if err := s.db.WithContext(ctx).Create(&rating).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrRatingExists
		}
		return nil, fmt.Errorf("create rating: %w", err)
	}
	return &rating, nil
}

func (s *ProjectService) ListRatings(ctx context.Context, userID uuid.UUID) ([]models.ContractorRating, error) {
	var ratings []models.ContractorRating
	err := s.db.WithContext(ctx).Where("builder_id = ?", userID).Order("created_at DESC").Find(&ratings).Error
	return ratings, err
}
