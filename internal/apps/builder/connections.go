package builder

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/session"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConnectionService lists the contractors that bid on the builder's projects
// and the suppliers the builder ordered from, with their track records.
type ConnectionService struct {
	db *gorm.DB
}

func NewConnectionService(db *gorm.DB) *ConnectionService {
	return &ConnectionService{db: db}
}

func (s *ConnectionService) Connections(ctx context.Context, userID uuid.UUID) (*ConnectionsResponse, error) {
	return s.connections(ctx, userID, nil)
}

// ProjectConnections narrows Connections to a single owned project.
func (s *ConnectionService) ProjectConnections(ctx context.Context, userID, projectID uuid.UUID) (*ConnectionsResponse, error) {
	var project models.Project
	err := s.db.WithContext(ctx).Scopes(session.ForOwner(userID)).Select("id").First(&project, "id = ?", projectID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("project")
	}
	if err != nil {
		return nil, err
	}
	return s.connections(ctx, userID, &projectID)
}

func (s *ConnectionService) connections(ctx context.Context, userID uuid.UUID, projectID *uuid.UUID) (*ConnectionsResponse, error) {
	contractors, err := s.contractors(ctx, userID, projectID)
	if err != nil {
		return nil, fmt.Errorf("load contractors: %w", err)
	}
	suppliers, err := s.suppliers(ctx, userID, projectID)
	if err != nil {
		return nil, fmt.Errorf("load suppliers: %w", err)
	}
	return &ConnectionsResponse{Contractors: contractors, Suppliers: suppliers}, nil
}

func (s *ConnectionService) contractorStats(db *gorm.DB) (avgRating, ratingsCount, completed *gorm.DB) {
	avgRating = db.Model(&models.ContractorRating{}).
		Select("COALESCE(AVG(rating), 0)").Where("contractor_id = cp.id")
	ratingsCount = db.Model(&models.ContractorRating{}).
		Select("COUNT(*)").Where("contractor_id = cp.id")
	completed = db.Table("bids AS cb").
		Select("COUNT(DISTINCT cb.project_id)").
		Joins("JOIN projects cpj ON cpj.id = cb.project_id").
		Where("cb.contractor_id = cp.id AND cb.status = ? AND cpj.status = ?", models.BidAccepted, models.ProjectCompleted)
	return avgRating, ratingsCount, completed
}

func (s *ConnectionService) contractors(ctx context.Context, userID uuid.UUID, projectID *uuid.UUID) ([]ContractorConnection, error) {
	db := s.db.WithContext(ctx)
	avgRating, ratingsCount, completed := s.contractorStats(db)

	query := db.Table("contractor_profiles AS cp").
		Select(
			"cp.id AS contractor_id, cp.company_name, cp.license_number, COUNT(b.id) AS bids_count, (?) AS average_rating, (?) AS ratings_count, (?) AS completed_projects_count",
			avgRating, ratingsCount, completed,
		).
		Joins("JOIN bids b ON b.contractor_id = cp.id").
		Joins("JOIN projects p ON p.id = b.project_id").
		Where("p.owner_id = ?", userID)
	if projectID != nil {
		query = query.Where("p.id = ?", *projectID)
	}

	out := []ContractorConnection{}
	err := query.Group("cp.id, cp.company_name, cp.license_number").
		Order("cp.company_name ASC").
		Scan(&out).Error
	return out, err
}

// Directory lists every contractor with its rating and completed projects,
// best rated first.
func (s *ConnectionService) Directory(ctx context.Context, limit, offset int) ([]ContractorConnection, error) {
	db := s.db.WithContext(ctx)
	avgRating, ratingsCount, completed := s.contractorStats(db)
	bidsCount := db.Model(&models.Bid{}).Select("COUNT(*)").Where("contractor_id = cp.id")

	out := []ContractorConnection{}
	err := db.Table("contractor_profiles AS cp").
		Select(
			"cp.id AS contractor_id, cp.company_name, cp.license_number, (?) AS bids_count, (?) AS average_rating, (?) AS ratings_count, (?) AS completed_projects_count",
			bidsCount, avgRating, ratingsCount, completed,
		).
		Scopes(session.Paginate(limit, offset)).
		Order("average_rating DESC, cp.company_name ASC").
		Scan(&out).Error
	return out, err
}

func (s *ConnectionService) suppliers(ctx context.Context, userID uuid.UUID, projectID *uuid.UUID) ([]SupplierConnection, error) {
	query := s.db.WithContext(ctx).Table("supplier_profiles AS sp").
		Select(
			"sp.id AS supplier_id, sp.company_name, sp.on_time_rate, sp.defect_rate, COUNT(o.id) AS orders_count, COALESCE(SUM(CASE WHEN o.status <> ? THEN o.total_cost ELSE 0 END), 0) AS total_spent",
			models.OrderCancelled,
		).
		Joins("JOIN material_orders o ON o.supplier_id = sp.id").
		Joins("JOIN projects p ON p.id = o.project_id").
		Where("p.owner_id = ?", userID)
	if projectID != nil {
		query = query.Where("p.id = ?", *projectID)
	}

	out := []SupplierConnection{}
	err := query.Group("sp.id, sp.company_name, sp.on_time_rate, sp.defect_rate").
		Order("sp.company_name ASC").
		Scan(&out).Error
	return out, err
}
