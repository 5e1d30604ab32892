package contractor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/session"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

var (
	ErrProfileExists   = apperr.Conflict("profile already exists for this user")
	ErrProfileRequired = apperr.Invalid("profile", "create a contractor profile first")
	ErrProjectClosed   = apperr.Conflict("project is not open for bids")
	ErrBidLocked       = apperr.Conflict("accepted or rejected bids can no longer be changed")
)

type ContractorService struct {
	db        *gorm.DB
	publisher events.Publisher
}

func NewContractorService(db *gorm.DB, publisher events.Publisher) *ContractorService {
	return &ContractorService{db: db, publisher: publisher}
}

// --- Profile ---

func (s *ContractorService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.ContractorProfile, error) {
	var profile models.ContractorProfile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("contractor profile")
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// requireProfile is GetProfile for operations that need a profile to exist;
// a missing profile is a validation failure, not a missing resource.
func (s *ContractorService) requireProfile(ctx context.Context, userID uuid.UUID) (*models.ContractorProfile, error) {
	profile, err := s.GetProfile(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, ErrProfileRequired
	}
	return profile, err
}

func (s *ContractorService) CreateProfile(ctx context.Context, userID uuid.UUID, req CreateProfileRequest) (*models.ContractorProfile, error) {
	name := strings.TrimSpace(req.CompanyName)
	if name == "" {
		return nil, apperr.Invalid("company_name", "is required")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.ContractorProfile{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrProfileExists
	}

	profile := models.ContractorProfile{
		ID:            uuid.New(),
		UserID:        userID,
		CompanyName:   name,
		LicenseNumber: strings.TrimSpace(req.LicenseNumber),
	}
	if err := s.db.WithContext(ctx).Create(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrProfileExists
		}
		return nil, fmt.Errorf("create contractor profile: %w", err)
	}
	return &profile, nil
}

func (s *ContractorService) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*models.ContractorProfile, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if req.CompanyName != nil {
		name := strings.TrimSpace(*req.CompanyName)
		if name == "" {
			return nil, apperr.Invalid("company_name", "must not be empty")
		}
		updates["company_name"] = name
	}
	if req.LicenseNumber != nil {
		updates["license_number"] = strings.TrimSpace(*req.LicenseNumber)
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(profile).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update contractor profile: %w", err)
		}
	}
	return s.GetProfile(ctx, userID)
}

// --- Open projects ---

func (s *ContractorService) OpenProjects(ctx context.Context, location string, limit, offset int) ([]models.Project, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Project{}).Where("status IN ?", models.OpenProjectStatuses)
	if location = strings.TrimSpace(location); location != "" {
		query = query.Where("location ILIKE ?", "%"+location+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var projects []models.Project
	err := query.Scopes(session.Paginate(limit, offset)).Order("created_at DESC").Find(&projects).Error
	return projects, total, err
}

// --- Bids ---

// Contractors only move bids between DRAFT and SUBMITTED; the project owner
// accepts or rejects.
func validContractorBidStatus(status string) bool {
	return status == models.BidDraft || status == models.BidSubmitted
}

func validateCosts(fields map[string]int64) error {
	for _, name := range []string{"direct_costs", "overhead", "net_margin"} {
		if v, ok := fields[name]; ok && v < 0 {
			return apperr.Invalid(name, "must not be negative")
		}
	}
	return nil
}

func (s *ContractorService) ListBids(ctx context.Context, userID uuid.UUID, status string) ([]models.Bid, error) {
	profile, err := s.GetProfile(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return []models.Bid{}, nil
	}
	if err != nil {
		return nil, err
	}
	query := s.db.WithContext(ctx).Where("contractor_id = ?", profile.ID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var bids []models.Bid
	err = query.Order("created_at DESC").Find(&bids).Error
	return bids, err
}

func (s *ContractorService) GetBid(ctx context.Context, userID, bidID uuid.UUID) (*models.Bid, error) {
	var bid models.Bid
	err := s.db.WithContext(ctx).
		Where("contractor_id IN (?)", s.db.Model(&models.ContractorProfile{}).Select("id").Where("user_id = ?", userID)).
		First(&bid, "id = ?", bidID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("bid")
	}
	if err != nil {
		return nil, err
	}
	return &bid, nil
}

func (s *ContractorService) CreateBid(ctx context.Context, userID uuid.UUID, req CreateBidRequest) (*models.Bid, error) {
	if req.ProjectID == uuid.Nil {
		return nil, apperr.Invalid("project_id", "is required")
	}
	if err := validateCosts(map[string]int64{
		"direct_costs": req.DirectCosts, "overhead": req.Overhead, "net_margin": req.NetMargin,
	}); err != nil {
		return nil, err
	}
	if req.Status == "" {
		req.Status = models.BidDraft
	}
	if !validContractorBidStatus(req.Status) {
		return nil, apperr.Invalid("status", "must be DRAFT or SUBMITTED")
	}

	profile, err := s.requireProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	var project models.Project
	if err := s.db.WithContext(ctx).Select("id", "status").First(&project, "id = ?", req.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("project")
		}
		return nil, err
	}
	if !models.Contains(models.OpenProjectStatuses, project.Status) {
		return nil, ErrProjectClosed
	}

	bid := models.Bid{
		ID:           uuid.New(),
		ProjectID:    req.ProjectID,
		ContractorID: profile.ID,
		DirectCosts:  req.DirectCosts,
		Overhead:     req.Overhead,
		NetMargin:    req.NetMargin,
		Status:       req.Status,
	}
	bid.RecomputeTotal()
	if err := s.db.WithContext(ctx).Create(&bid).Error; err != nil {
		return nil, fmt.Errorf("create bid: %w", err)
	}

	if bid.Status == models.BidSubmitted {
		s.emitSubmitted(&bid)
	}
	return &bid, nil
}

func (s *ContractorService) UpdateBid(ctx context.Context, userID, bidID uuid.UUID, req UpdateBidRequest) (*models.Bid, error) {
	bid, err := s.GetBid(ctx, userID, bidID)
	if err != nil {
		return nil, err
	}
	if !validContractorBidStatus(bid.Status) {
		return nil, ErrBidLocked
	}

	costs := map[string]int64{}
	if req.DirectCosts != nil {
		costs["direct_costs"] = *req.DirectCosts
		bid.DirectCosts = *req.DirectCosts
	}
	if req.Overhead != nil {
		costs["overhead"] = *req.Overhead
		bid.Overhead = *req.Overhead
	}
	if req.NetMargin != nil {
		costs["net_margin"] = *req.NetMargin
		bid.NetMargin = *req.NetMargin
	}
	if err := validateCosts(costs); err != nil {
		return nil, err
	}

	wasSubmitted := bid.Status == models.BidSubmitted
	if req.Status != nil {
		if !validContractorBidStatus(*req.Status) {
			return nil, apperr.Invalid("status", "must be DRAFT or SUBMITTED")
		}
		bid.Status = *req.Status
	}
	bid.RecomputeTotal()

	result := s.db.WithContext(ctx).Model(&models.Bid{}).
		Where("id = ? AND status IN ?", bid.ID, []string{models.BidDraft, models.BidSubmitted}).
		Updates(map[string]interface{}{
			"direct_costs": bid.DirectCosts,
			"overhead":     bid.Overhead,
			"net_margin":   bid.NetMargin,
			"total_amount": bid.TotalAmount,
			"status":       bid.Status,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("update bid: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrBidLocked
	}

	if !wasSubmitted && bid.Status == models.BidSubmitted {
		s.emitSubmitted(bid)
	}
	return bid, nil
}

func (s *ContractorService) DeleteBid(ctx context.Context, userID, bidID uuid.UUID) error {
	bid, err := s.GetBid(ctx, userID, bidID)
	if err != nil {
		return err
	}
	if bid.Status == models.BidAccepted {
		return apperr.Conflict("accepted bids cannot be withdrawn")
	}
	return s.db.WithContext(ctx).Delete(bid).Error
}

func (s *ContractorService) emitSubmitted(bid *models.Bid) {
	events.Emit(s.publisher, events.BidSubmitted, map[string]any{
		"bid_id":        bid.ID,
		"project_id":    bid.ProjectID,
		"contractor_id": bid.ContractorID,
		"total_amount":  bid.TotalAmount,
	})
}

// --- WIPAA ---

func parsePeriod(v string) (time.Time, error) {
	d, err := time.Parse(dateLayout, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, apperr.Invalid("period", "must be a date in YYYY-MM-DD format")
	}
	return d, nil
}

func (s *ContractorService) ListWIPAA(ctx context.Context, userID uuid.UUID, projectID *uuid.UUID) ([]WIPAA, error) {
	profile, err := s.GetProfile(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return []WIPAA{}, nil
	}
	if err != nil {
		return nil, err
	}
	query := s.db.WithContext(ctx).Where("contractor_id = ?", profile.ID)
	if projectID != nil {
		query = query.Where("project_id = ?", *projectID)
	}
	var records []WIPAA
	err = query.Order("period DESC").Find(&records).Error
	return records, err
}

func (s *ContractorService) GetWIPAA(ctx context.Context, userID, id uuid.UUID) (*WIPAA, error) {
	var record WIPAA
	err := s.db.WithContext(ctx).
		Where("contractor_id IN (?)", s.db.Model(&models.ContractorProfile{}).Select("id").Where("user_id = ?", userID)).
		First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("WIPAA record")
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *ContractorService) CreateWIPAA(ctx context.Context, userID uuid.UUID, req CreateWIPAARequest) (*WIPAA, error) {
	if req.ProjectID == uuid.Nil {
		return nil, apperr.Invalid("project_id", "is required")
	}
	period, err := parsePeriod(req.Period)
	if err != nil {
		return nil, err
	}
	if req.CostsIncurred < 0 {
		return nil, apperr.Invalid("costs_incurred", "must not be negative")
	}
	profile, err := s.requireProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", req.ProjectID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, apperr.NotFound("project")
	}

	record := WIPAA{
		ID:            uuid.New(),
		ProjectID:     req.ProjectID,
		ContractorID:  profile.ID,
		Period:        period,
		CostsIncurred: req.CostsIncurred,
		BilledRevenue: req.BilledRevenue,
		EarnedRevenue: req.EarnedRevenue,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("create WIPAA record: %w", err)
	}
	record.computeBilling()
	return &record, nil
}

func (s *ContractorService) UpdateWIPAA(ctx context.Context, userID, id uuid.UUID, req UpdateWIPAARequest) (*WIPAA, error) {
	record, err := s.GetWIPAA(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if req.Period != nil {
		period, err := parsePeriod(*req.Period)
		if err != nil {
			return nil, err
		}
		updates["period"] = period
	}
	if req.CostsIncurred != nil {
		if *req.CostsIncurred < 0 {
			return nil, apperr.Invalid("costs_incurred", "must not be negative")
		}
		updates["costs_incurred"] = *req.CostsIncurred
	}
	if req.BilledRevenue != nil {
		updates["billed_revenue"] = *req.BilledRevenue
	}
	if req.EarnedRevenue != nil {
		updates["earned_revenue"] = *req.EarnedRevenue
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(record).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update WIPAA record: %w", err)
		}
	}
	return s.GetWIPAA(ctx, userID, id)
}

func (s *ContractorService) DeleteWIPAA(ctx context.Context, userID, id uuid.UUID) error {
	record, err := s.GetWIPAA(ctx, userID, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(record).Error
}
