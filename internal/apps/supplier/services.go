package supplier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrProfileExists   = apperr.Conflict("profile already exists for this user")
	ErrProfileRequired = apperr.Invalid("profile", "create a supplier profile first")
	ErrOrderClosed     = apperr.Conflict("delivered or cancelled orders can no longer change status")
)

// closedOrderStatuses are terminal.
var closedOrderStatuses = []string{models.OrderDelivered, models.OrderCancelled}

type SupplierService struct {
	db        *gorm.DB
	publisher events.Publisher
}

func NewSupplierService(db *gorm.DB, publisher events.Publisher) *SupplierService {
	return &SupplierService{db: db, publisher: publisher}
}

// ownProfileIDs selects the supplier profile id of userID.
func (s *SupplierService) ownProfileIDs(userID uuid.UUID) *gorm.DB {
	return s.db.Model(&models.SupplierProfile{}).Select("id").Where("user_id = ?", userID)
}

// validRate accepts basis points.
func validRate(field string, v int) error {
	if v < 0 || v > 10000 {
		return apperr.Invalid(field, "must be between 0 and 10000 basis points")
	}
	return nil
}

// --- Profile ---

func (s *SupplierService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.SupplierProfile, error) {
	var profile models.SupplierProfile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("supplier profile")
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *SupplierService) CreateProfile(ctx context.Context, userID uuid.UUID, req CreateProfileRequest) (*models.SupplierProfile, error) {
	name := strings.TrimSpace(req.CompanyName)
	if name == "" {
		return nil, apperr.Invalid("company_name", "is required")
	}
	if err := validRate("on_time_rate", req.OnTimeRate); err != nil {
		return nil, err
	}
	if err := validRate("defect_rate", req.DefectRate); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.SupplierProfile{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrProfileExists
	}

	profile := models.SupplierProfile{
		ID:          uuid.New(),
		UserID:      userID,
		CompanyName: name,
		OnTimeRate:  req.OnTimeRate,
		DefectRate:  req.DefectRate,
	}
	if err := s.db.WithContext(ctx).Create(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrProfileExists
		}
		return nil, fmt.Errorf("create supplier profile: %w", err)
	}
	return &profile, nil
}

func (s *SupplierService) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*models.SupplierProfile, error) {
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
	if req.OnTimeRate != nil {
		if err := validRate("on_time_rate", *req.OnTimeRate); err != nil {
			return nil, err
		}
		updates["on_time_rate"] = *req.OnTimeRate
	}
	if req.DefectRate != nil {
		if err := validRate("defect_rate", *req.DefectRate); err != nil {
			return nil, err
		}
		updates["defect_rate"] = *req.DefectRate
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(profile).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update supplier profile: %w", err)
		}
	}
	return s.GetProfile(ctx, userID)
}

// --- Products ---

func (s *SupplierService) ListProducts(ctx context.Context, userID uuid.UUID) ([]Product, error) {
	var products []Product
	err := s.db.WithContext(ctx).
		Where("supplier_id IN (?)", s.ownProfileIDs(userID)).
		Order("name ASC").
		Find(&products).Error
	return products, err
}

func (s *SupplierService) GetProduct(ctx context.Context, userID, id uuid.UUID) (*Product, error) {
	var product Product
	err := s.db.WithContext(ctx).
		Where("supplier_id IN (?)", s.ownProfileIDs(userID)).
		First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("product")
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *SupplierService) CreateProduct(ctx context.Context, userID uuid.UUID, req CreateProductRequest) (*Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.Invalid("name", "is required")
	}
	if req.UnitPrice < 0 {
		return nil, apperr.Invalid("unit_price", "must not be negative")
	}
	profile, err := s.GetProfile(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, ErrProfileRequired
	}
	if err != nil {
		return nil, err
	}

	product := Product{
		ID:          uuid.New(),
		SupplierID:  profile.ID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		UnitPrice:   req.UnitPrice,
	}
	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return &product, nil
}

func (s *SupplierService) UpdateProduct(ctx context.Context, userID, id uuid.UUID, req UpdateProductRequest) (*Product, error) {
	product, err := s.GetProduct(ctx, userID, id)
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
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.UnitPrice != nil {
		if *req.UnitPrice < 0 {
			return nil, apperr.Invalid("unit_price", "must not be negative")
		}
		updates["unit_price"] = *req.UnitPrice
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(product).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update product: %w", err)
		}
	}
	return s.GetProduct(ctx, userID, id)
}

func (s *SupplierService) DeleteProduct(ctx context.Context, userID, id uuid.UUID) error {
	product, err := s.GetProduct(ctx, userID, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(product).Error
}

// --- Orders ---

func (s *SupplierService) ListOrders(ctx context.Context, userID uuid.UUID, status string) ([]models.MaterialOrder, error) {
	query := s.db.WithContext(ctx).Where("supplier_id IN (?)", s.ownProfileIDs(userID))
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var orders []models.MaterialOrder
	err := query.Order("created_at DESC").Find(&orders).Error
	return orders, err
}

func (s *SupplierService) GetOrder(ctx context.Context, userID, id uuid.UUID) (*models.MaterialOrder, error) {
	var order models.MaterialOrder
	err := s.db.WithContext(ctx).
		Where("supplier_id IN (?)", s.ownProfileIDs(userID)).
		First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("order")
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrderStatus moves an order addressed to the caller. Terminal orders
// stay terminal; the check is part of the UPDATE so a concurrent cancel wins
// cleanly.
func (s *SupplierService) UpdateOrderStatus(ctx context.Context, userID, id uuid.UUID, status string) (*models.MaterialOrder, error) {
	if !models.Contains(models.OrderStatuses, status) {
		return nil, apperr.Invalid("status", "must be one of %s", strings.Join(models.OrderStatuses, ", "))
	}
	order, err := s.GetOrder(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if order.Status == status {
		return order, nil
	}

	result := s.db.WithContext(ctx).Model(&models.MaterialOrder{}).
		Where("id = ? AND status NOT IN ?", id, closedOrderStatuses).
		Update("status", status)
	if result.Error != nil {
		return nil, fmt.Errorf("update order status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrOrderClosed
	}

	events.Emit(s.publisher, events.OrderStatusChanged, map[string]any{
		"order_id": id, "project_id": order.ProjectID, "from": order.Status, "status": status,
	})
	order.Status = status
	return order, nil
}
