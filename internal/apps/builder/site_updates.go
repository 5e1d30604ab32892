package builder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/session"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrImageMissing = apperr.NotFound("site update image")

// SiteUpdateService keeps progress reports on the caller's projects. Reports
// on other owners' projects read as not found.
type SiteUpdateService struct {
	db     *gorm.DB
	signer storage.URLSigner
}

// NewSiteUpdateService accepts a nil signer; image links then answer not found.
func NewSiteUpdateService(db *gorm.DB, signer storage.URLSigner) *SiteUpdateService {
	return &SiteUpdateService{db: db, signer: signer}
}

// cleanObjectKey accepts keys relative to the bucket root.
func cleanObjectKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if strings.HasPrefix(key, "/") || strings.Contains(key, "..") || len(key) > 500 {
		return "", apperr.Invalid("image_object_key", "must be a relative object key")
	}
	return key, nil
}

func withImageFlag(u *SiteUpdate) *SiteUpdate {
	u.HasImage = u.ImageObjectKey != ""
	return u
}

func (s *SiteUpdateService) Create(ctx context.Context, userID uuid.UUID, req CreateSiteUpdateRequest) (*SiteUpdate, error) {
	if req.ProjectID == uuid.Nil {
		return nil, apperr.Invalid("project_id", "is required")
	}
	desc := strings.TrimSpace(req.Description)
	if desc == "" {
		return nil, apperr.Invalid("description", "is required")
	}
	key, err := cleanObjectKey(req.ImageObjectKey)
	if err != nil {
		return nil, err
	}
	if err := ownsProject(ctx, s.db, userID, req.ProjectID); err != nil {
		return nil, err
	}

	update := SiteUpdate{
		ID:             uuid.New(),
		ProjectID:      req.ProjectID,
		Description:    desc,
		ImageObjectKey: key,
		GeoLocation:    strings.TrimSpace(req.GeoLocation),
		Verified:       req.Verified,
	}
	if err := s.db.WithContext(ctx).Create(&update).Error; err != nil {
		return nil, fmt.Errorf("create site update: %w", err)
	}
	return withImageFlag(&update), nil
}

func (s *SiteUpdateService) List(ctx context.Context, userID uuid.UUID, projectID *uuid.UUID) ([]SiteUpdate, error) {
	query := s.db.WithContext(ctx).Where("project_id IN (?)", session.OwnedProjectIDs(s.db, userID))
	if projectID != nil {
		query = query.Where("project_id = ?", *projectID)
	}
	var updates []SiteUpdate
	if err := query.Order("created_at DESC").Find(&updates).Error; err != nil {
		return nil, err
	}
	for i := range updates {
		withImageFlag(&updates[i])
	}
	return updates, nil
}

func (s *SiteUpdateService) Get(ctx context.Context, userID, id uuid.UUID) (*SiteUpdate, error) {
	var update SiteUpdate
	err := s.db.WithContext(ctx).
		Where("project_id IN (?)", session.OwnedProjectIDs(s.db, userID)).
		First(&update, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("site update")
	}
	if err != nil {
		return nil, err
	}
	return withImageFlag(&update), nil
}

func (s *SiteUpdateService) Update(ctx context.Context, userID, id uuid.UUID, req UpdateSiteUpdateRequest) (*SiteUpdate, error) {
	update, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	changes := map[string]interface{}{}
	if req.Description != nil {
		desc := strings.TrimSpace(*req.Description)
		if desc == "" {
			return nil, apperr.Invalid("description", "must not be empty")
		}
		changes["description"] = desc
	}
	if req.ImageObjectKey != nil {
		key, err := cleanObjectKey(*req.ImageObjectKey)
		if err != nil {
			return nil, err
		}
		changes["image_object_key"] = key
	}
	if req.GeoLocation != nil {
		changes["geo_location"] = strings.TrimSpace(*req.GeoLocation)
	}
	if req.Verified != nil {
		changes["verified"] = *req.Verified
	}
	if len(changes) > 0 {
		if err := s.db.WithContext(ctx).Model(update).Updates(changes).Error; err != nil {
			return nil, fmt.Errorf("update site update: %w", err)
		}
	}
	return s.Get(ctx, userID, id)
}

func (s *SiteUpdateService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	update, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(update).Error
}

// ImageURL presigns the update's photo. Updates without a photo, or a server
// without object storage, answer not found.
func (s *SiteUpdateService) ImageURL(ctx context.Context, userID, id uuid.UUID) (string, error) {
	update, err := s.Get(ctx, userID, id)
	if err != nil {
		return "", err
	}
	if update.ImageObjectKey == "" || s.signer == nil {
		return "", ErrImageMissing
	}
	url, err := s.signer.PresignGet(ctx, update.ImageObjectKey)
	if errors.Is(err, storage.ErrNotConfigured) {
		return "", ErrImageMissing
	}
	if err != nil {
		return "", err
	}
	return url, nil
}
