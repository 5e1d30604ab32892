package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	maxNameLength  = 150
	maxPhoneLength = 20
)

// UserService serves the caller's own user and profile.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Preload("Profile").First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func optionalText(field string, v *string, max int) (string, error) {
	s := strings.TrimSpace(*v)
	if utf8.RuneCountInString(s) > max {
		return "", apperr.Invalid(field, "must be at most %d characters", max)
	}
	return s, nil
}

// Update writes the provided fields, each record at most once, and returns
// the reloaded user.
func (s *UserService) Update(ctx context.Context, userID uuid.UUID, req dto.UpdateUserRequest) (*models.User, error) {
	userChanges := map[string]interface{}{}
	profileChanges := map[string]interface{}{}

	fields := []struct {
		name    string
		value   *string
		max     int
		changes map[string]interface{}
	}{
		{"first_name", req.FirstName, maxNameLength, userChanges},
		{"last_name", req.LastName, maxNameLength, userChanges},
		{"phone_number", req.PhoneNumber, maxPhoneLength, profileChanges},
		{"address", req.Address, 1000, profileChanges},
	}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		v, err := optionalText(f.name, f.value, f.max)
		if err != nil {
			return nil, err
		}
		f.changes[f.name] = v
	}

	if len(userChanges) > 0 || len(profileChanges) > 0 {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if len(userChanges) > 0 {
				if err := tx.Model(&models.User{}).Where("id = ?", userID).Updates(userChanges).Error; err != nil {
					return err
				}
			}
			if len(profileChanges) > 0 {
				if err := tx.Model(&models.Profile{}).Where("user_id = ?", userID).Updates(profileChanges).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, userID)
}
