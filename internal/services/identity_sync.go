package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserStore is the persistence the sync needs. FindBySubject returns
// (nil, nil) when no user exists. Tx runs fn against a store bound to one
// transaction; an error from fn rolls back every write made through it.
type UserStore interface {
	Tx(ctx context.Context, fn func(store UserStore) error) error
	FindBySubject(ctx context.Context, subject string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	EnsureProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	UpdateUser(ctx context.Context, id uuid.UUID, changes map[string]interface{}) error
	UpdateProfile(ctx context.Context, id uuid.UUID, changes map[string]interface{}) error
}

type syncTarget int

const (
	targetUser syncTarget = iota
	targetProfile
)

// fieldMapping binds one provider metadata key to one local column.
type fieldMapping struct {
	external  string
	target    syncTarget
	column    string
	normalize func(string) (string, bool)
	get       func(u *models.User, p *models.Profile) string
	set       func(u *models.User, p *models.Profile, v string)
}

func trimmed(v string) (string, bool) {
	v = strings.TrimSpace(v)
	return v, v != ""
}

func normalizeRole(v string) (string, bool) {
	v = strings.ToUpper(strings.TrimSpace(v))
	return v, models.IsValidRole(v)
}

var metadataMappings = []fieldMapping{
	{
		external: "role", target: targetProfile, column: "role", normalize: normalizeRole,
		get: func(_ *models.User, p *models.Profile) string { return p.Role },
		set: func(_ *models.User, p *models.Profile, v string) { p.Role = v },
	},
	{
		external: "first_name", target: targetUser, column: "first_name", normalize: trimmed,
		get: func(u *models.User, _ *models.Profile) string { return u.FirstName },
		set: func(u *models.User, _ *models.Profile, v string) { u.FirstName = v },
	},
	{
		external: "last_name", target: targetUser, column: "last_name", normalize: trimmed,
		get: func(u *models.User, _ *models.Profile) string { return u.LastName },
		set: func(u *models.User, _ *models.Profile, v string) { u.LastName = v },
	},
	{
		external: "phone_number", target: targetProfile, column: "phone_number", normalize: trimmed,
		get: func(_ *models.User, p *models.Profile) string { return p.PhoneNumber },
		set: func(_ *models.User, p *models.Profile, v string) { p.PhoneNumber = v },
	},
}

// IdentitySyncService maps a verified provider identity onto the local User
// and Profile, creating them on first sight and reconciling metadata.
type IdentitySyncService struct {
	store UserStore
}

func NewIdentitySyncService(store UserStore) *IdentitySyncService {
	return &IdentitySyncService{store: store}
}

// Sync returns the local user for ident with Profile loaded. Each record is
// written at most once and only with the columns that changed, and all writes
// share one transaction.
func (s *IdentitySyncService) Sync(ctx context.Context, ident *identity.Identity) (*models.User, error) {
	if ident == nil || ident.Subject == "" {
		return nil, identity.Fail(identity.ReasonUserNotFound, errors.New("identity has no subject"))
	}

	var (
		user                        *models.User
		profile                     *models.Profile
		created                     bool
		userChanges, profileChanges map[string]interface{}
	)
	err := s.store.Tx(ctx, func(store UserStore) error {
		var err error
		user, err = store.FindBySubject(ctx, ident.Subject)
		if err != nil {
			return fmt.Errorf("find user: %w", err)
		}
		if user == nil {
			user = &models.User{Subject: ident.Subject, Email: ident.Email}
			if err := store.Create(ctx, user); err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			created = true
		}

		profile, err = store.EnsureProfile(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("ensure profile: %w", err)
		}

		userChanges, profileChanges = diffMetadata(ident.Metadata, user, profile)
		if len(userChanges) > 0 {
			if err := store.UpdateUser(ctx, user.ID, userChanges); err != nil {
				return fmt.Errorf("update user: %w", err)
			}
		}
		if len(profileChanges) > 0 {
			if err := store.UpdateProfile(ctx, profile.ID, profileChanges); err != nil {
				return fmt.Errorf("update profile: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	outcome := "unchanged"
	switch {
	case created:
		outcome = "created"
		slog.Info("user created from identity", "user_id", user.ID.String(), "action", "identity_sync")
	case len(userChanges)+len(profileChanges) > 0:
		outcome = "updated"
	}
	metrics.IdentitySyncs.WithLabelValues(outcome).Inc()

	user.Profile = profile
	return user, nil
}

// diffMetadata applies metadata to u and p in memory and returns the changed
// columns per record. Absent, empty, non-string and invalid values are skipped.
func diffMetadata(meta map[string]any, u *models.User, p *models.Profile) (userChanges, profileChanges map[string]interface{}) {
	userChanges = map[string]interface{}{}
	profileChanges = map[string]interface{}{}
	for _, m := range metadataMappings {
		raw, ok := meta[m.external].(string)
		if !ok {
			continue
		}
		v, ok := m.normalize(raw)
		if !ok {
			if strings.TrimSpace(raw) != "" {
				slog.Warn("ignoring invalid identity metadata", "field", m.external, "value", raw)
			}
			continue
		}
		if m.get(u, p) == v {
			continue
		}
		m.set(u, p, v)
		if m.target == targetUser {
			userChanges[m.column] = v
		} else {
			profileChanges[m.column] = v
		}
	}
	return userChanges, profileChanges
}

// Authenticator turns a raw Authorization header into a synced local user.
type Authenticator struct {
	verifier identity.Verifier
	sync     *IdentitySyncService
}

func NewAuthenticator(verifier identity.Verifier, sync *IdentitySyncService) *Authenticator {
	return &Authenticator{verifier: verifier, sync: sync}
}

func (a *Authenticator) Authenticate(ctx context.Context, header string) (*models.User, error) {
	token, err := identity.TokenFromHeader(header)
	if err != nil {
		return nil, err
	}

	ident, err := a.verifier.Verify(ctx, token)
	if err != nil {
		if identity.ReasonOf(err) == "" {
			err = identity.Fail(identity.ReasonProviderUnreachable, err)
		}
		return nil, err
	}
	return a.sync.Sync(ctx, ident)
}

// GormUserStore persists users and profiles with GORM.
type GormUserStore struct {
	db *gorm.DB
}

func NewGormUserStore(db *gorm.DB) *GormUserStore {
	return &GormUserStore{db: db}
}

func (s *GormUserStore) Tx(ctx context.Context, fn func(store UserStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormUserStore{db: tx})
	})
}

func (s *GormUserStore) FindBySubject(ctx context.Context, subject string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("subject = ?", subject).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts the user; if a concurrent request won the race on the
// subject, the existing row is loaded into user instead.
func (s *GormUserStore) Create(ctx context.Context, user *models.User) error {
	db := s.db.WithContext(ctx)
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "subject"}},
		DoNothing: true,
	}).Create(user)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return db.Where("subject = ?", user.Subject).First(user).Error
	}
	return nil
}

func (s *GormUserStore) EnsureProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	db := s.db.WithContext(ctx)
	var profile models.Profile
	err := db.Where("user_id = ?", userID).First(&profile).Error
	if err == nil {
		return &profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	profile = models.Profile{UserID: userID, Role: models.RoleBuilder}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&profile).Error; err != nil {
		return nil, err
	}
	if err := db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *GormUserStore) UpdateUser(ctx context.Context, id uuid.UUID, changes map[string]interface{}) error {
	return s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(changes).Error
}

func (s *GormUserStore) UpdateProfile(ctx context.Context, id uuid.UUID, changes map[string]interface{}) error {
	return s.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Updates(changes).Error
}
