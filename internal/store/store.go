package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/devfury/ezcaretech-auth/internal/config"
	"github.com/devfury/ezcaretech-auth/internal/core"
	"github.com/devfury/ezcaretech-auth/internal/models"
)

// Ensure Store implements core.Directory at compile time
var _ core.Directory = (*Store)(nil)

// Store is the gorm-backed user directory
type Store struct {
	db *gorm.DB
}

// New opens the database, migrates the schema and seeds the configured realm and roles
func New(
	ctx context.Context,
	driver, dsn string,
	cfg *config.Config,
	opts ...Option,
) (*Store, error) {
	o := options{logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&o)
	}

	dialector, err := GetDialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(o.logger),
	})
	if err != nil {
		return nil, err
	}

	if driver == "sqlite" {
		// a single connection keeps :memory: databases shared and serialises writers
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	// Auto migrate
	if err := db.WithContext(ctx).AutoMigrate(
		&models.Realm{},
		&models.Role{},
		&models.User{},
		&models.UserAttribute{},
		&models.UserRole{},
	); err != nil {
		return nil, err
	}

	store := &Store{db: db}

	if cfg != nil {
		if err := store.EnsureRealm(ctx, cfg.Realm, cfg.DefaultRoles); err != nil {
			return nil, fmt.Errorf("failed to seed realm %q: %w", cfg.Realm, err)
		}
	}

	return store, nil
}

// EnsureRealm creates the realm and any missing roles in it. It is safe to call repeatedly.
func (s *Store) EnsureRealm(ctx context.Context, name string, roles []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		candidate := models.Realm{ID: uuid.New().String(), Name: name}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&candidate).Error; err != nil {
			return err
		}

		var realm models.Realm
		if err := tx.Where("name = ?", name).First(&realm).Error; err != nil {
			return err
		}

		for _, roleName := range roles {
			role := models.Role{
				ID:          uuid.New().String(),
				RealmID:     realm.ID,
				Name:        roleName,
				Description: "Granted to users provisioned from BizBox",
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&role).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) realmID(ctx context.Context, name string) (string, error) {
	var realm models.Realm
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&realm).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("%w: %s", ErrRealmNotFound, name)
	}
	if err != nil {
		return "", err
	}
	return realm.ID, nil
}

// User operations

// GetUserByUsername returns the user with attributes and roles loaded, or nil when absent
func (s *Store) GetUserByUsername(
	ctx context.Context,
	realm, username string,
) (*models.User, error) {
	realmID, err := s.realmID(ctx, realm)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = s.db.WithContext(ctx).
		Preload("Attributes").
		Preload("Roles").
		Where("realm_id = ? AND username = ?", realmID, username).
		First(&user).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// AddUser creates a disabled user. If a concurrent writer created the same username first,
// the existing row is returned instead.
func (s *Store) AddUser(ctx context.Context, realm, username string) (*models.User, error) {
	realmID, err := s.realmID(ctx, realm)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:       uuid.New().String(),
		RealmID:  realmID,
		Username: username,
	}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit(clause.Associations).
		Create(user)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		existing, err := s.GetUserByUsername(ctx, realm, username)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, fmt.Errorf("user %q vanished after conflicting insert", username)
		}
		return existing, nil
	}
	return user, nil
}

// SaveUser persists the scalar columns of user. Attributes and roles have their own writers.
func (s *Store) SaveUser(ctx context.Context, user *models.User) error {
	if user == nil || user.ID == "" {
		return ErrInvalidUser
	}
	return s.db.WithContext(ctx).Omit(clause.Associations).Save(user).Error
}

// SetSingleAttribute replaces the named attribute. A nil value removes it.
func (s *Store) SetSingleAttribute(
	ctx context.Context,
	user *models.User,
	name string,
	value *string,
) error {
	if user == nil || user.ID == "" {
		return ErrInvalidUser
	}

	db := s.db.WithContext(ctx)
	if value == nil {
		return db.Where("user_id = ? AND name = ?", user.ID, name).
			Delete(&models.UserAttribute{}).
			Error
	}

	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&models.UserAttribute{
		UserID: user.ID,
		Name:   name,
		Value:  *value,
	}).Error
}

// CountUsers returns the number of users in realm
func (s *Store) CountUsers(ctx context.Context, realm string) (int64, error) {
	realmID, err := s.realmID(ctx, realm)
	if err != nil {
		return 0, err
	}

	var count int64
	err = s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("realm_id = ?", realmID).
		Count(&count).
		Error
	return count, err
}

// Role operations

// GetRole resolves a role by name within realm, or nil when absent
func (s *Store) GetRole(ctx context.Context, realm, name string) (*models.Role, error) {
	realmID, err := s.realmID(ctx, realm)
	if err != nil {
		return nil, err
	}

	var role models.Role
	err = s.db.WithContext(ctx).
		Where("realm_id = ? AND name = ?", realmID, name).
		First(&role).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// GrantRole grants role to user. Granting an already held role is a no-op.
func (s *Store) GrantRole(ctx context.Context, user *models.User, role *models.Role) error {
	if user == nil || user.ID == "" || role == nil {
		return ErrInvalidUser
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.UserRole{UserID: user.ID, RoleID: role.ID}).
		Error
}

// Transaction runs fn against a Directory bound to one database transaction
func (s *Store) Transaction(ctx context.Context, fn func(tx core.Directory) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// Health checks the database connection
func (s *Store) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying connection pool
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// DB returns the underlying database connection
func (s *Store) DB() *gorm.DB {
	return s.db
}
