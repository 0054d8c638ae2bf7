package repositories

import (
	"errors"
	"fmt"

	"github.com/ChiraniSiriwardhana/ASMS-Backend/models"
	"gorm.io/gorm"
)

// UserRepository resolves user accounts. The roster and appointment engines
// only ever read users; they never create or delete them.
type UserRepository interface {
	// FindByUsername looks up a user by token subject. Returns (nil, nil) when absent.
	FindByUsername(username string) (*models.User, error)

	// FindByID looks up a user by primary key. Returns (nil, nil) when absent.
	FindByID(id uint) (*models.User, error)

	// FindActiveByRole returns all active users with the given role.
	FindActiveByRole(role string) ([]models.User, error)

	// Create inserts a new user record. Used by the profile controller only.
	Create(user *models.User) error
}

// GormUserRepository implements UserRepository on a GORM connection.
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a UserRepository backed by the given database.
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByUsername looks up a user by token subject
func (r *GormUserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}
	return &user, nil
}

// FindByID looks up a user by primary key
func (r *GormUserRepository) FindByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by id: %w", err)
	}
	return &user, nil
}

// FindActiveByRole returns all active users with the given role
func (r *GormUserRepository) FindActiveByRole(role string) ([]models.User, error) {
	var users []models.User
	if err := r.db.Where("role = ? AND is_active = ?", role, true).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to find users by role: %w", err)
	}
	return users, nil
}

// Create inserts a new user record
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}
