package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"popcornhour/internal/apperr"
	"popcornhour/internal/microservices/http-api/models"
	"popcornhour/internal/shared"
)

// UserRepository is the credential store: identity, password verifier and role.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	UpdateRole(ctx context.Context, email string, role shared.Role) (*models.User, error)
	DeleteByEmail(ctx context.Context, email string) error
}

// userRepository is the GORM implementation of UserRepository.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of UserRepository in a GORM implementation
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts the user. The unique indexes on username and email are the
// source of truth; a duplicate comes back as *apperr.ConstraintViolationError.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return constraintViolation(err, "username", "email")
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	// return nil on a miss so callers never mistake a zero-value struct for a found user
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("last_login", at).Error
}

// UpdateRole is the out-of-band elevation path; no HTTP route reaches it.
func (r *userRepository) UpdateRole(ctx context.Context, email string, role shared.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, apperr.InvalidField("role", fmt.Sprintf("unknown role %q", role))
	}
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Update("role", role)
	if res.Error != nil {
		return nil, fmt.Errorf("update role: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.ErrNotFound
	}
	return r.FindByEmail(ctx, email)
}

// DeleteByEmail removes the user with its ratings, comments and sessions in one
// transaction. The FK cascades cover the same rows; the explicit deletes keep
// the result identical on databases running without FK enforcement.
func (r *userRepository) DeleteByEmail(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("email = ?", email).First(&user).Error; err != nil {
			return notFound(err)
		}
		for _, owned := range []interface{}{&models.Rating{}, &models.Comment{}, &models.Session{}} {
			if err := tx.Where("user_id = ?", user.ID).Delete(owned).Error; err != nil {
				return fmt.Errorf("delete user rows: %w", err)
			}
		}
		if err := tx.Delete(&user).Error; err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
}
