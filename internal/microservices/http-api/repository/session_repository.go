package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"popcornhour/internal/apperr"
	"popcornhour/internal/microservices/http-api/models"
)

// SessionStore persists the server-side half of a session so logout can
// invalidate a token before it expires.
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	// Get returns apperr.ErrNotFound for unknown and expired sessions alike.
	Get(ctx context.Context, id string) (*models.Session, error)
	// Delete is idempotent.
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) error
}

// sessionRepository is the GORM implementation of SessionStore
type sessionRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSessionRepository(db *gorm.DB) SessionStore {
	return &sessionRepository{db: db, now: time.Now}
}

func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		return nil, notFound(err)
	}
	if session.Expired(r.now()) {
		// expired rows are garbage; drop it on the way out
		_ = r.Delete(ctx, id)
		return nil, apperr.ErrNotFound
	}
	return &session, nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Session{}).Error
}

func (r *sessionRepository) DeleteByUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Session{}).Error
}
