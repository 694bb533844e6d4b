package repositories

import (
	"time"

	"github.com/ihere-app/ihere-backend/internal/models"
	"gorm.io/gorm"
)

// CredentialRepository defines the interface for the chat credential audit trail
type CredentialRepository interface {
	RecordIssued(cred *models.IssuedCredential) error
	ListByUserID(userID string) ([]models.IssuedCredential, error)
	PurgeExpired(before time.Time) (int64, error)
}

// PostgresCredentialRepository implements CredentialRepository for PostgreSQL
type PostgresCredentialRepository struct {
	db *gorm.DB
}

// NewPostgresCredentialRepository creates a new PostgresCredentialRepository
func NewPostgresCredentialRepository(db *gorm.DB) *PostgresCredentialRepository {
	return &PostgresCredentialRepository{db: db}
}

func (r *PostgresCredentialRepository) RecordIssued(cred *models.IssuedCredential) error {
	return r.db.Create(cred).Error
}

func (r *PostgresCredentialRepository) ListByUserID(userID string) ([]models.IssuedCredential, error) {
	var creds []models.IssuedCredential
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&creds).Error
	return creds, err
}

func (r *PostgresCredentialRepository) PurgeExpired(before time.Time) (int64, error) {
	res := r.db.Where("expires_at < ?", before).Delete(&models.IssuedCredential{})
	return res.RowsAffected, res.Error
}
