package database

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// Reading is a stored piece of astrological advice.
// Readings created through the anonymous quick advice route have no owner.
type Reading struct {
	ID        uint `gorm:"primaryKey"`
	Name      string
	BirthDate string
	BirthTime *string
	Location  string
	Advice    string `gorm:"type:text"`
	CreatedAt time.Time `gorm:"index"`
	UserID    *uint     `gorm:"index"`
}

// ReadingDB defines the reading related database operations.
type ReadingDB interface {
	CreateReading(ctx context.Context, reading *Reading) error
	GetReadingForUser(ctx context.Context, id, userID uint) (*Reading, error)
	ListReadingsByUser(ctx context.Context, userID uint, page Page, order SortOrder) ([]Reading, error)
	DeleteReadingForUser(ctx context.Context, id, userID uint) error
	DeleteReadingsByUser(ctx context.Context, userID uint) (int64, error)
}

func (c *Client) CreateReading(ctx context.Context, reading *Reading) error {
	if err := c.db.WithContext(ctx).Create(reading).Error; err != nil {
		log.Error("failed to create reading", "error", err)
		return translateError(err)
	}
	return nil
}

// GetReadingForUser returns the reading only if it is owned by userID.
func (c *Client) GetReadingForUser(ctx context.Context, id, userID uint) (*Reading, error) {
	var reading Reading
	err := c.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&reading).Error
	if err != nil {
		err = translateError(err)
		if err != ErrNotFound {
			log.Error("failed to get reading", "error", err)
		}
		return nil, err
	}
	return &reading, nil
}

// ListReadingsByUser returns a page of the user's readings.
// SortOrderDesc returns the newest readings first.
func (c *Client) ListReadingsByUser(ctx context.Context, userID uint, page Page, order SortOrder) ([]Reading, error) {
	orderClause := "id ASC"
	if order == SortOrderDesc {
		orderClause = "created_at DESC, id DESC"
	}

	readings := make([]Reading, 0)
	err := page.apply(c.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order(orderClause)).
		Find(&readings).Error
	if err != nil {
		log.Error("failed to list readings", "error", err)
		return nil, err
	}
	return readings, nil
}

func (c *Client) DeleteReadingForUser(ctx context.Context, id, userID uint) error {
	result := c.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&Reading{})
	if result.Error != nil {
		log.Error("failed to delete reading", "error", result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteReadingsByUser removes every reading owned by userID and returns how many were removed.
func (c *Client) DeleteReadingsByUser(ctx context.Context, userID uint) (int64, error) {
	result := c.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&Reading{})
	if result.Error != nil {
		log.Error("failed to delete readings", "error", result.Error)
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
