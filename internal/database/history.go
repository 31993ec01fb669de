package database

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/datatypes"
)

// UserHistory is an append-only record of an action a user performed.
type UserHistory struct {
	ID         uint `gorm:"primaryKey"`
	UserID     uint `gorm:"index;not null"`
	ActionType string
	Details    datatypes.JSONMap
	CreatedAt  time.Time
}

// TableName keeps the singular table name.
func (UserHistory) TableName() string {
	return "user_history"
}

// HistoryDB defines the user history operations.
type HistoryDB interface {
	CreateHistory(ctx context.Context, entry *UserHistory) error
	ListHistoryByUser(ctx context.Context, userID uint, page Page) ([]UserHistory, error)
	DeleteHistoryByUser(ctx context.Context, userID uint) error
}

func (c *Client) CreateHistory(ctx context.Context, entry *UserHistory) error {
	if entry.Details == nil {
		entry.Details = datatypes.JSONMap{}
	}
	if err := c.db.WithContext(ctx).Create(entry).Error; err != nil {
		log.Error("failed to create history entry", "error", err)
		return translateError(err)
	}
	return nil
}

func (c *Client) ListHistoryByUser(ctx context.Context, userID uint, page Page) ([]UserHistory, error) {
	entries := make([]UserHistory, 0)
	err := page.apply(c.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC")).
		Find(&entries).Error
	if err != nil {
		log.Error("failed to list history", "error", err)
		return nil, err
	}
	return entries, nil
}

func (c *Client) DeleteHistoryByUser(ctx context.Context, userID uint) error {
	if err := c.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&UserHistory{}).Error; err != nil {
		log.Error("failed to delete history", "error", err)
		return err
	}
	return nil
}
