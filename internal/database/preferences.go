package database

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/datatypes"
)

// UserPreferences holds the per user settings. There is at most one row per user.
type UserPreferences struct {
	ID                   uint `gorm:"primaryKey"`
	UserID               uint `gorm:"uniqueIndex;not null"`
	PreferredSystem      string
	NotificationSettings datatypes.JSONMap
	ThemePreferences     datatypes.JSONMap
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// TableName keeps the singular table name.
func (UserPreferences) TableName() string {
	return "user_preferences"
}

// PreferencesDB defines the user preference operations.
type PreferencesDB interface {
	CreatePreferences(ctx context.Context, prefs *UserPreferences) error
	GetPreferencesByUser(ctx context.Context, userID uint) (*UserPreferences, error)
	UpdatePreferences(ctx context.Context, prefs *UserPreferences) error
	DeletePreferencesByUser(ctx context.Context, userID uint) error
}

// CreatePreferences inserts the preferences. A second row for the same user yields ErrDuplicate.
func (c *Client) CreatePreferences(ctx context.Context, prefs *UserPreferences) error {
	normalizePreferences(prefs)
	if err := c.db.WithContext(ctx).Create(prefs).Error; err != nil {
		err = translateError(err)
		if !isDuplicate(err) {
			log.Error("failed to create preferences", "error", err)
		}
		return err
	}
	return nil
}

func (c *Client) GetPreferencesByUser(ctx context.Context, userID uint) (*UserPreferences, error) {
	var prefs UserPreferences
	if err := c.db.WithContext(ctx).Where("user_id = ?", userID).First(&prefs).Error; err != nil {
		err = translateError(err)
		if err != ErrNotFound {
			log.Error("failed to get preferences", "error", err)
		}
		return nil, err
	}
	return &prefs, nil
}

// UpdatePreferences replaces the stored settings of prefs.UserID and refreshes prefs from the database.
func (c *Client) UpdatePreferences(ctx context.Context, prefs *UserPreferences) error {
	normalizePreferences(prefs)
	result := c.db.WithContext(ctx).
		Model(&UserPreferences{}).
		Where("user_id = ?", prefs.UserID).
		Updates(map[string]any{
			"preferred_system":      prefs.PreferredSystem,
			"notification_settings": prefs.NotificationSettings,
			"theme_preferences":     prefs.ThemePreferences,
			"updated_at":            time.Now(),
		})
	if result.Error != nil {
		log.Error("failed to update preferences", "error", result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	stored, err := c.GetPreferencesByUser(ctx, prefs.UserID)
	if err != nil {
		return err
	}
	*prefs = *stored
	return nil
}

func (c *Client) DeletePreferencesByUser(ctx context.Context, userID uint) error {
	if err := c.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&UserPreferences{}).Error; err != nil {
		log.Error("failed to delete preferences", "error", err)
		return err
	}
	return nil
}

func normalizePreferences(prefs *UserPreferences) {
	if prefs.NotificationSettings == nil {
		prefs.NotificationSettings = datatypes.JSONMap{}
	}
	if prefs.ThemePreferences == nil {
		prefs.ThemePreferences = datatypes.JSONMap{}
	}
}
