package engine

import (
	"context"
	"errors"

	"github.com/jon4hz/astroadvisor/internal/database"
)

// Preferences holds the settings a user can store.
type Preferences struct {
	PreferredSystem      string
	NotificationSettings map[string]any
	ThemePreferences     map[string]any
}

func authorize(caller *database.User, userID uint) error {
	if caller == nil || caller.ID != userID {
		return ErrForbidden
	}
	return nil
}

// CreatePreferences stores the preferences of userID. Only the user itself may do so.
func (e *Engine) CreatePreferences(ctx context.Context, caller *database.User, userID uint, in Preferences) (*database.UserPreferences, error) {
	if err := authorize(caller, userID); err != nil {
		return nil, err
	}

	prefs := &database.UserPreferences{
		UserID:               userID,
		PreferredSystem:      in.PreferredSystem,
		NotificationSettings: in.NotificationSettings,
		ThemePreferences:     in.ThemePreferences,
	}
	if err := e.db.CreatePreferences(ctx, prefs); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrPreferencesExist
		}
		return nil, err
	}
	return prefs, nil
}

// GetPreferences returns the preferences of userID. Only the user itself may read them.
func (e *Engine) GetPreferences(ctx context.Context, caller *database.User, userID uint) (*database.UserPreferences, error) {
	if err := authorize(caller, userID); err != nil {
		return nil, err
	}

	prefs, err := e.db.GetPreferencesByUser(ctx, userID)
	if err != nil {
		return nil, mapNotFound(err, "Preferences")
	}
	return prefs, nil
}

// UpdatePreferences replaces the existing preferences of userID.
func (e *Engine) UpdatePreferences(ctx context.Context, caller *database.User, userID uint, in Preferences) (*database.UserPreferences, error) {
	if err := authorize(caller, userID); err != nil {
		return nil, err
	}

	prefs := &database.UserPreferences{
		UserID:               userID,
		PreferredSystem:      in.PreferredSystem,
		NotificationSettings: in.NotificationSettings,
		ThemePreferences:     in.ThemePreferences,
	}
	if err := e.db.UpdatePreferences(ctx, prefs); err != nil {
		return nil, mapNotFound(err, "Preferences")
	}
	return prefs, nil
}
