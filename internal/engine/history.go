package engine

import (
	"context"

	"github.com/jon4hz/astroadvisor/internal/database"
)

// CreateHistory appends an entry to the history of userID. Only the user itself may do so.
func (e *Engine) CreateHistory(ctx context.Context, caller *database.User, userID uint, actionType string, details map[string]any) (*database.UserHistory, error) {
	if err := authorize(caller, userID); err != nil {
		return nil, err
	}

	entry := &database.UserHistory{
		UserID:     userID,
		ActionType: actionType,
		Details:    details,
	}
	if err := e.db.CreateHistory(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ListHistory returns a page of the history of userID, oldest first.
func (e *Engine) ListHistory(ctx context.Context, caller *database.User, userID uint, page database.Page) ([]database.UserHistory, error) {
	if err := authorize(caller, userID); err != nil {
		return nil, err
	}
	return e.db.ListHistoryByUser(ctx, userID, page)
}
