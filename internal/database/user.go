package database

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// User represents a registered account.
// Email and username are unique, deleting a user is a hard delete so both can be reused.
type User struct {
	ID             uint   `gorm:"primaryKey"`
	Email          string `gorm:"uniqueIndex;not null"`
	Username       string `gorm:"uniqueIndex;not null"`
	HashedPassword string `gorm:"not null"`
	BirthDate      string
	BirthTime      *string
	Location       string
	IsActive       bool `gorm:"not null;default:true"`
	CreatedAt      time.Time
	Readings       []Reading `gorm:"constraint:OnDelete:RESTRICT;"`
}

// UserUpdate holds a partial update. Nil fields are left untouched.
// ClearBirthTime stores NULL as birth time and takes precedence over BirthTime.
type UserUpdate struct {
	Username       *string
	BirthDate      *string
	BirthTime      *string
	ClearBirthTime bool
	Location       *string
}

// Empty reports whether the update would change nothing.
func (u UserUpdate) Empty() bool {
	return u.Username == nil && u.BirthDate == nil && u.BirthTime == nil && !u.ClearBirthTime && u.Location == nil
}

func (u UserUpdate) columns() map[string]any {
	cols := make(map[string]any)
	if u.Username != nil {
		cols["username"] = *u.Username
	}
	if u.BirthDate != nil {
		cols["birth_date"] = *u.BirthDate
	}
	switch {
	case u.ClearBirthTime:
		cols["birth_time"] = nil
	case u.BirthTime != nil:
		cols["birth_time"] = *u.BirthTime
	}
	if u.Location != nil {
		cols["location"] = *u.Location
	}
	return cols
}

// UserDB defines the user related database operations.
type UserDB interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id uint) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	UpdateUser(ctx context.Context, id uint, update UserUpdate) (*User, error)
	DeleteUser(ctx context.Context, id uint) error
}

// CreateUser inserts a new user. A taken email or username yields ErrDuplicate.
func (c *Client) CreateUser(ctx context.Context, user *User) error {
	if err := c.db.WithContext(ctx).Create(user).Error; err != nil {
		err = translateError(err)
		if !isDuplicate(err) {
			log.Error("failed to create user", "error", err)
		}
		return err
	}
	return nil
}

func (c *Client) GetUserByID(ctx context.Context, id uint) (*User, error) {
	return c.getUser(ctx, "id = ?", id)
}

func (c *Client) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return c.getUser(ctx, "email = ?", email)
}

func (c *Client) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return c.getUser(ctx, "username = ?", username)
}

func (c *Client) getUser(ctx context.Context, query string, arg any) (*User, error) {
	var user User
	if err := c.db.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		err = translateError(err)
		if err != ErrNotFound {
			log.Error("failed to get user", "error", err)
		}
		return nil, err
	}
	return &user, nil
}

// UpdateUser applies the non-nil fields of update and returns the stored user.
func (c *Client) UpdateUser(ctx context.Context, id uint, update UserUpdate) (*User, error) {
	if !update.Empty() {
		result := c.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(update.columns())
		if result.Error != nil {
			err := translateError(result.Error)
			if !isDuplicate(err) {
				log.Error("failed to update user", "error", err)
			}
			return nil, err
		}
		if result.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return c.GetUserByID(ctx, id)
}

// DeleteUser removes the user row only. Dependent rows must be removed first.
func (c *Client) DeleteUser(ctx context.Context, id uint) error {
	result := c.db.WithContext(ctx).Delete(&User{}, id)
	if result.Error != nil {
		log.Error("failed to delete user", "error", result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
