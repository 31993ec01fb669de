package models

import "time"

// UserCreate is the body of POST /register.
type UserCreate struct {
	Email     string  `json:"email" binding:"required,email"`
	Username  string  `json:"username" binding:"required,min=1,max=64"`
	Password  string  `json:"password" binding:"required,min=8,max=72"`
	BirthDate string  `json:"birth_date" binding:"required"`
	BirthTime *string `json:"birth_time"`
	Location  string  `json:"location" binding:"required"`
}

// TokenRequest is the form body of POST /token. Username carries the email.
type TokenRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// Token is the response of POST /token.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// User is the public view of an account.
type User struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	BirthDate string    `json:"birth_date"`
	BirthTime *string   `json:"birth_time"`
	Location  string    `json:"location"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	AvatarURL string    `json:"avatar_url,omitempty"`
}

// UserUpdate is the body of PUT /users/me. Absent fields are left untouched,
// a null birth_time clears it.
type UserUpdate struct {
	Username  Field[string] `json:"username"`
	BirthDate Field[string] `json:"birth_date"`
	BirthTime Field[string] `json:"birth_time"`
	Location  Field[string] `json:"location"`
}

// UserInput is the birth data of an advice request.
type UserInput struct {
	Name      string  `json:"name" binding:"required"`
	BirthDate string  `json:"birth_date" binding:"required"`
	BirthTime *string `json:"birth_time"`
	Location  string  `json:"location" binding:"required"`
}

// ReadingCreate is the body of POST /readings/.
type ReadingCreate struct {
	UserInput
	Advice string `json:"advice" binding:"required"`
}

// Reading is a stored reading.
type Reading struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	BirthDate string    `json:"birth_date"`
	BirthTime *string   `json:"birth_time"`
	Location  string    `json:"location"`
	Advice    string    `json:"advice"`
	CreatedAt time.Time `json:"created_at"`
	UserID    *uint     `json:"user_id"`
}

type Philosophy struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Origin        string    `json:"origin"`
	KeyPrinciples []string  `json:"key_principles"`
	CreatedAt     time.Time `json:"created_at"`
}

type Religion struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Origin      string    `json:"origin"`
	SacredTexts []string  `json:"sacred_texts"`
	Practices   []string  `json:"practices"`
	CreatedAt   time.Time `json:"created_at"`
}

type AstrologicalSystem struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Origin      string    `json:"origin"`
	Description string    `json:"description"`
	KeyConcepts []string  `json:"key_concepts"`
	ZodiacSigns []string  `json:"zodiac_signs"`
	CreatedAt   time.Time `json:"created_at"`
}

// Catalog is the response of the search and knowledge routes.
type Catalog struct {
	Philosophies        []Philosophy         `json:"philosophies"`
	Religions           []Religion           `json:"religions"`
	AstrologicalSystems []AstrologicalSystem `json:"astrological_systems"`
}

// GuruMessage is the body of POST /guru-chat/{type}/{id}.
type GuruMessage struct {
	Content string `json:"content" binding:"required"`
}

type GuruResponse struct {
	Response  string `json:"response"`
	Tradition string `json:"tradition"`
}

// UserPreferencesCreate is the body of the preferences create and update routes.
type UserPreferencesCreate struct {
	PreferredSystem      string         `json:"preferred_system"`
	NotificationSettings map[string]any `json:"notification_settings"`
	ThemePreferences     map[string]any `json:"theme_preferences"`
}

type UserPreferences struct {
	ID                   uint           `json:"id"`
	UserID               uint           `json:"user_id"`
	PreferredSystem      string         `json:"preferred_system"`
	NotificationSettings map[string]any `json:"notification_settings"`
	ThemePreferences     map[string]any `json:"theme_preferences"`
	CreatedAt            time.Time      `json:"created_at"`
}

// UserHistoryCreate is the body of POST /users/{id}/history/.
type UserHistoryCreate struct {
	ActionType string         `json:"action_type" binding:"required"`
	Details    map[string]any `json:"details"`
}

type UserHistory struct {
	ID         uint           `json:"id"`
	UserID     uint           `json:"user_id"`
	ActionType string         `json:"action_type"`
	Details    map[string]any `json:"details"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Message is a plain informational response.
type Message struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Detail any `json:"detail"`
}
