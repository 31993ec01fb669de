package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/jon4hz/astroadvisor/internal/config"
	"github.com/jon4hz/astroadvisor/internal/database"
	"github.com/jon4hz/astroadvisor/internal/gravatar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToUser(t *testing.T) {
	user := &database.User{
		ID:             7,
		Email:          "alice@example.com",
		Username:       "alice",
		HashedPassword: "$2a$10$secret",
		BirthDate:      "1990-01-01",
		Location:       "Zurich",
		IsActive:       true,
		CreatedAt:      time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	raw, err := json.Marshal(ToUser(user, nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 7,
		"email": "alice@example.com",
		"username": "alice",
		"birth_date": "1990-01-01",
		"birth_time": null,
		"location": "Zurich",
		"is_active": true,
		"created_at": "2024-01-02T03:04:05Z"
	}`, string(raw))

	avatars := gravatar.New(&config.GravatarConfig{Enabled: true, DefaultImage: "mp", Rating: "g", Size: 80})
	assert.NotEmpty(t, ToUser(user, avatars).AvatarURL)
}

func TestToCatalog_EmptyGroups(t *testing.T) {
	raw, err := json.Marshal(ToCatalog(&database.Catalog{}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"philosophies":[],"religions":[],"astrological_systems":[]}`, string(raw))
}

func TestToReadings(t *testing.T) {
	owner := uint(3)
	readings := ToReadings([]database.Reading{
		{ID: 1, Name: "Alice", Advice: "a", UserID: &owner},
		{ID: 2, Name: "Anonymous", Advice: "b"},
	})

	require.Len(t, readings, 2)
	assert.Equal(t, &owner, readings[0].UserID)
	assert.Nil(t, readings[1].UserID)
}

func TestUserUpdate_ToUpdate(t *testing.T) {
	var body UserUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"location":"Bern"}`), &body))

	update, err := body.ToUpdate()
	require.NoError(t, err)
	require.NotNil(t, update.Location)
	assert.Equal(t, "Bern", *update.Location)
	assert.Nil(t, update.Username)
	assert.Nil(t, update.BirthDate)
	assert.Nil(t, update.BirthTime)
	assert.False(t, update.ClearBirthTime)
}

func TestUserUpdate_ToUpdate_NullBirthTime(t *testing.T) {
	var body UserUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"birth_time":null}`), &body))

	update, err := body.ToUpdate()
	require.NoError(t, err)
	assert.True(t, update.ClearBirthTime)
	assert.Nil(t, update.BirthTime)
	assert.False(t, update.Empty())
}

func TestUserUpdate_ToUpdate_NullRequiredField(t *testing.T) {
	for _, raw := range []string{`{"username":null}`, `{"birth_date":null}`, `{"location":null}`} {
		var body UserUpdate
		require.NoError(t, json.Unmarshal([]byte(raw), &body))

		_, err := body.ToUpdate()
		assert.Error(t, err, raw)
	}
}

func TestUserUpdate_ToUpdate_UsernameTooLong(t *testing.T) {
	var body UserUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"username":"`+strings.Repeat("a", 65)+`"}`), &body))

	_, err := body.ToUpdate()
	assert.Error(t, err)
}

func TestToUserHistory_NilDetails(t *testing.T) {
	raw, err := json.Marshal(ToUserHistory(database.UserHistory{ID: 1, UserID: 2, ActionType: "view"}))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"details":{}`)
}
