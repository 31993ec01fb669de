package models

import (
	"fmt"

	"github.com/jon4hz/astroadvisor/internal/database"
	"github.com/jon4hz/astroadvisor/internal/engine"
	"github.com/jon4hz/astroadvisor/internal/gravatar"
	"github.com/samber/lo"
)

const maxUsernameLen = 64

// ToUser converts a database.User to its public view. avatars may be nil.
func ToUser(u *database.User, avatars *gravatar.Avatars) User {
	return User{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		BirthDate: u.BirthDate,
		BirthTime: u.BirthTime,
		Location:  u.Location,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		AvatarURL: avatars.URL(u.Email),
	}
}

// ToRegistration converts the register body to the engine input.
func (u UserCreate) ToRegistration() engine.Registration {
	return engine.Registration{
		Email:     u.Email,
		Username:  u.Username,
		Password:  u.Password,
		BirthDate: u.BirthDate,
		BirthTime: u.BirthTime,
		Location:  u.Location,
	}
}

// ToUpdate converts the update body to a partial database update.
// Only birth_time may be null.
func (u UserUpdate) ToUpdate() (database.UserUpdate, error) {
	for name, f := range map[string]Field[string]{
		"username":   u.Username,
		"birth_date": u.BirthDate,
		"location":   u.Location,
	} {
		if f.Null() {
			return database.UserUpdate{}, fmt.Errorf("%s must not be null", name)
		}
	}
	if u.Username.Value != nil && len(*u.Username.Value) > maxUsernameLen {
		return database.UserUpdate{}, fmt.Errorf("username must be at most %d characters", maxUsernameLen)
	}

	return database.UserUpdate{
		Username:       u.Username.Value,
		BirthDate:      u.BirthDate.Value,
		BirthTime:      u.BirthTime.Value,
		ClearBirthTime: u.BirthTime.Null(),
		Location:       u.Location.Value,
	}, nil
}

// ToBirthData converts the advice input to the engine input.
func (u UserInput) ToBirthData() engine.BirthData {
	return engine.BirthData{
		Name:      u.Name,
		BirthDate: u.BirthDate,
		BirthTime: u.BirthTime,
		Location:  u.Location,
	}
}

func ToReading(r database.Reading) Reading {
	return Reading{
		ID:        r.ID,
		Name:      r.Name,
		BirthDate: r.BirthDate,
		BirthTime: r.BirthTime,
		Location:  r.Location,
		Advice:    r.Advice,
		CreatedAt: r.CreatedAt,
		UserID:    r.UserID,
	}
}

// ToReadings converts a slice of database.Reading to Readings.
func ToReadings(items []database.Reading) []Reading {
	return lo.Map(items, func(r database.Reading, _ int) Reading {
		return ToReading(r)
	})
}

func ToPhilosophy(p database.Philosophy) Philosophy {
	return Philosophy{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Origin:        p.Origin,
		KeyPrinciples: nonNil(p.KeyPrinciples),
		CreatedAt:     p.CreatedAt,
	}
}

func ToReligion(r database.Religion) Religion {
	return Religion{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Origin:      r.Origin,
		SacredTexts: nonNil(r.SacredTexts),
		Practices:   nonNil(r.Practices),
		CreatedAt:   r.CreatedAt,
	}
}

func ToAstrologicalSystem(a database.AstrologicalSystem) AstrologicalSystem {
	return AstrologicalSystem{
		ID:          a.ID,
		Name:        a.Name,
		Origin:      a.Origin,
		Description: a.Description,
		KeyConcepts: nonNil(a.KeyConcepts),
		ZodiacSigns: nonNil(a.ZodiacSigns),
		CreatedAt:   a.CreatedAt,
	}
}

func ToPhilosophies(items []database.Philosophy) []Philosophy {
	return lo.Map(items, func(p database.Philosophy, _ int) Philosophy { return ToPhilosophy(p) })
}

func ToReligions(items []database.Religion) []Religion {
	return lo.Map(items, func(r database.Religion, _ int) Religion { return ToReligion(r) })
}

func ToAstrologicalSystems(items []database.AstrologicalSystem) []AstrologicalSystem {
	return lo.Map(items, func(a database.AstrologicalSystem, _ int) AstrologicalSystem { return ToAstrologicalSystem(a) })
}

// ToCatalog converts grouped reference records. Empty groups are encoded as [].
func ToCatalog(c *database.Catalog) Catalog {
	return Catalog{
		Philosophies:        ToPhilosophies(c.Philosophies),
		Religions:           ToReligions(c.Religions),
		AstrologicalSystems: ToAstrologicalSystems(c.AstrologicalSystems),
	}
}

func ToGuruResponse(a *engine.GuruAnswer) GuruResponse {
	return GuruResponse{
		Response:  a.Response,
		Tradition: a.Tradition,
	}
}

// ToPreferences converts the request body to the engine input.
func (p UserPreferencesCreate) ToPreferences() engine.Preferences {
	return engine.Preferences{
		PreferredSystem:      p.PreferredSystem,
		NotificationSettings: p.NotificationSettings,
		ThemePreferences:     p.ThemePreferences,
	}
}

func ToUserPreferences(p *database.UserPreferences) UserPreferences {
	return UserPreferences{
		ID:                   p.ID,
		UserID:               p.UserID,
		PreferredSystem:      p.PreferredSystem,
		NotificationSettings: emptyIfNil(p.NotificationSettings),
		ThemePreferences:     emptyIfNil(p.ThemePreferences),
		CreatedAt:            p.CreatedAt,
	}
}

func ToUserHistory(h database.UserHistory) UserHistory {
	return UserHistory{
		ID:         h.ID,
		UserID:     h.UserID,
		ActionType: h.ActionType,
		Details:    emptyIfNil(h.Details),
		CreatedAt:  h.CreatedAt,
	}
}

// ToUserHistories converts a slice of database.UserHistory to UserHistories.
func ToUserHistories(items []database.UserHistory) []UserHistory {
	return lo.Map(items, func(h database.UserHistory, _ int) UserHistory { return ToUserHistory(h) })
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func emptyIfNil(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
