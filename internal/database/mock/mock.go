package mock

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jon4hz/astroadvisor/internal/database"
)

var _ database.DB = (*MockDB)(nil)

// MockDB is a mock implementation of database.DB for testing.
type MockDB struct {
	mu sync.RWMutex

	// User storage
	users      map[uint]*database.User
	nextUserID uint

	// Reading storage
	readings      map[uint]*database.Reading
	nextReadingID uint

	// Reference catalog
	philosophies        map[uint]*database.Philosophy
	religions           map[uint]*database.Religion
	astrologicalSystems map[uint]*database.AstrologicalSystem
	nextTraditionID     uint

	// History and preferences
	history       map[uint]*database.UserHistory
	nextHistoryID uint
	preferences   map[uint]*database.UserPreferences // keyed by user id
	nextPrefsID   uint

	// Error simulation
	CreateUserError        error
	GetUserError           error
	UpdateUserError        error
	DeleteUserError        error
	CreateReadingError     error
	GetReadingError        error
	ListReadingsError      error
	DeleteReadingsError    error
	GetTraditionError      error
	SearchError            error
	CreateHistoryError     error
	ListHistoryError       error
	CreatePreferencesError error
	GetPreferencesError    error
	PingError              error
}

// NewMockDB creates a new MockDB instance.
func NewMockDB() *MockDB {
	m := &MockDB{}
	m.Reset()
	return m
}

// Reset clears all data and errors from the mock database.
func (m *MockDB) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users = make(map[uint]*database.User)
	m.nextUserID = 1
	m.readings = make(map[uint]*database.Reading)
	m.nextReadingID = 1
	m.philosophies = make(map[uint]*database.Philosophy)
	m.religions = make(map[uint]*database.Religion)
	m.astrologicalSystems = make(map[uint]*database.AstrologicalSystem)
	m.nextTraditionID = 1
	m.history = make(map[uint]*database.UserHistory)
	m.nextHistoryID = 1
	m.preferences = make(map[uint]*database.UserPreferences)
	m.nextPrefsID = 1

	m.CreateUserError = nil
	m.GetUserError = nil
	m.UpdateUserError = nil
	m.DeleteUserError = nil
	m.CreateReadingError = nil
	m.GetReadingError = nil
	m.ListReadingsError = nil
	m.DeleteReadingsError = nil
	m.GetTraditionError = nil
	m.SearchError = nil
	m.CreateHistoryError = nil
	m.ListHistoryError = nil
	m.CreatePreferencesError = nil
	m.GetPreferencesError = nil
	m.PingError = nil
}

// Transaction runs fn against the mock itself. Nothing is rolled back.
func (m *MockDB) Transaction(ctx context.Context, fn func(tx database.DB) error) error {
	return fn(m)
}

func (m *MockDB) Ping(ctx context.Context) error {
	return m.PingError
}

func (m *MockDB) Close() error {
	return nil
}

// User operations

func (m *MockDB) CreateUser(ctx context.Context, user *database.User) error {
	if m.CreateUserError != nil {
		return m.CreateUserError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == user.Email || u.Username == user.Username {
			return database.ErrDuplicate
		}
	}

	user.ID = m.nextUserID
	m.nextUserID++
	user.IsActive = true
	user.CreatedAt = time.Now()

	stored := *user
	m.users[user.ID] = &stored

	return nil
}

func (m *MockDB) GetUserByID(ctx context.Context, id uint) (*database.User, error) {
	return m.findUser(func(u *database.User) bool { return u.ID == id })
}

func (m *MockDB) GetUserByEmail(ctx context.Context, email string) (*database.User, error) {
	return m.findUser(func(u *database.User) bool { return u.Email == email })
}

func (m *MockDB) GetUserByUsername(ctx context.Context, username string) (*database.User, error) {
	return m.findUser(func(u *database.User) bool { return u.Username == username })
}

func (m *MockDB) findUser(match func(u *database.User) bool) (*database.User, error) {
	if m.GetUserError != nil {
		return nil, m.GetUserError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if match(user) {
			u := *user
			return &u, nil
		}
	}

	return nil, database.ErrNotFound
}

func (m *MockDB) UpdateUser(ctx context.Context, id uint, update database.UserUpdate) (*database.User, error) {
	if m.UpdateUserError != nil {
		return nil, m.UpdateUserError
	}

	m.mu.Lock()
	user, ok := m.users[id]
	if !ok {
		m.mu.Unlock()
		return nil, database.ErrNotFound
	}
	if update.Username != nil {
		for _, u := range m.users {
			if u.ID != id && u.Username == *update.Username {
				m.mu.Unlock()
				return nil, database.ErrDuplicate
			}
		}
		user.Username = *update.Username
	}
	if update.BirthDate != nil {
		user.BirthDate = *update.BirthDate
	}
	switch {
	case update.ClearBirthTime:
		user.BirthTime = nil
	case update.BirthTime != nil:
		bt := *update.BirthTime
		user.BirthTime = &bt
	}
	if update.Location != nil {
		user.Location = *update.Location
	}
	m.mu.Unlock()

	return m.GetUserByID(ctx, id)
}

func (m *MockDB) DeleteUser(ctx context.Context, id uint) error {
	if m.DeleteUserError != nil {
		return m.DeleteUserError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return database.ErrNotFound
	}
	delete(m.users, id)

	return nil
}

// Reading operations

func (m *MockDB) CreateReading(ctx context.Context, reading *database.Reading) error {
	if m.CreateReadingError != nil {
		return m.CreateReadingError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	reading.ID = m.nextReadingID
	m.nextReadingID++
	reading.CreatedAt = time.Now()

	stored := *reading
	m.readings[reading.ID] = &stored

	return nil
}

func (m *MockDB) GetReadingForUser(ctx context.Context, id, userID uint) (*database.Reading, error) {
	if m.GetReadingError != nil {
		return nil, m.GetReadingError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	reading, ok := m.readings[id]
	if !ok || reading.UserID == nil || *reading.UserID != userID {
		return nil, database.ErrNotFound
	}
	r := *reading
	return &r, nil
}

func (m *MockDB) ListReadingsByUser(ctx context.Context, userID uint, page database.Page, order database.SortOrder) ([]database.Reading, error) {
	if m.ListReadingsError != nil {
		return nil, m.ListReadingsError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	readings := make([]database.Reading, 0)
	for _, id := range slices.Sorted(maps.Keys(m.readings)) {
		r := m.readings[id]
		if r.UserID != nil && *r.UserID == userID {
			readings = append(readings, *r)
		}
	}
	if order == database.SortOrderDesc {
		slices.Reverse(readings)
	}

	return paginate(readings, page), nil
}

func (m *MockDB) DeleteReadingForUser(ctx context.Context, id, userID uint) error {
	if m.DeleteReadingsError != nil {
		return m.DeleteReadingsError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	reading, ok := m.readings[id]
	if !ok || reading.UserID == nil || *reading.UserID != userID {
		return database.ErrNotFound
	}
	delete(m.readings, id)

	return nil
}

func (m *MockDB) DeleteReadingsByUser(ctx context.Context, userID uint) (int64, error) {
	if m.DeleteReadingsError != nil {
		return 0, m.DeleteReadingsError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, r := range m.readings {
		if r.UserID != nil && *r.UserID == userID {
			delete(m.readings, id)
			n++
		}
	}

	return n, nil
}

// Reference catalog operations

func (m *MockDB) ListPhilosophies(ctx context.Context, page database.Page) ([]database.Philosophy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return paginate(values(m.philosophies), page), nil
}

func (m *MockDB) GetPhilosophy(ctx context.Context, id uint) (*database.Philosophy, error) {
	return lookup(m, m.philosophies, id)
}

func (m *MockDB) ListReligions(ctx context.Context, page database.Page) ([]database.Religion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return paginate(values(m.religions), page), nil
}

func (m *MockDB) GetReligion(ctx context.Context, id uint) (*database.Religion, error) {
	return lookup(m, m.religions, id)
}

func (m *MockDB) ListAstrologicalSystems(ctx context.Context, page database.Page) ([]database.AstrologicalSystem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return paginate(values(m.astrologicalSystems), page), nil
}

func (m *MockDB) GetAstrologicalSystem(ctx context.Context, id uint) (*database.AstrologicalSystem, error) {
	return lookup(m, m.astrologicalSystems, id)
}

func (m *MockDB) GetTradition(ctx context.Context, kind database.TraditionKind, id uint) (*database.Tradition, error) {
	switch kind {
	case database.TraditionPhilosophy:
		p, err := m.GetPhilosophy(ctx, id)
		if err != nil {
			return nil, err
		}
		return p.Tradition(), nil
	case database.TraditionReligion:
		r, err := m.GetReligion(ctx, id)
		if err != nil {
			return nil, err
		}
		return r.Tradition(), nil
	default:
		a, err := m.GetAstrologicalSystem(ctx, id)
		if err != nil {
			return nil, err
		}
		return a.Tradition(), nil
	}
}

func (m *MockDB) SearchTraditions(ctx context.Context, query string) (*database.Catalog, error) {
	if m.SearchError != nil {
		return nil, m.SearchError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	q := strings.ToLower(query)
	matches := func(name, description string) bool {
		return strings.Contains(strings.ToLower(name), q) || strings.Contains(strings.ToLower(description), q)
	}

	res := &database.Catalog{
		Philosophies:        make([]database.Philosophy, 0),
		Religions:           make([]database.Religion, 0),
		AstrologicalSystems: make([]database.AstrologicalSystem, 0),
	}
	for _, p := range values(m.philosophies) {
		if matches(p.Name, p.Description) {
			res.Philosophies = append(res.Philosophies, p)
		}
	}
	for _, r := range values(m.religions) {
		if matches(r.Name, r.Description) {
			res.Religions = append(res.Religions, r)
		}
	}
	for _, a := range values(m.astrologicalSystems) {
		if matches(a.Name, a.Description) {
			res.AstrologicalSystems = append(res.AstrologicalSystems, a)
		}
	}

	return res, nil
}

func (m *MockDB) SeedCatalog(ctx context.Context, force bool) (bool, error) {
	return false, nil
}

// History operations

func (m *MockDB) CreateHistory(ctx context.Context, entry *database.UserHistory) error {
	if m.CreateHistoryError != nil {
		return m.CreateHistoryError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry.ID = m.nextHistoryID
	m.nextHistoryID++
	entry.CreatedAt = time.Now()

	stored := *entry
	m.history[entry.ID] = &stored

	return nil
}

func (m *MockDB) ListHistoryByUser(ctx context.Context, userID uint, page database.Page) ([]database.UserHistory, error) {
	if m.ListHistoryError != nil {
		return nil, m.ListHistoryError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]database.UserHistory, 0)
	for _, id := range slices.Sorted(maps.Keys(m.history)) {
		if h := m.history[id]; h.UserID == userID {
			entries = append(entries, *h)
		}
	}

	return paginate(entries, page), nil
}

func (m *MockDB) DeleteHistoryByUser(ctx context.Context, userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, h := range m.history {
		if h.UserID == userID {
			delete(m.history, id)
		}
	}

	return nil
}

// Preferences operations

func (m *MockDB) CreatePreferences(ctx context.Context, prefs *database.UserPreferences) error {
	if m.CreatePreferencesError != nil {
		return m.CreatePreferencesError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.preferences[prefs.UserID]; ok {
		return database.ErrDuplicate
	}

	prefs.ID = m.nextPrefsID
	m.nextPrefsID++
	prefs.CreatedAt = time.Now()
	prefs.UpdatedAt = prefs.CreatedAt

	stored := *prefs
	m.preferences[prefs.UserID] = &stored

	return nil
}

func (m *MockDB) GetPreferencesByUser(ctx context.Context, userID uint) (*database.UserPreferences, error) {
	if m.GetPreferencesError != nil {
		return nil, m.GetPreferencesError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	prefs, ok := m.preferences[userID]
	if !ok {
		return nil, database.ErrNotFound
	}
	p := *prefs
	return &p, nil
}

func (m *MockDB) UpdatePreferences(ctx context.Context, prefs *database.UserPreferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.preferences[prefs.UserID]
	if !ok {
		return database.ErrNotFound
	}
	stored.PreferredSystem = prefs.PreferredSystem
	stored.NotificationSettings = prefs.NotificationSettings
	stored.ThemePreferences = prefs.ThemePreferences
	stored.UpdatedAt = time.Now()

	*prefs = *stored
	return nil
}

func (m *MockDB) DeletePreferencesByUser(ctx context.Context, userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.preferences, userID)
	return nil
}

// Stats operations

func (m *MockDB) GetStats(ctx context.Context) (*database.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &database.Stats{
		Users:               int64(len(m.users)),
		Readings:            int64(len(m.readings)),
		Philosophies:        int64(len(m.philosophies)),
		Religions:           int64(len(m.religions)),
		AstrologicalSystems: int64(len(m.astrologicalSystems)),
		HistoryEntries:      int64(len(m.history)),
		Preferences:         int64(len(m.preferences)),
	}
	for _, r := range m.readings {
		if r.UserID == nil {
			stats.AnonymousReadings++
		}
		if stats.LatestReading == nil || r.CreatedAt.After(*stats.LatestReading) {
			t := r.CreatedAt
			stats.LatestReading = &t
		}
	}

	return stats, nil
}

// Helper methods for testing

// AddPhilosophy adds a philosophy to the reference catalog and returns its id.
func (m *MockDB) AddPhilosophy(p database.Philosophy) uint {
	m.mu.Lock()
	defer m.mu.Unlock()

	p.ID = m.nextTraditionID
	m.nextTraditionID++
	m.philosophies[p.ID] = &p
	return p.ID
}

// AddReligion adds a religion to the reference catalog and returns its id.
func (m *MockDB) AddReligion(r database.Religion) uint {
	m.mu.Lock()
	defer m.mu.Unlock()

	r.ID = m.nextTraditionID
	m.nextTraditionID++
	m.religions[r.ID] = &r
	return r.ID
}

// AddAstrologicalSystem adds an astrological system to the reference catalog and returns its id.
func (m *MockDB) AddAstrologicalSystem(a database.AstrologicalSystem) uint {
	m.mu.Lock()
	defer m.mu.Unlock()

	a.ID = m.nextTraditionID
	m.nextTraditionID++
	m.astrologicalSystems[a.ID] = &a
	return a.ID
}

// ReadingExists reports whether a reading with the given id is stored, regardless of owner.
func (m *MockDB) ReadingExists(id uint) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.readings[id]
	return ok
}

func lookup[T any](m *MockDB, items map[uint]*T, id uint) (*T, error) {
	if m.GetTraditionError != nil {
		return nil, m.GetTraditionError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := items[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	v := *item
	return &v, nil
}

func values[T any](items map[uint]*T) []T {
	out := make([]T, 0, len(items))
	for _, id := range slices.Sorted(maps.Keys(items)) {
		out = append(out, *items[id])
	}
	return out
}

func paginate[T any](items []T, page database.Page) []T {
	if page.Skip >= len(items) {
		return make([]T, 0)
	}
	items = items[page.Skip:]
	if page.Limit > 0 && page.Limit < len(items) {
		items = items[:page.Limit]
	}
	return items
}
