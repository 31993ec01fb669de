package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jon4hz/astroadvisor/internal/auth"
	"github.com/jon4hz/astroadvisor/internal/config"
	"github.com/jon4hz/astroadvisor/internal/database"
	"github.com/jon4hz/astroadvisor/internal/database/mock"
	"github.com/jon4hz/astroadvisor/internal/engine"
	"github.com/jon4hz/astroadvisor/internal/gravatar"
	"github.com/jon4hz/astroadvisor/internal/llm"
	"github.com/stretchr/testify/suite"
)

type stubCompleter struct {
	response string
	err      error
}

func (s *stubCompleter) Complete(ctx context.Context, req llm.Request) (string, error) {
	return s.response, s.err
}

type HandlerTestSuite struct {
	suite.Suite
	db     *mock.MockDB
	llm    *stubCompleter
	engine *engine.Engine
	router *gin.Engine
}

func (s *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Auth: &config.AuthConfig{Secret: "test-secret", TokenTTL: 30 * time.Minute, BcryptCost: 4},
		LLM:  &config.LLMConfig{AdviceModel: "gpt-3.5-turbo", GuruModel: "gpt-4"},
	}
	s.db = mock.NewMockDB()
	s.llm = &stubCompleter{response: "The stars align."}
	s.engine = engine.New(cfg, s.db, s.llm, nil)

	avatars := gravatar.New(&config.GravatarConfig{Enabled: true, DefaultImage: "mp", Rating: "g", Size: 80})
	h := New(s.engine, avatars)
	provider := auth.NewProvider(s.engine.Tokens(), s.db)

	s.router = gin.New()
	s.router.GET("/healthz", h.Healthz)
	s.router.POST("/register", h.Register)
	s.router.POST("/token", h.Token)
	s.router.GET("/search/", h.Search)
	s.router.GET("/philosophies/", h.ListPhilosophies)
	s.router.GET("/philosophies/:id", h.GetPhilosophy)
	s.router.POST("/guru-chat/:type/:id", h.GuruChat)
	s.router.POST("/api/quick-advice", h.QuickAdvice)

	protected := s.router.Group("/", provider.RequireAuth())
	protected.GET("/users/me", h.Me)
	protected.PUT("/users/me", h.UpdateMe)
	protected.DELETE("/users/me", h.DeleteMe)
	protected.POST("/get-advice", h.GetAdvice)
	protected.GET("/readings/", h.ListReadings)
	protected.POST("/readings/", h.CreateReading)
	protected.GET("/readings/:id", h.GetReading)
	protected.POST("/users/:id/preferences/", h.CreatePreferences)
	protected.GET("/users/:id/preferences/", h.GetPreferences)
	protected.GET("/users/:id/history/", h.ListHistory)
}

func (s *HandlerTestSuite) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = strings.NewReader(string(raw))
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerTestSuite) decode(w *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), v))
}

func (s *HandlerTestSuite) registerAndLogin(emailAddr, username string) (uint, string) {
	w := s.request(http.MethodPost, "/register", map[string]any{
		"email":      emailAddr,
		"username":   username,
		"password":   "s3cret-pass",
		"birth_date": "1990-01-01",
		"birth_time": "08:30",
		"location":   "Zurich",
	}, "")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var user struct {
		ID uint `json:"id"`
	}
	s.decode(w, &user)

	token, err := s.engine.Login(context.Background(), emailAddr, "s3cret-pass")
	s.Require().NoError(err)
	return user.ID, token.AccessToken
}

func (s *HandlerTestSuite) TestRegister() {
	w := s.request(http.MethodPost, "/register", map[string]any{
		"email":      "alice@example.com",
		"username":   "alice",
		"password":   "s3cret-pass",
		"birth_date": "1990-01-01",
		"location":   "Zurich",
	}, "")
	s.Require().Equal(http.StatusOK, w.Code)

	var body map[string]any
	s.decode(w, &body)
	s.Equal("alice@example.com", body["email"])
	s.Equal(true, body["is_active"])
	s.Nil(body["birth_time"])
	s.NotContains(body, "hashed_password")
	s.Contains(body["avatar_url"], "https://www.gravatar.com/avatar/")
}

func (s *HandlerTestSuite) TestRegister_Duplicate() {
	s.registerAndLogin("alice@example.com", "alice")

	w := s.request(http.MethodPost, "/register", map[string]any{
		"email": "alice@example.com", "username": "bob", "password": "s3cret-pass",
		"birth_date": "1990-01-01", "location": "Bern",
	}, "")
	s.Equal(http.StatusBadRequest, w.Code)
	s.JSONEq(`{"detail":"Email already registered"}`, w.Body.String())

	w = s.request(http.MethodPost, "/register", map[string]any{
		"email": "bob@example.com", "username": "alice", "password": "s3cret-pass",
		"birth_date": "1990-01-01", "location": "Bern",
	}, "")
	s.Equal(http.StatusBadRequest, w.Code)
	s.JSONEq(`{"detail":"Username already registered"}`, w.Body.String())
}

func (s *HandlerTestSuite) TestRegister_Validation() {
	w := s.request(http.MethodPost, "/register", map[string]any{
		"email": "not-an-email", "username": "alice", "password": "short",
	}, "")
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestRegister_InternalError() {
	s.db.CreateUserError = errors.New("disk full")

	w := s.request(http.MethodPost, "/register", map[string]any{
		"email": "alice@example.com", "username": "alice", "password": "s3cret-pass",
		"birth_date": "1990-01-01", "location": "Zurich",
	}, "")
	s.Equal(http.StatusInternalServerError, w.Code)
	s.JSONEq(`{"detail":"Internal server error"}`, w.Body.String())
}

func (s *HandlerTestSuite) TestToken() {
	s.registerAndLogin("alice@example.com", "alice")

	form := url.Values{"username": {"alice@example.com"}, "password": {"s3cret-pass"}}
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Require().Equal(http.StatusOK, w.Code)

	var token map[string]string
	s.decode(w, &token)
	s.Equal("bearer", token["token_type"])

	me := s.request(http.MethodGet, "/users/me", nil, token["access_token"])
	s.Equal(http.StatusOK, me.Code)
}

func (s *HandlerTestSuite) TestToken_WrongPassword() {
	s.registerAndLogin("alice@example.com", "alice")

	for _, creds := range []url.Values{
		{"username": {"alice@example.com"}, "password": {"wrong-pass"}},
		{"username": {"nobody@example.com"}, "password": {"s3cret-pass"}},
	} {
		req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(creds.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)

		s.Equal(http.StatusUnauthorized, w.Code)
		s.Equal("Bearer", w.Header().Get("WWW-Authenticate"))
		s.JSONEq(`{"detail":"Incorrect email or password"}`, w.Body.String())
	}
}

func (s *HandlerTestSuite) TestMe_Unauthenticated() {
	w := s.request(http.MethodGet, "/users/me", nil, "")
	s.Equal(http.StatusUnauthorized, w.Code)
	s.JSONEq(`{"detail":"Not authenticated"}`, w.Body.String())

	w = s.request(http.MethodGet, "/users/me", nil, "garbage")
	s.Equal(http.StatusUnauthorized, w.Code)
	s.JSONEq(`{"detail":"Could not validate credentials"}`, w.Body.String())
}

func (s *HandlerTestSuite) TestUpdateMe_Partial() {
	_, token := s.registerAndLogin("alice@example.com", "alice")

	w := s.request(http.MethodPut, "/users/me", map[string]any{"location": "Bern"}, token)
	s.Require().Equal(http.StatusOK, w.Code)

	var user map[string]any
	s.decode(w, &user)
	s.Equal("Bern", user["location"])
	s.Equal("alice", user["username"])
	s.Equal("1990-01-01", user["birth_date"])
	s.Equal("08:30", user["birth_time"])
}

func (s *HandlerTestSuite) TestUpdateMe_NullClearsBirthTime() {
	_, token := s.registerAndLogin("alice@example.com", "alice")

	w := s.request(http.MethodPut, "/users/me", map[string]any{"birth_time": nil}, token)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var user map[string]any
	s.decode(w, &user)
	s.Contains(user, "birth_time")
	s.Nil(user["birth_time"])
	s.Equal("Zurich", user["location"])

	me := s.request(http.MethodGet, "/users/me", nil, token)
	s.decode(me, &user)
	s.Nil(user["birth_time"])
}

func (s *HandlerTestSuite) TestUpdateMe_NullRequiredField() {
	_, token := s.registerAndLogin("alice@example.com", "alice")

	w := s.request(http.MethodPut, "/users/me", map[string]any{"location": nil}, token)
	s.Equal(http.StatusBadRequest, w.Code)
	s.JSONEq(`{"detail":"location must not be null"}`, w.Body.String())
}

func (s *HandlerTestSuite) TestRegister_BlankUsername() {
	w := s.request(http.MethodPost, "/register", map[string]any{
		"email":      "alice@example.com",
		"username":   "   ",
		"password":   "s3cret-pass",
		"birth_date": "1990-01-01",
		"location":   "Zurich",
	}, "")
	s.Equal(http.StatusBadRequest, w.Code)
	s.JSONEq(`{"detail":"invalid input: username must not be empty"}`, w.Body.String())
}

func (s *HandlerTestSuite) TestDeleteMe() {
	_, token := s.registerAndLogin("alice@example.com", "alice")

	w := s.request(http.MethodDelete, "/users/me", nil, token)
	s.Require().Equal(http.StatusOK, w.Code)

	// the token outlives the account but no longer authenticates
	w = s.request(http.MethodGet, "/users/me", nil, token)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlerTestSuite) TestGetAdvice() {
	userID, token := s.registerAndLogin("alice@example.com", "alice")

	w := s.request(http.MethodPost, "/get-advice", map[string]any{
		"name": "Alice", "birth_date": "1990-01-01", "location": "Zurich",
	}, token)
	s.Require().Equal(http.StatusOK, w.Code)

	var reading map[string]any
	s.decode(w, &reading)
	s.Equal("The stars align.", reading["advice"])
	s.EqualValues(userID, reading["user_id"])
}

func (s *HandlerTestSuite) TestGetAdvice_Upstream() {
	_, token := s.registerAndLogin("alice@example.com", "alice")
	s.llm.err = &llm.APIError{StatusCode: 401, Message: "Incorrect API key provided: sk-secret"}

	w := s.request(http.MethodPost, "/get-advice", map[string]any{
		"name": "Alice", "birth_date": "1990-01-01", "location": "Zurich",
	}, token)
	s.Equal(http.StatusBadGateway, w.Code)
	s.NotContains(w.Body.String(), "sk-secret")
}

func (s *HandlerTestSuite) TestQuickAdvice() {
	w := s.request(http.MethodPost, "/api/quick-advice", map[string]any{
		"name": "Alice", "birth_date": "1990-01-01", "location": "Zurich",
	}, "")
	s.Require().Equal(http.StatusOK, w.Code)

	var reading map[string]any
	s.decode(w, &reading)
	s.Nil(reading["user_id"])
}

func (s *HandlerTestSuite) TestReadings() {
	_, alice := s.registerAndLogin("alice@example.com", "alice")
	_, bob := s.registerAndLogin("bob@example.com", "bob")

	w := s.request(http.MethodPost, "/readings/", map[string]any{
		"name": "Alice", "birth_date": "1990-01-01", "location": "Zurich", "advice": "Be patient.",
	}, alice)
	s.Require().Equal(http.StatusOK, w.Code)
	var created struct {
		ID uint `json:"id"`
	}
	s.decode(w, &created)

	w = s.request(http.MethodGet, "/readings/", nil, alice)
	s.Require().Equal(http.StatusOK, w.Code)
	var list []map[string]any
	s.decode(w, &list)
	s.Len(list, 1)

	w = s.request(http.MethodGet, "/readings/"+itoa(created.ID), nil, bob)
	s.Equal(http.StatusNotFound, w.Code)
	s.JSONEq(`{"detail":"Reading not found"}`, w.Body.String())

	w = s.request(http.MethodGet, "/readings/abc", nil, alice)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestReadings_InternalError() {
	_, token := s.registerAndLogin("alice@example.com", "alice")
	s.db.ListReadingsError = errors.New("connection reset")

	w := s.request(http.MethodGet, "/readings/", nil, token)
	s.Equal(http.StatusInternalServerError, w.Code)
	s.NotContains(w.Body.String(), "connection reset")
}

func (s *HandlerTestSuite) TestPagination() {
	for _, name := range []string{"Stoicism", "Taoism", "Vedanta"} {
		s.db.AddPhilosophy(database.Philosophy{Name: name})
	}

	w := s.request(http.MethodGet, "/philosophies/?skip=1&limit=1", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	var page []map[string]any
	s.decode(w, &page)
	s.Require().Len(page, 1)
	s.Equal("Taoism", page[0]["name"])
	s.Equal([]any{}, page[0]["key_principles"])

	w = s.request(http.MethodGet, "/philosophies/?limit=1000", nil, "")
	s.Equal(http.StatusOK, w.Code)

	for _, query := range []string{"limit=0", "limit=-1", "skip=x"} {
		w = s.request(http.MethodGet, "/philosophies/?"+query, nil, "")
		s.Equal(http.StatusBadRequest, w.Code, query)
	}
}

func (s *HandlerTestSuite) TestGetPhilosophy_NotFound() {
	w := s.request(http.MethodGet, "/philosophies/9", nil, "")
	s.Equal(http.StatusNotFound, w.Code)
	s.JSONEq(`{"detail":"Philosophy not found"}`, w.Body.String())
}

func (s *HandlerTestSuite) TestSearch() {
	w := s.request(http.MethodGet, "/search/?query=nothing", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"philosophies":[],"religions":[],"astrological_systems":[]}`, w.Body.String())

	w = s.request(http.MethodGet, "/search/", nil, "")
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestGuruChat() {
	id := s.db.AddReligion(database.Religion{Name: "Buddhism", Practices: []string{"Meditation"}})

	w := s.request(http.MethodPost, "/guru-chat/religion/"+itoa(id), map[string]any{"content": "What is suffering?"}, "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"response":"The stars align.","tradition":"Buddhism"}`, w.Body.String())

	// the id exists, but not as a philosophy
	w = s.request(http.MethodPost, "/guru-chat/philosophy/"+itoa(id), map[string]any{"content": "hi"}, "")
	s.Equal(http.StatusNotFound, w.Code)
	s.JSONEq(`{"detail":"Tradition not found"}`, w.Body.String())

	w = s.request(http.MethodPost, "/guru-chat/religion/"+itoa(id), map[string]any{}, "")
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestPreferences_Forbidden() {
	aliceID, _ := s.registerAndLogin("alice@example.com", "alice")
	_, bob := s.registerAndLogin("bob@example.com", "bob")

	w := s.request(http.MethodPost, "/users/"+itoa(aliceID)+"/preferences/", map[string]any{"preferred_system": "Vedic"}, bob)
	s.Equal(http.StatusForbidden, w.Code)
	s.JSONEq(`{"detail":"Not authorized"}`, w.Body.String())

	w = s.request(http.MethodGet, "/users/"+itoa(aliceID)+"/history/", nil, bob)
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *HandlerTestSuite) TestPreferences() {
	userID, token := s.registerAndLogin("alice@example.com", "alice")
	path := "/users/" + itoa(userID) + "/preferences/"

	w := s.request(http.MethodGet, path, nil, token)
	s.Equal(http.StatusNotFound, w.Code)

	w = s.request(http.MethodPost, path, map[string]any{
		"preferred_system":  "Vedic",
		"theme_preferences": map[string]any{"mode": "dark"},
	}, token)
	s.Require().Equal(http.StatusOK, w.Code)

	var prefs map[string]any
	s.decode(w, &prefs)
	s.Equal("Vedic", prefs["preferred_system"])
	s.Equal(map[string]any{}, prefs["notification_settings"])

	w = s.request(http.MethodPost, path, map[string]any{"preferred_system": "Western"}, token)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestHealthz() {
	w := s.request(http.MethodGet, "/healthz", nil, "")
	s.Equal(http.StatusOK, w.Code)

	s.db.PingError = errors.New("down")
	w = s.request(http.MethodGet, "/healthz", nil, "")
	s.Equal(http.StatusServiceUnavailable, w.Code)
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
