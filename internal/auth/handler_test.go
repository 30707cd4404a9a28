package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ayush/science-tutor/internal/models"
)

type memUsers struct {
	mu      sync.Mutex
	byEmail map[string]*models.User
}

func newMemUsers() *memUsers {
	return &memUsers{byEmail: map[string]*models.User{}}
}

func (m *memUsers) CreateUser(_ context.Context, username, email, hashed string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[email]; ok {
		return nil, errors.New("duplicate email")
	}
	u := &models.User{ID: "u-" + username, Username: username, Email: email, Password: hashed, CreatedAt: time.Now()}
	m.byEmail[email] = u
	return u, nil
}

func (m *memUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byEmail[email]
	if !ok {
		return nil, errors.New("no rows")
	}
	return u, nil
}

func (m *memUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, errors.New("no rows")
}

type memSessions struct {
	mu   sync.Mutex
	byID map[string]string
}

func newMemSessions() *memSessions {
	return &memSessions{byID: map[string]string{}}
}

func (m *memSessions) Create(_ context.Context, userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sid := "sid-" + userID
	m.byID[sid] = userID
	return sid, nil
}

func (m *memSessions) Get(_ context.Context, sid string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[sid], nil
}

func (m *memSessions) Delete(_ context.Context, sid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, sid)
	return nil
}

func post(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestRegister(t *testing.T) {
	users := newMemUsers()
	h := NewHandler(users, newMemSessions(), nil)

	rec := post(h.Register, `{"username":"mina","email":"mina@example.com","password":"longenough"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"mina@example.com"`)
	assert.NotContains(t, rec.Body.String(), "longenough")

	stored, err := users.GetUserByEmail(context.Background(), "mina@example.com")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("longenough")))

	rec = post(h.Register, `{"username":"mina","email":"mina@example.com","password":"longenough"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegister_Validation(t *testing.T) {
	h := NewHandler(newMemUsers(), newMemSessions(), nil)

	for _, body := range []string{
		`not json`,
		`{"username":"mina","email":"not-an-email","password":"longenough"}`,
		`{"username":"mina","email":"mina@example.com","password":"short"}`,
		`{"email":"mina@example.com","password":"longenough"}`,
	} {
		rec := post(h.Register, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Contains(t, rec.Body.String(), `"error"`)
	}
}

func TestLoginMeLogout(t *testing.T) {
	users := newMemUsers()
	sessions := newMemSessions()
	hashed, err := bcrypt.GenerateFromPassword([]byte("longenough"), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = users.CreateUser(context.Background(), "mina", "mina@example.com", string(hashed))
	require.NoError(t, err)
	h := NewHandler(users, sessions, nil)

	rec := post(h.Login, `{"email":"mina@example.com","password":"wrong-password"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = post(h.Login, `{"email":"mina@example.com","password":"longenough"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	userID, _ := sessions.Get(context.Background(), cookies[0].Value)
	assert.Equal(t, "u-mina", userID)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req = req.WithContext(WithUserID(req.Context(), userID))
	rec = httptest.NewRecorder()
	h.Me(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"mina"`)

	req = httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.Logout(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	userID, _ = sessions.Get(context.Background(), cookies[0].Value)
	assert.Empty(t, userID)
}

func TestMe_Unauthenticated(t *testing.T) {
	h := NewHandler(newMemUsers(), newMemSessions(), nil)
	rec := httptest.NewRecorder()
	h.Me(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
