package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/handler/dto"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/service"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/session"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/testutil/memstore"
)

func newAuthHandler(t *testing.T) *AuthHandler {
	t.Helper()
	sessions := session.NewManager(session.NewMemoryStore(nil), session.Config{}, nil)
	svc := service.NewAuthService(memstore.New(), sessions, nil, nil)
	return NewAuthHandler(svc, session.CookieConfig{}, nil)
}

func postJSON(h http.HandlerFunc, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.DefaultCookieName {
			return c
		}
	}
	t.Fatalf("no session cookie in response")
	return nil
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorDetail {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

func TestAuthHandler_Register(t *testing.T) {
	h := newAuthHandler(t)

	rec := postJSON(h.Register, "/api/register", `{"username":"alice","email":"alice@example.com","password":"Secret123"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	c := sessionCookie(t, rec)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.NotEmpty(t, c.Value)

	raw := rec.Body.String()
	assert.NotContains(t, raw, "password")
	assert.NotContains(t, raw, "argon2")

	var resp dto.AuthResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	assert.Equal(t, "User created successfully", resp.Message)
	assert.Equal(t, "alice", resp.User.Username)
	assert.NotEmpty(t, resp.User.ID)
}

func TestAuthHandler_RegisterErrors(t *testing.T) {
	h := newAuthHandler(t)
	require.Equal(t, http.StatusCreated,
		postJSON(h.Register, "/api/register", `{"username":"alice","email":"alice@example.com","password":"Secret123"}`).Code)

	tests := []struct {
		name      string
		body      string
		wantCode  int
		wantError string
		wantField string
	}{
		{"duplicate username", `{"username":"alice","email":"new@example.com","password":"Secret123"}`,
			http.StatusConflict, "USERNAME_TAKEN", ""},
		{"duplicate email", `{"username":"alice2","email":"alice@example.com","password":"Secret123"}`,
			http.StatusConflict, "EMAIL_TAKEN", ""},
		{"weak password", `{"username":"bob","email":"bob@example.com","password":"secret123"}`,
			http.StatusBadRequest, "VALIDATION_ERROR", "password"},
		{"bad username", `{"username":"b!","email":"bob@example.com","password":"Secret123"}`,
			http.StatusBadRequest, "VALIDATION_ERROR", "username"},
		{"bad email", `{"username":"bob","email":"bob","password":"Secret123"}`,
			http.StatusBadRequest, "VALIDATION_ERROR", "email"},
		{"malformed json", `{"username":`, http.StatusBadRequest, "INVALID_JSON", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(h.Register, "/api/register", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Empty(t, rec.Result().Cookies())
			e := decodeError(t, rec)
			assert.Equal(t, tt.wantError, e.Code)
			assert.Equal(t, tt.wantField, e.Field)
			assert.NotEmpty(t, e.Message)
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	h := newAuthHandler(t)
	require.Equal(t, http.StatusCreated,
		postJSON(h.Register, "/api/register", `{"username":"alice","email":"alice@example.com","password":"Secret123"}`).Code)

	t.Run("success", func(t *testing.T) {
		rec := postJSON(h.Login, "/api/login", `{"username":"alice","password":"Secret123"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, sessionCookie(t, rec).Value)

		var resp dto.AuthResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "Login successful", resp.Message)
	})

	t.Run("wrong password and unknown user look the same", func(t *testing.T) {
		wrong := postJSON(h.Login, "/api/login", `{"username":"alice","password":"Wrong1234"}`)
		unknown := postJSON(h.Login, "/api/login", `{"username":"nobody","password":"Secret123"}`)

		assert.Equal(t, http.StatusUnauthorized, wrong.Code)
		assert.Equal(t, http.StatusUnauthorized, unknown.Code)
		assert.Equal(t, wrong.Body.String(), unknown.Body.String())
		e := decodeError(t, wrong)
		assert.Equal(t, "INVALID_CREDENTIALS", e.Code)
		assert.Equal(t, "Invalid username or password", e.Message)
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := postJSON(h.Login, "/api/login", `{"username":"alice"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rec).Code)
	})
}

func TestAuthHandler_CheckAuthAndLogout(t *testing.T) {
	h := newAuthHandler(t)
	reg := postJSON(h.Register, "/api/register", `{"username":"alice","email":"alice@example.com","password":"Secret123"}`)
	require.Equal(t, http.StatusCreated, reg.Code)
	cookie := sessionCookie(t, reg)

	check := func(cookies ...*http.Cookie) (*httptest.ResponseRecorder, dto.CheckAuthResponse) {
		req := httptest.NewRequest(http.MethodGet, "/api/check-auth", nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		h.CheckAuth(rec, req)
		var resp dto.CheckAuthResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		return rec, resp
	}

	rec, resp := check()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, resp.Authenticated)
	assert.Nil(t, resp.User)

	rec, resp = check(cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Authenticated)
	require.NotNil(t, resp.User)
	assert.Equal(t, "alice", resp.User.Username)

	out := postJSON(h.Logout, "/api/logout", "", cookie)
	require.Equal(t, http.StatusOK, out.Code)
	assert.Contains(t, out.Header().Get("Set-Cookie"), "Max-Age=0")

	rec, resp = check(cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, resp.Authenticated)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")
}
