package handler_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/datavault/internal/auth"
	"github.com/sakif/datavault/internal/handler"
	sqliteRepo "github.com/sakif/datavault/internal/repository/sqlite"
	"github.com/sakif/datavault/internal/service"
)

// envelope mirrors both response shapes for decoding in assertions.
type envelope struct {
	Status  string         `json:"status"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	return env
}

// newAuthHandler wires an AuthHandler against a real in-memory SQLite
// database — the registration flow's ordering depends on actual store
// behavior, so mocking it away here would test very little.
func newAuthHandler(t *testing.T) *handler.AuthHandler {
	t.Helper()

	db, err := sqliteRepo.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	require.NoError(t, err)
	passwords := auth.NewPasswordService(bcrypt.MinCost)

	authService := service.NewAuthService(db, tokens, passwords, logger)
	validate := validator.New(validator.WithRequiredStructEnabled())

	return handler.NewAuthHandler(authService, validate, logger)
}

func postJSON(t *testing.T, h http.HandlerFunc, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

const aliceJSON = `{"username":"alice_01","email":"a@x.com","password":"longpass1","full_name":"Alice","age":30,"gender":"F"}`

func TestHandleRegister(t *testing.T) {
	t.Run("success returns user_id and omits password", func(t *testing.T) {
		h := newAuthHandler(t)

		rr := postJSON(t, h.HandleRegister, "/api/register", aliceJSON)

		assert.Equal(t, http.StatusOK, rr.Code)
		env := decodeEnvelope(t, rr)
		assert.Equal(t, "success", env.Status)
		assert.Equal(t, "User successfully registered!", env.Message)
		assert.NotEmpty(t, env.Data["user_id"])
		assert.Equal(t, "alice_01", env.Data["username"])
		assert.NotContains(t, env.Data, "password")
		assert.NotContains(t, rr.Body.String(), "longpass1")
	})

	t.Run("malformed JSON is INVALID_REQUEST", func(t *testing.T) {
		h := newAuthHandler(t)

		rr := postJSON(t, h.HandleRegister, "/api/register", `{"username":`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "INVALID_REQUEST", decodeEnvelope(t, rr).Code)
	})

	t.Run("schema failures are INVALID_REQUEST", func(t *testing.T) {
		bodies := map[string]string{
			"missing email": `{"username":"alice_01","password":"longpass1","full_name":"Alice","age":30,"gender":"F"}`,
			"bad email":     `{"username":"alice_01","email":"not-an-email","password":"longpass1","full_name":"Alice","age":30,"gender":"F"}`,
			"short name":    `{"username":"abc","email":"a@x.com","password":"longpass1","full_name":"Alice","age":30,"gender":"F"}`,
		}
		for name, body := range bodies {
			t.Run(name, func(t *testing.T) {
				h := newAuthHandler(t)
				rr := postJSON(t, h.HandleRegister, "/api/register", body)
				assert.Equal(t, http.StatusBadRequest, rr.Code)
				assert.Equal(t, "INVALID_REQUEST", decodeEnvelope(t, rr).Code)
			})
		}
	})

	t.Run("duplicate username is USERNAME_EXISTS", func(t *testing.T) {
		h := newAuthHandler(t)

		rr := postJSON(t, h.HandleRegister, "/api/register", aliceJSON)
		require.Equal(t, http.StatusOK, rr.Code)

		rr = postJSON(t, h.HandleRegister, "/api/register",
			`{"username":"alice_01","email":"b@x.com","password":"longpass1","full_name":"Alice","age":30,"gender":"F"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "USERNAME_EXISTS", decodeEnvelope(t, rr).Code)
	})

	t.Run("business codes pass through", func(t *testing.T) {
		tests := map[string]struct {
			body     string
			wantCode string
		}{
			"short password": {
				`{"username":"alice_01","email":"a@x.com","password":"short1","full_name":"Alice","age":30,"gender":"F"}`,
				"INVALID_PASSWORD",
			},
			"negative age": {
				`{"username":"alice_01","email":"a@x.com","password":"longpass1","full_name":"Alice","age":-3,"gender":"F"}`,
				"INVALID_AGE",
			},
			"missing gender": {
				`{"username":"alice_01","email":"a@x.com","password":"longpass1","full_name":"Alice","age":30}`,
				"GENDER_REQUIRED",
			},
		}
		for name, tt := range tests {
			t.Run(name, func(t *testing.T) {
				h := newAuthHandler(t)
				rr := postJSON(t, h.HandleRegister, "/api/register", tt.body)
				assert.Equal(t, http.StatusBadRequest, rr.Code)
				assert.Equal(t, tt.wantCode, decodeEnvelope(t, rr).Code)
			})
		}
	})
}

func TestHandleToken(t *testing.T) {
	register := func(t *testing.T, h *handler.AuthHandler) {
		t.Helper()
		rr := postJSON(t, h.HandleRegister, "/api/register", aliceJSON)
		require.Equal(t, http.StatusOK, rr.Code)
	}

	t.Run("valid credentials yield token and expires_in", func(t *testing.T) {
		h := newAuthHandler(t)
		register(t, h)

		req := httptest.NewRequest(http.MethodPost, "/api/token", nil)
		req.SetBasicAuth("alice_01", "longpass1")
		rr := httptest.NewRecorder()
		h.HandleToken(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		env := decodeEnvelope(t, rr)
		assert.Equal(t, "Access token generated successfully.", env.Message)
		assert.NotEmpty(t, env.Data["access_token"])
		assert.EqualValues(t, 3600, env.Data["expires_in"])
	})

	t.Run("missing basic auth is MISSING_FIELDS", func(t *testing.T) {
		h := newAuthHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/token", nil)
		rr := httptest.NewRecorder()
		h.HandleToken(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "MISSING_FIELDS", decodeEnvelope(t, rr).Code)
	})

	t.Run("wrong password is INVALID_CREDENTIALS 401", func(t *testing.T) {
		h := newAuthHandler(t)
		register(t, h)

		req := httptest.NewRequest(http.MethodPost, "/api/token", nil)
		req.SetBasicAuth("alice_01", "wrongpass1")
		rr := httptest.NewRecorder()
		h.HandleToken(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "INVALID_CREDENTIALS", decodeEnvelope(t, rr).Code)
	})

	t.Run("unknown user gets the same INVALID_CREDENTIALS", func(t *testing.T) {
		h := newAuthHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/token", nil)
		req.SetBasicAuth("nobody_1", "longpass1")
		rr := httptest.NewRecorder()
		h.HandleToken(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "INVALID_CREDENTIALS", decodeEnvelope(t, rr).Code)
	})
}
