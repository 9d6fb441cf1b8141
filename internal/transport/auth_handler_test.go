package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"shoplite/internal/domain"
	"shoplite/internal/middleware"
	"shoplite/internal/repository"
	"shoplite/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Mock auth service for handler testing
type mockAuthService struct {
	usersByEmail map[string]*domain.User
	usersByID    map[uuid.UUID]*domain.User
	passwords    map[string]string
}

func newMockAuthService() *mockAuthService {
	return &mockAuthService{
		usersByEmail: make(map[string]*domain.User),
		usersByID:    make(map[uuid.UUID]*domain.User),
		passwords:    make(map[string]string),
	}
}

func (m *mockAuthService) Register(ctx context.Context, name, email, password string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, exists := m.usersByEmail[email]; exists {
		return nil, "", repository.ErrUserAlreadyExists
	}

	user := &domain.User{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Email:     email,
		Role:      domain.RoleUser,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	m.usersByEmail[email] = user
	m.usersByID[user.ID] = user
	m.passwords[email] = password
	return user, "signed-token", nil
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, exists := m.usersByEmail[email]
	if !exists || m.passwords[email] != password {
		return nil, "", service.ErrInvalidCredentials
	}
	return user, "signed-token", nil
}

func (m *mockAuthService) GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, exists := m.usersByID[userID]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockAuthService) ValidateToken(tokenString string) (*service.Claims, error) {
	return nil, service.ErrInvalidToken
}

func newAuthTestRouter(svc service.AuthService) chi.Router {
	return newAuthTestRouterWithExpiry(svc, 7*24*time.Hour)
}

func newAuthTestRouterWithExpiry(svc service.AuthService, tokenExpiry time.Duration) chi.Router {
	logger := zap.NewNop()
	handler := NewAuthHandler(svc, tokenExpiry, logger, true)

	r := chi.NewRouter()
	handler.RegisterRoutes(r, middleware.AuthMiddleware(testSecret, logger))
	return r
}

func postJSON(t *testing.T, router chi.Router, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterReturnsProfileAndToken(t *testing.T) {
	router := newAuthTestRouter(newMockAuthService())

	w := postJSON(t, router, "/api/auth/register", RegisterRequest{
		Name:     "Jo Soap",
		Email:    "jo@example.com",
		Password: "secret123",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", w.Code, w.Body.String())
	}

	var resp AuthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if !resp.Success || resp.Message != "Registration successful" {
		t.Errorf("envelope = %+v", resp)
	}
	if resp.Token == "" {
		t.Error("expected a token")
	}
	if resp.ExpiresIn != "7d" {
		t.Errorf("expiresIn = %q, want 7d", resp.ExpiresIn)
	}
	if resp.User.Email != "jo@example.com" || resp.User.Role != domain.RoleUser {
		t.Errorf("user = %+v", resp.User)
	}
}

func TestRegisterValidation(t *testing.T) {
	router := newAuthTestRouter(newMockAuthService())

	tests := []struct {
		name    string
		payload RegisterRequest
	}{
		{"short password", RegisterRequest{Name: "Jo", Email: "jo@example.com", Password: "12345"}},
		{"bad email", RegisterRequest{Name: "Jo", Email: "not-an-email", Password: "secret123"}},
		{"missing name", RegisterRequest{Email: "jo@example.com", Password: "secret123"}},
		{"padded single-letter name", RegisterRequest{Name: " a ", Email: "a@example.com", Password: "secret123"}},
		{"whitespace-only name", RegisterRequest{Name: "   ", Email: "ws@example.com", Password: "secret123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, router, "/api/auth/register", tt.payload)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			var resp middleware.ErrorResponse
			json.NewDecoder(w.Body).Decode(&resp)
			if resp.Success || resp.Error == "" {
				t.Errorf("body = %+v", resp)
			}
		})
	}
}

func TestRegisterChecksNameLengthAfterTrim(t *testing.T) {
	svc := newMockAuthService()
	router := newAuthTestRouter(svc)

	w := postJSON(t, router, "/api/auth/register", RegisterRequest{
		Name:     " a ",
		Email:    "a@example.com",
		Password: "secret123",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var errResp middleware.ErrorResponse
	json.NewDecoder(w.Body).Decode(&errResp)
	if errResp.Error != "Name must be at least 2 characters long" {
		t.Errorf("error = %q", errResp.Error)
	}
	if len(svc.usersByEmail) != 0 {
		t.Errorf("rejected registration was stored: %+v", svc.usersByEmail)
	}

	// A padded name that trims to a valid length registers with the
	// trimmed form.
	w = postJSON(t, router, "/api/auth/register", RegisterRequest{
		Name:     "  Jo Soap  ",
		Email:    "jo@example.com",
		Password: "secret123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", w.Code, w.Body.String())
	}
	var resp AuthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.User.Name != "Jo Soap" {
		t.Errorf("name = %q, want trimmed form", resp.User.Name)
	}
}

func TestExpiresInFollowsConfiguredLifetime(t *testing.T) {
	tests := []struct {
		name   string
		expiry time.Duration
		want   string
	}{
		{"seven days", 7 * 24 * time.Hour, "7d"},
		{"two days", 48 * time.Hour, "2d"},
		{"partial day", 36 * time.Hour, "36h0m0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAuthTestRouterWithExpiry(newMockAuthService(), tt.expiry)
			w := postJSON(t, router, "/api/auth/register", RegisterRequest{
				Name:     "Jo Soap",
				Email:    "jo@example.com",
				Password: "secret123",
			})
			if w.Code != http.StatusCreated {
				t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
			}
			var resp AuthResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.ExpiresIn != tt.want {
				t.Errorf("expiresIn = %q, want %q", resp.ExpiresIn, tt.want)
			}
		})
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	router := newAuthTestRouter(newMockAuthService())

	payload := RegisterRequest{Name: "Jo", Email: "jo@example.com", Password: "secret123"}
	if w := postJSON(t, router, "/api/auth/register", payload); w.Code != http.StatusCreated {
		t.Fatalf("first registration: status = %d", w.Code)
	}

	w := postJSON(t, router, "/api/auth/register", payload)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
	var resp middleware.ErrorResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Error != "email already registered" {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestLogin(t *testing.T) {
	svc := newMockAuthService()
	router := newAuthTestRouter(svc)

	if _, _, err := svc.Register(context.Background(), "Jo", "jo@example.com", "secret123"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	t.Run("valid credentials", func(t *testing.T) {
		w := postJSON(t, router, "/api/auth/login", LoginRequest{Email: "jo@example.com", Password: "secret123"})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}

		var resp AuthResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if !resp.Success || resp.Message != "Login successful" || resp.Token == "" {
			t.Errorf("envelope = %+v", resp)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		w := postJSON(t, router, "/api/auth/login", LoginRequest{Email: "jo@example.com", Password: "wrongpass"})
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
		var resp middleware.ErrorResponse
		json.NewDecoder(w.Body).Decode(&resp)
		if resp.Error != "invalid email or password" {
			t.Errorf("error = %q", resp.Error)
		}
	})

	t.Run("unknown email gets the same message", func(t *testing.T) {
		w := postJSON(t, router, "/api/auth/login", LoginRequest{Email: "nobody@example.com", Password: "secret123"})
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
		var resp middleware.ErrorResponse
		json.NewDecoder(w.Body).Decode(&resp)
		if resp.Error != "invalid email or password" {
			t.Errorf("error = %q", resp.Error)
		}
	})
}

func TestMeReturnsCallerProfile(t *testing.T) {
	svc := newMockAuthService()
	router := newAuthTestRouter(svc)

	user, _, err := svc.Register(context.Background(), "Jo Soap", "jo@example.com", "secret123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	t.Run("without token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/auth/me", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
	})

	t.Run("with token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/auth/me", nil)
		req.Header.Set("Authorization", bearerToken(t, user.ID, "user"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
		}

		var resp MeResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.User.ID != user.ID.String() || resp.User.Name != "Jo Soap" {
			t.Errorf("user = %+v", resp.User)
		}
	})
}
