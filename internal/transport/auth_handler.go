package transport

import (
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"shoplite/internal/domain"
	"shoplite/internal/middleware"
	"shoplite/internal/repository"
	"shoplite/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserProfile represents user data returned to clients, never including
// the password hash
type UserProfile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuthResponse is returned on successful registration and login
type AuthResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	User      UserProfile `json:"user"`
	Token     string      `json:"token"`
	ExpiresIn string      `json:"expiresIn"`
}

// MeResponse wraps the current user's profile
type MeResponse struct {
	Success bool        `json:"success"`
	User    UserProfile `json:"user"`
}

func toProfile(user *domain.User) UserProfile {
	return UserProfile{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

// AuthHandler handles HTTP requests for registration and login
type AuthHandler struct {
	authService service.AuthService
	expiresIn   string
	logger      *zap.Logger
	development bool
}

// NewAuthHandler creates a new AuthHandler. tokenExpiry must match the
// lifetime the auth service signs tokens with.
func NewAuthHandler(authService service.AuthService, tokenExpiry time.Duration, logger *zap.Logger, development bool) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		expiresIn:   formatTokenLifetime(tokenExpiry),
		logger:      logger,
		development: development,
	}
}

// formatTokenLifetime renders whole-day lifetimes as "7d" and anything
// else as a plain duration string.
func formatTokenLifetime(d time.Duration) string {
	if days := int(d / (24 * time.Hour)); days >= 1 && time.Duration(days)*24*time.Hour == d {
		return fmt.Sprintf("%dd", days)
	}
	return d.String()
}

// RegisterRoutes registers all auth routes
func (h *AuthHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/me", h.Me)
		})
	})
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Registration validation failed", zap.Error(err))

		if msg := middleware.FirstValidationMessage(err); msg != "" {
			middleware.RespondWithError(w, http.StatusBadRequest, msg)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// The min=2 tag sees the raw value, so padded names slip through it.
	req.Name = strings.TrimSpace(req.Name)
	if utf8.RuneCountInString(req.Name) < 2 {
		middleware.RespondWithError(w, http.StatusBadRequest, "Name must be at least 2 characters long")
		return
	}

	user, token, err := h.authService.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if err == repository.ErrUserAlreadyExists {
			middleware.RespondWithError(w, http.StatusConflict, "email already registered")
			return
		}

		h.logger.Error("Registration failed", zap.Error(err))
		middleware.RespondWithInternalError(w, "registration failed", err, h.development)
		return
	}

	h.logger.Info("User registered", zap.String("user_id", user.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, AuthResponse{
		Success:   true,
		Message:   "Registration successful",
		User:      toProfile(user),
		Token:     token,
		ExpiresIn: h.expiresIn,
	})
}

// Login handles user authentication
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Login validation failed", zap.Error(err))

		if msg := middleware.FirstValidationMessage(err); msg != "" {
			middleware.RespondWithError(w, http.StatusBadRequest, msg)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if err == service.ErrInvalidCredentials {
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}

		h.logger.Error("Login failed", zap.Error(err))
		middleware.RespondWithInternalError(w, "login failed", err, h.development)
		return
	}

	h.logger.Info("User logged in", zap.String("user_id", user.ID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, AuthResponse{
		Success:   true,
		Message:   "Login successful",
		User:      toProfile(user),
		Token:     token,
		ExpiresIn: h.expiresIn,
	})
}

// Me returns the authenticated caller's profile
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "no token provided")
		return
	}

	userID, err := uuid.Parse(identity.UserID)
	if err != nil {
		h.logger.Error("Invalid user ID in token", zap.String("user_id", identity.UserID))
		middleware.RespondWithError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		if err == repository.ErrUserNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "user not found")
			return
		}

		h.logger.Error("Failed to get user profile", zap.Error(err))
		middleware.RespondWithInternalError(w, "failed to fetch profile", err, h.development)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, MeResponse{
		Success: true,
		User:    toProfile(user),
	})
}
