package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/venusseo127/dentalApp/internal/apperr"
	"github.com/venusseo127/dentalApp/internal/identity"
	"github.com/venusseo127/dentalApp/internal/services"
	"github.com/venusseo127/dentalApp/types"
)

const defaultTokenTTL = 24 * time.Hour

// AuthHandler issues session tokens and serves the current user's profile.
type AuthHandler struct {
	userService *services.UserService
	verifier    identity.Verifier
	secret      []byte
	tokenTTL    time.Duration
}

// NewAuthHandler constructs an AuthHandler. verifier may be nil when
// third-party sign-in is not configured.
func NewAuthHandler(userService *services.UserService, verifier identity.Verifier, jwtSecret string, tokenTTL time.Duration) *AuthHandler {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &AuthHandler{
		userService: userService,
		verifier:    verifier,
		secret:      []byte(jwtSecret),
		tokenTTL:    tokenTTL,
	}
}

// AuthRouter registers auth routes. limit guards the credential endpoints
// and may be nil.
func AuthRouter(r chi.Router, handler *AuthHandler, limit func(http.Handler) http.Handler) {
	credentials := r
	if limit != nil {
		credentials = r.With(limit)
	}
	credentials.Post("/register", handler.Register)
	credentials.Post("/login", handler.Login)
	credentials.Post("/session", handler.Session)

	r.Group(func(r chi.Router) {
		r.Use(handler.Authenticated)
		r.Get("/me", handler.Me)
		r.Put("/me", handler.UpdateMe)
	})
}

// RequireAuth enforces JWT authentication and injects the subject into context.
func (h *AuthHandler) RequireAuth(next http.Handler) http.Handler {
	return requireAuth(h.secret)(next)
}

// Authenticated chains RequireAuth and RequireActor for routers that need
// the acting user.
func (h *AuthHandler) Authenticated(next http.Handler) http.Handler {
	return h.RequireAuth(RequireActor(h.userService)(next))
}

// RequireAuth constructs auth middleware for other routers.
func RequireAuth(jwtSecret string) func(http.Handler) http.Handler {
	return requireAuth([]byte(jwtSecret))
}

func requireAuth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r)
			if err != nil {
				writeAppError(w, r, apperr.Unauthenticated("unauthorized"))
				return
			}
			subject, err := parseTokenSubject(tokenString, secret)
			if err != nil {
				writeAppError(w, r, apperr.Unauthenticated("unauthorized"))
				return
			}
			ctx := context.WithValue(r.Context(), contextSubjectKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireActor loads the authenticated user from the store on every request
// so that role checks never rely on token contents.
func RequireActor(userService *services.UserService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, err := subjectFromContext(r.Context())
			if err != nil {
				writeAppError(w, r, apperr.Unauthenticated("unauthorized"))
				return
			}
			user, err := userService.GetByID(r.Context(), subject)
			if err != nil {
				if apperr.Is(err, apperr.KindNotFound) {
					writeAppError(w, r, apperr.Unauthenticated("unauthorized"))
					return
				}
				writeAppError(w, r, err)
				return
			}
			ctx := context.WithValue(r.Context(), contextActorKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requireAdmin rejects non-administrators. It must run after RequireActor.
func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFromContext(r.Context())
		if !ok {
			writeAppError(w, r, apperr.Unauthenticated("unauthorized"))
			return
		}
		if !actor.IsAdmin() {
			writeAppError(w, r, apperr.PermissionDenied("admin access required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Register creates a patient account and returns a JWT.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, err)
		return
	}
	user, err := h.userService.Register(r.Context(), req)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	h.respondWithToken(w, r, http.StatusCreated, user)
}

// Login verifies email and password and returns a JWT.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, err)
		return
	}
	user, err := h.userService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	h.respondWithToken(w, r, http.StatusOK, user)
}

// Session exchanges a verified identity provider token for a JWT, creating
// the user on first sign-in.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	if h.verifier == nil {
		writeAppError(w, r, apperr.Unavailable("identity provider sign-in is not configured"))
		return
	}
	var req SessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, err)
		return
	}
	principal, err := h.verifier.Verify(r.Context(), strings.TrimSpace(req.IDToken))
	if err != nil {
		writeAppError(w, r, apperr.Unauthenticated("invalid identity token"))
		return
	}
	user, err := h.userService.ResolveOrCreate(r.Context(), principal)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	h.respondWithToken(w, r, http.StatusOK, user)
}

// Me returns the current authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	writeJSON(w, http.StatusOK, actor)
}

// UpdateMe applies profile edits. Identity and role fields are rejected.
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		writeAppError(w, r, apperr.Validation("", "invalid request body"))
		return
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		writeAppError(w, r, apperr.Validation("", "invalid request body"))
		return
	}
	for _, name := range []string{"id", "email", "role"} {
		if _, ok := fields[name]; ok {
			writeAppError(w, r, apperr.ImmutableField(name))
			return
		}
	}

	var update types.ProfileUpdate
	if err := json.Unmarshal(raw, &update); err != nil {
		writeAppError(w, r, apperr.Validation("", "invalid request body"))
		return
	}
	user, err := h.userService.UpdateProfile(r.Context(), actor, update)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, user types.User) {
	token, err := issueToken(user.ID, h.secret, h.tokenTTL)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, status, AuthResponse{Token: token, User: user})
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionRequest struct {
	IDToken string `json:"idToken"`
}

type AuthResponse struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}

func issueToken(userID string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func parseTokenSubject(tokenString string, secret []byte) (string, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", errors.New("missing subject")
	}
	return claims.Subject, nil
}

func bearerToken(r *http.Request) (string, error) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}
