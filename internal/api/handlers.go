// Package api exposes the chat service over HTTP.
package api

import (
	"context"
	"crypto/rand"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/oklog/ulid/v2"

	"github.com/cognicore/censusqa/internal/auth"
	"github.com/cognicore/censusqa/pkg/census"
	"github.com/cognicore/censusqa/pkg/census/internalerr"
	"github.com/cognicore/censusqa/pkg/census/store"
)

// Translator renders a reply in another language. Implementations call an
// external service; the default keeps the text unchanged.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

type noopTranslator struct{}

func (noopTranslator) Translate(_ context.Context, text, _ string) (string, error) {
	return text, nil
}

// Handler holds the service dependencies. The engine reference is atomic so
// the dataset can finish loading after the server is already listening, and
// so a reload is a single pointer swap.
type Handler struct {
	engine     atomic.Pointer[census.Engine]
	store      store.Store
	translator Translator

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewHandler creates a Handler. engine may be nil while data is still
// loading; translator may be nil to disable translation.
func NewHandler(st store.Store, engine *census.Engine, translator Translator) *Handler {
	h := &Handler{
		store:      st,
		translator: translator,
		entropy:    ulid.Monotonic(rand.Reader, 0),
	}
	if h.translator == nil {
		h.translator = noopTranslator{}
	}
	if engine != nil {
		h.engine.Store(engine)
	}
	return h
}

// SetEngine publishes a freshly loaded engine. Safe to call while requests
// are in flight.
func (h *Handler) SetEngine(e *census.Engine) {
	h.engine.Store(e)
}

// RegisterRoutes attaches all endpoints.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/signup", h.Signup)
	e.POST("/login", h.Login)
	e.POST("/simple-login", h.SimpleLogin)
	e.POST("/chat", h.Chat)
	e.GET("/languages", h.GetLanguages)
	e.GET("/health", h.Health)
	e.GET("/user_history/:user_id", h.UserHistory)
}

func (h *Handler) newSessionID() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return ulid.MustNew(ulid.Now(), h.entropy).String()
}

// --- Auth ---

// SignupRequest is the /signup payload.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup registers a new user
func (h *Handler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password required")
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.store.CreateUser(c.Request().Context(), req.Email, hashed); err != nil {
		if errors.Is(err, internalerr.ErrDuplicate) {
			return echo.NewHTTPError(http.StatusBadRequest, "Email already registered")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "User registered successfully",
	})
}

// LoginRequest is the /login payload. Password is optional for legacy
// clients that only send an email.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and opens a session
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	ctx := c.Request().Context()
	user, found, err := h.store.GetUser(ctx, req.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !found {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}
	if req.Password != "" && !auth.VerifyPassword(req.Password, user.PasswordHash) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	sessionID := h.newSessionID()
	if err := h.store.CreateSession(ctx, sessionID, user.Email); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":    true,
		"user_id":    user.Email,
		"session_id": sessionID,
	})
}

// SimpleLoginRequest is the /simple-login payload.
type SimpleLoginRequest struct {
	UserID string `json:"user_id"`
}

// SimpleLogin opens a session for a known email without a password check
func (h *Handler) SimpleLogin(c echo.Context) error {
	var req SimpleLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	ctx := c.Request().Context()
	_, found, err := h.store.GetUser(ctx, req.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !found {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	sessionID := h.newSessionID()
	if err := h.store.CreateSession(ctx, sessionID, req.UserID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":    true,
		"user_id":    req.UserID,
		"session_id": sessionID,
	})
}

// --- Chat ---

// ChatRequest is the /chat payload.
type ChatRequest struct {
	Message   string `json:"message"`
	Language  string `json:"language"`
	SessionID string `json:"session_id"`
}

// Chat answers one user message. The session is created on demand, both
// sides of the exchange are persisted, and the reply falls back to an echo
// of the message when the query cannot be answered from the dataset.
func (h *Handler) Chat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Message required")
	}

	ctx := c.Request().Context()
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = h.newSessionID()
	}
	if err := h.store.CreateSession(ctx, sessionID, ""); err != nil {
		c.Logger().Errorf("create session: %v", err)
	}
	if err := h.store.AppendMessage(ctx, sessionID, "user", req.Message); err != nil {
		c.Logger().Errorf("save user message: %v", err)
	}

	response := h.answer(req.Message)

	lang := LanguageCode(req.Language)
	if lang != "en" {
		if translated, err := h.translator.Translate(ctx, response, lang); err == nil {
			response = translated
		}
	}

	if err := h.store.AppendMessage(ctx, sessionID, "bot", response); err != nil {
		c.Logger().Errorf("save bot message: %v", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"response":   response,
		"session_id": sessionID,
	})
}

// answer consults the engine when one is loaded. Any resolution or lookup
// failure degrades to the echo fallback rather than an error response.
func (h *Handler) answer(message string) string {
	if engine := h.engine.Load(); engine != nil {
		if ans, err := engine.Ask(message); err == nil {
			return ans.Sentence
		}
	}
	return "I heard: " + message
}

// --- Misc ---

// GetLanguages returns the supported language catalog
func (h *Handler) GetLanguages(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"languages": Languages()})
}

// Health reports service status. census_enabled means a dataset has been
// loaded and published.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":         "ok",
		"time":           time.Now().UTC().Format(time.RFC3339),
		"census_enabled": h.engine.Load() != nil,
	})
}

// UserHistory returns all sessions and transcripts for a user
func (h *Handler) UserHistory(c echo.Context) error {
	histories, err := h.store.UserHistory(c.Request().Context(), c.Param("user_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	out := make([]map[string]any, 0, len(histories))
	for _, hist := range histories {
		msgs := make([]map[string]any, 0, len(hist.Messages))
		for _, m := range hist.Messages {
			msgs = append(msgs, map[string]any{
				"role":       m.Role,
				"message":    m.Text,
				"created_at": m.CreatedAt.Format(time.RFC3339),
			})
		}
		out = append(out, map[string]any{
			"session_id": hist.SessionID,
			"history":    msgs,
		})
	}

	return c.JSON(http.StatusOK, map[string]any{"histories": out})
}
