package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/cognicore/censusqa/pkg/census"
	"github.com/cognicore/censusqa/pkg/census/config"
	"github.com/cognicore/censusqa/pkg/census/store/memstore"
	"github.com/cognicore/censusqa/pkg/census/table"
)

func newTestEngine(t *testing.T) *census.Engine {
	t.Helper()

	tbl := table.New([]string{"Total Population Person"}, true)
	tbl.AppendRow(table.Row{Region: "Kerala", Classifier: "Total", Cells: map[string]table.Cell{
		"Total Population Person": {Num: 33406061, Valid: true},
	}})

	engine, err := census.New(census.Options{
		Table:    tbl,
		Synonyms: config.Synonyms{"population": "Total Population Person"},
	})
	if err != nil {
		t.Fatalf("census.New() failed: %v", err)
	}
	return engine
}

func doJSON(t *testing.T, h echo.HandlerFunc, method, target, body string) (*httptest.ResponseRecorder, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return rec, h(e.NewContext(req, rec))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("response %q is not JSON: %v", rec.Body.String(), err)
	}
	return out
}

func httpError(t *testing.T, err error) *echo.HTTPError {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("handler error = %v, want *echo.HTTPError", err)
	}
	return he
}

func TestChatAnswersFromDataset(t *testing.T) {
	st := memstore.New()
	h := NewHandler(st, newTestEngine(t), nil)

	rec, err := doJSON(t, h.Chat, http.MethodPost, "/chat", `{"message":"population of Kerala"}`)
	if err != nil {
		t.Fatalf("Chat() failed: %v", err)
	}

	out := decode(t, rec)
	if out["response"] != "The Total Population Person of Kerala is 33,406,061." {
		t.Errorf("response = %q", out["response"])
	}

	sessionID, _ := out["session_id"].(string)
	if sessionID == "" {
		t.Fatal("no session_id in response")
	}

	msgs, _ := st.SessionHistory(context.Background(), sessionID)
	if len(msgs) != 2 {
		t.Fatalf("persisted %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != "user" || msgs[1].Role != "bot" {
		t.Errorf("persisted roles = %q, %q", msgs[0].Role, msgs[1].Role)
	}
}

func TestChatFallbackWithoutEngine(t *testing.T) {
	h := NewHandler(memstore.New(), nil, nil)

	rec, err := doJSON(t, h.Chat, http.MethodPost, "/chat", `{"message":"hello there"}`)
	if err != nil {
		t.Fatalf("Chat() failed: %v", err)
	}
	if out := decode(t, rec); out["response"] != "I heard: hello there" {
		t.Errorf("response = %q, want the echo fallback", out["response"])
	}
}

func TestChatFallbackOnUnanswerable(t *testing.T) {
	h := NewHandler(memstore.New(), newTestEngine(t), nil)

	rec, err := doJSON(t, h.Chat, http.MethodPost, "/chat", `{"message":"qqqq zzzz"}`)
	if err != nil {
		t.Fatalf("Chat() failed: %v", err)
	}
	if out := decode(t, rec); out["response"] != "I heard: qqqq zzzz" {
		t.Errorf("response = %q, want the echo fallback", out["response"])
	}
}

func TestChatKeepsSessionID(t *testing.T) {
	h := NewHandler(memstore.New(), nil, nil)

	rec, err := doJSON(t, h.Chat, http.MethodPost, "/chat", `{"message":"hi","session_id":"my-session"}`)
	if err != nil {
		t.Fatalf("Chat() failed: %v", err)
	}
	if out := decode(t, rec); out["session_id"] != "my-session" {
		t.Errorf("session_id = %q, want 'my-session'", out["session_id"])
	}
}

func TestChatRequiresMessage(t *testing.T) {
	h := NewHandler(memstore.New(), nil, nil)

	_, err := doJSON(t, h.Chat, http.MethodPost, "/chat", `{"message":""}`)
	if he := httpError(t, err); he.Code != http.StatusBadRequest {
		t.Errorf("empty message status = %d, want 400", he.Code)
	}
}

func TestSignupAndLogin(t *testing.T) {
	st := memstore.New()
	h := NewHandler(st, nil, nil)

	if _, err := doJSON(t, h.Signup, http.MethodPost, "/signup",
		`{"email":"a@example.com","password":"s3cret"}`); err != nil {
		t.Fatalf("Signup() failed: %v", err)
	}

	// Duplicate email is rejected.
	_, err := doJSON(t, h.Signup, http.MethodPost, "/signup",
		`{"email":"a@example.com","password":"s3cret"}`)
	if he := httpError(t, err); he.Code != http.StatusBadRequest {
		t.Errorf("duplicate signup status = %d, want 400", he.Code)
	}

	// Login with the right password opens a session.
	rec, err := doJSON(t, h.Login, http.MethodPost, "/login",
		`{"email":"a@example.com","password":"s3cret"}`)
	if err != nil {
		t.Fatalf("Login() failed: %v", err)
	}
	out := decode(t, rec)
	if out["user_id"] != "a@example.com" {
		t.Errorf("user_id = %q", out["user_id"])
	}
	sessionID, _ := out["session_id"].(string)
	if sessionID == "" {
		t.Fatal("login returned no session_id")
	}
	if ok, _ := st.HasSession(context.Background(), sessionID); !ok {
		t.Error("login session was not persisted")
	}

	// Wrong password is rejected.
	_, err = doJSON(t, h.Login, http.MethodPost, "/login",
		`{"email":"a@example.com","password":"wrong"}`)
	if he := httpError(t, err); he.Code != http.StatusUnauthorized {
		t.Errorf("wrong password status = %d, want 401", he.Code)
	}

	// Unknown user is rejected.
	_, err = doJSON(t, h.Login, http.MethodPost, "/login",
		`{"email":"nobody@example.com","password":"x"}`)
	if he := httpError(t, err); he.Code != http.StatusUnauthorized {
		t.Errorf("unknown user status = %d, want 401", he.Code)
	}
}

func TestSimpleLogin(t *testing.T) {
	st := memstore.New()
	h := NewHandler(st, nil, nil)

	if _, err := doJSON(t, h.Signup, http.MethodPost, "/signup",
		`{"email":"a@example.com","password":"pw"}`); err != nil {
		t.Fatal(err)
	}

	rec, err := doJSON(t, h.SimpleLogin, http.MethodPost, "/simple-login", `{"user_id":"a@example.com"}`)
	if err != nil {
		t.Fatalf("SimpleLogin() failed: %v", err)
	}
	if out := decode(t, rec); out["session_id"] == "" {
		t.Error("simple login returned no session_id")
	}

	_, err = doJSON(t, h.SimpleLogin, http.MethodPost, "/simple-login", `{"user_id":"nobody@example.com"}`)
	if he := httpError(t, err); he.Code != http.StatusNotFound {
		t.Errorf("unknown user status = %d, want 404", he.Code)
	}
}

func TestHealthReportsCensusAvailability(t *testing.T) {
	h := NewHandler(memstore.New(), nil, nil)

	rec, err := doJSON(t, h.Health, http.MethodGet, "/health", "")
	if err != nil {
		t.Fatalf("Health() failed: %v", err)
	}
	if out := decode(t, rec); out["census_enabled"] != false {
		t.Errorf("census_enabled = %v, want false before the dataset loads", out["census_enabled"])
	}

	h.SetEngine(newTestEngine(t))
	rec, err = doJSON(t, h.Health, http.MethodGet, "/health", "")
	if err != nil {
		t.Fatal(err)
	}
	if out := decode(t, rec); out["census_enabled"] != true {
		t.Errorf("census_enabled = %v, want true after SetEngine", out["census_enabled"])
	}
}

func TestGetLanguages(t *testing.T) {
	h := NewHandler(memstore.New(), nil, nil)

	rec, err := doJSON(t, h.GetLanguages, http.MethodGet, "/languages", "")
	if err != nil {
		t.Fatalf("GetLanguages() failed: %v", err)
	}
	out := decode(t, rec)
	langs, ok := out["languages"].([]any)
	if !ok || len(langs) != 16 {
		t.Errorf("languages = %v, want 16 entries", out["languages"])
	}
}

func TestUserHistoryEndpoint(t *testing.T) {
	st := memstore.New()
	h := NewHandler(st, nil, nil)

	ctx := context.Background()
	st.CreateSession(ctx, "s1", "a@example.com")
	st.AppendMessage(ctx, "s1", "user", "hello")
	st.AppendMessage(ctx, "s1", "bot", "I heard: hello")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/user_history/a@example.com", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("user_id")
	c.SetParamValues("a@example.com")

	if err := h.UserHistory(c); err != nil {
		t.Fatalf("UserHistory() failed: %v", err)
	}

	out := decode(t, rec)
	histories, ok := out["histories"].([]any)
	if !ok || len(histories) != 1 {
		t.Fatalf("histories = %v, want one session", out["histories"])
	}
	first := histories[0].(map[string]any)
	if first["session_id"] != "s1" {
		t.Errorf("session_id = %v", first["session_id"])
	}
	if msgs := first["history"].([]any); len(msgs) != 2 {
		t.Errorf("history has %d messages, want 2", len(msgs))
	}
}
