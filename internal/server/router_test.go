package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/myaralbdany4-glitch/MoodLens/internal/clients/identity"
	"github.com/myaralbdany4-glitch/MoodLens/internal/clients/openai"
	"github.com/myaralbdany4-glitch/MoodLens/internal/handlers"
	"github.com/myaralbdany4-glitch/MoodLens/internal/middleware"
	"github.com/myaralbdany4-glitch/MoodLens/internal/repos"
	"github.com/myaralbdany4-glitch/MoodLens/internal/repos/testutil"
	"github.com/myaralbdany4-glitch/MoodLens/internal/services"
	"github.com/myaralbdany4-glitch/MoodLens/internal/types"
)

type stubIdentityClient struct {
	tokens map[string]*identity.Identity
	// lookupErr simulates an identity-service outage on CurrentUser.
	lookupErr error
}

func (s *stubIdentityClient) RedirectURL(ctx context.Context) (string, error) {
	return "https://accounts.example.com/o/oauth2/auth?client_id=moodlens", nil
}

func (s *stubIdentityClient) ExchangeCode(ctx context.Context, code string) (string, error) {
	token := "token-for-" + code
	s.tokens[token] = &identity.Identity{ID: "user-" + code, Email: code + "@example.com"}
	return token, nil
}

func (s *stubIdentityClient) CurrentUser(ctx context.Context, sessionToken string) (*identity.Identity, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	ident, ok := s.tokens[sessionToken]
	if !ok {
		return nil, identity.ErrUnauthenticated
	}
	return ident, nil
}

func (s *stubIdentityClient) DeleteSession(ctx context.Context, sessionToken string) error {
	delete(s.tokens, sessionToken)
	return nil
}

type stubInference struct {
	content string
}

func (s *stubInference) ChatCompletionJSON(ctx context.Context, system string, user string, images []openai.ImageInput) (string, error) {
	return s.content, nil
}

type stubTranscriber struct {
	text string
}

func (s *stubTranscriber) Transcribe(ctx context.Context, filename string, audio []byte, language string) (string, error) {
	return s.text, nil
}

const stubAnalysisContent = `{"emotions":[{"name":"سعادة","confidence":92}],"overallMood":"مزاج ممتاز","moodScore":9,"confidence":88,"recommendations":["نصيحة 1","نصيحة 2","نصيحة 3"]}`

type testApp struct {
	router   *gin.Engine
	identity *stubIdentityClient
	db       *gorm.DB
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbConn := testutil.DB(t)
	log := testutil.Logger(t)

	moodSessionRepo := repos.NewMoodSessionRepo(dbConn, log)
	userProfileRepo := repos.NewUserProfileRepo(dbConn, log)

	identityClient := &stubIdentityClient{tokens: map[string]*identity.Identity{}}
	authService := services.NewAuthService(log, identityClient, nil)
	profileService := services.NewProfileService(dbConn, log, userProfileRepo)
	analysisService := services.NewAnalysisService(dbConn, log, moodSessionRepo, &stubInference{content: stubAnalysisContent}, &stubTranscriber{text: "أشعر بالهدوء"})
	historyService := services.NewHistoryService(dbConn, log, moodSessionRepo)
	feedbackService := services.NewFeedbackService(dbConn, log, moodSessionRepo)

	router := NewRouter(RouterConfig{
		AuthHandler:    handlers.NewAuthHandler(log, authService),
		UserHandler:    handlers.NewUserHandler(),
		MoodHandler:    handlers.NewMoodHandler(log, analysisService, historyService, feedbackService),
		AuthMiddleware: middleware.NewAuthMiddleware(log, authService, profileService),
	})
	return &testApp{router: router, identity: identityClient, db: dbConn}
}

func (app *testApp) do(t *testing.T, method, path, token string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: identity.SessionTokenCookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)
	return rec
}

func (app *testApp) login(t *testing.T, code string) string {
	t.Helper()
	body := bytes.NewBufferString(fmt.Sprintf(`{"code":%q}`, code))
	rec := app.do(t, http.MethodPost, "/api/sessions", "", body, "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("create session: status %d body %s", rec.Code, rec.Body.String())
	}
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == identity.SessionTokenCookieName {
			if !cookie.HttpOnly || !cookie.Secure || cookie.SameSite != http.SameSiteNoneMode {
				t.Fatalf("session cookie attributes wrong: %+v", cookie)
			}
			return cookie.Value
		}
	}
	t.Fatal("session cookie not set")
	return ""
}

func TestHealthCheck(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(t, http.MethodGet, "/healthcheck", "", nil, "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("status %d body %q", rec.Code, rec.Body.String())
	}
}

func TestRedirectURL(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(t, http.MethodGet, "/api/oauth/google/redirect_url", "", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var resp struct {
		RedirectURL string `json:"redirectUrl"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasPrefix(resp.RedirectURL, "https://") {
		t.Fatalf("unexpected redirect url %q", resp.RedirectURL)
	}
}

func TestCreateSessionRequiresCode(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(t, http.MethodPost, "/api/sessions", "", bytes.NewBufferString(`{}`), "application/json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestProtectedRoutesRejectMissingSession(t *testing.T) {
	app := newTestApp(t)
	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/users/me"},
		{http.MethodPost, "/api/analyze/face"},
		{http.MethodGet, "/api/mood-history"},
		{http.MethodPost, "/api/feedback/1"},
	} {
		rec := app.do(t, route.method, route.path, "", nil, "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", route.method, route.path, rec.Code)
		}
	}
}

// Full first-visit flow: login, identity lookup bootstraps the profile,
// a face analysis lands in history.
func TestFirstVisitFlow(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t, "flow-u1")

	for range 2 {
		rec := app.do(t, http.MethodGet, "/api/users/me", token, nil, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("users/me: status %d body %s", rec.Code, rec.Body.String())
		}
	}
	var profiles []types.UserProfile
	if err := app.db.Where("user_id = ?", "user-flow-u1").Find(&profiles).Error; err != nil {
		t.Fatalf("read profiles: %v", err)
	}
	if len(profiles) != 1 {
		t.Fatalf("expected exactly one profile row, got %d", len(profiles))
	}
	if profiles[0].PreferredLanguage != "ar" {
		t.Fatalf("expected default language ar, got %q", profiles[0].PreferredLanguage)
	}

	body := bytes.NewBufferString(`{"imageData":"data:image/png;base64,AAAA"}`)
	rec := app.do(t, http.MethodPost, "/api/analyze/face", token, body, "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("analyze/face: status %d body %s", rec.Code, rec.Body.String())
	}
	var analyzeResp struct {
		SessionID int64 `json:"sessionId"`
		Analysis  struct {
			MoodScore int `json:"moodScore"`
		} `json:"analysis"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &analyzeResp); err != nil {
		t.Fatalf("decode analyze response: %v", err)
	}
	if analyzeResp.SessionID == 0 {
		t.Fatal("expected a session id")
	}
	if analyzeResp.Analysis.MoodScore < 1 || analyzeResp.Analysis.MoodScore > 10 {
		t.Fatalf("moodScore %d out of range", analyzeResp.Analysis.MoodScore)
	}

	rec = app.do(t, http.MethodGet, "/api/mood-history?limit=1", token, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("mood-history: status %d", rec.Code)
	}
	var rows []types.MoodSession
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected exactly one row, got %d", len(rows))
	}
	if rows[0].ID != analyzeResp.SessionID {
		t.Fatalf("history row id %d does not match session id %d", rows[0].ID, analyzeResp.SessionID)
	}
}

func TestAnalyzeFaceMissingImage(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t, "face-missing")

	rec := app.do(t, http.MethodPost, "/api/analyze/face", token, bytes.NewBufferString(`{}`), "application/json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "صورة مطلوبة للتحليل") {
		t.Fatalf("expected localized validation message, got %s", rec.Body.String())
	}
}

func TestAnalyzeVoiceMultipart(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t, "voice-u1")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("audio", "clip.webm")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("fake-audio-bytes")); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	writer.Close()

	rec := app.do(t, http.MethodPost, "/api/analyze/voice", token, &buf, writer.FormDataContentType())
	if rec.Code != http.StatusOK {
		t.Fatalf("analyze/voice: status %d body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		SessionID int64 `json:"sessionId"`
		Analysis  struct {
			Transcription string `json:"transcription"`
		} `json:"analysis"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Analysis.Transcription == "" {
		t.Fatal("voice analysis response must include a transcription")
	}

	rec = app.do(t, http.MethodPost, "/api/analyze/voice", token, bytes.NewBufferString(`{}`), "application/json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing audio: expected 400, got %d", rec.Code)
	}
}

func TestFeedbackFlow(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t, "fb-u1")

	body := bytes.NewBufferString(`{"imageData":"data:image/png;base64,AAAA"}`)
	rec := app.do(t, http.MethodPost, "/api/analyze/face", token, body, "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("analyze: status %d", rec.Code)
	}
	var analyzeResp struct {
		SessionID int64 `json:"sessionId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &analyzeResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	path := fmt.Sprintf("/api/feedback/%d", analyzeResp.SessionID)

	rec = app.do(t, http.MethodPost, path, token, bytes.NewBufferString(`{"rating":4}`), "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("feedback: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = app.do(t, http.MethodPost, path, token, bytes.NewBufferString(`{"rating":5}`), "application/json")
	if rec.Code != http.StatusConflict {
		t.Fatalf("second feedback: expected 409, got %d", rec.Code)
	}

	// Another caller must not be able to touch the row.
	otherToken := app.login(t, "fb-u2")
	rec = app.do(t, http.MethodPost, path, otherToken, bytes.NewBufferString(`{"rating":1}`), "application/json")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("cross-user feedback: expected 404, got %d", rec.Code)
	}
	var row types.MoodSession
	if err := app.db.First(&row, analyzeResp.SessionID).Error; err != nil {
		t.Fatalf("read row: %v", err)
	}
	if row.UserFeedback == nil || *row.UserFeedback != 4 {
		t.Fatalf("expected rating 4 preserved, got %v", row.UserFeedback)
	}

	rec = app.do(t, http.MethodPost, "/api/feedback/not-a-number", token, bytes.NewBufferString(`{"rating":3}`), "application/json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("non-numeric id: expected 400, got %d", rec.Code)
	}
}

// An identity-service outage must not read as an invalid session: the
// caller's cookie may be perfectly good.
func TestIdentityServiceOutageIsNotUnauthorized(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t, "outage-u1")

	app.identity.lookupErr = errors.New("identity service http 503: upstream unavailable")
	rec := app.do(t, http.MethodGet, "/api/users/me", token, nil, "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 during identity outage, got %d: %s", rec.Code, rec.Body.String())
	}

	// A token the service affirmatively rejects still gets 401.
	app.identity.lookupErr = nil
	rec = app.do(t, http.MethodGet, "/api/users/me", "stale-token", nil, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a rejected token, got %d", rec.Code)
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t, "logout-u1")

	rec := app.do(t, http.MethodGet, "/api/logout", token, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: status %d", rec.Code)
	}
	cleared := false
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == identity.SessionTokenCookieName && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("logout must clear the session cookie")
	}

	rec = app.do(t, http.MethodGet, "/api/users/me", token, nil, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("after logout: expected 401, got %d", rec.Code)
	}
}
