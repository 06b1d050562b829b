package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"golang.org/x/oauth2"

	"github.com/KirkDiggler/aionia-sheet/internal/auth"
	sheeterr "github.com/KirkDiggler/aionia-sheet/internal/errors"
	"github.com/KirkDiggler/aionia-sheet/internal/handlers/api"
	"github.com/KirkDiggler/aionia-sheet/internal/repositories/sessions"
	mocksessions "github.com/KirkDiggler/aionia-sheet/internal/repositories/sessions/mock"
	"github.com/KirkDiggler/aionia-sheet/internal/services"
	"github.com/KirkDiggler/aionia-sheet/internal/services/characters"
	mockcharacters "github.com/KirkDiggler/aionia-sheet/internal/services/characters/mock"
)

const bearerToken = "good-token"

type fakeVerifier struct{}

func (fakeVerifier) Verify(token string) (*auth.Identity, error) {
	if token != bearerToken {
		return nil, sheeterr.Unauthenticated("token is invalid")
	}
	return &auth.Identity{UserID: "user-1", Email: "u1@example.com"}, nil
}

type fakeOAuth struct{}

func (fakeOAuth) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + url.QueryEscape(state)
}

func (fakeOAuth) Exchange(_ context.Context, code string) (*auth.Identity, string, error) {
	if code != "good-code" {
		return nil, "", sheeterr.Unauthenticated("code exchange failed")
	}
	return &auth.Identity{UserID: "google-7", Email: "g7@example.com"}, "refresh-7", nil
}

func (fakeOAuth) AccessToken(_ context.Context, refreshToken string) (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: "access-for-" + refreshToken, Expiry: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}, nil
}

type HandlerTestSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	mockService  *mockcharacters.MockService
	mockSessions *mocksessions.MockRepository
	tokens       *auth.Tokens
	handler      http.Handler
}

func (s *HandlerTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockService = mockcharacters.NewMockService(s.ctrl)
	s.mockSessions = mocksessions.NewMockRepository(s.ctrl)

	tokens, err := auth.NewTokens(&auth.TokensConfig{Secret: []byte(strings.Repeat("k", 32))})
	s.Require().NoError(err)
	s.tokens = tokens

	s.handler = api.NewHandler(&api.HandlerConfig{
		ServiceProvider: &services.Provider{CharacterService: s.mockService},
		Verifier:        fakeVerifier{},
		Tokens:          tokens,
		Sessions:        s.mockSessions,
		OAuth:           fakeOAuth{},
		MaxBodyBytes:    1 << 16,
	}).Routes()
}

func (s *HandlerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (s *HandlerTestSuite) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerTestSuite) authed(method, target string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+bearerToken)
	return req
}

func (s *HandlerTestSuite) decode(rec *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (s *HandlerTestSuite) sessionCookie(id string) *http.Cookie {
	value, err := s.tokens.NewSession(id, time.Now().Add(time.Hour))
	s.Require().NoError(err)
	return &http.Cookie{Name: api.DefaultSessionCookie, Value: value}
}

func (s *HandlerTestSuite) TestRequiresAuthentication() {
	rec := s.serve(httptest.NewRequest(http.MethodGet, "/api/list-characters", nil))
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal("authentication required", s.decode(rec)["error"])

	req := httptest.NewRequest(http.MethodGet, "/api/list-characters", nil)
	req.Header.Set("Authorization", "Bearer nope")
	s.Equal(http.StatusUnauthorized, s.serve(req).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/list-characters", nil)
	req.Header.Set("Authorization", "Basic abc")
	s.Equal(http.StatusUnauthorized, s.serve(req).Code)
}

func (s *HandlerTestSuite) TestListCharacters() {
	updated := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	s.mockService.EXPECT().List(gomock.Any(), "user-1").Return([]*characters.Summary{
		{ID: "c1", Name: "Alma", PlayerName: "kiri", UpdatedAt: updated},
	}, nil)

	rec := s.serve(s.authed(http.MethodGet, "/api/list-characters", nil))

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("no-store", rec.Header().Get("Cache-Control"))
	list := s.decode(rec)["characters"].([]any)
	s.Require().Len(list, 1)
	s.Equal("Alma", list[0].(map[string]any)["name"])
}

func (s *HandlerTestSuite) TestListCharactersWithSessionCookie() {
	s.mockSessions.EXPECT().Get(gomock.Any(), "sess-1").Return(&sessions.Session{ID: "sess-1", UserID: "google-7"}, nil)
	s.mockService.EXPECT().List(gomock.Any(), "google-7").Return(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/list-characters", nil)
	req.AddCookie(s.sessionCookie("sess-1"))
	rec := s.serve(req)

	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"characters":[]}`, rec.Body.String())
}

func (s *HandlerTestSuite) TestGetCharacter() {
	s.mockService.EXPECT().Get(gomock.Any(), "user-1", "c1").Return(&characters.Character{ID: "c1"}, nil)

	rec := s.serve(s.authed(http.MethodGet, "/api/get-character?id=c1", nil))
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("c1", s.decode(rec)["id"])

	rec = s.serve(s.authed(http.MethodGet, "/api/get-character", nil))
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerTestSuite) TestGetCharacterNotFound() {
	s.mockService.EXPECT().Get(gomock.Any(), "user-1", "gone").Return(nil, sheeterr.NotFound("character 'gone' not found"))

	rec := s.serve(s.authed(http.MethodGet, "/api/get-character?id=gone", nil))
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("character 'gone' not found", s.decode(rec)["error"])
}

func (s *HandlerTestSuite) TestSaveCharacterEnvelope() {
	body := []byte(`{"id":"c9","character":{"character":{"name":"Alma"}}}`)
	s.mockService.EXPECT().Save(gomock.Any(), "user-1", "c9", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, id string, raw []byte) (*characters.Character, error) {
			s.JSONEq(`{"character":{"name":"Alma"}}`, string(raw))
			return &characters.Character{ID: id}, nil
		})

	rec := s.serve(s.authed(http.MethodPost, "/api/save-character", body))
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("c9", s.decode(rec)["id"])
}

func (s *HandlerTestSuite) TestSaveCharacterBareRecord() {
	body := []byte(`{"character":{"name":"Alma"},"skills":[]}`)
	s.mockService.EXPECT().Save(gomock.Any(), "user-1", "c3", body).Return(&characters.Character{ID: "c3"}, nil)

	rec := s.serve(s.authed(http.MethodPost, "/api/save-character?id=c3", body))
	s.Equal(http.StatusOK, rec.Code)
}

func (s *HandlerTestSuite) TestSaveCharacterRejectsBadBodies() {
	rec := s.serve(s.authed(http.MethodPost, "/api/save-character", []byte("{nope")))
	s.Equal(http.StatusBadRequest, rec.Code)

	huge := []byte(`{"memo":"` + strings.Repeat("x", 1<<17) + `"}`)
	rec = s.serve(s.authed(http.MethodPost, "/api/save-character", huge))
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(s.decode(rec)["error"], "exceeds")
}

func (s *HandlerTestSuite) TestSaveCharacterHidesInternalErrors() {
	s.mockService.EXPECT().Save(gomock.Any(), "user-1", "", gomock.Any()).Return(nil, sheeterr.WrapWithCode(stderrors.New("redis exploded"), sheeterr.CodeUnavailable, "failed to store character"))

	rec := s.serve(s.authed(http.MethodPost, "/api/save-character", []byte(`{"character":{}}`)))
	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Equal("internal server error", s.decode(rec)["error"])
}

func (s *HandlerTestSuite) TestDeleteCharacter() {
	s.mockService.EXPECT().Delete(gomock.Any(), "user-1", "c1").Return(nil)

	rec := s.serve(s.authed(http.MethodDelete, "/api/delete-character?id=c1", nil))
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(true, s.decode(rec)["success"])
}

func (s *HandlerTestSuite) TestWrongMethodFallsThrough() {
	rec := s.serve(s.authed(http.MethodGet, "/api/delete-character?id=c1", nil))
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *HandlerTestSuite) TestUnknownEndpoint() {
	rec := s.serve(httptest.NewRequest(http.MethodGet, "/api/nothing-here", nil))
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("endpoint not found", s.decode(rec)["error"])
}

func (s *HandlerTestSuite) TestUploadImage() {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "portrait.png")
	s.Require().NoError(err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\nrest"))
	s.Require().NoError(err)
	s.Require().NoError(mw.Close())

	s.mockService.EXPECT().UploadImage(gomock.Any(), "user-1", "application/octet-stream", []byte("\x89PNG\r\n\x1a\nrest")).
		Return(&characters.Image{Key: "user-1/images/1-abc.png", ContentType: "image/png", Size: 12}, nil)

	req := s.authed(http.MethodPost, "/api/upload-character-image", body.Bytes())
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := s.serve(req)

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("user-1/images/1-abc.png", s.decode(rec)["key"])
}

func (s *HandlerTestSuite) TestUploadImageRequiresField() {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	s.Require().NoError(mw.WriteField("other", "x"))
	s.Require().NoError(mw.Close())

	req := s.authed(http.MethodPost, "/api/upload-character-image", body.Bytes())
	req.Header.Set("Content-Type", mw.FormDataContentType())

	s.Equal(http.StatusBadRequest, s.serve(req).Code)
}

func (s *HandlerTestSuite) TestDeleteImage() {
	s.mockService.EXPECT().DeleteImage(gomock.Any(), "user-1", "user-1/images/a.png").Return(nil).Times(2)

	rec := s.serve(s.authed(http.MethodDelete, "/api/delete-character-image?key=user-1/images/a.png", nil))
	s.Equal(http.StatusOK, rec.Code)

	rec = s.serve(s.authed(http.MethodDelete, "/api/delete-character-image", []byte(`{"key":"user-1/images/a.png"}`)))
	s.Equal(http.StatusOK, rec.Code)

	rec = s.serve(s.authed(http.MethodDelete, "/api/delete-character-image", nil))
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerTestSuite) TestDeleteImagePermissionDenied() {
	s.mockService.EXPECT().DeleteImage(gomock.Any(), "user-1", "user-2/images/a.png").
		Return(sheeterr.PermissionDenied("image does not belong to the caller"))

	rec := s.serve(s.authed(http.MethodDelete, "/api/delete-character-image?key=user-2/images/a.png", nil))
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerTestSuite) TestLoginAndCallback() {
	rec := s.serve(httptest.NewRequest(http.MethodGet, "/api/auth/login?redirect=/sheet", nil))
	s.Require().Equal(http.StatusFound, rec.Code)

	location, err := url.Parse(rec.Header().Get("Location"))
	s.Require().NoError(err)
	state := location.Query().Get("state")
	s.Require().NotEmpty(state)

	var stateCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "aionia_oauth_state" {
			stateCookie = c
		}
	}
	s.Require().NotNil(stateCookie)
	s.Equal(state, stateCookie.Value)
	s.True(stateCookie.HttpOnly)

	expires := time.Now().Add(24 * time.Hour).Truncate(time.Second)
	s.mockSessions.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, sess *sessions.Session) error {
			s.Equal("google-7", sess.UserID)
			s.Equal("refresh-7", sess.RefreshToken)
			sess.ID = "sess-7"
			sess.ExpiresAt = expires
			return nil
		})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/callback?code=good-code&state="+url.QueryEscape(state), nil)
	req.AddCookie(stateCookie)
	rec = s.serve(req)

	s.Require().Equal(http.StatusFound, rec.Code, rec.Body.String())
	s.Equal("/sheet", rec.Header().Get("Location"))

	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == api.DefaultSessionCookie {
			session = c
		}
	}
	s.Require().NotNil(session)
	id, err := s.tokens.ParseSession(session.Value)
	s.Require().NoError(err)
	s.Equal("sess-7", id)
}

func (s *HandlerTestSuite) TestLoginRejectsOffsiteRedirect() {
	for _, redirect := range []string{"https://evil.example.com", "//evil.example.com", `/\evil`} {
		rec := s.serve(httptest.NewRequest(http.MethodGet, "/api/auth/login?redirect="+url.QueryEscape(redirect), nil))
		s.Require().Equal(http.StatusFound, rec.Code)

		location, err := url.Parse(rec.Header().Get("Location"))
		s.Require().NoError(err)
		state, err := s.tokens.ParseState(location.Query().Get("state"))
		s.Require().NoError(err)
		s.Equal("/", state.Redirect, redirect)
	}
}

func (s *HandlerTestSuite) TestCallbackStateMismatch() {
	state, err := s.tokens.NewState("/")
	s.Require().NoError(err)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/callback?code=good-code&state="+url.QueryEscape(state), nil)
	s.Equal(http.StatusBadRequest, s.serve(req).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/auth/callback?code=good-code&state="+url.QueryEscape(state), nil)
	req.AddCookie(&http.Cookie{Name: "aionia_oauth_state", Value: "other"})
	s.Equal(http.StatusBadRequest, s.serve(req).Code)
}

func (s *HandlerTestSuite) TestCallbackBadCode() {
	state, err := s.tokens.NewState("/")
	s.Require().NoError(err)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/callback?code=bad&state="+url.QueryEscape(state), nil)
	req.AddCookie(&http.Cookie{Name: "aionia_oauth_state", Value: state})
	s.Equal(http.StatusUnauthorized, s.serve(req).Code)
}

func (s *HandlerTestSuite) TestStatus() {
	rec := s.serve(httptest.NewRequest(http.MethodGet, "/api/auth/status", nil))
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(false, s.decode(rec)["authenticated"])

	s.mockSessions.EXPECT().Get(gomock.Any(), "sess-1").Return(&sessions.Session{ID: "sess-1", UserID: "google-7", Email: "g7@example.com"}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
	req.AddCookie(s.sessionCookie("sess-1"))
	rec = s.serve(req)

	out := s.decode(rec)
	s.Equal(true, out["authenticated"])
	s.Equal("google-7", out["user"].(map[string]any)["userId"])

	s.mockSessions.EXPECT().Get(gomock.Any(), "sess-2").Return(nil, sheeterr.NotFound("session not found"))
	req = httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
	req.AddCookie(s.sessionCookie("sess-2"))
	s.Equal(false, s.decode(s.serve(req))["authenticated"])
}

func (s *HandlerTestSuite) TestLogout() {
	s.mockSessions.EXPECT().Get(gomock.Any(), "sess-1").Return(&sessions.Session{ID: "sess-1", UserID: "google-7"}, nil)
	s.mockSessions.EXPECT().Delete(gomock.Any(), "sess-1").Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(s.sessionCookie("sess-1"))
	rec := s.serve(req)

	s.Equal(http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	s.Require().Len(cookies, 1)
	s.Equal(api.DefaultSessionCookie, cookies[0].Name)
	s.Equal(-1, cookies[0].MaxAge)
}

func (s *HandlerTestSuite) TestToken() {
	s.mockSessions.EXPECT().Get(gomock.Any(), "sess-1").Return(&sessions.Session{ID: "sess-1", UserID: "google-7", RefreshToken: "r1"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/token", nil)
	req.AddCookie(s.sessionCookie("sess-1"))
	rec := s.serve(req)

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("access-for-r1", s.decode(rec)["accessToken"])

	rec = s.serve(httptest.NewRequest(http.MethodGet, "/api/auth/token", nil))
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func TestLoginDisabledWithoutOAuth(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := api.NewHandler(&api.HandlerConfig{
		ServiceProvider: &services.Provider{CharacterService: mockcharacters.NewMockService(ctrl)},
	}).Routes()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/login", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("login status = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestNewHandlerPanicsWithoutServices(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	api.NewHandler(&api.HandlerConfig{})
}
