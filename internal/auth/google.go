package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"

	sheeterr "github.com/KirkDiggler/aionia-sheet/internal/errors"
)

const defaultUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// GoogleConfig configures the Google OAuth client
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// Endpoint and UserInfoURL override Google's for tests
	Endpoint    *oauth2.Endpoint
	UserInfoURL string
}

// GoogleProvider runs the authorization code flow with offline access so the
// refresh token can later mint Drive access tokens
type GoogleProvider struct {
	oauth       *oauth2.Config
	userInfoURL string
}

// NewGoogleProvider creates a Google OAuth provider
func NewGoogleProvider(cfg *GoogleConfig) (*GoogleProvider, error) {
	if cfg == nil || cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, sheeterr.InvalidArgument("google client id and secret are required")
	}

	endpoint := google.Endpoint
	if cfg.Endpoint != nil {
		endpoint = *cfg.Endpoint
	}
	userInfoURL := cfg.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = defaultUserInfoURL
	}

	return &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{"openid", "email", drive.DriveFileScope},
		},
		userInfoURL: userInfoURL,
	}, nil
}

// AuthCodeURL returns the consent page URL for state
func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// Exchange trades the callback code for the caller's identity and refresh token
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*Identity, string, error) {
	if strings.TrimSpace(code) == "" {
		return nil, "", sheeterr.InvalidArgument("authorization code is required")
	}

	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, "", sheeterr.WrapWithCode(err, sheeterr.CodeUnauthenticated, "failed to exchange authorization code")
	}

	identity, err := p.userInfo(ctx, tok)
	if err != nil {
		return nil, "", err
	}
	return identity, tok.RefreshToken, nil
}

// TokenSource returns a source that refreshes access tokens from refreshToken
func (p *GoogleProvider) TokenSource(ctx context.Context, refreshToken string) oauth2.TokenSource {
	return p.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
}

// AccessToken mints a fresh access token from a stored refresh token
func (p *GoogleProvider) AccessToken(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if refreshToken == "" {
		return nil, sheeterr.Unauthenticated("no refresh token stored for this session")
	}
	tok, err := p.TokenSource(ctx, refreshToken).Token()
	if err != nil {
		return nil, sheeterr.WrapWithCode(err, sheeterr.CodeUnauthenticated, "failed to refresh access token")
	}
	return tok, nil
}

func (p *GoogleProvider) userInfo(ctx context.Context, tok *oauth2.Token) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build userinfo request: %w", err)
	}

	resp, err := p.oauth.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, sheeterr.WrapWithCode(err, sheeterr.CodeUnavailable, "failed to fetch user info")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, sheeterr.Newf(sheeterr.CodeUnauthenticated, "user info request failed: %s %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var info struct {
		Sub   string `json:"sub"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	if info.Sub == "" {
		return nil, sheeterr.Unauthenticated("user info has no subject")
	}
	return &Identity{UserID: info.Sub, Email: info.Email}, nil
}
