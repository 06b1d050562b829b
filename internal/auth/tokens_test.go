package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/aionia-sheet/internal/auth"
	sheeterr "github.com/KirkDiggler/aionia-sheet/internal/errors"
	mockuuid "github.com/KirkDiggler/aionia-sheet/internal/uuid/mock"
)

var testSecret = []byte(strings.Repeat("s", 32))

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func newTokens(t *testing.T, c *clock) *auth.Tokens {
	t.Helper()
	ctrl := gomock.NewController(t)
	gen := mockuuid.NewMockGenerator(ctrl)
	gen.EXPECT().New().Return("nonce-1").AnyTimes()

	tokens, err := auth.NewTokens(&auth.TokensConfig{Secret: testSecret, UUIDGenerator: gen, Now: c.Now})
	require.NoError(t, err)
	return tokens
}

func TestNewTokens_RejectsShortSecret(t *testing.T) {
	_, err := auth.NewTokens(&auth.TokensConfig{Secret: []byte("short")})
	assert.True(t, sheeterr.IsInvalidArgument(err))

	_, err = auth.NewTokens(nil)
	assert.True(t, sheeterr.IsInvalidArgument(err))
}

func TestState_RoundTrip(t *testing.T) {
	c := &clock{t: time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)}
	tokens := newTokens(t, c)

	state, err := tokens.NewState("/characters")
	require.NoError(t, err)

	got, err := tokens.ParseState(state)
	require.NoError(t, err)
	assert.Equal(t, &auth.State{Nonce: "nonce-1", Redirect: "/characters"}, got)
}

func TestState_Expires(t *testing.T) {
	c := &clock{t: time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)}
	tokens := newTokens(t, c)

	state, err := tokens.NewState("")
	require.NoError(t, err)

	c.t = c.t.Add(auth.StateTTL + time.Second)
	_, err = tokens.ParseState(state)
	assert.True(t, sheeterr.IsUnauthenticated(err))
}

func TestState_Tampered(t *testing.T) {
	c := &clock{t: time.Now()}
	tokens := newTokens(t, c)

	state, err := tokens.NewState("/x")
	require.NoError(t, err)

	_, err = tokens.ParseState(state[:len(state)-2] + "xx")
	assert.True(t, sheeterr.IsUnauthenticated(err))

	other, err := auth.NewTokens(&auth.TokensConfig{Secret: []byte(strings.Repeat("o", 32)), Now: c.Now})
	require.NoError(t, err)
	_, err = other.ParseState(state)
	assert.True(t, sheeterr.IsUnauthenticated(err))
}

func TestSession_RoundTrip(t *testing.T) {
	c := &clock{t: time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)}
	tokens := newTokens(t, c)

	cookie, err := tokens.NewSession("sess-42", c.t.Add(time.Hour))
	require.NoError(t, err)

	id, err := tokens.ParseSession(cookie)
	require.NoError(t, err)
	assert.Equal(t, "sess-42", id)

	c.t = c.t.Add(2 * time.Hour)
	_, err = tokens.ParseSession(cookie)
	assert.True(t, sheeterr.IsUnauthenticated(err))
}

func TestSession_StateIsNotASession(t *testing.T) {
	c := &clock{t: time.Now()}
	tokens := newTokens(t, c)

	state, err := tokens.NewState("/")
	require.NoError(t, err)

	_, err = tokens.ParseSession(state)
	assert.True(t, sheeterr.IsUnauthenticated(err))
}
