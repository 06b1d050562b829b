package lambda_test

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/aionia-sheet/internal/handlers/lambda"
)

func TestAPIPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "/.netlify/functions/list-characters", want: "/api/list-characters"},
		{in: "/.netlify/functions/auth-login", want: "/api/auth/login"},
		{in: "/.netlify/functions/get-character/extra", want: "/api/get-character/extra"},
		{in: "/api/save-character", want: "/api/save-character"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, lambda.APIPath(tt.in))
		})
	}
}

func TestHandle(t *testing.T) {
	var seen *http.Request
	var seenBody []byte
	adapter := lambda.NewAdapter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r
		seenBody, _ = io.ReadAll(r.Body)
		http.SetCookie(w, &http.Cookie{Name: "a", Value: "1"})
		http.SetCookie(w, &http.Cookie{Name: "b", Value: "2"})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))

	resp, err := adapter.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:            http.MethodPost,
		Path:                  "/.netlify/functions/save-character",
		Headers:               map[string]string{"Authorization": "Bearer t"},
		QueryStringParameters: map[string]string{"id": "c1"},
		Body:                  base64.StdEncoding.EncodeToString([]byte(`{"x":1}`)),
		IsBase64Encoded:       true,
	})
	require.NoError(t, err)

	require.NotNil(t, seen)
	assert.Equal(t, http.MethodPost, seen.Method)
	assert.Equal(t, "/api/save-character", seen.URL.Path)
	assert.Equal(t, "c1", seen.URL.Query().Get("id"))
	assert.Equal(t, "Bearer t", seen.Header.Get("Authorization"))
	assert.Equal(t, `{"x":1}`, string(seenBody))

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, `{"ok":true}`, resp.Body)
	assert.False(t, resp.IsBase64Encoded)
	assert.Equal(t, []string{"a=1", "b=2"}, resp.MultiValueHeaders["Set-Cookie"])
}

func TestHandle_MultiValueQuery(t *testing.T) {
	var seen *http.Request
	adapter := lambda.NewAdapter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r
		w.WriteHeader(http.StatusNoContent)
	}))

	resp, err := adapter.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:                      http.MethodDelete,
		Path:                            "/.netlify/functions/delete-image",
		MultiValueQueryStringParameters: map[string][]string{"key": {"k1"}},
		MultiValueHeaders:               map[string][]string{"Cookie": {"aionia_session=s"}},
	})
	require.NoError(t, err)

	require.NotNil(t, seen)
	assert.Equal(t, "/api/delete-image", seen.URL.Path)
	assert.Equal(t, "k1", seen.URL.Query().Get("key"))
	c, err := seen.Cookie("aionia_session")
	require.NoError(t, err)
	assert.Equal(t, "s", c.Value)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestHandle_BinaryResponse(t *testing.T) {
	zipBytes := []byte{0x50, 0x4b, 0x03, 0x04, 0xff, 0xfe, 0x00}
	adapter := lambda.NewAdapter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write(zipBytes)
	}))

	resp, err := adapter.Handle(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, Path: "/api/x"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, resp.IsBase64Encoded)
	assert.Equal(t, base64.StdEncoding.EncodeToString(zipBytes), resp.Body)
}

func TestHandle_BadBase64(t *testing.T) {
	adapter := lambda.NewAdapter(http.NotFoundHandler())

	resp, err := adapter.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:      http.MethodPost,
		Path:            "/api/save-character",
		Body:            "%%%",
		IsBase64Encoded: true,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":"invalid request"}`, resp.Body)
}
