// Package lambda runs the API handler inside a Netlify function.
package lambda

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
)

const functionsPrefix = "/.netlify/functions/"

// Adapter rewrites function paths onto API routes and proxies the event to an http.Handler
type Adapter struct {
	proxy *httpadapter.HandlerAdapter
}

// NewAdapter wraps handler
func NewAdapter(handler http.Handler) *Adapter {
	if handler == nil {
		panic("handler is required")
	}
	return &Adapter{proxy: httpadapter.New(handler)}
}

// Handle serves one event. Netlify delivers the API Gateway v1 proxy shape.
func (a *Adapter) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	event.Path = APIPath(event.Path)

	resp, err := a.proxy.ProxyWithContext(ctx, event)
	if err != nil {
		log.Printf("Lambda: rejecting %s %s: %v", event.HTTPMethod, event.Path, err)
		return errResp(http.StatusBadRequest, "invalid request"), nil
	}
	return resp, nil
}

// APIPath maps a function path onto the API route it serves.
// Function names use dashes for nesting, so auth-login serves /api/auth/login.
func APIPath(path string) string {
	if !strings.HasPrefix(path, functionsPrefix) {
		return path
	}
	name, rest, _ := strings.Cut(strings.TrimPrefix(path, functionsPrefix), "/")
	if sub, ok := strings.CutPrefix(name, "auth-"); ok {
		name = "auth/" + sub
	}
	if rest != "" {
		return "/api/" + name + "/" + rest
	}
	return "/api/" + name
}

func errResp(code int, msg string) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(map[string]string{"error": msg})
	return events.APIGatewayProxyResponse{
		StatusCode: code,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}
