// Package gqltest provides an in-process GraphQL endpoint for exercising the
// gateway client in tests. It dispatches on operation name and records every
// request it sees; it is a fixture, not a server implementation.
package gqltest

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
)

var operationName = regexp.MustCompile(`\b(?:query|mutation)\s+([A-Za-z0-9_]+)`)

// Request is one request as received by the endpoint.
type Request struct {
	Operation string
	Query     string
	Variables map[string]any
	// Bearer is the token from the Authorization header, "" when absent.
	Bearer string
}

// HandlerFunc produces the data object for one operation, or an error that
// is rendered on the GraphQL errors array.
type HandlerFunc func(req Request) (map[string]any, error)

// Server is the stub endpoint.
type Server struct {
	mu       sync.Mutex
	handlers map[string]HandlerFunc
	requests []Request
	srv      *httptest.Server
}

// NewServer starts the endpoint on an ephemeral port.
func NewServer() *Server {
	s := &Server{handlers: make(map[string]HandlerFunc)}

	e := echo.New()
	e.HideBanner = true
	e.POST("/graphql", s.handle)

	s.srv = httptest.NewServer(e)
	return s
}

// URL returns the endpoint URL to hand to the gateway client.
func (s *Server) URL() string {
	return s.srv.URL + "/graphql"
}

// Close shuts the endpoint down.
func (s *Server) Close() {
	s.srv.Close()
}

// Handle registers fn for the named operation (e.g. "Shipments", "Login").
func (s *Server) Handle(operation string, fn HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[operation] = fn
}

// Requests returns a copy of every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) handle(c echo.Context) error {
	var body struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	req := Request{
		Operation: opName(body.Query),
		Query:     body.Query,
		Variables: body.Variables,
		Bearer:    bearer(c.Request().Header.Get("Authorization")),
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	fn, ok := s.handlers[req.Operation]
	s.mu.Unlock()

	if !ok {
		return c.JSON(http.StatusOK, map[string]any{
			"errors": []map[string]any{{"message": "unhandled operation " + req.Operation}},
		})
	}

	data, err := fn(req)
	if err != nil {
		return c.JSON(http.StatusOK, map[string]any{
			"errors": []map[string]any{{"message": err.Error()}},
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"data": data})
}

func opName(query string) string {
	m := operationName.FindStringSubmatch(query)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

func bearer(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
