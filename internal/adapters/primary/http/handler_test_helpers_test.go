package http

import (
	"context"
	"io"
	"log/slog"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	mw "github.com/quickdesk/helpdesk-backend/internal/adapters/primary/http/middleware"
	"github.com/quickdesk/helpdesk-backend/internal/auth"
)

// testLogger discards everything; handler tests assert on responses, not logs.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// authedRequest builds a request carrying claims for the given user, the way
// the JWT middleware would after validating a token.
func authedRequest(t *testing.T, method, target string, body string, userID uuid.UUID, role string) *stdhttp.Request {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	claims := &auth.Claims{UserID: userID, Role: role}
	ctx := context.WithValue(req.Context(), mw.UserClaimsKey, claims)
	return req.WithContext(ctx)
}
