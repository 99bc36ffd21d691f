package logout_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/markhold/markhold/internal/app/features/logout"
	"github.com/markhold/markhold/internal/app/system/auth"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) *logout.Handler {
	t.Helper()
	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return logout.NewHandler(sessionMgr, zap.NewNop())
}

func TestHandleLogout_ClearsCookies(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest("POST", "/logout", nil)
	rec := httptest.NewRecorder()
	handler.HandleLogout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), `"success":true`) {
		t.Errorf("body = %s, want success true", rec.Body.String())
	}

	cleared := map[string]bool{}
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			cleared[c.Name] = true
		}
	}
	for _, name := range []string{"test-session", "markhold-remember"} {
		if !cleared[name] {
			t.Errorf("cookie %q was not cleared (cleared: %v)", name, cleared)
		}
	}
}

func TestHandleLogout_AnonymousIsStillSuccess(t *testing.T) {
	handler := newTestHandler(t)

	// No cookies at all on the request.
	rec := httptest.NewRecorder()
	handler.HandleLogout(rec, httptest.NewRequest("POST", "/logout", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}
