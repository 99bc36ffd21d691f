package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiter_AllowsUpToLimit(t *testing.T) {
	l := New(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !l.Allow("key") {
			t.Fatalf("attempt %d blocked, want the first 3 allowed", i+1)
		}
	}
	if l.Allow("key") {
		t.Error("attempt 4 allowed, want blocked")
	}
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	l := New(1, time.Minute)

	if !l.Allow("a") {
		t.Fatal("first attempt for key a blocked")
	}
	if !l.Allow("b") {
		t.Error("first attempt for key b blocked by key a's window")
	}
}

func TestLimiter_WindowExpires(t *testing.T) {
	l := New(1, 10*time.Millisecond)

	if !l.Allow("key") {
		t.Fatal("first attempt blocked")
	}
	if l.Allow("key") {
		t.Fatal("second attempt inside window allowed")
	}

	time.Sleep(20 * time.Millisecond)
	if !l.Allow("key") {
		t.Error("attempt after window expiry blocked")
	}
}

func TestLimiter_Reset(t *testing.T) {
	l := New(1, time.Minute)

	l.Allow("key")
	if l.Allow("key") {
		t.Fatal("second attempt allowed before reset")
	}
	l.Reset("key")
	if !l.Allow("key") {
		t.Error("attempt after reset blocked")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xri        string
		want       string
	}{
		{"remote addr with port", "10.0.0.1:4321", "", "", "10.0.0.1"},
		{"x-forwarded-for wins", "10.0.0.1:4321", "203.0.113.7, 10.0.0.2", "", "203.0.113.7"},
		{"x-real-ip fallback", "10.0.0.1:4321", "", "203.0.113.8", "203.0.113.8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/login", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAccountLimiter_EmailWindowIsCaseInsensitive(t *testing.T) {
	al := NewAccountLimiterWithConfig(100, time.Minute, 2, time.Minute)

	r := httptest.NewRequest("POST", "/login", nil)
	r.RemoteAddr = "10.0.0.1:1000"

	if ok, _ := al.Check(r, "user@example.com"); !ok {
		t.Fatal("attempt 1 blocked")
	}
	if ok, _ := al.Check(r, "USER@example.com"); !ok {
		t.Fatal("attempt 2 (different case) blocked")
	}
	if ok, _ := al.Check(r, "User@Example.com"); ok {
		t.Error("attempt 3 allowed; case variants should share one window")
	}
}

func TestAccountLimiter_IPWindowCoversAllEmails(t *testing.T) {
	al := NewAccountLimiterWithConfig(2, time.Minute, 100, time.Minute)

	r := httptest.NewRequest("POST", "/login", nil)
	r.RemoteAddr = "10.0.0.1:1000"

	al.Check(r, "a@example.com")
	al.Check(r, "b@example.com")
	if ok, reason := al.Check(r, "c@example.com"); ok {
		t.Error("third attempt from one IP allowed, want blocked")
	} else if reason == "" {
		t.Error("blocked attempt carries no reason")
	}

	// A different IP is unaffected.
	other := httptest.NewRequest("POST", "/login", nil)
	other.RemoteAddr = "10.0.0.2:1000"
	if ok, _ := al.Check(other, "a@example.com"); !ok {
		t.Error("attempt from a fresh IP blocked")
	}
}

func TestAccountLimiter_ResetEmail(t *testing.T) {
	al := NewAccountLimiterWithConfig(100, time.Minute, 1, time.Minute)

	r := httptest.NewRequest("POST", "/login", nil)
	r.RemoteAddr = "10.0.0.1:1000"

	al.Check(r, "user@example.com")
	if ok, _ := al.Check(r, "user@example.com"); ok {
		t.Fatal("second attempt allowed before reset")
	}
	al.ResetEmail("USER@example.com")
	if ok, _ := al.Check(r, "user@example.com"); !ok {
		t.Error("attempt after ResetEmail blocked; reset should fold case too")
	}
}
