// Package auth manages cookie sessions and exposes the signed-in user to
// request handlers via context.
package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// Session value keys.
const (
	isAuthKey    = "is_authenticated"
	sessionIDKey = "session_id"
	userIDKey    = "user_id"
	userNameKey  = "user_name"
	userEmailKey = "user_email"
)

// SessionUser is what we cache in the session and inject into r.Context().
type SessionUser struct {
	ID    string
	Name  string
	Email string
}

// UserFetcher loads fresh user data for a session on each request, so
// profile changes and deleted accounts take effect immediately. Returning
// nil invalidates the session for that request.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) *SessionUser
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// Remember-me cookie: an encoded user ID that outlives the session cookie
// so returning users are signed back in without a password prompt.
const (
	rememberCookieName = "markhold-remember"
	rememberMaxAge     = 30 * 24 * 60 * 60 // seconds
)

// SessionManager owns the cookie store and the middleware around it.
// Construct once at startup and share.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	sc      *securecookie.SecureCookie
	secure  bool
	fetcher UserFetcher
	log     *zap.Logger
}

// NewSessionManager builds a cookie-backed session manager.
//
// In production (secure=true) cookies are Secure with SameSite=None so the
// browser extension can send them on cross-origin capture requests. Local
// dev over plain http uses Lax so cookies are accepted at all.
func NewSessionManager(sessionKey, sessionName, domain string, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{
		store:  store,
		name:   sessionName,
		sc:     securecookie.New([]byte(sessionKey), nil),
		secure: secure,
		log:    logger,
	}, nil
}

// SetUserFetcher makes LoadSessionUser refresh user data from the database
// on every request instead of trusting the cookie's cached copy.
func (m *SessionManager) SetUserFetcher(f UserFetcher) { m.fetcher = f }

// SignIn establishes a session for the user. Each sign-in mints a new
// session ID so old cookie values cannot be replayed across logins.
func (m *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, u *SessionUser) error {
	sess, _ := m.store.Get(r, m.name)
	sess.Values[isAuthKey] = true
	sess.Values[sessionIDKey] = uuid.NewString()
	sess.Values[userIDKey] = u.ID
	sess.Values[userNameKey] = u.Name
	sess.Values[userEmailKey] = u.Email
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	m.log.Info("user signed in", zap.String("user_id", u.ID))
	return nil
}

// SetRememberMe issues the long-lived remember-me cookie for the user.
func (m *SessionManager) SetRememberMe(w http.ResponseWriter, userID string) {
	encoded, err := m.sc.Encode(rememberCookieName, userID)
	if err != nil {
		m.log.Warn("remember-me encode failed", zap.Error(err))
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     rememberCookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   rememberMaxAge,
		Secure:   m.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// rememberedUserID decodes the remember-me cookie, returning "" when it is
// absent or fails authentication.
func (m *SessionManager) rememberedUserID(r *http.Request) string {
	c, err := r.Cookie(rememberCookieName)
	if err != nil {
		return ""
	}
	var userID string
	if err := m.sc.Decode(rememberCookieName, c.Value, &userID); err != nil {
		return ""
	}
	return userID
}

// SignOut clears the session cookie and the remember-me cookie.
func (m *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, &http.Cookie{
		Name:     rememberCookieName,
		Path:     "/",
		MaxAge:   -1,
		Secure:   m.secure,
		HttpOnly: true,
	})
	sess, _ := m.store.Get(r, m.name)
	sess.Values = map[any]any{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// CurrentUser returns the signed-in user from context and a found flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// LoadSessionUser injects the user into context if they are logged in.
// With a UserFetcher configured, the user is re-fetched so stale cookie
// data never wins; a fetch miss (deleted account) leaves the request
// anonymous. Absence of a session is not an error.
//
// When the session cookie is gone but a valid remember-me cookie is
// present, the session is re-established from it.
func (m *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := m.store.Get(r, m.name)

		if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
			u := &SessionUser{
				ID:    getString(sess, userIDKey),
				Name:  getString(sess, userNameKey),
				Email: getString(sess, userEmailKey),
			}
			if m.fetcher != nil {
				u = m.fetcher.FetchUser(r.Context(), u.ID)
			}
			if u != nil && u.ID != "" {
				r = withUser(r, u)
			}
		} else if userID := m.rememberedUserID(r); userID != "" && m.fetcher != nil {
			if u := m.fetcher.FetchUser(r.Context(), userID); u != nil {
				if err := m.SignIn(w, r, u); err != nil {
					m.log.Warn("remember-me re-sign-in failed", zap.Error(err))
				}
				r = withUser(r, u)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn ensures there is a user in context (set by
// LoadSessionUser) and answers 401 JSON otherwise. All markhold surfaces
// are JSON APIs, so there is no redirect variant.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Unauthorized","message":"Please log in"}`))
	})
}

// WithTestUser injects a user into the request context, bypassing the
// session middleware. Test use only.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// getString safely extracts a string from a session value.
func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}
