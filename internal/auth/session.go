package auth

// SessionCookieName is the cookie carrying the session token for browser
// clients. API clients send the same token as a bearer header instead.
const SessionCookieName = "lessond_session"

// SessionData represents the authenticated session context for a request
type SessionData struct {
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	IsAdmin    bool   `json:"is_admin"`
	AuthMethod string `json:"auth_method"` // "bearer", "cookie"
}
