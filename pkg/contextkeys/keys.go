package contextkeys

type contextKey string

const (
	UserIDKey    contextKey = "UserID"
	UserKey      contextKey = "User"
	SessionIDKey contextKey = "SessionID"
	AuthViaKey   contextKey = "AuthVia"
)
