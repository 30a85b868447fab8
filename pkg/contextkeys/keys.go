package contextkeys

type contextKey string

const (
	PrincipalKey contextKey = "Principal"
	TokenKey     contextKey = "RawToken"
	RequestIDKey contextKey = "RequestID"
	ClientKey    contextKey = "Client"
)
