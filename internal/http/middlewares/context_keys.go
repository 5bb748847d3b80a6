package middlewares

// gin context keys
const (
	CtxRequestID = "request_id"
	ctxUserKey   = "auth.user"
	ctxUserIDKey = "auth.userID"
)
