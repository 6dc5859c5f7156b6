package common

// AuthHeaderName is the HTTP header carrying the session bearer token.
const AuthHeaderName = "Authorization"

// AuthHeaderPrefix precedes the token value in AuthHeaderName.
const AuthHeaderPrefix = "Bearer "

// ZeroAccount is the null account sentinel. A token approval set to
// ZeroAccount means "no delegate"; a transfer to ZeroAccount is invalid.
const ZeroAccount = ""
