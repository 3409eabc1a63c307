package response

// Business codes follow HTTP semantics where one exists; auth-specific
// outcomes get their own 4xxx range so clients can tell them apart.
const (
	CodeOK           = 0
	CodeBadRequest   = 400
	CodeUnauthorized = 401
	CodeForbidden    = 403
	CodeNotFound     = 404
	CodeServerError  = 500

	CodeInvalidCredentials = 4010
	CodeInvalidToken       = 4011
	CodeTokenReuse         = 4012
	CodeTwoFactorRequired  = 4013
	CodeAccountBlocked     = 4030
)

var CodeMsgMap = map[int]string{
	CodeOK:           "OK",
	CodeBadRequest:   "Bad Request",
	CodeUnauthorized: "Unauthorized",
	CodeForbidden:    "Forbidden",
	CodeNotFound:     "Not Found",
	CodeServerError:  "Internal Server Error",

	CodeInvalidCredentials: "Invalid Credentials",
	CodeInvalidToken:       "Invalid Token",
	CodeTokenReuse:         "Token Reuse Detected",
	CodeTwoFactorRequired:  "Two-Factor Code Required",
	CodeAccountBlocked:     "Account Blocked",
}
