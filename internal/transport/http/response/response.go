package response

import (
	"errors"
	"net/http"

	"go-auth-api/internal/domain"
)

type Resp struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

// New keeps data non-null in the payload.
func New(code int, msg string, data interface{}) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

func OK(data interface{}) Resp {
	return New(CodeOK, CodeMsgMap[CodeOK], data)
}

func Error(code int, customMsg string) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return New(code, msg, struct{}{})
}

// FromErr maps the domain error taxonomy to (http status, envelope).
// Anything unrecognized becomes a generic 500 without leaking internals.
func FromErr(err error) (int, Resp) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, Error(CodeInvalidCredentials, "")
	case errors.Is(err, domain.ErrTwoFactorRequired):
		return http.StatusUnauthorized, Error(CodeTwoFactorRequired, "")
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, Error(CodeInvalidToken, "")
	case errors.Is(err, domain.ErrTokenReuseDetected):
		return http.StatusUnauthorized, Error(CodeTokenReuse, "")
	case errors.Is(err, domain.ErrAccountBlocked):
		return http.StatusForbidden, Error(CodeAccountBlocked, "")
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, Error(CodeNotFound, "")
	case errors.Is(err, domain.ErrEmailTaken):
		return http.StatusBadRequest, Error(CodeBadRequest, "email already registered")
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, Error(CodeBadRequest, "")
	default:
		return http.StatusInternalServerError, Error(CodeServerError, "")
	}
}
