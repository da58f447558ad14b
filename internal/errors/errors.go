package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an authentication failure. Each kind maps to one HTTP status.
type Kind string

const (
	KindClientInvalid       Kind = "ClientInvalid"
	KindClientSecretMissing Kind = "ClientSecretMissing"
	KindClientUserMissing   Kind = "ClientUserMissing"
	KindCodeExpired         Kind = "CodeExpired"
	KindInvalidCredentials  Kind = "InvalidCredentials"
	KindTokenExpired        Kind = "TokenExpired"
	KindTokenInvalid        Kind = "TokenInvalid"
	KindTokenMissing        Kind = "TokenMissing"
	KindNotAllowedAccess    Kind = "NotAllowedAccess"
	KindPasswordInvalid     Kind = "PasswordInvalid"
	KindUserDoesNotExist    Kind = "UserDoesNotExist"
	KindUserInactive        Kind = "UserInactive"
	KindUserNotActive       Kind = "UserNotActive"
	KindUnableToSetPassword Kind = "UnableToSetPassword"
)

// Error is a classified failure. Two errors match under errors.Is when their kinds match.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newError(kind Kind, status int, message string) *Error {
	return &Error{Kind: kind, Status: status, Message: message}
}

var (
	ErrClientInvalid       = newError(KindClientInvalid, http.StatusUnauthorized, "Client Invalid")
	ErrClientSecretMissing = newError(KindClientSecretMissing, http.StatusBadRequest, "Client Secret Missing")
	ErrClientUserMissing   = newError(KindClientUserMissing, http.StatusUnprocessableEntity, "Client User Missing")
	ErrCodeExpired         = newError(KindCodeExpired, http.StatusUnauthorized, "Code Expired")
	ErrInvalidCredentials  = newError(KindInvalidCredentials, http.StatusUnauthorized, "Invalid Credentials")
	ErrTokenExpired        = newError(KindTokenExpired, http.StatusUnauthorized, "Token Expired")
	ErrTokenInvalid        = newError(KindTokenInvalid, http.StatusUnauthorized, "Token Invalid")
	ErrTokenMissing        = newError(KindTokenMissing, http.StatusUnprocessableEntity, "Token Missing")
	ErrNotAllowedAccess    = newError(KindNotAllowedAccess, http.StatusForbidden, "Not Allowed Access")
	ErrPasswordInvalid     = newError(KindPasswordInvalid, http.StatusBadRequest, "Password Invalid")
	ErrUserDoesNotExist    = newError(KindUserDoesNotExist, http.StatusUnauthorized, "User Does Not Exist")
	ErrUserInactive        = newError(KindUserInactive, http.StatusUnauthorized, "User Inactive")
	ErrUserNotActive       = newError(KindUserNotActive, http.StatusBadRequest, "User not active yet")
	ErrUnableToSetPassword = newError(KindUnableToSetPassword, http.StatusUnprocessableEntity, "Unable to set password !")
)

// WithMessage copies a classified error with a different message.
func WithMessage(err *Error, message string) *Error {
	c := *err
	c.Message = message
	return &c
}

// WithCause attaches an underlying error to a copy of a classified error.
func WithCause(err *Error, cause error) *Error {
	c := *err
	c.Err = cause
	return &c
}

// IsClassified reports whether err carries a Kind.
func IsClassified(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

// StatusCode returns the HTTP status of a classified error, or 500.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}
