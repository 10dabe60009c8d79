package service

import "fmt"

type ErrorKind string

const (
	KindValidation     ErrorKind = "validation"
	KindConflict       ErrorKind = "conflict"
	KindNotFound       ErrorKind = "not_found"
	KindAuthentication ErrorKind = "authentication"
	KindStorage        ErrorKind = "storage"
)

// Error is the single error type returned by the auth service. Kind drives the
// transport status, Code is a stable machine-readable identifier and Message is
// safe to show to end users.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on kind, and also on code when the target carries one, so that
// errors.Is(err, ErrValidation) and errors.Is(err, ErrInvalidOTP) both work.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

var (
	ErrValidation     = &Error{Kind: KindValidation}
	ErrConflict       = &Error{Kind: KindConflict}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrAuthentication = &Error{Kind: KindAuthentication}
	ErrStorage        = &Error{Kind: KindStorage}
)

var (
	ErrWeakPassword       = &Error{Kind: KindValidation, Code: "WEAK_PASSWORD", Message: "Password must be 8+ chars with uppercase and number"}
	ErrInvalidOTP         = &Error{Kind: KindValidation, Code: "INVALID_OTP", Message: "Invalid or expired OTP."}
	ErrExpiredOTP         = &Error{Kind: KindValidation, Code: "OTP_EXPIRED", Message: "OTP expired. Request new one."}
	ErrVerifyOTPFirst     = &Error{Kind: KindValidation, Code: "OTP_NOT_VERIFIED", Message: "Verify OTP first."}
	ErrDuplicateAccount   = &Error{Kind: KindConflict, Code: "CONFLICT", Message: "Username, email, or phone already exists."}
	ErrUserNotFound       = &Error{Kind: KindNotFound, Code: "USER_NOT_FOUND", Message: "User not found."}
	ErrPhoneNotRegistered = &Error{Kind: KindNotFound, Code: "PHONE_NOT_REGISTERED", Message: "Phone number not registered."}
	ErrIncorrectPassword  = &Error{Kind: KindAuthentication, Code: "INVALID_CREDENTIALS", Message: "Incorrect password."}
	ErrSessionInvalid     = &Error{Kind: KindAuthentication, Code: "UNAUTHORIZED", Message: "Session is invalid or expired."}
)

func validationError(msg string) *Error {
	return &Error{Kind: KindValidation, Code: "VALIDATION_ERROR", Message: msg}
}

func roleMismatchError(actualRole string) *Error {
	return &Error{
		Kind:    KindAuthentication,
		Code:    "ROLE_MISMATCH",
		Message: fmt.Sprintf("This account is for %s role.", upperRole(actualRole)),
	}
}

func storageError(err error) *Error {
	return &Error{Kind: KindStorage, Code: "INTERNAL", Message: "internal error", Err: err}
}
