package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sandeepkv93/vibecraft-auth-service/internal/http/response"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/service"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Phone    string `json:"phone" validate:"required,max=32"`
	Password string `json:"password" validate:"required,max=128"`
	Role     string `json:"role" validate:"omitempty,max=32"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

type sendOTPRequest struct {
	Phone   string `json:"phone" validate:"required,max=32"`
	Purpose string `json:"purpose" validate:"omitempty,max=32"`
}

type verifyOTPRequest struct {
	Phone   string `json:"phone" validate:"required,max=32"`
	OTP     string `json:"otp" validate:"required,numeric,len=6"`
	Purpose string `json:"purpose" validate:"omitempty,max=32"`
}

type resetPasswordRequest struct {
	Phone    string `json:"phone" validate:"required,max=32"`
	Password string `json:"password" validate:"required,max=128"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAndValidate writes a 400 and returns false when the body is not valid
// JSON or fails struct validation.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			response.Error(w, r, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "request body too large", nil)
			return false
		}
		response.Error(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body", nil)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			response.Error(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request", nil)
			return false
		}
		details := make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			details[fe.Field()] = fieldMessage(fe)
		}
		code, message := validationSummary(fieldErrs)
		response.Error(w, r, http.StatusBadRequest, code, message, details)
		return false
	}
	return true
}

// validationSummary picks the envelope code and message. Missing fields keep
// the generic message; a malformed otp reads like a wrong code; anything else
// names the first offending field.
func validationSummary(fieldErrs validator.ValidationErrors) (string, string) {
	var first validator.FieldError
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			continue
		}
		if fe.Field() == "otp" {
			return service.ErrInvalidOTP.Code, service.ErrInvalidOTP.Message
		}
		if first == nil {
			first = fe
		}
	}
	if first == nil {
		return "VALIDATION_ERROR", "All fields are required."
	}
	return "VALIDATION_ERROR", first.Field() + " " + fieldMessage(first)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "numeric":
		return "must contain digits only"
	default:
		return "is invalid"
	}
}

// writeServiceError maps service error kinds onto HTTP statuses. Storage causes
// are logged by the caller and never echoed.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) int {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		return http.StatusInternalServerError
	}
	status := http.StatusInternalServerError
	switch svcErr.Kind {
	case service.KindValidation:
		status = http.StatusBadRequest
	case service.KindConflict:
		status = http.StatusConflict
	case service.KindNotFound:
		status = http.StatusNotFound
	case service.KindAuthentication:
		status = http.StatusUnauthorized
	}
	message := svcErr.Message
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	response.Error(w, r, status, svcErr.Code, message, nil)
	return status
}

func statusLabel(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return "error"
	case status >= http.StatusBadRequest:
		return "failure"
	default:
		return "success"
	}
}
