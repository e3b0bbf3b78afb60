package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/defcomm/internal/common"
	"github.com/go-playground/validator/v10"
)

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errorResponse struct {
	Message string       `json:"message"`
	Errors  []fieldError `json:"errors,omitempty"`
	Stack   string       `json:"stack,omitempty"`
}

// validationError carries per-field messages to writeError.
type validationError struct {
	fields []fieldError
}

func (e *validationError) Error() string { return "Validation failed" }

func (e *validationError) Unwrap() error { return common.ErrorValidation }

func invalidField(field, message string) *validationError {
	return &validationError{fields: []fieldError{{Field: field, Message: message}}}
}

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// fieldMessages holds the user-facing text per "<json field>.<tag>".
var fieldMessages = map[string]string{
	"username.required":      "Username is required",
	"username.min":           "Username must be between 3 and 30 characters",
	"username.max":           "Username must be between 3 and 30 characters",
	"username.username":      "Username can only contain letters, numbers, and underscores",
	"password.required":      "Password is required",
	"password.min":           "Password must be at least 6 characters",
	"password.max":           "Password must be at most 72 characters",
	"role.oneof":             "Role must be either user or hq",
	"status.oneof":           "Status must be pending, approved or rejected",
	"name.required":          "Group name is required",
	"name.max":               "Group name cannot exceed 100 characters",
	"members.gt":             "Invalid user ID",
	"userId.required":        "Invalid user ID",
	"userId.gt":              "Invalid user ID",
	"encryptedText.required": "Encrypted message text is required",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return v
}

func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &validationError{fields: make([]fieldError, 0, len(verrs))}
	for _, fe := range verrs {
		field, _, _ := strings.Cut(fe.Field(), "[")
		msg, ok := fieldMessages[field+"."+fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("Invalid value for %s", field)
		}
		out.fields = append(out.fields, fieldError{Field: fe.Field(), Message: msg})
	}
	return out
}

// decodeJSON reads the body into dst, normalizes and validates it.
func (s *Server) decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return errBodyTooLarge
		case errors.Is(err, io.EOF):
			// empty body validates as the zero value
		default:
			return common.NewError(common.ErrorValidation, "Invalid JSON body")
		}
	}
	if n, ok := dst.(interface{ normalize() }); ok {
		n.normalize()
	}
	if err := s.validate.Struct(dst); err != nil {
		return toValidationError(err)
	}
	return nil
}

var errBodyTooLarge = common.NewError(common.ErrorValidation, "Request entity too large")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// writeError is the single place where errors become HTTP responses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: verr.Error(), Errors: verr.fields})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errBodyTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, common.ErrorValidation),
		errors.Is(err, common.ErrorAlreadyExists),
		errors.Is(err, common.ErrSelfAction):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrorUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, common.ErrorForbidden), errors.Is(err, common.ErrorRejected):
		status = http.StatusForbidden
	case errors.Is(err, common.ErrorNotFound):
		status = http.StatusNotFound
	}

	if status != http.StatusInternalServerError {
		writeJSON(w, status, errorResponse{Message: err.Error()})
		return
	}

	args := []any{"error", err.Error(), "path", r.URL.Path, "request_id", RequestIDFromContext(r.Context())}
	if u, ok := UserFromContext(r.Context()); ok {
		args = append(args, "user_id", u.ID)
	}
	s.logger.Error(r.Context(), "request failed", args...)
	resp := errorResponse{Message: "Internal Server Error"}
	if !s.config.IsProduction() {
		resp.Stack = err.Error()
	}
	writeJSON(w, status, resp)
}
