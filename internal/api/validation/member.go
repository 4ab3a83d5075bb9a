package validation

import (
	"errors"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Messages returned with 400 responses.
const (
	MsgRequiredFields   = "Name, role and portfolio are required"
	MsgFieldsTooLong    = "Name and role must be at most 255 characters"
	MsgInvalidPortfolio = "Please enter a valid portfolio URL (include https://)"
)

// AddMemberRequest mirrors the fields needed for add-member validation.
// max counts characters, not bytes.
type AddMemberRequest struct {
	Name      string `json:"name" validate:"required,max=255"`
	Role      string `json:"role" validate:"required,max=255"`
	Portfolio string `json:"portfolio" validate:"required,absurl"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("absurl", func(fl validator.FieldLevel) bool {
		return IsAbsoluteURL(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// ValidateAddMemberRequest validates the trimmed fields of an add-member
// request. Failures are reported one class at a time: missing fields, then
// overlong fields, then the portfolio URL. An empty message means valid.
func ValidateAddMemberRequest(req AddMemberRequest) (string, []FieldError) {
	trimmed := AddMemberRequest{
		Name:      strings.TrimSpace(req.Name),
		Role:      strings.TrimSpace(req.Role),
		Portfolio: strings.TrimSpace(req.Portfolio),
	}

	err := validate.Struct(trimmed)
	if err == nil {
		return "", nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return MsgRequiredFields, nil
	}

	byTag := make(map[string][]FieldError)
	for _, fe := range verrs {
		byTag[fe.Tag()] = append(byTag[fe.Tag()], FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}

	switch {
	case len(byTag["required"]) > 0:
		return MsgRequiredFields, byTag["required"]
	case len(byTag["max"]) > 0:
		return MsgFieldsTooLong, byTag["max"]
	default:
		return MsgInvalidPortfolio, byTag["absurl"]
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	case "absurl":
		return fe.Field() + " must be an absolute URL"
	default:
		return fe.Field() + " is invalid"
	}
}

// IsAbsoluteURL reports whether s parses as a URL with a scheme and a host.
func IsAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}
