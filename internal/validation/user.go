package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"blogapi/internal/domain"
)

type UserValidator struct {
	validate *validator.Validate
}

func NewUserValidator() *UserValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	return &UserValidator{validate: v}
}

func (v *UserValidator) ValidateCreate(req domain.CreateUserRequest) error {
	return v.check(req)
}

func (v *UserValidator) ValidateUpdate(req domain.UpdateUserRequest) error {
	if req.Username == nil && req.Name == nil && req.Email == nil && req.Password == nil && req.IsAdmin == nil {
		return ErrEmptyUpdate
	}
	return v.check(req)
}

func (v *UserValidator) check(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate request: %w", err)
	}

	out := &ValidationError{Errors: make([]FieldError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Errors = append(out.Errors, FieldError{Field: fe.Field(), Err: tagError(fe.Tag())})
	}
	return out
}

func tagError(tag string) error {
	switch tag {
	case "required":
		return ErrRequired
	case "min":
		return ErrTooShort
	case "max":
		return ErrTooLong
	case "email":
		return ErrInvalidEmail
	default:
		return ErrInvalidValue
	}
}
