// Package validator wires go-playground/validator into echo's binding flow.
package validator

import (
	domainerrors "cliphub/internal/domain/errors"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// CustomValidator adapts go-playground/validator to echo.Validator.
type CustomValidator struct {
	validate *validator.Validate
}

// New creates the validator used for request DTOs.
func New() echo.Validator {
	return &CustomValidator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Validate checks struct tags and maps failures onto the validation error
// so the error middleware renders them consistently.
func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validate.Struct(i); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	return nil
}
