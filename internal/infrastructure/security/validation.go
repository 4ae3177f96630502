package security

import (
	stderrors "errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/alchemorsel/cookbook/internal/domain/planner"
	"github.com/alchemorsel/cookbook/pkg/errors"
	"github.com/go-playground/validator/v10"
)

// Validator validates request DTOs with struct tags
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator reporting fields by their JSON name
func NewValidator() *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	// Registration only fails on an empty tag or nil func
	_ = validate.RegisterValidation("meal_slot", validateMealSlot)
	_ = validate.RegisterValidation("safe_filename", validateSafeFilename)

	return &Validator{validate: validate}
}

// Struct validates s and returns a VALIDATION_FAILED error listing every field
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.NewValidationError(err.Error())
	}

	out := make([]errors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, errors.ValidationError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: message(fe),
		})
	}
	return errors.NewValidationErrors(out)
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "uuid":
		return fmt.Sprintf("%s must be a valid id", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, fe.Param())
	case "meal_slot":
		return planner.ErrInvalidSlot.Error()
	case "safe_filename":
		return fmt.Sprintf("%s is not a valid file name", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func validateMealSlot(fl validator.FieldLevel) bool {
	_, err := planner.ParseSlot(fl.Field().String())
	return err == nil
}

func validateSafeFilename(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if name == "" || len(name) > 255 {
		return false
	}
	if strings.ContainsAny(name, "/\\\x00") || name == "." || name == ".." {
		return false
	}
	return filepath.Base(name) == name
}
