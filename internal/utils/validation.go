package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"patient-portal-server/internal/apperr"
	"patient-portal-server/internal/config"
)

var validate = validator.New()

var passwordMinLength = 8

// RegisterValidators installs the custom tags on both the package validator
// and gin's binding validator, and reports fields by their JSON names.
func RegisterValidators(policy config.PasswordPolicy) error {
	if policy.MinLength > 0 {
		passwordMinLength = policy.MinLength
	}

	engines := []*validator.Validate{validate}
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		engines = append(engines, v)
	}
	for _, v := range engines {
		v.RegisterTagNameFunc(jsonFieldName)
		if err := v.RegisterValidation("password_policy", validatePasswordPolicy); err != nil {
			return fmt.Errorf("register password_policy: %w", err)
		}
	}
	return nil
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

func validatePasswordPolicy(fl validator.FieldLevel) bool {
	return PasswordMeetsPolicy(fl.Field().String(), passwordMinLength)
}

// PasswordMeetsPolicy checks the sign-up password rules: a minimum length
// and at least one upper case letter, lower case letter, digit and symbol.
func PasswordMeetsPolicy(password string, minLength int) bool {
	if len([]rune(password)) < minLength {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	return upper && lower && digit && special
}

// Validate performs validation on a struct.
func Validate(s interface{}) error {
	return validate.Struct(s)
}

// FormatValidationError turns validator errors into per-field messages.
func FormatValidationError(err error) map[string]string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return nil
	}
	fields := make(map[string]string, len(errs))
	for _, e := range errs {
		fields[e.Field()] = fieldMessage(e)
	}
	return fields
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + e.Param() + " characters"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "oneof":
		return "must be one of " + e.Param()
	case "password_policy":
		return fmt.Sprintf("must be at least %d characters with upper and lower case letters, a number and a special character", passwordMinLength)
	}
	return "is invalid"
}

// BindAndValidate binds the request body to a struct and validates it.
// If validation fails, it sends a validation error response and returns false.
func BindAndValidate(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		if fields := FormatValidationError(err); fields != nil {
			RespondError(c, apperr.Validation("Validation failed", fields))
		} else {
			RespondError(c, apperr.Validation("Invalid request payload: "+err.Error(), nil))
		}
		return false
	}
	if err := Validate(obj); err != nil {
		RespondError(c, apperr.Validation("Validation failed", FormatValidationError(err)))
		return false
	}
	return true
}
