// Package validate runs struct-tag validation and turns failures into field messages
// keyed by JSON name, one message per field.
//
// Besides the go-playground/validator built-ins it registers:
//
//	phone   5 to 15 digits once separators are stripped
//	money   non-negative decimal amount with at most two fraction digits
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/fastygo/storefront/domain"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// labels maps JSON field names to the wording used in messages.
var labels = map[string]string{
	"customerName":    "Name",
	"customerPhone":   "Phone number",
	"customerEmail":   "Email",
	"customerAddress": "Address",
	"name":            "Name",
	"email":           "Email",
	"password":        "Password",
	"price":           "Price",
	"stock":           "Stock",
	"imageUrl":        "Image URL",
	"categoryId":      "Category",
	"description":     "Description",
}

func engine() *validator.Validate {
	once.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return domain.ValidPhone(fl.Field().String())
		})
		_ = v.RegisterValidation("money", func(fl validator.FieldLevel) bool {
			d, err := decimal.NewFromString(fl.Field().String())
			return err == nil && !d.IsNegative() && d.Exponent() >= -2
		})
		instance = v
	})
	return instance
}

// Struct validates v. It returns nil or a *domain.ValidationError.
func Struct(v interface{}) error {
	err := engine().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.WrapError(domain.ErrCodeInvalid, "invalid input", err)
	}
	out := &domain.ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		if _, seen := out.Fields[fe.Field()]; seen {
			continue
		}
		out.Fields[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	label := labels[fe.Field()]
	if label == "" {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return "Please enter a valid email address"
	case "phone":
		return "Please enter a valid phone number"
	case "money":
		return "Please enter a valid price"
	case "url":
		return "Please enter a valid URL"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	default:
		return label + " is invalid"
	}
}
