// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"budgetry/internal/calendar"
	"budgetry/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn registers the custom validators on v.
func RegisterOn(v *validator.Validate) {
	_ = v.RegisterValidation("positive_decimal", validatePositiveDecimal)
	_ = v.RegisterValidation("billing_period", validateBillingPeriod)
	_ = v.RegisterValidation("obligation_group", validateObligationGroup)
}

// validatePositiveDecimal accepts strings and json.Number values holding a
// decimal greater than zero.
func validatePositiveDecimal(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return d.IsPositive()
}

func validateBillingPeriod(fl validator.FieldLevel) bool {
	return calendar.BillingPeriod(fl.Field().String()).Valid()
}

func validateObligationGroup(fl validator.FieldLevel) bool {
	return models.ObligationGroup(fl.Field().String()).Valid()
}
