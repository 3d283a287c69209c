package middleware

import (
	"fmt"

	"interiors-admin-be/internal/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the domain validation tags to gin's binding validator:
//
//	submissionstatus  one of new, replied, archived
//	budgetrange       a known budget identifier or display label
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	if err := v.RegisterValidation("submissionstatus", validateSubmissionStatus); err != nil {
		return err
	}
	return v.RegisterValidation("budgetrange", validateBudgetRange)
}

func validateSubmissionStatus(fl validator.FieldLevel) bool {
	_, ok := models.ParseSubmissionStatus(fl.Field().String())
	return ok
}

func validateBudgetRange(fl validator.FieldLevel) bool {
	return models.ParseBudgetRange(fl.Field().String()).Known()
}
