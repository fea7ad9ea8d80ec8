package serverutils

import (
	"errors"
	"fmt"
	"strings"

	"stockpoints-be/internal/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest checks struct tags and folds all violations into a
// single invalid-input error.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		fields := make([]string, 0, len(errs))
		for _, fe := range errs {
			fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
		}
		return apperror.InvalidInput("invalid request: " + strings.Join(fields, ", "))
	}
	return apperror.Wrap(apperror.CodeInvalidInput, "invalid request", err)
}
