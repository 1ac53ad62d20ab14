package handlers

import (
	"errors"
	"strings"

	validator "github.com/go-playground/validator/v10"

	"github.com/MrSnakeDoc/snooze/internal/domain"
)

var validate = validator.New()

// checkForm validates a decoded form, reporting failures as validation
// errors carrying a user-facing message. Forms only check presence;
// lengths and formats are left to the story service.
func checkForm(op string, form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return &domain.APIError{Op: op, Kind: domain.ErrValidation, Message: strings.Join(msgs, ", ")}
}
