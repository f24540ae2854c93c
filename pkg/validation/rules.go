package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var prefixRegex = regexp.MustCompile(`^[A-Za-z0-9]{1,10}$`)

// registerRules регистрирует теги, которые мы используем в struct tags
func registerRules(v *validator.Validate) error {
	if err := v.RegisterValidation("prefix", isInventoryPrefix); err != nil {
		return err
	}
	return nil
}

// isInventoryPrefix - префикс инвентарного номера: 1-10 латинских букв или цифр
func isInventoryPrefix(fl validator.FieldLevel) bool {
	return prefixRegex.MatchString(fl.Field().String())
}
