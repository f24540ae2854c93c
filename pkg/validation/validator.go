package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CustomValidator - обертка для использования в Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate реализует интерфейс echo.Validator
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// New создает и настраивает валидатор
func New() *CustomValidator {
	v := validator.New()

	// в диагностике используем имена полей из JSON
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	registerNullTypes(v)

	// сервер не должен стартовать без кастомных правил
	if err := registerRules(v); err != nil {
		panic("ошибка регистрации валидаторов: " + err.Error())
	}

	return &CustomValidator{validator: v}
}

// FieldErrors переводит ошибки валидатора в диагностику по полям.
// Второе значение false, если err не от валидатора.
func FieldErrors(err error) (map[string]string, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = describe(fe)
	}
	return fields, true
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "обязательное поле"
	case "gt":
		return fmt.Sprintf("должно быть больше %s", fe.Param())
	case "gte":
		return fmt.Sprintf("должно быть не меньше %s", fe.Param())
	case "lte":
		return fmt.Sprintf("должно быть не больше %s", fe.Param())
	case "min":
		return fmt.Sprintf("минимальная длина %s", fe.Param())
	case "max":
		return fmt.Sprintf("максимальная длина %s", fe.Param())
	case "email":
		return "неверный формат email"
	case "ip":
		return "неверный IP-адрес"
	case "prefix":
		return "префикс: от 1 до 10 латинских букв или цифр"
	default:
		return "недопустимое значение (" + fe.Tag() + ")"
	}
}
