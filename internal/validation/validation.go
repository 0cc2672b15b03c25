package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// Struct validates v and returns a field-error map, nil when valid.
func Struct(v interface{}) map[string]string {
	if err := validate.Struct(v); err != nil {
		return fieldErrors(err)
	}
	return nil
}

// Map validates a free-form payload against a rules map (field ->
// validator tag). Used for role-request extra_data, whose schema is
// picked by target role.
func Map(data map[string]interface{}, rules map[string]string) map[string]string {
	errs := map[string]string{}
	for field, tag := range rules {
		value, ok := data[field]
		if !ok || empty(value) {
			if strings.Contains(tag, "required") {
				errs[field] = "this field is required"
			}
			continue
		}
		if err := validate.Var(value, strings.TrimPrefix(strings.TrimPrefix(tag, "required,"), "required")); err != nil {
			errs[field] = fmt.Sprintf("failed on '%s' validation", tag)
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// empty reports whether a decoded JSON value counts as missing for the
// required rule: nil, "", and zero-length arrays or objects.
func empty(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []interface{}:
		return len(v) == 0
	case []string:
		return len(v) == 0
	case map[string]interface{}:
		return len(v) == 0
	}
	return false
}

// Respond writes the standard 422 validation body.
func Respond(c *fiber.Ctx, errs map[string]string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"message": "The given data was invalid",
		"errors":  errs,
	})
}

func fieldErrors(err error) map[string]string {
	errs := map[string]string{}
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		errs["_"] = err.Error()
		return errs
	}
	for _, fe := range ve {
		field := snake(fe.Field())
		switch fe.Tag() {
		case "required":
			errs[field] = "this field is required"
		case "email":
			errs[field] = "must be a valid email address"
		case "min":
			errs[field] = fmt.Sprintf("must be at least %s", fe.Param())
		case "max":
			errs[field] = fmt.Sprintf("must be at most %s", fe.Param())
		default:
			errs[field] = fmt.Sprintf("failed on '%s' validation", fe.Tag())
		}
	}
	return errs
}

func snake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
		} else {
			b.WriteRune(r)
		}
	}
	// all-caps abbreviations collapse awkwardly, keep known ones stable
	out := b.String()
	out = strings.ReplaceAll(out, "n_i_c", "nic")
	return out
}
