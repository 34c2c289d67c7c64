package config

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Errors name the configuration key ("client.retry.max_attempts"), not the Go field.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	if err := v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	v.RegisterStructValidation(validateRetry, RetryConfig{})
	v.RegisterStructValidation(validateShowNames, Config{})

	return v
}

// validateRetry rejects a backoff ceiling below its starting interval.
func validateRetry(sl validator.StructLevel) {
	r, _ := sl.Current().Interface().(RetryConfig)
	if r.MaxInterval < r.InitialInterval {
		sl.ReportError(r.MaxInterval, "max_interval", "MaxInterval", "gtefield", "initial_interval")
	}
}

// validateShowNames rejects show names that differ only in case or
// surrounding space, since the CLI resolves names case-insensitively.
func validateShowNames(sl validator.StructLevel) {
	c, _ := sl.Current().Interface().(Config)

	seen := make(map[string]int, len(c.Shows))

	for i, s := range c.Shows {
		key := strings.ToLower(strings.TrimSpace(s.Name))
		if key == "" {
			continue
		}

		if first, dup := seen[key]; dup {
			sl.ReportError(s.Name, fmt.Sprintf("shows[%d].name", i), "Name", "unique_name", strconv.Itoa(first))
			continue
		}

		seen[key] = i
	}
}

// Validate checks the configuration. Callers fail fast on error.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationErrors(err)
	}

	return nil
}

func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		msgs = append(msgs, formatFieldError(e))
	}

	return fmt.Errorf("config validation failed:\n  %s", strings.Join(msgs, "\n  "))
}

func formatFieldError(e validator.FieldError) string {
	field := formatFieldPath(e.Namespace())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_if":
		return fmt.Sprintf("%s is required when %s", field, e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "gtefield":
		return fmt.Sprintf("%s must not be less than %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "http_url":
		return fmt.Sprintf("%s must be an http or https URL", field)
	case "unique":
		return fmt.Sprintf("%s must not contain duplicate %s values", field, strings.ToLower(e.Param()))
	case "unique_name":
		return fmt.Sprintf("%s repeats shows[%s].name", field, e.Param())
	case "slug":
		return fmt.Sprintf("%s must be a lower-case slug such as \"breaking-bad\"", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, e.Tag())
	}
}

// formatFieldPath drops the root struct name: "Config.server.port" -> "server.port".
func formatFieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}

	return namespace
}
