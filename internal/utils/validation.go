package utils

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var (
	phonePattern = regexp.MustCompile(`^\+?[0-9\s\-\.\(\)]+$`)
	moneyPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)
	controlChars = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)
)

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	var messages []string
	for _, err := range ve {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, ", ")
}

// ValidateStruct validates a struct using reflection and struct tags
func ValidateStruct(s interface{}) error {
	var errors ValidationErrors

	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return fmt.Errorf("expected struct, got %s", v.Kind())
	}

	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		// Skip unexported fields
		if !field.CanInterface() {
			continue
		}

		// Get validation tag
		validateTag := fieldType.Tag.Get("validate")
		if validateTag == "" {
			continue
		}

		// Parse validation rules
		rules := strings.Split(validateTag, ",")
		for _, rule := range rules {
			rule = strings.TrimSpace(rule)
			if err := validateField(fieldType.Name, field, rule); err != nil {
				errors = append(errors, *err)
			}
		}
	}

	if len(errors) > 0 {
		return errors
	}

	return nil
}

// validateField validates a single field against a rule
func validateField(fieldName string, field reflect.Value, rule string) *ValidationError {
	parts := strings.Split(rule, "=")
	ruleName := parts[0]
	var ruleValue string
	if len(parts) > 1 {
		ruleValue = parts[1]
	}

	switch ruleName {
	case "required":
		if isEmpty(field) {
			return &ValidationError{
				Field:   fieldName,
				Message: "is required",
			}
		}
	case "email":
		if field.Kind() == reflect.String {
			email := field.String()
			if email != "" && !IsValidEmail(email) {
				return &ValidationError{
					Field:   fieldName,
					Message: "must be a valid email address",
				}
			}
		}
	case "phone":
		if field.Kind() == reflect.String {
			phone := field.String()
			if phone != "" && !IsPhoneNumber(phone) {
				return &ValidationError{
					Field:   fieldName,
					Message: "must be a valid phone number",
				}
			}
		}
	case "min":
		if field.Kind() == reflect.String {
			if textLength(field.String()) < parseIntOrDefault(ruleValue, 0) {
				return &ValidationError{
					Field:   fieldName,
					Message: fmt.Sprintf("must be at least %s characters", ruleValue),
				}
			}
		} else if isNumeric(field) {
			if getNumericValue(field) < float64(parseIntOrDefault(ruleValue, 0)) {
				return &ValidationError{
					Field:   fieldName,
					Message: fmt.Sprintf("must be at least %s", ruleValue),
				}
			}
		}
	case "max":
		if field.Kind() == reflect.String {
			if textLength(field.String()) > parseIntOrDefault(ruleValue, 0) {
				return &ValidationError{
					Field:   fieldName,
					Message: fmt.Sprintf("must be at most %s characters", ruleValue),
				}
			}
		} else if isNumeric(field) {
			if getNumericValue(field) > float64(parseIntOrDefault(ruleValue, 0)) {
				return &ValidationError{
					Field:   fieldName,
					Message: fmt.Sprintf("must be at most %s", ruleValue),
				}
			}
		}
	case "money":
		if field.Kind() == reflect.String {
			str := strings.TrimSpace(field.String())
			if str != "" && !moneyPattern.MatchString(str) {
				return &ValidationError{
					Field:   fieldName,
					Message: "must be a non-negative amount",
				}
			}
		}
	}

	return nil
}

// textLength counts characters of the trimmed value
func textLength(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}

// isEmpty checks if a field is empty
func isEmpty(field reflect.Value) bool {
	switch field.Kind() {
	case reflect.String:
		return strings.TrimSpace(field.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return field.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return field.IsNil()
	case reflect.Invalid:
		return true
	default:
		return false
	}
}

// isNumeric checks if a field is numeric
func isNumeric(field reflect.Value) bool {
	switch field.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	case reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// getNumericValue gets the numeric value as float64
func getNumericValue(field reflect.Value) float64 {
	switch field.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(field.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(field.Uint())
	case reflect.Float32, reflect.Float64:
		return field.Float()
	default:
		return 0
	}
}

// parseIntOrDefault parses an integer or returns default value
func parseIntOrDefault(s string, defaultValue int) int {
	if s == "" {
		return defaultValue
	}

	var result int
	fmt.Sscanf(s, "%d", &result)
	return result
}

// IsValidEmail validates email format
func IsValidEmail(email string) bool {
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	return emailRegex.MatchString(email)
}

// NormalizeEmail normalizes an email address for consistent comparison
func NormalizeEmail(email string) string {
	// Trim whitespace and convert to lowercase
	normalized := strings.ToLower(strings.TrimSpace(email))
	return normalized
}

// IsPhoneNumber checks if a string looks like a phone number: digits with
// optional separators and a leading plus, at least 10 digits in total.
func IsPhoneNumber(phone string) bool {
	cleaned := strings.TrimSpace(phone)
	if !phonePattern.MatchString(cleaned) {
		return false
	}
	return len(DigitsOnly(cleaned)) >= 10
}

// DigitsOnly strips everything but ASCII digits.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < utf8.RuneSelf && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CleanText drops control characters other than newlines and tabs and
// trims surrounding whitespace. Used on free-text fields stored in tables.
func CleanText(input string) string {
	cleaned := controlChars.ReplaceAllString(input, "")
	return strings.TrimSpace(cleaned)
}
