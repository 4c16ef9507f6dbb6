package leads

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	zipPattern   = regexp.MustCompile(`^\d{5}$`)
	indexPattern = regexp.MustCompile(`\[(\d+)\]`)
	validate     = newValidator()
)

var fieldLabels = map[string]string{
	"name":             "Name",
	"email":            "Email",
	"phone":            "Phone number",
	"message":          "Message",
	"urgency":          "Urgency",
	"preferredContact": "Preferred contact method",
	"firstName":        "First name",
	"lastName":         "Last name",
	"propertyType":     "Property type",
	"propertySize":     "Property size",
	"address":          "Address",
	"city":             "City",
	"state":            "State",
	"zipCode":          "ZIP code",
	"services":         "Services",
	"currentSystem":    "Current system",
	"timeline":         "Timeline",
	"budget":           "Budget",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	if err := v.RegisterValidation("zip5", func(fl validator.FieldLevel) bool {
		return zipPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("leads: register zip5 validator: %v", err))
	}
	return v
}

// ParseContact decodes and validates a contact form body.
func ParseContact(body []byte) (ContactSubmission, error) {
	var sub ContactSubmission
	typeErrs, err := decode(body, &sub)
	if err != nil {
		return ContactSubmission{}, err
	}
	sub.normalize()
	if err := check(&sub, typeErrs); err != nil {
		return ContactSubmission{}, err
	}
	return sub, nil
}

// ParseQuote decodes and validates a quote request body.
func ParseQuote(body []byte) (QuoteSubmission, error) {
	var sub QuoteSubmission
	typeErrs, err := decode(body, &sub)
	if err != nil {
		return QuoteSubmission{}, err
	}
	sub.normalize()
	if err := check(&sub, typeErrs); err != nil {
		return QuoteSubmission{}, err
	}
	return sub, nil
}

// decode unmarshals body into dst, a pointer to a submission struct. Each
// known field is decoded on its own so every type mismatch is reported as a
// field error and the mismatched field is left zero. Anything that is not a
// JSON object is a ParseError.
func decode(body []byte, dst any) ([]FieldError, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &ParseError{Err: ErrEmptyBody}
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &ParseError{Err: err}
	}

	var typeErrs []FieldError
	v := reflect.ValueOf(dst).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name := jsonName(t.Field(i))
		if name == "" {
			continue
		}
		value, ok := lookup(raw, name)
		if !ok {
			continue
		}
		field := v.Field(i)
		if err := json.Unmarshal(value, field.Addr().Interface()); err != nil {
			var typeErr *json.UnmarshalTypeError
			if !errors.As(err, &typeErr) {
				return nil, &ParseError{Err: err}
			}
			field.Set(reflect.Zero(field.Type()))
			typeErrs = append(typeErrs, FieldError{Field: name, Message: labelFor(name) + " has an invalid value"})
		}
	}
	return typeErrs, nil
}

func jsonName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// lookup matches keys the way encoding/json does: exact first, then
// case-insensitive.
func lookup(raw map[string]json.RawMessage, name string) (json.RawMessage, bool) {
	if v, ok := raw[name]; ok {
		return v, true
	}
	for k, v := range raw {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}

func check(v any, typeErrs []FieldError) error {
	fieldErrs := append([]FieldError(nil), typeErrs...)

	err := validate.Struct(v)
	if err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("leads: validate: %w", err)
		}
		for _, fe := range verrs {
			path := fieldPath(fe.Namespace())
			if coveredBy(path, typeErrs) {
				continue
			}
			fieldErrs = append(fieldErrs, FieldError{Field: path, Message: messageFor(path, fe)})
		}
	}

	if len(fieldErrs) > 0 {
		return &ValidationError{Errors: fieldErrs}
	}
	return nil
}

// fieldPath turns "QuoteSubmission.services[0]" into "services.0".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		namespace = namespace[i+1:]
	}
	return indexPattern.ReplaceAllString(namespace, ".$1")
}

func coveredBy(path string, typeErrs []FieldError) bool {
	for _, te := range typeErrs {
		if path == te.Field || strings.HasPrefix(path, te.Field+".") {
			return true
		}
	}
	return false
}

func labelFor(path string) string {
	root := path
	if i := strings.IndexByte(path, '.'); i >= 0 {
		root = path[:i]
	}
	if label, ok := fieldLabels[root]; ok {
		return label
	}
	return root
}

func messageFor(path string, fe validator.FieldError) string {
	label := labelFor(path)
	switch fe.Tag() {
	case "required":
		if strings.Contains(path, ".") {
			return "Service cannot be empty"
		}
		return label + " is required"
	case "min":
		switch {
		case fe.Kind() == reflect.Slice:
			return "Please select at least one service"
		case path == "phone":
			return "Phone number must be at least " + fe.Param() + " digits"
		default:
			return label + " must be at least " + fe.Param() + " characters"
		}
	case "email":
		return "Invalid email address"
	case "oneof":
		return label + " must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "zip5":
		return "ZIP code must be exactly 5 digits"
	default:
		return label + " is invalid"
	}
}
