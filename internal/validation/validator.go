// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

// Package validation provides struct validation using go-playground/validator v10.
// It exposes a thread-safe singleton validator shared by the configuration
// loader and the HTTP transport.
//
// Field names in errors come from the json tag, or the koanf tag when there
// is no json tag, so messages match the names users actually type:
//
//	type messageRequest struct {
//	    UserID int64  `json:"user_id" validate:"required,ne=0"`
//	    Text   string `json:"text" validate:"max=4096"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    respondAPIError(w, http.StatusBadRequest, verr.ToAPIError())
//	}
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// CodeValidation is the APIError code of every validation failure.
const CodeValidation = "VALIDATION_ERROR"

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is a single failed field.
type FieldError struct {
	// Field is the dotted path of the field, e.g. "regions[0].latitude".
	Field string

	// Tag is the failed validation tag and Param its parameter, e.g.
	// "max" and "4096".
	Tag   string
	Param string

	Message string
}

func (e FieldError) Error() string {
	return e.Message
}

// Errors collects the failed fields of one struct in declaration order.
type Errors []FieldError

func (ve Errors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(ve))
	for i, fe := range ve {
		messages[i] = fe.Message
	}
	return strings.Join(messages, "; ")
}

// APIError is the error body returned by the HTTP transport.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ToAPIError converts the failure to an APIError. A single failure carries
// its field and tag in Details; several are listed under "fields".
func (ve Errors) ToAPIError() *APIError {
	apiErr := &APIError{Code: CodeValidation, Message: ve.Error()}
	switch len(ve) {
	case 0:
		apiErr.Message = "Validation failed"
	case 1:
		apiErr.Details = map[string]interface{}{"field": ve[0].Field, "tag": ve[0].Tag}
	default:
		fields := make([]map[string]interface{}, len(ve))
		for i, fe := range ve {
			fields[i] = map[string]interface{}{"field": fe.Field, "tag": fe.Tag, "message": fe.Message}
		}
		apiErr.Details = map[string]interface{}{"fields": fields}
	}
	return apiErr
}

// GetValidator returns the singleton validator instance.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(tagName)

		// delimiter: a single-character CSV field separator.
		if err := validate.RegisterValidation("delimiter", validateDelimiter); err != nil {
			panic(fmt.Sprintf("validation: register delimiter: %v", err))
		}
	})
	return validate
}

// tagName prefers the json name and falls back to the koanf key.
func tagName(fld reflect.StructField) string {
	for _, key := range []string{"json", "koanf"} {
		name, _, _ := strings.Cut(fld.Tag.Get(key), ",")
		switch name {
		case "-":
			return ""
		case "":
			continue
		default:
			return name
		}
	}
	return fld.Name
}

func validateDelimiter(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return utf8.RuneCountInString(s) == 1 && s != "\"" && s != "\n"
}

// ValidateStruct validates s with the singleton validator. It returns nil
// when s is valid.
func ValidateStruct(s interface{}) Errors {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Errors{{Field: "unknown", Tag: "unknown", Message: err.Error()}}
	}

	out := make(Errors, len(fieldErrs))
	for i, fe := range fieldErrs {
		path := fieldPath(fe)
		out[i] = FieldError{Field: path, Tag: fe.Tag(), Param: fe.Param(), Message: describe(fe, path)}
	}
	return out
}

// fieldPath drops the top-level struct name from the namespace, so a
// nested config field reads "profile.url".
func fieldPath(fe validator.FieldError) string {
	if _, rest, ok := strings.Cut(fe.Namespace(), "."); ok {
		return rest
	}
	return fe.Field()
}

// messages maps a tag to a format taking the field and the tag parameter.
// Formats without a second verb ignore the parameter.
var messages = map[string]string{
	"required":  "%s is required",
	"url":       "%s must be a valid URL",
	"http_url":  "%s must be an http or https URL",
	"latitude":  "%s must be a valid latitude (-90 to 90)",
	"longitude": "%s must be a valid longitude (-180 to 180)",
	"hostname":  "%s must be a valid hostname",
	"delimiter": "%s must be a single character other than a quote or newline",
	"dive":      "%s has an invalid element",
	"unique":    "%s must not contain duplicates",
	"oneof":     "%s must be one of: %s",
	"gte":       "%s must be greater than or equal to %s",
	"lte":       "%s must be less than or equal to %s",
	"gt":        "%s must be greater than %s",
	"lt":        "%s must be less than %s",
	"ne":        "%s must not be %s",
}

func describe(fe validator.FieldError, field string) string {
	tag := fe.Tag()
	if format, ok := messages[tag]; ok {
		if strings.Count(format, "%s") == 1 {
			return fmt.Sprintf(format, field)
		}
		return fmt.Sprintf(format, field, fe.Param())
	}

	unit := ""
	switch fe.Kind() {
	case reflect.String:
		unit = " characters"
	case reflect.Slice, reflect.Map:
		unit = " items"
	}
	switch tag {
	case "min":
		return fmt.Sprintf("%s must be at least %s%s", field, fe.Param(), unit)
	case "max":
		return fmt.Sprintf("%s must be at most %s%s", field, fe.Param(), unit)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
