package service

import (
	"errors"
	"sort"
	"strings"

	"docs-admin-console/internal/model"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// validationError : ошибки ozzo превращаются в одно сообщение для пользователя
func validationError(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrors validation.Errors
	if !errors.As(err, &fieldErrors) {
		var single validation.Error
		if errors.As(err, &single) {
			return &model.ValidationError{Message: single.Error()}
		}
		return err
	}

	fields := make([]string, 0, len(fieldErrors))
	for field := range fieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	messages := make([]string, 0, len(fields))
	for _, field := range fields {
		if fieldErr := fieldErrors[field]; fieldErr != nil {
			messages = append(messages, fieldErr.Error())
		}
	}
	return &model.ValidationError{Message: strings.Join(messages, "; ")}
}
