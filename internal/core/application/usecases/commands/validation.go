package commands

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"deliverytasks/internal/core/domain/model/task"
	"deliverytasks/internal/pkg/errs"
)

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", errs.NewValueIsRequiredError("title")
	}
	if n := utf8.RuneCountInString(title); n > task.TitleMaxLength {
		return "", errs.NewValueIsInvalidErrorWithCause(
			"title",
			fmt.Errorf("%d characters exceeds the limit of %d", n, task.TitleMaxLength),
		)
	}
	return title, nil
}

func validateRequired(paramName, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", errs.NewValueIsRequiredError(paramName)
	}
	return value, nil
}
