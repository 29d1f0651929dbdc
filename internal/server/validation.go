package server

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	maxNameLength = 20
	maxCodeLength = 12
)

func newValidator() *validator.Validate {
	engine := validator.New(validator.WithRequiredStructEnabled())
	_ = engine.RegisterValidation("playername", func(fl validator.FieldLevel) bool {
		_, err := validateName(fl.Field().String())
		return err == nil
	})
	return engine
}

func validateName(name string) (string, error) {
	trimmed := normalizeText(name)
	if trimmed == "" {
		return "", fmt.Errorf("name is required")
	}
	if len(trimmed) > maxNameLength {
		return "", fmt.Errorf("name must be %d characters or fewer", maxNameLength)
	}
	if !isSafeText(trimmed) {
		return "", fmt.Errorf("name contains unsupported characters")
	}
	return trimmed, nil
}

func validateCode(code string) (string, error) {
	trimmed := normalizeCode(code)
	if trimmed == "" {
		return "", fmt.Errorf("code is required")
	}
	if len(trimmed) > maxCodeLength {
		return "", fmt.Errorf("code must be %d characters or fewer", maxCodeLength)
	}
	for _, r := range trimmed {
		if r >= 'A' && r <= 'Z' {
			continue
		}
		if r >= '0' && r <= '9' {
			continue
		}
		return "", fmt.Errorf("code contains unsupported characters")
	}
	return trimmed, nil
}

func normalizeText(text string) string {
	fields := strings.Fields(strings.TrimSpace(text))
	return strings.Join(fields, " ")
}

func isSafeText(text string) bool {
	for _, r := range text {
		if r >= 'a' && r <= 'z' {
			continue
		}
		if r >= 'A' && r <= 'Z' {
			continue
		}
		if r >= '0' && r <= '9' {
			continue
		}
		switch r {
		case ' ', '-', '_', '\'', '.':
			continue
		default:
			return false
		}
	}
	return true
}
