package server

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

const (
	maxNameLength     = 24
	maxPromptLength   = 140
	maxSlugLength     = 32
	maxPackNameLength = 64
	maxPhotoBytes     = 2 * 1024 * 1024
	anonymousName     = "Anonymous"
)

var namePolicy = bluemonday.StrictPolicy()

var validatorOnce sync.Once

func registerValidators() {
	validatorOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			_, err := validateSlug(fl.Field().String())
			return err == nil
		})
		_ = engine.RegisterValidation("prompt", func(fl validator.FieldLevel) bool {
			_, err := validatePrompt(fl.Field().String())
			return err == nil
		})
	})
}

// sanitizeDisplayName strips markup, trims, clips, and substitutes a
// placeholder for an empty result.
func sanitizeDisplayName(name string) string {
	clean := strings.TrimSpace(namePolicy.Sanitize(name))
	if clean == "" {
		return anonymousName
	}
	if len(clean) > maxNameLength {
		clean = strings.TrimSpace(clean[:maxNameLength])
	}
	return clean
}

func validateSlug(slug string) (string, error) {
	trimmed := strings.TrimSpace(slug)
	if trimmed == "" {
		return "", errors.New("slug is required")
	}
	if len(trimmed) > maxSlugLength {
		return "", fmt.Errorf("slug must be %d characters or fewer", maxSlugLength)
	}
	for _, r := range trimmed {
		if r >= 'a' && r <= 'z' {
			continue
		}
		if r >= '0' && r <= '9' {
			continue
		}
		if r == '-' || r == '_' {
			continue
		}
		return "", errors.New("slug may only contain lowercase letters, digits, - and _")
	}
	return trimmed, nil
}

func validatePrompt(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", errors.New("prompt is required")
	}
	if len(trimmed) > maxPromptLength {
		return "", fmt.Errorf("prompt must be %d characters or fewer", maxPromptLength)
	}
	return trimmed, nil
}

func validateCompletionMode(raw string) (CompletionMode, error) {
	switch CompletionMode(strings.TrimSpace(raw)) {
	case "", ModeAnytime:
		return ModeAnytime, nil
	case ModeAllRequired:
		return ModeAllRequired, nil
	}
	return "", errors.New("completion_mode must be anytime or all_required")
}
