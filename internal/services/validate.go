package services

import (
	"regexp"

	"github.com/selahstudy/academy-backend/internal/pkg/apperr"
)

const slugMaxLen = 100

var slugRe = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func validateSlug(slug string) error {
	if len(slug) == 0 || len(slug) > slugMaxLen {
		return apperr.Invalid("slug must be 1-%d characters", slugMaxLen)
	}
	if !slugRe.MatchString(slug) {
		return apperr.Invalid("slug must contain only lowercase letters, digits and single hyphens")
	}
	return nil
}
