package services

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var richTextPolicy = bluemonday.UGCPolicy()

// sanitizeRichText strips unsafe markup from user-authored rich text
func sanitizeRichText(s string) string {
	return strings.TrimSpace(richTextPolicy.Sanitize(s))
}

func sanitizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	clean := sanitizeRichText(*s)
	if clean == "" {
		return nil
	}
	return &clean
}
