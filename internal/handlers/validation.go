package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yukikurage/community-workspace-api/internal/models"
)

// RegisterValidators adds the domain binding tags to gin's validator
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	tags := map[string]validator.Func{
		"trackstatus": func(fl validator.FieldLevel) bool {
			return models.TrackStatus(fl.Field().String()).Valid()
		},
		"priority": func(fl validator.FieldLevel) bool {
			return models.Priority(fl.Field().String()).Valid()
		},
		"meetingstatus": func(fl validator.FieldLevel) bool {
			return models.MeetingStatus(fl.Field().String()).Valid()
		},
	}
	for tag, fn := range tags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register %s validator: %w", tag, err)
		}
	}
	return nil
}
