package utils

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var Validate *validator.Validate

func InitValidator() {
	Validate = validator.New()
	Validate.RegisterValidation("devicetype", ValidateDeviceTypeRule)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("devicetype", ValidateDeviceTypeRule)
	}
}

func ValidateDeviceTypeRule(fl validator.FieldLevel) bool {
	return ValidateDeviceType(fl.Field().String())
}

// ValidateDeviceType accepts the schema-side enum. The empty string passes
// at the binding layer via omitempty and is normalized to "unknown" before
// persistence.
func ValidateDeviceType(t string) bool {
	switch t {
	case "mobile", "tablet", "desktop", "smarttv", "wearable", "unknown":
		return true
	default:
		return false
	}
}
