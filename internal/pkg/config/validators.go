// internal/pkg/config/validators.go
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator checks one aspect of a loaded configuration
type Validator interface {
	Validate(cfg *Config) error
}

var structValidator = validator.New()

// BasicValidator checks the validate tags on the config sections
type BasicValidator struct{}

// Validate reports the first failing field
func (v *BasicValidator) Validate(cfg *Config) error {
	err := structValidator.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	fe := fieldErrs[0]
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Errorf("%w: %s", ErrMissingRequiredConfig, field)
	case "gtefield":
		return fmt.Errorf("%s must be >= %s", field, fe.Param())
	default:
		return fmt.Errorf("%s is invalid (%s %s)", field, fe.Tag(), fe.Param())
	}
}

// CatalogValidator checks carousel timing, which spans two settings
type CatalogValidator struct{}

// Validate performs catalog validation
func (v *CatalogValidator) Validate(cfg *Config) error {
	if cfg.Carousel.AutoInterval <= 0 || cfg.Carousel.AnimationWindow <= 0 {
		return fmt.Errorf("carousel intervals must be positive")
	}
	if cfg.Carousel.AnimationWindow > cfg.Carousel.AutoInterval {
		return fmt.Errorf("carousel animation window must not exceed the auto interval")
	}
	return nil
}

// ProductionValidator performs strict validation for production environments
type ProductionValidator struct{}

// Validate performs production-specific validation
func (v *ProductionValidator) Validate(cfg *Config) error {
	if cfg.Database.Password == "" || strings.HasPrefix(cfg.Database.Password, "MISSING_") {
		return fmt.Errorf("%w: database password", ErrMissingRequiredConfig)
	}
	if cfg.Database.SSLMode == "disable" {
		return fmt.Errorf("database SSL must be enabled in production")
	}
	if !cfg.Security.SecureHeaders {
		return fmt.Errorf("secure headers must be enabled in production")
	}
	if len(cfg.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("allowed origins must be configured in production")
	}
	for _, origin := range cfg.Security.AllowedOrigins {
		if origin == "*" {
			return fmt.Errorf("wildcard origin (*) not allowed in production")
		}
	}
	if cfg.AWS.S3Bucket == "" {
		return fmt.Errorf("%w: S3 bucket for product images", ErrMissingRequiredConfig)
	}
	return nil
}
