package validators

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"rentfleet/internal/core"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report violations under the wire field name, not the Go field name.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	validate.RegisterValidation("object_id", validateObjectID)
	validate.RegisterValidation("license_plate", validateLicensePlate)
	validate.RegisterValidation("transmission", validateTransmission)
	validate.RegisterValidation("fuel_type", validateFuelType)
	validate.RegisterValidation("vehicle_status", validateVehicleStatus)
}

// ValidateStruct runs tag-based validation and returns field-level
// violations.
func ValidateStruct(s interface{}) []core.FieldViolation {
	var violations []core.FieldViolation

	err := validate.Struct(s)
	if err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			violations = append(violations, core.FieldViolation{
				Field:   strings.ToLower(err.Field()),
				Message: getErrorMessage(err),
			})
		}
	}

	return violations
}

func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
	case "object_id":
		return "Invalid ID format"
	case "license_plate":
		return "Invalid license plate format"
	case "transmission":
		return "Transmission must be automatic or manual"
	case "fuel_type":
		return "Fuel type must be petrol, diesel, electric or hybrid"
	case "vehicle_status":
		return "Status must be active, maintenance or retired"
	default:
		return fmt.Sprintf("Validation failed for %s", err.Field())
	}
}

func validateObjectID(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // let required handle empty values
	}
	_, err := primitive.ObjectIDFromHex(value)
	return err == nil
}

func validateLicensePlate(fl validator.FieldLevel) bool {
	plate := fl.Field().String()
	if plate == "" {
		return true
	}

	plateRegex := regexp.MustCompile(`^[A-Z0-9\-\s]{2,12}$`)
	return plateRegex.MatchString(strings.ToUpper(strings.TrimSpace(plate)))
}

func validateTransmission(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || value == "automatic" || value == "manual"
}

func validateFuelType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", "petrol", "diesel", "electric", "hybrid":
		return true
	}
	return false
}

func validateVehicleStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", "active", "maintenance", "retired":
		return true
	}
	return false
}

// IsValidObjectID reports whether id parses as a Mongo ObjectID hex string.
func IsValidObjectID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}

// SanitizeInput removes HTML tags and trims whitespace.
func SanitizeInput(input string) string {
	htmlRegex := regexp.MustCompile(`<[^>]*>`)
	cleaned := htmlRegex.ReplaceAllString(input, "")
	return strings.TrimSpace(cleaned)
}
