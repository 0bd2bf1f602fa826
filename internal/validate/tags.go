package validate

import (
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
)

// VitalsReading is a manually entered set of vital signs. Every field is
// optional, but blood pressure needs both halves.
type VitalsReading struct {
	HeartRate   *float64 `json:"heart_rate" validate:"omitempty,heart_rate"`
	BloodOxygen *float64 `json:"blood_oxygen" validate:"omitempty,blood_oxygen"`
	Temperature *float64 `json:"temperature" validate:"omitempty,body_temp"`
	Systolic    *float64 `json:"systolic"`
	Diastolic   *float64 `json:"diastolic"`
}

// Register installs the site's predicates as validator tags. now supplies the
// reference time for the date-relative tags.
func Register(v *validator.Validate, now func() time.Time) error {
	if now == nil {
		now = time.Now
	}
	strTags := map[string]func(string) bool{
		"hs_email":  Email,
		"hs_phone":  Phone,
		"hs_date":   Date,
		"hs_dob":    func(s string) bool { return Age(s, 0, 120, now()) },
		"hs_future": func(s string) bool { return FutureOrToday(s, now()) },
	}
	for tag, fn := range strTags {
		fn := fn
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return fl.Field().Kind() == reflect.String && fn(fl.Field().String())
		}); err != nil {
			return err
		}
	}

	numTags := map[string]func(float64) bool{
		"heart_rate":   HeartRate,
		"blood_oxygen": BloodOxygen,
		"body_temp":    Temperature,
	}
	for tag, fn := range numTags {
		fn := fn
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			f, ok := number(fl.Field())
			return ok && fn(f)
		}); err != nil {
			return err
		}
	}

	v.RegisterStructValidation(vitalsStructLevel, VitalsReading{})
	return nil
}

// New returns a validator with the site's tags registered.
func New(now func() time.Time) *validator.Validate {
	v := validator.New()
	if err := Register(v, now); err != nil {
		// Only reachable on a malformed tag name, which is a programming error.
		panic(err)
	}
	return v
}

func vitalsStructLevel(sl validator.StructLevel) {
	r := sl.Current().Interface().(VitalsReading)
	switch {
	case r.Systolic == nil && r.Diastolic == nil:
	case r.Systolic == nil:
		sl.ReportError(r.Systolic, "Systolic", "systolic", "required_with", "Diastolic")
	case r.Diastolic == nil:
		sl.ReportError(r.Diastolic, "Diastolic", "diastolic", "required_with", "Systolic")
	case !BloodPressure(*r.Systolic, *r.Diastolic):
		sl.ReportError(r.Systolic, "Systolic", "systolic", "blood_pressure", "")
	}
}

func number(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	}
	return 0, false
}
