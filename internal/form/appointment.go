package form

import (
	"time"

	"github.com/SahinShazi/HealthSync/internal/validate"
)

// Appointment form field names, as posted by the booking page.
const (
	FieldType          = "appointmentType"
	FieldDoctor        = "selectedDoctor"
	FieldPreferredDate = "preferredDate"
	FieldPreferredTime = "preferredTime"
	FieldName          = "fullName"
	FieldEmail         = "email"
	FieldPhone         = "phone"
	FieldDateOfBirth   = "dateOfBirth"
	FieldNotes         = "notes"
)

const (
	MsgEmail       = "Please enter a valid email address"
	MsgPhone       = "Please enter a valid phone number"
	MsgDateOfBirth = "Please enter a valid date of birth"
	MsgPastDate    = "Appointment date cannot be in the past"
	MsgNoDoctor    = "Please select an AI doctor"
)

// AppointmentRules are the per-field checks of the booking form. now is read
// on every check so long-lived controllers keep an accurate "today".
func AppointmentRules(now func() time.Time) map[string]Rule {
	if now == nil {
		now = time.Now
	}
	return map[string]Rule{
		FieldEmail: {Check: validate.Email, Message: MsgEmail},
		FieldPhone: {Check: validate.Phone, Message: MsgPhone},
		FieldDateOfBirth: {
			Check:   func(s string) bool { return validate.Age(s, 0, 120, now()) },
			Message: MsgDateOfBirth,
		},
		FieldPreferredDate: {
			Check:   func(s string) bool { return validate.FutureOrToday(s, now()) },
			Message: MsgPastDate,
		},
	}
}

// AppointmentForm lays out a booking submission for the controller.
func AppointmentForm(typ, doctor, date, tod, name, email, phone, dob, notes string) Form {
	return Form{
		Fields: []Field{
			{Name: FieldType, Value: typ, Required: true},
			{Name: FieldPreferredDate, Value: date, Required: true},
			{Name: FieldPreferredTime, Value: tod, Required: true},
			{Name: FieldName, Value: name, Required: true},
			{Name: FieldEmail, Value: email, Required: true},
			{Name: FieldPhone, Value: phone, Required: true},
			{Name: FieldDateOfBirth, Value: dob},
			{Name: FieldNotes, Value: notes},
		},
		Selections: []Selection{
			{Name: FieldDoctor, Value: doctor, Message: MsgNoDoctor},
		},
	}
}

// Required reports whether the booking form marks the field as required.
func Required(field string) bool {
	switch field {
	case FieldType, FieldPreferredDate, FieldPreferredTime, FieldName, FieldEmail, FieldPhone:
		return true
	}
	return false
}
