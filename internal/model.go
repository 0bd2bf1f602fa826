package internal

import "time"

// Patient is the static demo profile shown on the dashboard.
type Patient struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Age         int      `json:"age"`
	Gender      string   `json:"gender"`
	HeightCM    int      `json:"height_cm"`
	WeightKG    int      `json:"weight_kg"`
	BMI         float64  `json:"bmi"`
	BloodType   string   `json:"blood_type"`
	Allergies   []string `json:"allergies"`
	Medications []string `json:"medications"`
	Conditions  []string `json:"conditions"`
	LastCheckup string   `json:"last_checkup"`
}

// DemoPatient returns the single patient the simulated dashboard tracks.
func DemoPatient() Patient {
	return Patient{
		ID:          "HS2040-001",
		Name:        "John Doe",
		Age:         34,
		Gender:      "Male",
		HeightCM:    175,
		WeightKG:    70,
		BMI:         22.9,
		BloodType:   "O+",
		Allergies:   []string{"Penicillin"},
		Medications: []string{"Vitamin D", "Omega-3"},
		Conditions:  []string{},
		LastCheckup: "2024-12-01",
	}
}

type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

type Appointment struct {
	ID            string            `json:"id"`
	SessionID     string            `json:"session_id"`
	Type          string            `json:"type"`
	DoctorID      string            `json:"doctor_id"`
	DoctorName    string            `json:"doctor_name"`
	PreferredDate string            `json:"preferred_date"`
	PreferredTime string            `json:"preferred_time"`
	Name          string            `json:"name"`
	Email         string            `json:"email"`
	Phone         string            `json:"phone"`
	DateOfBirth   string            `json:"date_of_birth,omitempty"`
	Notes         string            `json:"notes,omitempty"`
	Status        AppointmentStatus `json:"status"`
	Redirect      string            `json:"redirect,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	ConfirmedAt   *time.Time        `json:"confirmed_at,omitempty"`
}

// Preference is one key/value entry of the client preference store.
type Preference struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	ThemeKey   = "theme"
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// PreferenceKey namespaces a preference by the client that owns it.
func PreferenceKey(name, client string) string {
	return name + ":" + client
}
