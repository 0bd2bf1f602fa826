package validate

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.October, 19, 10, 30, 0, 0, time.UTC)

func TestEmail(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"user@example.com", true},
		{"  user@example.com  ", true},
		{"first.last@sub.example.co", true},
		{"userexample.com", false},
		{"user@examplecom", false},
		{"user@", false},
		{"@example.com", false},
		{"us er@example.com", false},
		{"", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Email(c.in), c.in)
	}
}

func TestPhone(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"+14155552671", true},
		{"+1 415 555 2671", true},
		{"4155552671", true},
		{"0123456789", false},
		{"+0123456789", false},
		{"+1415555abcd", false},
		{"phone", false},
		{"12345678901234567", false},
		{"", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Phone(c.in), c.in)
	}
}

func TestDate(t *testing.T) {
	assert.True(t, Date("2026-10-19"))
	assert.True(t, Date("2026-10-19T09:15"))
	assert.True(t, Date("2026-10-19T09:15:00Z"))
	assert.False(t, Date("2026-02-30"))
	assert.False(t, Date("19/10/2026"))
	assert.False(t, Date(""))
}

func TestAge(t *testing.T) {
	assert.True(t, Age("1906-10-19", 0, 120, fixedNow), "exactly 120 years")
	assert.False(t, Age("1905-10-19", 0, 120, fixedNow), "121 years")
	assert.False(t, Age("2026-10-20", 0, 120, fixedNow), "born tomorrow")
	assert.True(t, Age("2026-10-19", 0, 120, fixedNow), "born today")
	assert.False(t, Age("not a date", 0, 120, fixedNow))
}

func TestAgeCountsOnlyCompletedYears(t *testing.T) {
	// Birthday in December has not happened yet on October 19th.
	assert.Equal(t, 25, YearsBetween(time.Date(2000, 12, 1, 0, 0, 0, 0, time.UTC), fixedNow))
	assert.True(t, Age("2000-12-01", 18, 25, fixedNow))
	assert.False(t, Age("2000-12-01", 26, 120, fixedNow))
	assert.Equal(t, 26, YearsBetween(time.Date(2000, 10, 19, 0, 0, 0, 0, time.UTC), fixedNow))
}

func TestFutureOrToday(t *testing.T) {
	assert.True(t, FutureOrToday("2026-10-19", fixedNow), "today at midnight")
	assert.True(t, FutureOrToday("2026-10-20", fixedNow))
	assert.False(t, FutureOrToday("2026-10-18", fixedNow), "yesterday")
	assert.False(t, FutureOrToday("soon", fixedNow))
}

func TestFutureOrTodayUsesLocalMidnight(t *testing.T) {
	loc := time.FixedZone("UTC-7", -7*3600)
	lateEvening := time.Date(2026, 10, 19, 23, 0, 0, 0, loc)
	assert.True(t, FutureOrToday("2026-10-19", lateEvening))
	assert.False(t, FutureOrToday("2026-10-18", lateEvening))
}

func TestVitalRanges(t *testing.T) {
	assert.True(t, HeartRate(40))
	assert.True(t, HeartRate(200))
	assert.False(t, HeartRate(39.9))
	assert.False(t, HeartRate(math.NaN()))

	assert.True(t, BloodOxygen(70))
	assert.False(t, BloodOxygen(100.1))

	assert.True(t, Temperature(36.6))
	assert.False(t, Temperature(34.9))
	assert.False(t, Temperature(42.5))

	assert.True(t, BloodPressure(120, 80))
	assert.False(t, BloodPressure(69, 80))
	assert.False(t, BloodPressure(120, 131))
}

type bookingForm struct {
	Email string `validate:"required,hs_email"`
	Phone string `validate:"required,hs_phone"`
	DOB   string `validate:"omitempty,hs_dob"`
	When  string `validate:"required,hs_future"`
	Pulse int    `validate:"heart_rate"`
}

func TestRegisteredTags(t *testing.T) {
	v := New(func() time.Time { return fixedNow })

	ok := bookingForm{Email: "a@b.co", Phone: "+14155552671", DOB: "1990-01-01", When: "2026-10-19", Pulse: 72}
	require.NoError(t, v.Struct(ok))

	bad := ok
	bad.When = "2026-10-01"
	bad.Pulse = 20
	err := v.Struct(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hs_future")
	assert.Contains(t, err.Error(), "heart_rate")
}

func TestVitalsReading(t *testing.T) {
	v := New(nil)
	f := func(x float64) *float64 { return &x }

	require.NoError(t, v.Struct(VitalsReading{}))
	require.NoError(t, v.Struct(VitalsReading{HeartRate: f(72), Systolic: f(120), Diastolic: f(80)}))

	err := v.Struct(VitalsReading{Systolic: f(120)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required_with")

	err = v.Struct(VitalsReading{Systolic: f(250), Diastolic: f(80)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blood_pressure")

	err = v.Struct(VitalsReading{Temperature: f(45)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "body_temp")
}

func TestCheck(t *testing.T) {
	cases := []struct {
		kind   string
		values []string
		want   bool
	}{
		{"email", []string{"user@example.com"}, true},
		{"phone", []string{"0123"}, false},
		{"date", []string{"2026-02-30"}, false},
		{"dob", []string{"1990-05-01"}, true},
		{"future", []string{"2026-10-19"}, true},
		{"future", []string{"2026-10-18"}, false},
		{"heart_rate", []string{"72"}, true},
		{"heart_rate", []string{"fast"}, false},
		{"blood_oxygen", []string{"69.9"}, false},
		{"temperature", []string{" 36.8 "}, true},
		{"blood_pressure", []string{"120/80"}, true},
		{"blood_pressure", []string{"120", "150"}, false},
		{"blood_pressure", []string{"120"}, false},
	}
	for _, tc := range cases {
		got, err := Check(tc.kind, tc.values, fixedNow)
		require.NoError(t, err, tc.kind)
		assert.Equal(t, tc.want, got, "%s %v", tc.kind, tc.values)
	}

	_, err := Check("cholesterol", []string{"5"}, fixedNow)
	assert.ErrorIs(t, err, ErrUnknownKind)
	_, err = Check("email", nil, fixedNow)
	assert.Error(t, err)
	assert.Len(t, Kinds, 9)
}
