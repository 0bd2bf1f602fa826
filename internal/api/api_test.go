package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SahinShazi/HealthSync/internal"
	"github.com/SahinShazi/HealthSync/internal/api"
	"github.com/SahinShazi/HealthSync/internal/app"
	"github.com/SahinShazi/HealthSync/internal/config"
	"github.com/SahinShazi/HealthSync/internal/form"
	"github.com/SahinShazi/HealthSync/internal/service"
)

type envelope struct {
	Data  json.RawMessage    `json:"data"`
	Meta  map[string]any     `json:"meta"`
	Error *internal.AppError `json:"error"`
}

func testConfig() *config.Config {
	return &config.Config{
		Env:                 "development",
		LogLevel:            "debug",
		StorageBackend:      config.BackendMemory,
		FeedTick:            time.Hour,
		FeedChartInterval:   time.Hour,
		FeedInsightInterval: time.Hour,
		BookingDelay:        60 * time.Millisecond,
		NewsletterDelay:     60 * time.Millisecond,
		CORSOrigins:         []string{"*"},
		RateLimitRPS:        1000,
		RateLimitBurst:      1000,
	}
}

func setupRouter(t *testing.T, cfg *config.Config) *gin.Engine {
	_, r := setupApp(t, cfg)
	return r
}

func setupApp(t *testing.T, cfg *config.Config) (*app.App, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	a, err := app.New(context.Background(), cfg, internal.NopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a, api.NewRouter(a)
}

func do(r http.Handler, method, path, body, session string) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != "" {
		req.Header.Set(api.HeaderSessionID, session)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

type notificationsView struct {
	Notifications []struct {
		ID      string `json:"id"`
		Message string `json:"message"`
		Kind    string `json:"kind"`
	} `json:"notifications"`
	FieldErrors []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"field_errors"`
}

func notifications(t *testing.T, r http.Handler, session string) notificationsView {
	t.Helper()
	w := do(r, "GET", "/api/notifications", "", session)
	require.Equal(t, 200, w.Code)
	var v notificationsView
	decode(t, w, &v)
	return v
}

func hasMessage(v notificationsView, msg string) bool {
	for _, n := range v.Notifications {
		if n.Message == msg {
			return true
		}
	}
	return false
}

func bookingBody() string {
	date := time.Now().AddDate(0, 0, 2).Format("2006-01-02")
	return `{"appointmentType":"General Consultation","selectedDoctor":"dr-neural","preferredDate":"` + date +
		`","preferredTime":"09:30","fullName":"Jane Roe","email":"jane@example.com","phone":"+14155552671"}`
}

func TestHealthAndHeaders(t *testing.T) {
	r := setupRouter(t, testConfig())

	w := do(r, "GET", "/healthz", "", "")
	assert.Equal(t, 200, w.Code)
	assert.NotEmpty(t, w.Header().Get(api.HeaderRequestID))

	w = do(r, "GET", "/api/notifications", "", "")
	assert.NotEmpty(t, w.Header().Get(api.HeaderSessionID), "a session is issued")

	w = do(r, "GET", "/api/notifications", "", "page-42")
	assert.Equal(t, "page-42", w.Header().Get(api.HeaderSessionID))
}

func TestValidateEndpoint(t *testing.T) {
	r := setupRouter(t, testConfig())

	var res struct {
		Valid bool `json:"valid"`
	}
	w := do(r, "POST", "/api/validate/email", `{"value":"user@example.com"}`, "s")
	require.Equal(t, 200, w.Code)
	decode(t, w, &res)
	assert.True(t, res.Valid)

	w = do(r, "POST", "/api/validate/phone", `{"value":"0123"}`, "s")
	decode(t, w, &res)
	assert.False(t, res.Valid)

	w = do(r, "POST", "/api/validate/blood_pressure", `{"values":["120","80"]}`, "s")
	decode(t, w, &res)
	assert.True(t, res.Valid)

	w = do(r, "POST", "/api/validate/cholesterol", `{"value":"5"}`, "s")
	assert.Equal(t, 404, w.Code)

	w = do(r, "POST", "/api/validate/email", `{not json`, "s")
	assert.Equal(t, 400, w.Code)
}

func TestValidateVitals(t *testing.T) {
	r := setupRouter(t, testConfig())

	var res struct {
		Valid  bool `json:"valid"`
		Errors []struct {
			Field string `json:"field"`
		} `json:"errors"`
	}
	w := do(r, "POST", "/api/validate/vitals", `{"heart_rate":72,"systolic":120,"diastolic":80}`, "s")
	require.Equal(t, 200, w.Code)
	decode(t, w, &res)
	assert.True(t, res.Valid)

	w = do(r, "POST", "/api/validate/vitals", `{"heart_rate":250,"systolic":120}`, "s")
	decode(t, w, &res)
	assert.False(t, res.Valid)
	assert.Len(t, res.Errors, 2)
}

func TestGenericFormRequiresFields(t *testing.T) {
	r := setupRouter(t, testConfig())
	const session = "contact-page"

	body := `{"fields":[{"name":"name","value":"Jane","required":true},{"name":"email","value":"","required":true},{"name":"message","value":"  ","required":true}]}`
	w := do(r, "POST", "/api/forms/validate", body, session)
	require.Equal(t, 400, w.Code)
	var res form.Result
	env := decode(t, w, &res)
	require.NotNil(t, env.Error)
	assert.False(t, res.Valid)
	assert.Len(t, res.Errors, 2)
	assert.Len(t, notifications(t, r, session).FieldErrors, 2)

	body = `{"fields":[{"name":"name","value":"Jane","required":true},{"name":"email","value":"jane@example.com","required":true},{"name":"message","value":"Hi","required":true}]}`
	w = do(r, "POST", "/api/forms/validate", body, session)
	require.Equal(t, 200, w.Code)
	v := notifications(t, r, session)
	assert.Empty(t, v.FieldErrors)
	assert.True(t, hasMessage(v, form.MsgSubmitted))
}

func TestBookingLifecycle(t *testing.T) {
	r := setupRouter(t, testConfig())
	const session = "booking-page"

	w := do(r, "POST", "/api/appointments", bookingBody(), session)
	require.Equal(t, 202, w.Code, w.Body.String())
	var appt internal.Appointment
	decode(t, w, &appt)
	assert.Equal(t, internal.AppointmentPending, appt.Status)
	assert.Equal(t, "Dr. Neural", appt.DoctorName)

	w = do(r, "GET", "/api/appointments/"+appt.ID, "", "someone-else")
	assert.Equal(t, 404, w.Code)

	require.Eventually(t, func() bool {
		w := do(r, "GET", "/api/appointments/"+appt.ID, "", session)
		var got internal.Appointment
		decode(t, w, &got)
		return got.Status == internal.AppointmentConfirmed && got.Redirect == service.RedirectDashboard
	}, 2*time.Second, 20*time.Millisecond)
	assert.True(t, hasMessage(notifications(t, r, session), service.MsgBooked))

	w = do(r, "DELETE", "/api/appointments/"+appt.ID, "", session)
	assert.Equal(t, 409, w.Code)

	w = do(r, "GET", "/api/appointments", "", session)
	require.Equal(t, 200, w.Code)
	var list []internal.Appointment
	decode(t, w, &list)
	assert.Len(t, list, 1)
}

func TestBookingInvalid(t *testing.T) {
	r := setupRouter(t, testConfig())
	const session = "booking-page"

	w := do(r, "POST", "/api/appointments", `{"email":"nope","phone":"abc"}`, session)
	require.Equal(t, 400, w.Code)
	var res form.Result
	decode(t, w, &res)
	assert.Equal(t, []string{form.MsgNoDoctor}, res.Banners)
	assert.Len(t, res.Errors, 6)

	v := notifications(t, r, session)
	assert.True(t, hasMessage(v, form.MsgNoDoctor), "banner is shown")
	assert.Len(t, v.FieldErrors, 6)
}

func TestCancelBookingAndTeardown(t *testing.T) {
	cfg := testConfig()
	cfg.BookingDelay = 300 * time.Millisecond
	r := setupRouter(t, cfg)
	const session = "booking-page"

	w := do(r, "POST", "/api/appointments", bookingBody(), session)
	require.Equal(t, 202, w.Code)
	var first internal.Appointment
	decode(t, w, &first)

	w = do(r, "DELETE", "/api/appointments/"+first.ID, "", session)
	require.Equal(t, 200, w.Code)

	w = do(r, "POST", "/api/appointments", bookingBody(), session)
	require.Equal(t, 202, w.Code)
	var second internal.Appointment
	decode(t, w, &second)

	w = do(r, "DELETE", "/api/session", "", session)
	require.Equal(t, 200, w.Code)

	time.Sleep(500 * time.Millisecond)
	for _, id := range []string{first.ID, second.ID} {
		w = do(r, "GET", "/api/appointments/"+id, "", session)
		var got internal.Appointment
		decode(t, w, &got)
		assert.Equal(t, internal.AppointmentCancelled, got.Status, id)
	}
	assert.False(t, hasMessage(notifications(t, r, session), service.MsgBooked))
}

func TestAppointmentFieldAndSummary(t *testing.T) {
	r := setupRouter(t, testConfig())

	var fe struct {
		Valid   bool   `json:"valid"`
		Message string `json:"message"`
	}
	w := do(r, "POST", "/api/appointments/fields/dateOfBirth", `{"value":"2999-01-01"}`, "s")
	require.Equal(t, 200, w.Code)
	decode(t, w, &fe)
	assert.False(t, fe.Valid)
	assert.Equal(t, form.MsgDateOfBirth, fe.Message)

	w = do(r, "POST", "/api/appointments/fields/password", `{"value":"x"}`, "s")
	assert.Equal(t, 404, w.Code)

	var sum service.Summary
	w = do(r, "POST", "/api/appointments/summary", `{"selectedDoctor":"dr-nutri"}`, "s")
	require.Equal(t, 200, w.Code)
	decode(t, w, &sum)
	assert.Equal(t, "Dr. Nutri", sum.Doctor)
	assert.Equal(t, "Not selected", sum.Type)
	assert.Equal(t, "Not selected", sum.DateTime)
}

func TestIdleSessionsAreReclaimed(t *testing.T) {
	cfg := testConfig()
	cfg.SessionIdle = time.Minute
	a, r := setupApp(t, cfg)

	body := `{"fields":[{"name":"email","value":"","required":true}]}`
	for i := 0; i < 50; i++ {
		w := do(r, "POST", "/api/forms/validate", body, "")
		require.Equal(t, 400, w.Code)
	}
	do(r, "POST", "/api/forms/validate", body, "kept-page")

	var health struct {
		Sessions int `json:"sessions"`
	}
	decode(t, do(r, "GET", "/healthz", "", ""), &health)
	assert.Equal(t, 51, health.Sessions)

	assert.Equal(t, 51, a.Sessions().Sweep(time.Now().Add(2*time.Minute)))
	decode(t, do(r, "GET", "/healthz", "", ""), &health)
	assert.Zero(t, health.Sessions)
	assert.Empty(t, notifications(t, r, "kept-page").FieldErrors)

	do(r, "POST", "/api/forms/validate", body, "kept-page")
	assert.Zero(t, a.Sessions().Sweep(time.Now()))
	assert.Len(t, notifications(t, r, "kept-page").FieldErrors, 1)
}

func TestNotificationDismiss(t *testing.T) {
	r := setupRouter(t, testConfig())
	const session = "blog-page"

	w := do(r, "POST", "/api/blog/bookmarks/ai-diagnostics", "", session)
	require.Equal(t, 200, w.Code)
	v := notifications(t, r, session)
	require.Len(t, v.Notifications, 1)

	w = do(r, "DELETE", "/api/notifications/"+v.Notifications[0].ID, "", "someone-else")
	assert.Equal(t, 404, w.Code)
	require.Len(t, notifications(t, r, session).Notifications, 1)

	w = do(r, "DELETE", "/api/notifications/"+v.Notifications[0].ID, "", session)
	assert.Equal(t, 200, w.Code)
	assert.Empty(t, notifications(t, r, session).Notifications)

	w = do(r, "DELETE", "/api/notifications/"+v.Notifications[0].ID, "", session)
	assert.Equal(t, 404, w.Code)
	w = do(r, "DELETE", "/api/notifications/not-a-uuid", "", session)
	assert.Equal(t, 400, w.Code)
}

func TestDashboard(t *testing.T) {
	r := setupRouter(t, testConfig())

	var view struct {
		Patient internal.Patient `json:"patient"`
		Metrics []struct {
			Name    string `json:"name"`
			Display string `json:"display"`
		} `json:"metrics"`
	}
	w := do(r, "GET", "/api/dashboard", "", "s")
	require.Equal(t, 200, w.Code)
	decode(t, w, &view)
	assert.Equal(t, "John Doe", view.Patient.Name)
	require.Len(t, view.Metrics, 6)
	for _, m := range view.Metrics {
		if m.Name == "temperature" {
			assert.Equal(t, "36.8", m.Display)
		}
	}

	w = do(r, "GET", "/api/dashboard/history/heart_rate", "", "s")
	require.Equal(t, 200, w.Code)
	var points []map[string]any
	decode(t, w, &points)
	assert.Len(t, points, 24)

	w = do(r, "GET", "/api/dashboard/history/mood", "", "s")
	assert.Equal(t, 404, w.Code)

	w = do(r, "GET", "/api/dashboard/insights", "", "s")
	require.Equal(t, 200, w.Code)
	var insights []map[string]any
	decode(t, w, &insights)
	assert.NotEmpty(t, insights)

	w = do(r, "GET", "/api/dashboard/sleep", "", "s")
	assert.Equal(t, 200, w.Code)

	w = do(r, "GET", "/api/dashboard/report", "", "s")
	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "health-report-HS2040-001-")
	assert.True(t, strings.HasPrefix(w.Body.String(), "HealthSync 2040 - Health Report"))
}

func TestQuickActions(t *testing.T) {
	r := setupRouter(t, testConfig())

	var out service.ActionOutcome
	w := do(r, "POST", "/api/dashboard/actions", `{"action":"Book AI Consultation"}`, "s")
	require.Equal(t, 200, w.Code)
	decode(t, w, &out)
	assert.Equal(t, "/appointments", out.Redirect)

	w = do(r, "POST", "/api/dashboard/actions", `{"action":"Share with Doctor"}`, "s")
	decode(t, w, &out)
	require.NotNil(t, out.Share)
	assert.Equal(t, "Health report for John Doe", out.Share.Text)

	w = do(r, "POST", "/api/dashboard/actions", `{"action":"Launch"}`, "s")
	assert.Equal(t, 404, w.Code)
}

func TestDoctors(t *testing.T) {
	r := setupRouter(t, testConfig())

	w := do(r, "GET", "/api/doctors", "", "s")
	require.Equal(t, 200, w.Code)
	var list []map[string]any
	env := decode(t, w, &list)
	assert.Len(t, list, 4)
	assert.EqualValues(t, 4, env.Meta["count"])

	var doc struct {
		Name       string `json:"name"`
		RatingText string `json:"rating_text"`
		Stars      struct {
			Full int `json:"full"`
		} `json:"stars"`
	}
	w = do(r, "GET", "/api/doctors/dr-cardio", "", "s")
	require.Equal(t, 200, w.Code)
	decode(t, w, &doc)
	assert.Equal(t, "Dr. Cardio", doc.Name)
	assert.NotEmpty(t, doc.RatingText)
	assert.GreaterOrEqual(t, doc.Stars.Full, 4)

	w = do(r, "GET", "/api/doctors/dr-who", "", "s")
	assert.Equal(t, 404, w.Code)
}

func TestBlog(t *testing.T) {
	r := setupRouter(t, testConfig())
	const session = "blog-page"

	w := do(r, "POST", "/api/blog/newsletter", `{"email":""}`, session)
	require.Equal(t, 400, w.Code)
	env := decode(t, w, nil)
	assert.Equal(t, service.MsgEmailMissing, env.Error.Message)

	w = do(r, "POST", "/api/blog/newsletter", `{"email":"reader@example.com"}`, session)
	require.Equal(t, 202, w.Code)
	require.Eventually(t, func() bool {
		return hasMessage(notifications(t, r, session), service.MsgSubscribed)
	}, 2*time.Second, 20*time.Millisecond)

	var share service.SharePayload
	w = do(r, "POST", "/api/blog/share", `{"title":"Quantum Health","url":"https://example.com/q"}`, session)
	require.Equal(t, 200, w.Code)
	decode(t, w, &share)
	assert.Equal(t, "Quantum Health\n\nRead more: https://example.com/q", share.Fallback)

	w = do(r, "POST", "/api/blog/notify", `{"title":"Nanomedicine"}`, session)
	require.Equal(t, 200, w.Code)
	w = do(r, "POST", "/api/blog/notify", `{}`, session)
	assert.Equal(t, 400, w.Code)

	var rt struct {
		ReadingTime string `json:"reading_time"`
	}
	w = do(r, "POST", "/api/blog/reading-time", `{"text":"one two three"}`, session)
	decode(t, w, &rt)
	assert.Equal(t, "1 min read", rt.ReadingTime)
}

func TestStatsCounter(t *testing.T) {
	r := setupRouter(t, testConfig())

	var out struct {
		Frames []string `json:"frames"`
	}
	w := do(r, "POST", "/api/stats/counter", `{"target":50,"duration_ms":160}`, "")
	require.Equal(t, 200, w.Code)
	decode(t, w, &out)
	require.Len(t, out.Frames, 10)
	assert.Equal(t, "5", out.Frames[0])
	assert.Equal(t, "50", out.Frames[9])

	w = do(r, "POST", "/api/stats/counter", `{"target":2500000}`, "")
	require.Equal(t, 200, w.Code)
	decode(t, w, &out)
	assert.Equal(t, "2.5M", out.Frames[len(out.Frames)-1])

	w = do(r, "POST", "/api/stats/counter", `{"target":-1}`, "")
	assert.Equal(t, 400, w.Code)
}

func TestTheme(t *testing.T) {
	r := setupRouter(t, testConfig())

	var th struct {
		Theme string `json:"theme"`
		Saved bool   `json:"saved"`
	}
	w := do(r, "GET", "/api/preferences/theme", "", "s")
	decode(t, w, &th)
	assert.Equal(t, "dark", th.Theme)

	w = do(r, "POST", "/api/preferences/theme", "", "s")
	require.Equal(t, 200, w.Code)
	decode(t, w, &th)
	assert.Equal(t, "light", th.Theme)
	assert.True(t, th.Saved)

	w = do(r, "GET", "/api/preferences/theme", "", "other")
	decode(t, w, &th)
	assert.Equal(t, "dark", th.Theme, "another client's toggle does not leak")

	w = do(r, "POST", "/api/preferences/theme", `{"theme":"dark"}`, "s")
	decode(t, w, &th)
	assert.Equal(t, "dark", th.Theme)

	w = do(r, "POST", "/api/preferences/theme", `{"theme":"neon"}`, "s")
	assert.Equal(t, 400, w.Code)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPS = 0.001
	cfg.RateLimitBurst = 1
	r := setupRouter(t, cfg)

	w := do(r, "POST", "/api/blog/newsletter", `{"email":"a@example.com"}`, "s")
	assert.Equal(t, 202, w.Code)
	w = do(r, "POST", "/api/blog/newsletter", `{"email":"a@example.com"}`, "s")
	assert.Equal(t, 429, w.Code)

	w = do(r, "GET", "/api/dashboard", "", "s")
	assert.Equal(t, 200, w.Code, "reads are not limited")
}

func TestMetricsEndpoint(t *testing.T) {
	r := setupRouter(t, testConfig())
	do(r, "GET", "/healthz", "", "")

	w := do(r, "GET", "/metrics", "", "")
	require.Equal(t, 200, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "healthsync_http_requests_total")
	assert.Contains(t, body, "healthsync_feed_metric_value")
}
