package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SahinShazi/HealthSync/internal"
	"github.com/SahinShazi/HealthSync/internal/catalog"
	"github.com/SahinShazi/HealthSync/internal/feed"
	"github.com/SahinShazi/HealthSync/internal/form"
	"github.com/SahinShazi/HealthSync/internal/notify"
	"github.com/SahinShazi/HealthSync/internal/storage"
)

const scope = "page-1"

func newAppointments(t *testing.T, delay time.Duration) (*AppointmentService, *notify.Center) {
	t.Helper()
	center := notify.NewCenter(nil)
	cat, err := catalog.New(nil)
	require.NoError(t, err)
	t.Cleanup(func() { center.Teardown(scope) })
	return NewAppointmentService(storage.NewMemoryAppointments(), center, cat, nil, nil, delay), center
}

func validRequest() *AppointmentRequest {
	return &AppointmentRequest{
		Type:          "General Consultation",
		DoctorID:      "dr-cardio",
		PreferredDate: time.Now().AddDate(0, 0, 1).Format("2006-01-02"),
		PreferredTime: "10:30",
		Name:          "John Doe",
		Email:         "john@example.com",
		Phone:         "+14155552671",
	}
}

func hasToast(c *notify.Center, msg string) bool {
	for _, tok := range c.Active(scope) {
		if tok.Message == msg {
			return true
		}
	}
	return false
}

func TestBookConfirmsAfterDelay(t *testing.T) {
	svc, center := newAppointments(t, 50*time.Millisecond)
	ctx := context.Background()

	appt, res, err := svc.Book(ctx, scope, validRequest())
	require.NoError(t, err)
	require.True(t, res.Valid)
	require.NotNil(t, appt)
	assert.Equal(t, internal.AppointmentPending, appt.Status)
	assert.Equal(t, "Dr. Cardio", appt.DoctorName)

	require.Eventually(t, func() bool {
		got, err := svc.Get(ctx, appt.ID)
		return err == nil && got.Status == internal.AppointmentConfirmed
	}, time.Second, 10*time.Millisecond)

	got, _ := svc.Get(ctx, appt.ID)
	assert.Equal(t, RedirectDashboard, got.Redirect)
	require.NotNil(t, got.ConfirmedAt)
	assert.True(t, hasToast(center, MsgBooked))
	for _, tok := range center.Active(scope) {
		if tok.Message == MsgBooked {
			assert.Equal(t, BookedLifetime, tok.ExpiresAt.Sub(tok.CreatedAt))
		}
	}
}

func TestBookInvalidReportsEveryField(t *testing.T) {
	svc, center := newAppointments(t, time.Hour)

	req := validRequest()
	req.DoctorID = ""
	req.Name = ""
	req.Email = "not-an-email"
	req.PreferredDate = "2001-01-01"

	appt, res, err := svc.Book(context.Background(), scope, req)
	require.NoError(t, err)
	assert.Nil(t, appt)
	assert.False(t, res.Valid)
	assert.Equal(t, []string{form.MsgNoDoctor}, res.Banners)
	assert.ElementsMatch(t, []form.FieldError{
		{Field: form.FieldPreferredDate, Message: form.MsgPastDate},
		{Field: form.FieldName, Message: form.MsgRequired},
		{Field: form.FieldEmail, Message: form.MsgEmail},
	}, res.Errors)
	assert.Len(t, center.FieldErrors(scope), 3)
}

func TestBookUnknownDoctor(t *testing.T) {
	svc, _ := newAppointments(t, time.Hour)
	req := validRequest()
	req.DoctorID = "dr-nobody"

	appt, res, err := svc.Book(context.Background(), scope, req)
	require.NoError(t, err)
	assert.Nil(t, appt)
	assert.Contains(t, res.Banners, form.MsgNoDoctor)
}

func TestBookRejectsOversizedPayload(t *testing.T) {
	svc, _ := newAppointments(t, time.Hour)
	req := validRequest()
	req.Notes = strings.Repeat("x", 2001)

	_, _, err := svc.Book(context.Background(), scope, req)
	assert.Error(t, err)
}

func TestCancelledBookingNeverConfirms(t *testing.T) {
	svc, center := newAppointments(t, 80*time.Millisecond)
	ctx := context.Background()

	appt, _, err := svc.Book(ctx, scope, validRequest())
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, scope, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, internal.AppointmentCancelled, cancelled.Status)

	time.Sleep(200 * time.Millisecond)
	got, err := svc.Get(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, internal.AppointmentCancelled, got.Status)
	assert.False(t, hasToast(center, MsgBooked))

	_, err = svc.Cancel(ctx, scope, appt.ID)
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestCancelOtherSession(t *testing.T) {
	svc, _ := newAppointments(t, time.Hour)
	ctx := context.Background()
	appt, _, err := svc.Book(ctx, scope, validRequest())
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, "someone-else", appt.ID)
	assert.ErrorIs(t, err, internal.ErrNotFound)

	_, err = svc.Cancel(ctx, scope, "missing")
	assert.ErrorIs(t, err, internal.ErrNotFound)
}

func TestSessionCloseCancelsPendingWork(t *testing.T) {
	svc, center := newAppointments(t, 80*time.Millisecond)
	blog := NewBlog(center, nil, 80*time.Millisecond)
	sessions := NewSessions(center, nil, 0)
	sessions.OnClose(svc.Abandon)
	sessions.OnClose(blog.Forget)
	ctx := context.Background()

	sessions.Open(scope)
	appt, _, err := svc.Book(ctx, scope, validRequest())
	require.NoError(t, err)
	res, err := blog.Subscribe(scope, &NewsletterRequest{Email: "jane@example.com"})
	require.NoError(t, err)
	require.True(t, res.Accepted)
	blog.ToggleBookmark(scope, "ai-diagnostics")

	assert.GreaterOrEqual(t, sessions.Close(scope), 2)

	time.Sleep(200 * time.Millisecond)
	got, err := svc.Get(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, internal.AppointmentCancelled, got.Status)
	assert.Empty(t, center.Active(scope))
	assert.False(t, blog.Bookmarked(scope, "ai-diagnostics"))
}

func TestSweepClosesIdleSessions(t *testing.T) {
	svc, center := newAppointments(t, time.Hour)
	blog := NewBlog(center, nil, time.Hour)
	sessions := NewSessions(center, nil, 10*time.Minute)
	sessions.OnClose(svc.Abandon)
	sessions.OnClose(blog.Forget)
	ctx := context.Background()

	appt, _, err := svc.Book(ctx, scope, validRequest())
	require.NoError(t, err)
	blog.ToggleBookmark(scope, "ai-diagnostics")
	blog.ToggleBookmark("page-2", "ai-diagnostics")
	require.Equal(t, 2, center.Scopes())

	assert.Zero(t, sessions.Sweep(time.Now()))
	assert.Equal(t, 2, center.Scopes())

	assert.Equal(t, 2, sessions.Sweep(time.Now().Add(11*time.Minute)))
	assert.Zero(t, center.Scopes())
	got, err := svc.Get(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, internal.AppointmentCancelled, got.Status)
	assert.False(t, blog.Bookmarked(scope, "ai-diagnostics"))
	assert.False(t, blog.Bookmarked("page-2", "ai-diagnostics"))
}

func TestTouchSweepsLazily(t *testing.T) {
	center := notify.NewCenter(nil)
	sessions := NewSessions(center, nil, time.Minute)
	clock := time.Now()
	sessions.now = func() time.Time { return clock }

	center.AttachFieldError("stale", "email", "x")
	sessions.Touch("live")
	require.Equal(t, 1, center.Scopes())

	clock = clock.Add(2 * time.Minute)
	sessions.Touch("live")
	assert.Zero(t, center.Scopes())
}

// closingRepo tears the session down during the first save, the way a
// concurrent DELETE /api/session would.
type closingRepo struct {
	storage.AppointmentRepository
	once   sync.Once
	onSave func()
}

func (r *closingRepo) SaveAppointment(ctx context.Context, a *internal.Appointment) error {
	r.once.Do(r.onSave)
	return r.AppointmentRepository.SaveAppointment(ctx, a)
}

func TestBookCancelledWhenSessionClosesMidBooking(t *testing.T) {
	center := notify.NewCenter(nil)
	cat, err := catalog.New(nil)
	require.NoError(t, err)
	repo := &closingRepo{AppointmentRepository: storage.NewMemoryAppointments()}
	svc := NewAppointmentService(repo, center, cat, nil, nil, 30*time.Millisecond)
	sessions := NewSessions(center, nil, 0)
	sessions.OnClose(svc.Abandon)
	repo.onSave = func() { sessions.Close(scope) }
	ctx := context.Background()

	appt, res, err := svc.Book(ctx, scope, validRequest())
	require.NoError(t, err)
	require.True(t, res.Valid)
	assert.Equal(t, internal.AppointmentCancelled, appt.Status)

	time.Sleep(80 * time.Millisecond)
	got, err := svc.Get(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, internal.AppointmentCancelled, got.Status)
	assert.Empty(t, center.Active(scope))
}

func TestValidateField(t *testing.T) {
	svc, center := newAppointments(t, time.Hour)

	fe, ok, err := svc.ValidateField(scope, form.FieldPhone, "0123")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, form.MsgPhone, fe.Message)
	require.Len(t, center.FieldErrors(scope), 1)

	_, ok, err = svc.ValidateField(scope, form.FieldPhone, "+14155552671")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, center.FieldErrors(scope))

	_, ok, _ = svc.ValidateField(scope, form.FieldNotes, "")
	assert.True(t, ok, "optional field may be empty")

	_, _, err = svc.ValidateField(scope, "password", "x")
	assert.Error(t, err)
}

func TestSummary(t *testing.T) {
	svc, _ := newAppointments(t, time.Hour)

	empty := svc.Summary(&AppointmentRequest{})
	assert.Equal(t, Summary{Type: catalog.NotSelected, Doctor: catalog.NotSelected, DateTime: catalog.NotSelected}, empty)

	sum := svc.Summary(&AppointmentRequest{
		Type:          "Follow-up",
		DoctorID:      "dr-mind",
		PreferredDate: "2040-03-05",
		PreferredTime: "14:00",
	})
	assert.Equal(t, "Follow-up", sum.Type)
	assert.Equal(t, "Dr. Mind", sum.Doctor)
	assert.Equal(t, "Monday, March 5, 2040 at 14:00", sum.DateTime)

	noTime := svc.Summary(&AppointmentRequest{PreferredDate: "2040-03-05"})
	assert.Equal(t, catalog.NotSelected, noTime.DateTime)
}

func TestSubscribe(t *testing.T) {
	center := notify.NewCenter(nil)
	defer center.Teardown(scope)
	blog := NewBlog(center, nil, 30*time.Millisecond)

	res, err := blog.Subscribe(scope, &NewsletterRequest{Email: "  "})
	require.NoError(t, err)
	assert.Equal(t, MsgEmailMissing, res.Error)
	require.Len(t, center.FieldErrors(scope), 1)
	assert.Equal(t, FieldNewsletterEmail, center.FieldErrors(scope)[0].Field)

	res, _ = blog.Subscribe(scope, &NewsletterRequest{Email: "jane@"})
	assert.Equal(t, MsgEmailInvalid, res.Error)
	require.Len(t, center.FieldErrors(scope), 1)
	assert.Equal(t, MsgEmailInvalid, center.FieldErrors(scope)[0].Message)

	res, _ = blog.Subscribe(scope, &NewsletterRequest{Email: "jane@example.com"})
	assert.True(t, res.Accepted)
	assert.Empty(t, center.FieldErrors(scope))
	assert.False(t, hasToast(center, MsgSubscribed), "toast waits for the delay")
	require.Eventually(t, func() bool { return hasToast(center, MsgSubscribed) }, time.Second, 10*time.Millisecond)
}

func TestBookmarksAndShare(t *testing.T) {
	center := notify.NewCenter(nil)
	defer center.Teardown(scope)
	blog := NewBlog(center, nil, 0)

	assert.True(t, blog.ToggleBookmark(scope, "quantum-health"))
	assert.True(t, hasToast(center, MsgBookmarked))
	assert.False(t, blog.ToggleBookmark(scope, "quantum-health"))
	assert.True(t, hasToast(center, MsgUnbookmarked))
	assert.True(t, blog.ToggleBookmark("other", "quantum-health"), "sessions do not share bookmarks")

	p, err := blog.Share(scope, &ShareRequest{Title: "The Future of AI", URL: "https://healthsync.example/blog/ai"})
	require.NoError(t, err)
	assert.Equal(t, "The Future of AI\n\nRead more: https://healthsync.example/blog/ai", p.Fallback)
	assert.True(t, hasToast(center, MsgLinkCopied))

	_, err = blog.Share(scope, &ShareRequest{Title: "x", URL: "not a url"})
	assert.Error(t, err)

	tok, err := blog.NotifyWhenAvailable(scope, &NotifyRequest{Title: "Nanobots"})
	require.NoError(t, err)
	assert.Equal(t, `You'll be notified when "Nanobots" is available!`, tok.Message)

	assert.Equal(t, "1 min read", blog.ReadingTime(&ReadingTimeRequest{}))
	assert.Equal(t, "2 min read", blog.ReadingTime(&ReadingTimeRequest{Text: strings.Repeat("word ", 201)}))
}

type failingStore struct{ storage.PreferenceStore }

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("quota exceeded")
}
func (failingStore) Set(context.Context, string, string) error { return errors.New("quota exceeded") }

func TestTheme(t *testing.T) {
	ctx := context.Background()
	svc := NewThemeService(storage.NewMemoryPreferences(), nil)

	assert.Equal(t, internal.ThemeDark, svc.Theme(ctx, scope))
	theme, saved := svc.ToggleTheme(ctx, scope)
	assert.True(t, saved)
	assert.Equal(t, internal.ThemeLight, theme)
	assert.Equal(t, internal.ThemeLight, svc.Theme(ctx, scope))
	assert.Equal(t, internal.ThemeDark, svc.Theme(ctx, "page-2"), "each client keeps its own theme")
	theme, _ = svc.ToggleTheme(ctx, scope)
	assert.Equal(t, internal.ThemeDark, theme)

	theme, _ = svc.SetTheme(ctx, scope, "solarized")
	assert.Equal(t, internal.ThemeDark, theme)

	broken := NewThemeService(failingStore{}, nil)
	assert.Equal(t, internal.ThemeDark, broken.Theme(ctx, scope))
	theme, saved = broken.ToggleTheme(ctx, scope)
	assert.False(t, saved)
	assert.Equal(t, internal.ThemeDark, theme)
}

func TestQuickActions(t *testing.T) {
	center := notify.NewCenter(nil)
	defer center.Teardown(scope)
	patient := internal.DemoPatient()
	q := NewQuickActions(patient, feed.NewRecord(patient.ID, time.Now()), center)

	out, err := q.Run(scope, &ActionRequest{Action: ActionBook})
	require.NoError(t, err)
	assert.Equal(t, RedirectAppointments, out.Redirect)

	out, err = q.Run(scope, &ActionRequest{Action: ActionDownload})
	require.NoError(t, err)
	require.NotNil(t, out.Report)
	assert.True(t, strings.HasPrefix(out.Report.Filename, "health-report-HS2040-001-"))
	assert.Contains(t, out.Report.Body, "John Doe")

	out, err = q.Run(scope, &ActionRequest{Action: ActionShare})
	require.NoError(t, err)
	assert.Equal(t, &ShareReport{Title: ShareReportTitle, Text: "Health report for John Doe"}, out.Share)

	out, err = q.Run(scope, &ActionRequest{Action: ActionSettings})
	require.NoError(t, err)
	assert.Equal(t, MsgSettings, out.Message)
	assert.True(t, hasToast(center, MsgSettings))

	_, err = q.Run(scope, &ActionRequest{Action: "Self-destruct"})
	assert.ErrorIs(t, err, ErrUnknownAction)
	_, err = q.Run(scope, &ActionRequest{})
	assert.Error(t, err)
}
