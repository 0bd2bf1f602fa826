package service

import (
	"fmt"
	"time"

	"github.com/SahinShazi/HealthSync/internal"
	"github.com/SahinShazi/HealthSync/internal/feed"
	"github.com/SahinShazi/HealthSync/internal/notify"
	"github.com/SahinShazi/HealthSync/internal/report"
)

// Dashboard quick action labels.
const (
	ActionBook     = "Book AI Consultation"
	ActionDownload = "Download Health Report"
	ActionShare    = "Share with Doctor"
	ActionSettings = "Settings"

	RedirectAppointments = "/appointments"
	MsgSettings          = "Settings panel would open here"
	ShareReportTitle     = "HealthSync 2040 Report"
)

type ActionRequest struct {
	Action string `json:"action" validate:"required,max=64"`
}

// Report is a generated health report ready for download.
type Report struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Body        string `json:"body"`
}

type ShareReport struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// ActionOutcome carries whichever result the action produced.
type ActionOutcome struct {
	Action   string       `json:"action"`
	Redirect string       `json:"redirect,omitempty"`
	Report   *Report      `json:"report,omitempty"`
	Share    *ShareReport `json:"share,omitempty"`
	Message  string       `json:"message,omitempty"`
}

// QuickActions runs the buttons of the dashboard's quick action panel.
type QuickActions struct {
	patient internal.Patient
	record  *feed.Record
	center  *notify.Center
	now     func() time.Time
}

func NewQuickActions(patient internal.Patient, record *feed.Record, center *notify.Center) *QuickActions {
	return &QuickActions{patient: patient, record: record, center: center, now: time.Now}
}

// Report renders the current readings as a downloadable text file.
func (q *QuickActions) Report() Report {
	now := q.now()
	return Report{
		Filename:    report.Filename(q.patient, now),
		ContentType: report.ContentType,
		Body:        report.Generate(q.patient, q.record.Snapshot(), now),
	}
}

func (q *QuickActions) Run(scope string, req *ActionRequest) (ActionOutcome, error) {
	if err := validate.Struct(req); err != nil {
		return ActionOutcome{}, err
	}
	out := ActionOutcome{Action: req.Action}
	switch req.Action {
	case ActionBook:
		out.Redirect = RedirectAppointments
	case ActionDownload:
		r := q.Report()
		out.Report = &r
	case ActionShare:
		out.Share = &ShareReport{
			Title: ShareReportTitle,
			Text:  fmt.Sprintf("Health report for %s", q.patient.Name),
		}
	case ActionSettings:
		out.Message = MsgSettings
		q.center.Notify(scope, MsgSettings, notify.KindInfo, 0)
	default:
		return ActionOutcome{}, fmt.Errorf("%w: %q", ErrUnknownAction, req.Action)
	}
	return out, nil
}
