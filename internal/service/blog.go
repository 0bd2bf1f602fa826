package service

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/SahinShazi/HealthSync/internal"
	"github.com/SahinShazi/HealthSync/internal/format"
	"github.com/SahinShazi/HealthSync/internal/notify"
	hsvalidate "github.com/SahinShazi/HealthSync/internal/validate"
)

const (
	FieldNewsletterEmail = "email"

	MsgEmailMissing = "Please enter your email address"
	MsgEmailInvalid = "Please enter a valid email address"
	MsgSubscribed   = "Thank you for subscribing! You'll receive our latest updates soon."

	MsgBookmarked   = "Article saved to bookmarks"
	MsgUnbookmarked = "Article removed from bookmarks"
	MsgLinkCopied   = "Article link copied to clipboard!"

	DefaultNewsletterDelay = 2 * time.Second
)

type NewsletterRequest struct {
	Email string `json:"email" validate:"max=254"`
}

type ShareRequest struct {
	Title string `json:"title" validate:"required,max=300"`
	URL   string `json:"url" validate:"required,url"`
}

type NotifyRequest struct {
	Title string `json:"title" validate:"required,max=300"`
}

type ReadingTimeRequest struct {
	Text string `json:"text"`
}

// SharePayload is what the page hands to the share sheet, or copies to the
// clipboard when there is none.
type SharePayload struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Fallback string `json:"fallback"`
	Toast    string `json:"toast"`
}

// SubscribeResult reports a newsletter signup. Accepted means the
// confirmation toast is scheduled; otherwise Error holds the field message.
type SubscribeResult struct {
	Accepted bool   `json:"accepted"`
	Error    string `json:"error,omitempty"`
}

// Blog serves the newsletter, bookmark, share and notify stubs of the blog
// pages. Bookmarks live for the session only.
type Blog struct {
	center *notify.Center
	logger internal.Logger
	delay  time.Duration

	mu        sync.Mutex
	bookmarks map[string]map[string]bool
}

func NewBlog(center *notify.Center, logger internal.Logger, newsletterDelay time.Duration) *Blog {
	if logger == nil {
		logger = internal.NopLogger()
	}
	if newsletterDelay <= 0 {
		newsletterDelay = DefaultNewsletterDelay
	}
	return &Blog{
		center:    center,
		logger:    logger,
		delay:     newsletterDelay,
		bookmarks: make(map[string]map[string]bool),
	}
}

// Subscribe checks the address and schedules the thank-you toast in the
// session after the simulated delay.
func (b *Blog) Subscribe(scope string, req *NewsletterRequest) (SubscribeResult, error) {
	if err := validate.Struct(req); err != nil {
		return SubscribeResult{}, err
	}
	b.center.ClearFieldError(scope, FieldNewsletterEmail)

	email := strings.TrimSpace(req.Email)
	switch {
	case email == "":
		b.center.AttachFieldError(scope, FieldNewsletterEmail, MsgEmailMissing)
		return SubscribeResult{Error: MsgEmailMissing}, nil
	case !hsvalidate.Email(email):
		b.center.AttachFieldError(scope, FieldNewsletterEmail, MsgEmailInvalid)
		return SubscribeResult{Error: MsgEmailInvalid}, nil
	}

	b.center.Group(scope).After(b.delay, func() {
		b.center.Notify(scope, MsgSubscribed, notify.KindSuccess, 0)
	})
	b.logger.Debugf("newsletter signup scheduled for session %s", scope)
	return SubscribeResult{Accepted: true}, nil
}

// ToggleBookmark flips the bookmark state of an article and returns the new
// state.
func (b *Blog) ToggleBookmark(scope, article string) bool {
	b.mu.Lock()
	marks, ok := b.bookmarks[scope]
	if !ok {
		marks = make(map[string]bool)
		b.bookmarks[scope] = marks
	}
	saved := !marks[article]
	if saved {
		marks[article] = true
	} else {
		delete(marks, article)
	}
	b.mu.Unlock()

	if saved {
		b.center.Notify(scope, MsgBookmarked, notify.KindSuccess, 0)
	} else {
		b.center.Notify(scope, MsgUnbookmarked, notify.KindInfo, 0)
	}
	return saved
}

func (b *Blog) Bookmarked(scope, article string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bookmarks[scope][article]
}

// Forget drops the bookmarks of a closed session.
func (b *Blog) Forget(scope string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.bookmarks, scope)
}

func (b *Blog) Share(scope string, req *ShareRequest) (SharePayload, error) {
	if err := validate.Struct(req); err != nil {
		return SharePayload{}, err
	}
	p := ShareText(req.Title, req.URL)
	b.center.Notify(scope, p.Toast, notify.KindSuccess, 0)
	return p, nil
}

// ShareText builds the clipboard fallback for a shared link.
func ShareText(title, url string) SharePayload {
	return SharePayload{
		Title:    title,
		URL:      url,
		Fallback: fmt.Sprintf("%s\n\nRead more: %s", title, url),
		Toast:    MsgLinkCopied,
	}
}

// NotifyWhenAvailable acknowledges interest in an upcoming article.
func (b *Blog) NotifyWhenAvailable(scope string, req *NotifyRequest) (notify.Token, error) {
	if err := validate.Struct(req); err != nil {
		return notify.Token{}, err
	}
	msg := fmt.Sprintf("You'll be notified when \"%s\" is available!", req.Title)
	return b.center.Notify(scope, msg, notify.KindInfo, 0), nil
}

func (b *Blog) ReadingTime(req *ReadingTimeRequest) string {
	return format.ReadingTime(req.Text)
}
