package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/pkg/mailer/templates"
)

var (
	ErrNoRecipient = errors.New("email job has no recipient")
	ErrEmptyBody   = errors.New("email job has neither template nor subject with body")
	// ErrRender marks template failures, which a retry cannot fix.
	ErrRender = errors.New("render email")
)

// Process renders job when it names a template and hands the result to s.
// Errors from rendering are permanent; errors from s may be retried.
func Process(ctx context.Context, job EmailJob, s Sender) error {
	if strings.TrimSpace(job.To) == "" {
		return ErrNoRecipient
	}
	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		if job.Data == nil {
			job.Data = map[string]any{}
		}
		if v, ok := job.Data["Email"]; !ok || fmt.Sprintf("%v", v) == "" {
			job.Data["Email"] = job.To
		}
		var err error
		subject, text, html, err = templates.Render(job.Template, job.Data)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRender, err)
		}
	} else if subject == "" || (text == "" && html == "") {
		return ErrEmptyBody
	}
	return s.Send(ctx, job.To, strings.TrimSpace(subject), text, html)
}
