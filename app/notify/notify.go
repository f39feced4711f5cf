// Package notify announces posting changes to configured destinations.
// Destinations are URL-style (https://... webhooks, mailto:..., slack:...)
// and are dispatched through go-pkgz/notify senders. Delivery is
// best-effort: failures are retried with backoff and then logged, they
// never surface to the store or to API callers.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"strings"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/notify"
	"github.com/go-pkgz/repeater"
	"github.com/go-pkgz/repeater/strategy"
	"github.com/go-pkgz/syncs"

	"github.com/careerhub/jobboard/app/store"
)

// Params defines general service behavior
type Params struct {
	TemplateFile string        // optional custom message template
	Timeout      time.Duration // per-destination send timeout
	Retries      int           // send attempts per destination
	Concurrency  int           // max parallel sends
}

// SendersParams holds credentials for the underlying senders
type SendersParams struct {
	Destinations []string // webhook/mailto/slack destination URLs

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPTLS      bool

	SlackToken string
}

// Service fans posting events out to all configured destinations
type Service struct {
	notifiers    []notify.Notifier
	destinations []string
	timeout      time.Duration
	concurrency  int
	rptr         *repeater.Repeater
	tmpl         *template.Template
}

const defaultTemplate = `<!DOCTYPE html>
<html>
	<body>
		<p>Job posting <b>{{.Title}}</b> ({{.Department}}, {{.Location}}) is now <b>{{.Status}}</b>.</p>
		<ul>
			<li>Type: {{.Type}}</li>
			{{- if .SalaryRange}}
			<li>Salary: {{.SalaryRange}}</li>
			{{- end}}
		</ul>
		<p>{{.Description}}</p>
	</body>
</html>
`

// NewService makes a notification service, nil if no destinations defined
func NewService(p Params, sp SendersParams) *Service {
	if len(sp.Destinations) == 0 {
		return nil
	}

	if p.Timeout == 0 {
		p.Timeout = 10 * time.Second
	}
	if p.Retries == 0 {
		p.Retries = 1
	}
	if p.Concurrency == 0 {
		p.Concurrency = 4
	}

	notifiers := []notify.Notifier{
		notify.NewWebhook(notify.WebhookParams{Timeout: p.Timeout}),
	}
	if sp.SMTPHost != "" {
		notifiers = append(notifiers, notify.NewEmail(notify.SMTPParams{
			Host:        sp.SMTPHost,
			Port:        sp.SMTPPort,
			TLS:         sp.SMTPTLS,
			Username:    sp.SMTPUsername,
			Password:    sp.SMTPPassword,
			TimeOut:     p.Timeout,
			ContentType: "text/html",
		}))
	}
	if sp.SlackToken != "" {
		notifiers = append(notifiers, notify.NewSlack(sp.SlackToken))
	}

	return &Service{
		notifiers:    notifiers,
		destinations: sp.Destinations,
		timeout:      p.Timeout,
		concurrency:  p.Concurrency,
		rptr: repeater.New(&strategy.Backoff{
			Repeats: p.Retries, Duration: time.Second, Factor: 3, Jitter: true}),
		tmpl: loadTemplate(p.TemplateFile),
	}
}

// loadTemplate parses the custom template file, falls back to the default
func loadTemplate(path string) *template.Template {
	def := template.Must(template.New("msg").Parse(defaultTemplate))
	if path == "" {
		return def
	}
	data, err := os.ReadFile(path) // nolint gosec
	if err != nil {
		log.Printf("[WARN] can't read template %s, using default: %v", path, err)
		return def
	}
	tmpl, err := template.New("msg").Parse(string(data))
	if err != nil {
		log.Printf("[WARN] can't parse template %s, using default: %v", path, err)
		return def
	}
	return tmpl
}

// OnCreated announces a newly published posting
func (s *Service) OnCreated(ctx context.Context, job store.Job) {
	s.announce(ctx, job)
}

// OnArchived announces an archived posting
func (s *Service) OnArchived(ctx context.Context, job store.Job) {
	s.announce(ctx, job)
}

func (s *Service) announce(ctx context.Context, job store.Job) {
	text, err := s.MakeMessage(job)
	if err != nil {
		log.Printf("[WARN] failed to make notification message for %s: %v", job.ID, err)
		return
	}
	if err := s.Send(ctx, text); err != nil {
		log.Printf("[WARN] failed to notify about %s: %v", job.ID, err)
	}
}

// MakeMessage renders the HTML notification text for a posting
func (s *Service) MakeMessage(job store.Job) (string, error) {
	buf := bytes.Buffer{}
	if err := s.tmpl.Execute(&buf, job); err != nil {
		return "", fmt.Errorf("failed to apply notification template: %w", err)
	}
	return buf.String(), nil
}

// Send delivers the text to every destination concurrently, each with
// backoff retries. Returns the combined error after all sends finished.
func (s *Service) Send(ctx context.Context, text string) error {
	errsCh := make(chan error, len(s.destinations))

	gr := syncs.NewSizedGroup(s.concurrency)
	for _, dest := range s.destinations {
		gr.Go(func(context.Context) {
			sender := s.senderFor(dest)
			if sender == nil {
				errsCh <- fmt.Errorf("no sender for destination %q", dest)
				return
			}
			sendCtx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			err := s.rptr.Do(sendCtx, func() error { return sender.Send(sendCtx, dest, text) })
			if err != nil {
				errsCh <- fmt.Errorf("failed to send to %q: %w", dest, err)
				return
			}
			log.Printf("[DEBUG] notification sent to %q", dest)
			errsCh <- nil
		})
	}
	gr.Wait()
	close(errsCh)

	var errs []string
	for err := range errsCh {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d of %d notifications failed: %s", len(errs), len(s.destinations),
			strings.Join(errs, "; "))
	}
	return nil
}

// senderFor matches a destination URL to a configured sender by scheme
func (s *Service) senderFor(dest string) notify.Notifier {
	scheme, _, found := strings.Cut(dest, ":")
	if !found {
		return nil
	}
	if scheme == "https" {
		scheme = "http" // webhook sender covers both
	}
	for _, n := range s.notifiers {
		if n.Schema() == scheme {
			return n
		}
	}
	return nil
}

func (s *Service) String() string {
	return fmt.Sprintf("notification service with destinations %v", s.destinations)
}
