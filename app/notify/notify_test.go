package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-pkgz/repeater"
	"github.com/go-pkgz/repeater/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerhub/jobboard/app/store"
	"github.com/careerhub/jobboard/app/store/enums"
)

// fakeSender records sends and answers to a fixed schema
type fakeSender struct {
	schema string
	err    error

	mu    sync.Mutex
	calls []string // destinations
	texts []string
}

func (f *fakeSender) Send(_ context.Context, destination, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, destination)
	f.texts = append(f.texts, text)
	return f.err
}
func (f *fakeSender) Schema() string { return f.schema }
func (f *fakeSender) String() string { return "fake " + f.schema }

func testJob() store.Job {
	return store.Job{
		ID:          "job_abc123def",
		Title:       "Senior Frontend Engineer",
		Department:  "Engineering",
		Location:    "Bangkok Office",
		Type:        enums.TypeFullTime,
		Description: "Lead the internal tools team.",
		SalaryRange: "100k - 150k THB",
		Status:      enums.StatusOpen,
	}
}

func testService(dests []string, senders ...*fakeSender) *Service {
	svc := &Service{
		destinations: dests,
		timeout:      time.Second,
		concurrency:  2,
		rptr:         repeater.New(&strategy.Once{}),
		tmpl:         loadTemplate(""),
	}
	for _, s := range senders {
		svc.notifiers = append(svc.notifiers, s)
	}
	return svc
}

func TestNewService_EmptyDestinations(t *testing.T) {
	svc := NewService(Params{}, SendersParams{})
	require.Nil(t, svc)
}

func TestNewService_Defaults(t *testing.T) {
	svc := NewService(Params{}, SendersParams{Destinations: []string{"https://hooks.example.com/x"}})
	require.NotNil(t, svc)
	assert.Equal(t, 10*time.Second, svc.timeout)
	assert.Equal(t, 4, svc.concurrency)
	assert.Len(t, svc.notifiers, 1, "webhook sender only without smtp/slack credentials")
}

func TestService_MakeMessage(t *testing.T) {
	svc := testService(nil)

	res, err := svc.MakeMessage(testJob())
	require.NoError(t, err)
	assert.Contains(t, res, "<b>Senior Frontend Engineer</b>")
	assert.Contains(t, res, "Engineering, Bangkok Office")
	assert.Contains(t, res, "<b>OPEN</b>")
	assert.Contains(t, res, "Salary: 100k - 150k THB")
}

func TestService_MakeMessageNoSalary(t *testing.T) {
	svc := testService(nil)
	job := testJob()
	job.SalaryRange = ""

	res, err := svc.MakeMessage(job)
	require.NoError(t, err)
	assert.NotContains(t, res, "Salary:")
}

func TestService_Send(t *testing.T) {
	webhook := &fakeSender{schema: "http"}
	mail := &fakeSender{schema: "mailto"}
	svc := testService(
		[]string{"https://hooks.example.com/jobs", "mailto:hr@example.com"},
		webhook, mail)

	err := svc.Send(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, []string{"https://hooks.example.com/jobs"}, webhook.calls)
	assert.Equal(t, []string{"mailto:hr@example.com"}, mail.calls)
	assert.Equal(t, []string{"hello"}, webhook.texts)
}

func TestService_SendPartialFailure(t *testing.T) {
	webhook := &fakeSender{schema: "http", err: errors.New("boom")}
	mail := &fakeSender{schema: "mailto"}
	svc := testService(
		[]string{"https://hooks.example.com/jobs", "mailto:hr@example.com"},
		webhook, mail)

	err := svc.Send(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 notifications failed")
	assert.Len(t, mail.calls, 1, "other destinations still delivered")
}

func TestService_SendUnknownScheme(t *testing.T) {
	svc := testService([]string{"telegram:chan"}, &fakeSender{schema: "http"})

	err := svc.Send(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no sender for destination "telegram:chan"`)
}

func TestService_SenderFor(t *testing.T) {
	webhook := &fakeSender{schema: "http"}
	svc := testService(nil, webhook)

	assert.Equal(t, webhook, svc.senderFor("http://example.com"))
	assert.Equal(t, webhook, svc.senderFor("https://example.com"), "https maps to the webhook sender")
	assert.Nil(t, svc.senderFor("mailto:x@y"))
	assert.Nil(t, svc.senderFor("no-scheme"))
}

func TestService_OnCreated(t *testing.T) {
	webhook := &fakeSender{schema: "http"}
	svc := testService([]string{"https://hooks.example.com/jobs"}, webhook)

	svc.OnCreated(context.Background(), testJob())
	require.Len(t, webhook.texts, 1)
	assert.Contains(t, webhook.texts[0], "Senior Frontend Engineer")
}
