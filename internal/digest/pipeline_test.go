package digest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type fakeChat struct {
	channels []Channel
	users    []User
	history  map[string][]Message
	fetched  []string
	windows  []Window
	failOn   string
}

func (f *fakeChat) ListUsers(context.Context) ([]User, error)       { return f.users, nil }
func (f *fakeChat) ListChannels(context.Context) ([]Channel, error) { return f.channels, nil }

func (f *fakeChat) FetchHistory(_ context.Context, channelID string, w Window, limit int) ([]Message, error) {
	if limit != HistoryLimit {
		return nil, errors.New("unexpected limit")
	}
	if channelID == f.failOn {
		return nil, errFetch
	}
	f.fetched = append(f.fetched, channelID)
	f.windows = append(f.windows, w)
	return f.history[channelID], nil
}

func (f *fakeChat) Permalink(_ context.Context, channelID, ts string) (string, error) {
	return "https://slack.test/" + channelID + "/" + ts, nil
}

var errFetch = errors.New("history unavailable")

type sentMail struct {
	From, To, Subject, Body string
}

type fakeMailer struct {
	sent []sentMail
}

func (m *fakeMailer) SendMail(_ context.Context, from, to, subject, body string) error {
	m.sent = append(m.sent, sentMail{From: from, To: to, Subject: subject, Body: body})
	return nil
}

func newFakeChat() *fakeChat {
	return &fakeChat{
		channels: []Channel{
			{ID: "C1", Name: "random"},
			{ID: "C2", Name: "eng"},
			{ID: "C3", Name: "ops"},
		},
		users: []User{{ID: "U1", Name: "alice", RealName: "Alice"}},
		history: map[string][]Message{
			"C1": {{Type: "message", Timestamp: "1700000000.1", User: "U1", Text: "off topic"}},
			"C2": {{Type: "message", Timestamp: "1700000000.1", User: "U1", Text: "ship it"}},
			"C3": {{Type: "message", Subtype: "bot_message", Timestamp: "1700000000.1", Text: "cron ok"}},
		},
	}
}

func testOptions(dryRun bool) Options {
	return Options{
		Routing: RoutingConfig{
			Excluded:   map[string]bool{"random": true},
			ChannelMap: map[string]string{"eng": "eng@x.com"},
			CatchAll:   "all@x.com",
		},
		DaysBack:    1,
		FromAddress: "digest@x.com",
		DryRun:      dryRun,
	}
}

func TestPipelineRunSendsNonEmptyDigests(t *testing.T) {
	chat := newFakeChat()
	mailer := &fakeMailer{}
	now := time.Date(2023, 11, 15, 8, 0, 0, 0, time.UTC)

	digests, err := NewPipeline(chat, mailer, testOptions(false)).Run(context.Background(), now)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	wantDigests := []ChannelDigest{
		{Channel: "eng", Recipient: "eng@x.com", Body: "2023-11-14 22:13:20 UTC - Alice: ship it\n----\n", Sent: true},
		{Channel: "ops", Recipient: "all@x.com", Body: ""},
	}
	if diff := cmp.Diff(wantDigests, digests); diff != "" {
		t.Fatalf("digests mismatch (-want +got):\n%s", diff)
	}

	wantMail := []sentMail{{
		From:    "digest@x.com",
		To:      "eng@x.com",
		Subject: "Slack digest for #eng [2023-11-14]",
		Body:    "2023-11-14 22:13:20 UTC - Alice: ship it\n----\n",
	}}
	if diff := cmp.Diff(wantMail, mailer.sent); diff != "" {
		t.Fatalf("mail mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"C2", "C3"}, chat.fetched); diff != "" {
		t.Fatalf("fetched channels mismatch (-want +got):\n%s", diff)
	}
	wantWindow := Window{
		Oldest: time.Date(2023, 11, 14, 0, 0, 0, 0, time.UTC).Unix(),
		Latest: time.Date(2023, 11, 14, 23, 59, 59, 0, time.UTC).Unix(),
	}
	for _, w := range chat.windows {
		if w != wantWindow {
			t.Fatalf("history fetched for %s, want %s", w, wantWindow)
		}
	}
}

func TestPipelineDryRunSendsNothing(t *testing.T) {
	chat := newFakeChat()
	digests, err := NewPipeline(chat, nil, testOptions(true)).Run(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(digests) != 2 {
		t.Fatalf("expected 2 digests, got %+v", digests)
	}
	for _, d := range digests {
		if d.Sent {
			t.Fatalf("dry run marked %s as sent", d.Channel)
		}
	}
	if digests[0].BodyLength() == 0 {
		t.Fatalf("dry run should still render #eng")
	}
}

func TestPipelineFailsFast(t *testing.T) {
	chat := newFakeChat()
	chat.failOn = "C2"
	mailer := &fakeMailer{}

	_, err := NewPipeline(chat, mailer, testOptions(false)).Run(context.Background(), time.Now())
	if !errors.Is(err, errFetch) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if len(mailer.sent) != 0 || len(chat.fetched) != 0 {
		t.Fatalf("run continued after failure: sent=%d fetched=%v", len(mailer.sent), chat.fetched)
	}
}

func TestPipelineRejectsBadDaysBack(t *testing.T) {
	opts := testOptions(true)
	opts.DaysBack = 0
	if _, err := NewPipeline(newFakeChat(), nil, opts).Run(context.Background(), time.Now()); err == nil {
		t.Fatal("expected error for daysback 0")
	}
}

func TestPipelineRequiresMailer(t *testing.T) {
	if _, err := NewPipeline(newFakeChat(), nil, testOptions(false)).Run(context.Background(), time.Now()); err == nil {
		t.Fatal("expected error when sending without a mailer")
	}
}
