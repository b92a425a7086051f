package slackapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/CosmoTheDev/slack-digest/internal/digest"
	"github.com/google/go-cmp/cmp"
)

func newTestClient(t *testing.T, handlers map[string]http.HandlerFunc) *Client {
	t.Helper()
	mux := http.NewServeMux()
	for path, h := range handlers {
		mux.HandleFunc("/api/"+path, h)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return New("xoxb-test", WithAPIURL(srv.URL+"/api/"))
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func TestListUsers(t *testing.T) {
	c := newTestClient(t, map[string]http.HandlerFunc{
		"users.list": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, map[string]any{
				"ok": true,
				"members": []map[string]any{
					{"id": "U1", "name": "alice", "real_name": "Alice Liddell"},
					{"id": "U2", "name": "bob"},
				},
				"response_metadata": map[string]any{"next_cursor": ""},
			})
		},
	})

	users, err := c.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	want := []digest.User{
		{ID: "U1", Name: "alice", RealName: "Alice Liddell"},
		{ID: "U2", Name: "bob"},
	}
	if diff := cmp.Diff(want, users); diff != "" {
		t.Fatalf("users mismatch (-want +got):\n%s", diff)
	}
}

func TestListChannelsFollowsCursor(t *testing.T) {
	var cursors []string
	c := newTestClient(t, map[string]http.HandlerFunc{
		"conversations.list": func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				t.Errorf("parse form: %v", err)
			}
			cursor := r.Form.Get("cursor")
			cursors = append(cursors, cursor)
			if cursor == "" {
				writeJSON(t, w, map[string]any{
					"ok":                true,
					"channels":          []map[string]any{{"id": "C1", "name": "random"}, {"id": "C2", "name": "eng"}},
					"response_metadata": map[string]any{"next_cursor": "page2"},
				})
				return
			}
			writeJSON(t, w, map[string]any{
				"ok":                true,
				"channels":          []map[string]any{{"id": "C3", "name": "ops"}},
				"response_metadata": map[string]any{"next_cursor": ""},
			})
		},
	})

	channels, err := c.ListChannels(context.Background())
	if err != nil {
		t.Fatalf("ListChannels: %v", err)
	}
	want := []digest.Channel{{ID: "C1", Name: "random"}, {ID: "C2", Name: "eng"}, {ID: "C3", Name: "ops"}}
	if diff := cmp.Diff(want, channels); diff != "" {
		t.Fatalf("channels mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"", "page2"}, cursors); diff != "" {
		t.Fatalf("cursors mismatch (-want +got):\n%s", diff)
	}
}

func TestListChannelsCancelledMidPaging(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := newTestClient(t, map[string]http.HandlerFunc{
		"conversations.list": func(w http.ResponseWriter, r *http.Request) {
			cancel()
			writeJSON(t, w, map[string]any{
				"ok":                true,
				"channels":          []map[string]any{{"id": "C1", "name": "random"}},
				"response_metadata": map[string]any{"next_cursor": "page2"},
			})
		},
	})

	channels, err := c.ListChannels(ctx)
	if err == nil {
		t.Fatal("expected an error after cancellation")
	}
	if channels != nil {
		t.Fatalf("expected no partial result, got %+v", channels)
	}
	if !strings.HasPrefix(err.Error(), "slackapi: list channels: ") {
		t.Fatalf("unexpected error %q", err)
	}
}

func TestFetchHistory(t *testing.T) {
	c := newTestClient(t, map[string]http.HandlerFunc{
		"conversations.history": func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				t.Errorf("parse form: %v", err)
			}
			for key, want := range map[string]string{
				"channel": "C2",
				"oldest":  "1699920000",
				"latest":  "1700006399",
				"limit":   "1000",
			} {
				if got := r.Form.Get(key); got != want {
					t.Errorf("%s = %q, want %q", key, got, want)
				}
			}
			writeJSON(t, w, map[string]any{
				"ok": true,
				"messages": []map[string]any{
					{
						"type": "message", "ts": "1700000060.000200", "user": "U2", "text": "thanks <@U1>",
						"reactions": []map[string]any{{"name": "thumbsup", "count": 2, "users": []string{"U1", "U3"}}},
					},
					{
						"type": "message", "subtype": "file_comment", "ts": "1700000000.000100", "text": "nice",
						"comment": map[string]any{"id": "Fc1", "user": "U1", "comment": "nice"},
					},
				},
			})
		},
	})

	w := digest.Window{Oldest: 1699920000, Latest: 1700006399}
	msgs, err := c.FetchHistory(context.Background(), "C2", w, digest.HistoryLimit)
	if err != nil {
		t.Fatalf("FetchHistory: %v", err)
	}
	want := []digest.Message{
		{
			Type: "message", Timestamp: "1700000060.000200", User: "U2", Text: "thanks <@U1>",
			Reactions: []digest.Reaction{{Name: "thumbsup", Users: []string{"U1", "U3"}}},
		},
		{Type: "message", Subtype: "file_comment", Timestamp: "1700000000.000100", Text: "nice", CommentUser: "U1"},
	}
	if diff := cmp.Diff(want, msgs); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestPermalinkAndErrors(t *testing.T) {
	c := newTestClient(t, map[string]http.HandlerFunc{
		"chat.getPermalink": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, map[string]any{
				"ok":        true,
				"channel":   "C2",
				"permalink": "https://acme.slack.com/archives/C2/p1700000000000100",
			})
		},
		"conversations.history": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, map[string]any{"ok": false, "error": "channel_not_found"})
		},
	})

	link, err := c.Permalink(context.Background(), "C2", "1700000000.000100")
	if err != nil {
		t.Fatalf("Permalink: %v", err)
	}
	if link != "https://acme.slack.com/archives/C2/p1700000000000100" {
		t.Fatalf("unexpected permalink %q", link)
	}

	if _, err := c.FetchHistory(context.Background(), "C404", digest.Window{}, 10); err == nil {
		t.Fatal("expected error for channel_not_found")
	}
}
