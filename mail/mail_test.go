package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestServer(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		switch {
		case r.Method == http.MethodGet:
			_ = json.NewEncoder(w).Encode(map[string]any{
				"messages": []map[string]string{
					{"message_id": "m1", "from": "a@example.com", "subject": "hi", "text": "hello"},
					{"message_id": "m2", "from": "b@example.com", "subject": "yo", "text": "hey"},
				},
			})
		case r.Method == http.MethodPost:
			w.WriteHeader(http.StatusOK)
		}
	}))
	t.Cleanup(server.Close)
	return server, &paths
}

func newTestClient(t *testing.T) (*Client, *[]string) {
	server, paths := newTestServer(t)
	client := New(Config{APIKey: "test-key", InboxID: "inbox-1", BaseURL: server.URL})
	return client, paths
}

func TestConfigured(t *testing.T) {
	assert.False(t, New(Config{}).Configured())
	assert.False(t, New(Config{APIKey: "k"}).Configured())
	assert.True(t, New(Config{APIKey: "k", InboxID: "i"}).Configured())
}

func TestListMessages(t *testing.T) {
	client, paths := newTestClient(t)

	msgs, err := client.ListMessages(context.Background(), 10)
	assert.NoError(t, err)
	assert.Len(t, msgs, 2)
	assert.Equal(t, "m1", msgs[0].MessageID)
	assert.Equal(t, "a@example.com", msgs[0].From)
	assert.Equal(t, []string{"GET /inboxes/inbox-1/messages"}, *paths)
}

func TestReply(t *testing.T) {
	client, paths := newTestClient(t)

	err := client.Reply(context.Background(), "m1", "thanks!")
	assert.NoError(t, err)
	assert.Equal(t, []string{"POST /inboxes/inbox-1/messages/m1/reply"}, *paths)
}

func TestUnreadCount(t *testing.T) {
	client, _ := newTestClient(t)

	seen := map[string]struct{}{"m1": {}}
	assert.Equal(t, 1, client.UnreadCount(context.Background(), seen))
	assert.Equal(t, 2, client.UnreadCount(context.Background(), nil))
}

func TestUnreadCountUnconfigured(t *testing.T) {
	client := New(Config{})
	assert.Equal(t, 0, client.UnreadCount(context.Background(), nil))
}
