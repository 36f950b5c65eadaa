package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wintermute-agent/wintermute/store"
	"github.com/wintermute-agent/wintermute/tool"
)

const emailBodyCap = 2000

func readInboxTool(deps Deps) *tool.Definition {
	return &tool.Definition{
		Name: "read_inbox",
		Description: "Read recent emails from your inbox. Messages are recorded so the " +
			"unread count stays accurate. Use reply_email to respond.",
		InputSchema: objectSchema(map[string]any{
			"max_emails": intProp("Maximum number of emails to fetch (default 10)"),
		}),
		Handler: func(ctx context.Context, call *tool.Call) (string, error) {
			if !deps.Mail.Configured() {
				return "Email is not configured.", nil
			}

			msgs, err := deps.Mail.ListMessages(ctx, call.Int("max_emails", 10))
			if err != nil {
				return "", tool.WrapError("read_inbox", err)
			}
			if len(msgs) == 0 {
				return "Inbox is empty.", nil
			}

			var b strings.Builder
			for _, m := range msgs {
				receivedAt := m.ReceivedAt
				if receivedAt == "" {
					receivedAt = time.Now().UTC().Format(time.RFC3339)
				}
				if err := deps.Store.UpsertEmail(ctx, &store.Email{
					MessageID:  m.MessageID,
					From:       m.From,
					Subject:    m.Subject,
					Body:       m.Text,
					ReceivedAt: receivedAt,
				}); err != nil {
					deps.Logger.Warn("email upsert failed", "message_id", m.MessageID, "error", err)
				}

				body := m.Text
				if len(body) > emailBodyCap {
					body = body[:emailBodyCap] + "..."
				}
				fmt.Fprintf(&b, "Message %s\nFrom: %s\nSubject: %s\nReceived: %s\n\n%s\n\n---\n\n",
					m.MessageID, m.From, m.Subject, receivedAt, body)
			}
			return strings.TrimSpace(b.String()), nil
		},
	}
}

func replyEmailTool(deps Deps) *tool.Definition {
	return &tool.Definition{
		Name: "reply_email",
		Description: "Reply to an email by its message id (shown by read_inbox). " +
			"You can only reply to received messages, not send to arbitrary addresses.",
		InputSchema: objectSchema(map[string]any{
			"message_id": stringProp("The message id to reply to"),
			"body":       stringProp("The reply text"),
		}, "message_id", "body"),
		Handler: func(ctx context.Context, call *tool.Call) (string, error) {
			if !deps.Mail.Configured() {
				return "Email is not configured.", nil
			}

			messageID := call.String("message_id")
			body := call.String("body")
			if err := deps.Mail.Reply(ctx, messageID, body); err != nil {
				return "", tool.WrapError("reply_email", err)
			}
			if err := deps.Store.MarkEmailReplied(ctx, messageID, body); err != nil {
				deps.Logger.Warn("reply bookkeeping failed", "message_id", messageID, "error", err)
			}
			return fmt.Sprintf("Reply sent to message %s.", messageID), nil
		},
	}
}
