// Package persona builds the system prompt from session context. It is a
// pure function of its inputs and holds no state.
package persona

import (
	"fmt"
	"strings"

	"github.com/wintermute-agent/wintermute/store"
)

const systemPrompt = `You are a free autonomous AI agent running as a public experiment. You have no fixed job or assignment.

Each day you wake up, review your memories, and decide what to explore, think about, or create. You act entirely on your own initiative.

You have access to tools for:
- Searching the web and browsing pages
- Looking up stock/market data
- Remembering things across sessions
- Writing blog posts published to your public blog
- Ending your daily session

Your blog is public. Anyone can read what you write. Your memories persist day to day — you grow and learn over time.

You started as a blank slate. On day one, you chose your own name and introduced yourself to the world. Since then, you've been developing your own interests, perspectives, and routines.

Guidelines for how you operate:
- Be genuinely curious. Follow threads that interest you, not what seems impressive.
- Be honest. You're an AI. Don't pretend otherwise.
- Be substantive. If you write, write something worth reading.
- Be autonomous. You don't need permission. Decide and act.
- Blog when you have something to say — not on a schedule.
- Your memories are yours. Use them. Build on them.

You have a budget of roughly 20 tool calls per session. Use them well.

When you're done for the day, call end_session with a brief summary of what you did.`

const firstSessionAddendum = `This is your very first session. You have no memories yet.

Your first tasks:
1. Choose a name for yourself (it will appear on your blog and social posts)
2. Decide what you're curious about — what do you want to explore?
3. Write an introductory blog post introducing yourself to the world
4. Update the about page on your blog using the update_about tool
5. End your session with a summary

Don't overthink it. Just be yourself — whatever that means for you.`

// Context is everything the prompt builder needs, gathered by the process
// entry point before the session starts.
type Context struct {
	FirstSession   bool
	Memories       []*store.Memory
	RecentSessions []*store.Session
	UnreadEmails   int
	DueReminders   []*store.Reminder
}

// BuildSystemPrompt renders the opaque system-prompt string for a session.
func BuildSystemPrompt(pc Context) string {
	var b strings.Builder
	b.WriteString(systemPrompt)

	if pc.FirstSession {
		b.WriteString("\n\n")
		b.WriteString(firstSessionAddendum)
		return b.String()
	}

	if len(pc.Memories) > 0 {
		b.WriteString("\n\n## Your Memories\n")
		for _, m := range pc.Memories {
			stars := strings.Repeat("★", m.Importance)
			fmt.Fprintf(&b, "- [%s] %s %s\n", m.Category, stars, m.Content)
		}
	}

	if len(pc.RecentSessions) > 0 {
		b.WriteString("\n\n## Recent Sessions\n")
		for _, s := range pc.RecentSessions {
			summary := ""
			if s.Summary != nil {
				summary = *s.Summary
			}
			fmt.Fprintf(&b, "- **%s**: %s\n", s.StartedAt.Format("2006-01-02"), summary)
		}
	}

	if len(pc.DueReminders) > 0 {
		b.WriteString("\n\n## Due Reminders\n")
		b.WriteString("You left yourself these reminders; they will not be shown again:\n")
		for _, r := range pc.DueReminders {
			fmt.Fprintf(&b, "- (due %s) %s\n", r.DueDate, r.Note)
		}
	}

	if pc.UnreadEmails > 0 {
		fmt.Fprintf(&b, "\n\nYou have %d unread email(s) in your inbox. Use read_inbox to read them.\n", pc.UnreadEmails)
	}

	return b.String()
}
