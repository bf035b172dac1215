package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fieldlink/pkg/domain/interfaces"
	"github.com/secmon-lab/fieldlink/pkg/domain/model"
	"github.com/secmon-lab/fieldlink/pkg/domain/model/telegram"
	"github.com/secmon-lab/fieldlink/pkg/utils/errutil"
	"github.com/secmon-lab/fieldlink/pkg/utils/logging"
)

// Chat commands
const (
	CommandStart = "/start"
	CommandTasks = "/tasks"
)

// Chat replies
const (
	MessageOnboarding     = "👋 Welcome! Please send your email and password separated by a comma (e.g., user@email.com,password)"
	MessageMalformed      = "⚠️ Please send your credentials as: email,password"
	MessageLinked         = "✅ Login successful! You can now use /tasks."
	MessageLinkFailedFmt  = "❌ Login failed: %s\nTry again or send /start to restart."
	MessageNotLinked      = "🔒 This chat is not linked yet. Send /start to link your account."
	MessageNoTasks        = "📭 You have no tasks assigned."
	MessageTasksFailed    = "⚠️ Could not load your tasks right now. Please try again later."
	maxTasksInChatMessage = 20
)

// TelegramUseCase handles inbound chat messages from the webhook
type TelegramUseCase struct {
	link     *LinkUseCase
	accounts interfaces.AccountRepository
	tasks    interfaces.TaskRepository
	notifier interfaces.Notifier
}

func NewTelegramUseCase(link *LinkUseCase, repo interfaces.Repository, notifier interfaces.Notifier) *TelegramUseCase {
	return &TelegramUseCase{
		link:     link,
		accounts: repo.Account(),
		tasks:    repo.Task(),
		notifier: notifier,
	}
}

// HandleMessage dispatches one complete inbound message. Every path sends exactly one reply.
func (uc *TelegramUseCase) HandleMessage(ctx context.Context, msg *telegram.Message) {
	logger := logging.From(ctx)
	text := msg.Text()

	switch strings.ToLower(text) {
	case CommandStart:
		logger.Info("onboarding requested", ChatIDKey, msg.ChatID())
		uc.notifier.Notify(ctx, msg.ChatID(), MessageOnboarding)
		return

	case CommandTasks:
		uc.notifier.Notify(ctx, msg.ChatID(), uc.taskSummary(ctx, msg))
		return
	}

	login, secret, ok := splitCredentials(text)
	if !ok {
		uc.notifier.Notify(ctx, msg.ChatID(), MessageMalformed)
		return
	}

	result := uc.link.Link(ctx, login, secret, msg.ChatID())
	if result.Succeeded() {
		uc.notifier.Notify(ctx, msg.ChatID(), MessageLinked)
		return
	}
	uc.notifier.Notify(ctx, msg.ChatID(), fmt.Sprintf(MessageLinkFailedFmt, result.Reason))
}

// splitCredentials splits "login,secret" on the first comma. Both parts must be non-empty.
func splitCredentials(text string) (string, string, bool) {
	login, secret, found := strings.Cut(text, ",")
	if !found {
		return "", "", false
	}
	login = strings.TrimSpace(login)
	secret = strings.TrimSpace(secret)
	if login == "" || secret == "" {
		return "", "", false
	}
	return login, secret, true
}

func (uc *TelegramUseCase) taskSummary(ctx context.Context, msg *telegram.Message) string {
	account, err := uc.accounts.GetByChatID(ctx, msg.ChatID())
	if err != nil {
		errutil.Handle(ctx, goerr.Wrap(err, "failed to look up chat binding",
			goerr.V(ChatIDKey, msg.ChatID())), "task listing failed")
		return MessageTasksFailed
	}
	if account == nil {
		return MessageNotLinked
	}

	tasks, err := uc.tasks.ListByOwner(ctx, account.ID)
	if err != nil {
		errutil.Handle(ctx, goerr.Wrap(err, "failed to list tasks",
			goerr.V(AccountIDKey, account.ID)), "task listing failed")
		return MessageTasksFailed
	}

	return formatTaskList(tasks)
}

// formatTaskList renders tasks as a Markdown chat message
func formatTaskList(tasks []*model.Task) string {
	if len(tasks) == 0 {
		return MessageNoTasks
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 *Your tasks* (%d)\n", len(tasks))
	for i, t := range tasks {
		if i == maxTasksInChatMessage {
			fmt.Fprintf(&b, "\n…and %d more", len(tasks)-i)
			break
		}

		fmt.Fprintf(&b, "\n*%s*", escapeMarkdown(t.Name))
		if t.Status != "" {
			fmt.Fprintf(&b, " (%s)", escapeMarkdown(t.Status))
		}

		var details []string
		if t.Customer != "" {
			details = append(details, escapeMarkdown(t.Customer))
		}
		if t.ScheduledDate != nil {
			details = append(details, t.ScheduledDate.Format("2006-01-02 15:04"))
		}
		if t.Location != "" {
			details = append(details, escapeMarkdown(t.Location))
		}
		if len(details) > 0 {
			b.WriteString("\n  ")
			b.WriteString(strings.Join(details, " | "))
		}
	}
	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	"_", `\_`,
	"*", `\*`,
	"`", "\\`",
	"[", `\[`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
