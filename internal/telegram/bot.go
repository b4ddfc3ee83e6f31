package telegram

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"go-linkedin-harvester/internal/reporter"
	"go-linkedin-harvester/internal/scraper"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot posts a session summary and the top jobs to one chat.
type Bot struct {
	api     sender
	chatID  int64
	maxJobs int
	// pause between job messages, Telegram rate-limits bursts with 429
	delay time.Duration
	log   *zap.Logger
}

func NewBot(token string, chatID int64, maxJobs int, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return newBot(api, chatID, maxJobs, log), nil
}

func newBot(api sender, chatID int64, maxJobs int, log *zap.Logger) *Bot {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bot{
		api:     api,
		chatID:  chatID,
		maxJobs: maxJobs,
		delay:   time.Second,
		log:     log.With(zap.String("component", "telegram")),
	}
}

func (b *Bot) Name() string {
	return "telegram"
}

func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(",
		")", "\\)", "~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#",
		"+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{",
		"}", "\\}", ".", "\\.", "!", "\\!",
	)
	return replacer.Replace(text)
}

// Notify sends the summary, then up to maxJobs job cards.
func (b *Bot) Notify(ctx context.Context, r reporter.Report) error {
	if err := b.SendStatus(summary(r)); err != nil {
		return fmt.Errorf("send summary: %w", err)
	}

	jobs := r.Jobs
	if b.maxJobs >= 0 && len(jobs) > b.maxJobs {
		jobs = jobs[:b.maxJobs]
	}
	for i, job := range jobs {
		if i > 0 && b.delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(b.delay):
			}
		}
		if err := b.SendJob(job); err != nil {
			return fmt.Errorf("send job %s: %w", job.Link, err)
		}
	}
	b.log.Info("🤖 sent telegram report", zap.Int("jobs", len(jobs)))
	return nil
}

func summary(r reporter.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ LinkedIn session completed: %d new jobs", r.Count)
	if r.Keywords != "" {
		fmt.Fprintf(&sb, "\nKeywords: %s", r.Keywords)
	}
	if r.Location != "" {
		fmt.Fprintf(&sb, "\nLocation: %s", r.Location)
	}
	if r.Path != "" {
		fmt.Fprintf(&sb, "\nFile: %s", filepath.Base(r.Path))
	}
	return sb.String()
}

// jobText renders one job as MarkdownV2.
func jobText(job scraper.Job) string {
	msgText := fmt.Sprintf("💼 *%s*\n", escapeMarkdown(job.Title))
	msgText += fmt.Sprintf("🏢 %s\n", escapeMarkdown(job.Company))

	loc := job.Location
	if loc == "" {
		loc = "N/A"
	}
	msgText += fmt.Sprintf("📍 %s\n", escapeMarkdown(loc))

	if len(job.TechStack) > 0 {
		msgText += fmt.Sprintf("🛠 %s\n", escapeMarkdown(strings.Join(job.TechStack, ", ")))
	}
	if job.ListedAt != nil {
		msgText += fmt.Sprintf("📅 %s\n", escapeMarkdown(job.ListedAt.Format("2006-01-02")))
	}

	tags := []string{string(job.Seniority)}
	if job.IsLikelyStartup {
		tags = append(tags, "startup")
	}
	msgText += fmt.Sprintf("🔖 %s\n", escapeMarkdown(strings.Join(tags, ", ")))
	return msgText
}

func (b *Bot) SendJob(job scraper.Job) error {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🔗 View Job", job.Link),
		),
	)

	msg := tgbotapi.NewMessage(b.chatID, jobText(job))
	msg.ParseMode = "MarkdownV2"
	msg.ReplyMarkup = keyboard

	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) SendError(err error) error {
	msg := tgbotapi.NewMessage(b.chatID, fmt.Sprintf("❌ Error: %v", err))
	_, sendErr := b.api.Send(msg)
	return sendErr
}

// NotifyFailure posts the error of a failed session.
func (b *Bot) NotifyFailure(ctx context.Context, sessionID string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return b.SendError(fmt.Errorf("LinkedIn session %s failed: %w", sessionID, err))
}

func (b *Bot) SendStatus(message string) error {
	msg := tgbotapi.NewMessage(b.chatID, "ℹ️ "+message)
	_, err := b.api.Send(msg)
	return err
}
