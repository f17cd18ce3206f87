// Package telegram delivers run results via the Telegram Bot API.
// It formats a run summary into a MarkdownV2 message, uploads chart images,
// and retries delivery with a linear backoff.
package telegram

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/rewired-gh/mailstats/internal/models"
)

// Client handles Telegram notifications
type Client struct {
	bot            *tgbotapi.BotAPI
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a new Telegram client
func NewClient(botToken, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}

	return &Client{
		bot:            bot,
		chatID:         chatIDInt,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}, nil
}

// SendSummary posts the run summary as a text message
func (c *Client) SendSummary(summary *models.RunSummary) error {
	msg := tgbotapi.NewMessage(c.chatID, formatSummary(summary))
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	return c.send(msg)
}

// SendChart uploads the image at path with a plain-text caption
func (c *Client) SendChart(path, caption string) error {
	photo := tgbotapi.NewPhoto(c.chatID, tgbotapi.FilePath(path))
	photo.Caption = caption
	return c.send(photo)
}

func (c *Client) send(msg tgbotapi.Chattable) error {
	var lastErr error

	for i := 0; i < c.maxRetries; i++ {
		_, err := c.bot.Send(msg)
		if err == nil {
			return nil
		}
		lastErr = err
		time.Sleep(c.retryDelayBase * time.Duration(i+1))
	}

	return fmt.Errorf("failed to send message after %d retries: %w", c.maxRetries, lastErr)
}

// formatSummary renders a run summary as a MarkdownV2 message
func formatSummary(s *models.RunSummary) string {
	var b strings.Builder

	b.WriteString("📬 *Mail activity report*\n\n")
	b.WriteString(fmt.Sprintf("📄 Input: %s\n", escapeMarkdownV2(s.Input)))
	b.WriteString(fmt.Sprintf("📅 Generated: %s\n", escapeMarkdownV2(s.GeneratedAt.UTC().Format("2006-01-02 15:04:05"))))
	b.WriteString(fmt.Sprintf("🧮 Records: %d kept, %d excluded\n", s.RecordsKept, s.RecordsExcluded))
	b.WriteString(fmt.Sprintf("👥 People: %d\n", s.People))
	b.WriteString(fmt.Sprintf("⏱ Took: %s\n\n", escapeMarkdownV2(formatDuration(s.Elapsed))))

	if len(s.TopSenders) == 0 {
		b.WriteString("No senders left after filtering\\.\n")
		return b.String()
	}

	b.WriteString("*Top senders*\n")
	for i, row := range s.TopSenders {
		b.WriteString(fmt.Sprintf("%d\\. %s: *%d* sent, %d received\n",
			i+1, escapeMarkdownV2(row.Person), row.Senders, row.Recipients))
	}
	return b.String()
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2
func escapeMarkdownV2(text string) string {
	// Characters that need escaping in MarkdownV2:
	// _ * [ ] ( ) ~ ` > # + - = | { } . !
	var b strings.Builder
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
}
