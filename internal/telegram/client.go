// Package telegram delivers rendered profile charts to a chat via the
// Telegram Bot API. Each chart is sent as a photo; the first one carries a
// MarkdownV2 caption summarizing the profile.
package telegram

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Summary is the profile overview shown in the caption.
type Summary struct {
	Login        string
	TotalXP      int64
	Transactions int
	Projects     int
	RenderedAt   time.Time
}

// Chart is one rendered PNG image.
type Chart struct {
	Name  string // file name shown by Telegram
	Title string
	PNG   []byte
}

// Client handles Telegram delivery
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

// SendCharts sends every chart as a photo, captioning the first with summary.
func (c *Client) SendCharts(summary Summary, charts []Chart) error {
	if len(charts) == 0 {
		return fmt.Errorf("no charts to send")
	}

	for i, ch := range charts {
		photo := tgbotapi.NewPhoto(c.chatID, tgbotapi.FileBytes{Name: ch.Name, Bytes: ch.PNG})
		photo.ParseMode = tgbotapi.ModeMarkdownV2
		if i == 0 {
			photo.Caption = formatCaption(summary, ch.Title)
		} else {
			photo.Caption = "*" + escapeMarkdownV2(ch.Title) + "*"
		}

		if err := c.send(photo); err != nil {
			return fmt.Errorf("failed to send chart %s: %w", ch.Name, err)
		}
	}
	return nil
}

// send delivers one message with retry
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

// formatCaption formats the profile summary into a MarkdownV2 caption
func formatCaption(s Summary, title string) string {
	var b strings.Builder

	b.WriteString("📊 *" + escapeMarkdownV2(title) + "*\n\n")
	b.WriteString("👤 " + escapeMarkdownV2(s.Login) + "\n")
	b.WriteString("⭐ Total XP: *" + escapeMarkdownV2(humanize.Comma(s.TotalXP)) + "*\n")
	b.WriteString(fmt.Sprintf("🧾 Transactions: %s\n", escapeMarkdownV2(humanize.Comma(int64(s.Transactions)))))
	b.WriteString(fmt.Sprintf("📁 Projects: %d\n", s.Projects))
	if !s.RenderedAt.IsZero() {
		b.WriteString("📅 " + escapeMarkdownV2(s.RenderedAt.Format("2006-01-02 15:04:05")))
	}

	return b.String()
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2
func escapeMarkdownV2(text string) string {
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
