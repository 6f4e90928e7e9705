package telegram

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"ai-pack-planner/internal/app"
	"ai-pack-planner/internal/config"
	"ai-pack-planner/internal/gear"
	"ai-pack-planner/internal/logger"
	"ai-pack-planner/internal/metrics"
	"ai-pack-planner/internal/shopping"
	"ai-pack-planner/internal/trip"
	"ai-pack-planner/internal/wizard"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// runTimeout bounds one /pack request including enrichment.
const runTimeout = 5 * time.Minute

// Bot serves the pack wizard over a Telegram webhook.
type Bot struct {
	api *tgbotapi.BotAPI
	app *app.App
	cfg *config.Config
	log *logger.Logger
}

// NewBot authorizes against the Bot API and registers the webhook.
func NewBot(cfg *config.Config, a *app.App, log *logger.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	log.Info("telegram authorized", "account", api.Self.UserName)

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %q: %w", cfg.TelegramWebhookURL, err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	log.Info("webhook set", "description", resp.Description)

	return &Bot{api: api, app: a, cfg: cfg, log: log}, nil
}

// RegisterHandlers mounts the webhook and health endpoints on mux.
func (b *Bot) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/webhook", b.handleWebhook)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		b.log.Warn("error parsing update", "error", err)
		return
	}
	if update.Message == nil || update.Message.From == nil {
		return
	}

	from := update.Message.From
	if !slices.Contains(b.cfg.TelegramAllowedUserIDs, from.ID) {
		b.log.Warn("unauthorized access attempt", "user_id", from.ID, "username", from.UserName)
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	cmd, args := parseCommand(msg.Text)
	switch cmd {
	case "/pack":
		b.handlePack(msg, args)
	case "/metrics":
		if msg.From.ID != b.cfg.AdminTelegramID {
			b.sendMarkdown(msg.Chat.ID, "⛔ *Access Denied*: Admin only.")
			return
		}
		b.handleMetrics(msg.Chat.ID)
	default:
		b.sendMarkdown(msg.Chat.ID, helpText)
	}
}

func (b *Bot) handlePack(msg *tgbotapi.Message, args string) {
	chatID := msg.Chat.ID
	params, errs := trip.ParseParameters(parseKeyValues(args))
	for field, m := range trip.Validate(params) {
		if _, seen := errs[field]; !seen {
			errs[field] = m
		}
	}
	if len(errs) > 0 {
		b.sendMarkdown(chatID, formatFieldErrors(errs))
		return
	}

	status := tgbotapi.NewMessage(chatID, "🎒 *Planning your pack...*")
	status.ParseMode = tgbotapi.ModeMarkdown
	sent, err := b.api.Send(status)
	if err != nil {
		b.log.Error("failed to send initial reply", "chat_id", chatID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	notifier := &chatNotifier{api: b.api, chatID: chatID, messageID: sent.MessageID}
	w := b.app.NewWizard(wizard.WithNotifier(notifier))
	run, err := w.Submit(ctx, params)
	if err != nil {
		b.log.Error("pack run rejected", "chat_id", chatID, "error", err)
		b.sendMarkdown(chatID, fmt.Sprintf("❌ *Error:* %s", escapeMarkdown(err.Error())))
		return
	}

	st := run.State()
	for _, kind := range gear.Kinds {
		if list, ok := st.Lists[kind]; ok {
			b.sendMarkdown(chatID, formatCategoryMarkdown(kind, list))
		}
	}
	b.sendMarkdown(chatID, formatSummaryMarkdown(shopping.Summarize(st.Lists, st.Budget, st.MaxWeight)))

	final := run.Wait(ctx)
	if sources := formatSourcesMarkdown(final.Links); sources != "" {
		b.sendMarkdown(chatID, sources)
	}
	if len(final.Errors) > 0 {
		b.sendAdminAlert(fmt.Sprintf("⚠️ *Run with failures*\nRun: `%s`\nFailed: %s",
			final.RunID, strings.Join(failedKinds(final), ", ")))
	}
}

func (b *Bot) handleMetrics(chatID int64) {
	ctx := context.Background()
	daily, err := b.app.Metrics.GetDailyUsage(ctx, 7)
	if err != nil {
		b.log.Error("failed to fetch metrics", "error", err)
		b.sendMarkdown(chatID, "❌ Error fetching metrics.")
		return
	}
	stages, err := b.app.Metrics.GetStageUsage(ctx, 7)
	if err != nil {
		b.log.Error("failed to fetch stage metrics", "error", err)
		b.sendMarkdown(chatID, "❌ Error fetching metrics.")
		return
	}
	b.sendMarkdown(chatID, formatMetricsMarkdown(daily, stages, metrics.GetSysHealth(b.app.DataDir())))
}

func (b *Bot) sendMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warn("failed to send message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) sendAdminAlert(text string) {
	if b.cfg.AdminTelegramID == 0 {
		return
	}
	b.sendMarkdown(b.cfg.AdminTelegramID, text)
}

// chatNotifier shows wizard progress by editing the status message.
type chatNotifier struct {
	api       *tgbotapi.BotAPI
	chatID    int64
	messageID int
}

func (n *chatNotifier) Notify(_ context.Context, message string) error {
	edit := tgbotapi.NewEditMessageText(n.chatID, n.messageID, "🎒 "+message)
	_, err := n.api.Send(edit)
	return err
}

func failedKinds(st wizard.State) []string {
	var kinds []string
	for _, k := range gear.Kinds {
		if _, failed := st.Errors[k]; failed {
			kinds = append(kinds, string(k))
		}
	}
	return kinds
}
