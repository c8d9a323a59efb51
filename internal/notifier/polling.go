package notifier

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"BistSentinel/internal/logger"
)

// CommandHandler handles one chat command. progress posts an interim note
// that the returned reply later replaces; an empty reply sends nothing.
type CommandHandler func(ctx context.Context, text string, progress func(string)) string

// StartPolling begins long-polling for Telegram commands. Blocks until ctx is
// cancelled. Each command runs in its own goroutine so a long scan does not
// hold up other chats.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := t.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			t.bot.StopReceivingUpdates()
			logger.Info("telegram polling stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			msg := update.Message
			if msg == nil || !msg.IsCommand() {
				continue
			}
			text := strings.TrimSpace(msg.Text)
			logger.Info("received command from chat %d: %s", msg.Chat.ID, text)
			go t.dispatch(ctx, msg.Chat.ID, text, handler)
		}
	}
}

func (t *TelegramNotifier) dispatch(ctx context.Context, chatID int64, text string, handler CommandHandler) {
	r := &reply{n: t, chatID: chatID}
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("command %q panicked: %v", text, rec)
			r.finish("❌ Hata: beklenmeyen bir sorun oluştu.")
		}
	}()
	r.finish(handler(ctx, text, r.progress))
}

// reply tracks the progress note of one command so the final answer can
// replace it in place.
type reply struct {
	n      *TelegramNotifier
	chatID int64
	noteID int
}

func (r *reply) progress(text string) {
	if r.noteID != 0 {
		if err := r.n.edit(r.chatID, r.noteID, text); err != nil {
			logger.Warn("update progress note: %v", err)
		}
		return
	}
	id, err := r.n.sendTo(r.chatID, text)
	if err != nil {
		logger.Warn("send progress note: %v", err)
		return
	}
	r.noteID = id
}

func (r *reply) finish(text string) {
	if text == "" {
		return
	}
	if r.noteID != 0 {
		err := r.n.edit(r.chatID, r.noteID, text)
		if err == nil {
			return
		}
		logger.Warn("edit reply, sending new message: %v", err)
	}
	if _, err := r.n.sendTo(r.chatID, text); err != nil {
		logger.Error("send reply: %v", err)
	}
}
