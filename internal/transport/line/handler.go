// Package line exposes the chatbot over a LINE Messaging API webhook.
package line

import (
	"context"
	"errors"
	"net/http"

	"github.com/line/line-bot-sdk-go/v7/linebot"
	"go.uber.org/zap"
)

// nonTextReply is sent for sticker, image, and other non-text messages.
const nonTextReply = "ส่งข้อความเป็นตัวอักษรเท่านั้นนะครับ"

// Answerer is the consumer contract for answer generation.
type Answerer interface {
	Answer(ctx context.Context, question, userID string) string
}

// Config holds LINE channel credentials. Endpoint overrides the LINE API
// base URL and is only set in tests.
type Config struct {
	ChannelSecret      string
	ChannelAccessToken string
	Endpoint           string
}

// Handler verifies webhook signatures, dispatches text messages to the
// answerer, and replies through the Messaging API.
type Handler struct {
	bot      *linebot.Client
	answerer Answerer
	logger   *zap.Logger
}

// NewHandler creates a webhook handler for one LINE channel.
func NewHandler(cfg Config, answerer Answerer, logger *zap.Logger) (*Handler, error) {
	var opts []linebot.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, linebot.WithEndpointBase(cfg.Endpoint))
	}

	bot, err := linebot.New(cfg.ChannelSecret, cfg.ChannelAccessToken, opts...)
	if err != nil {
		return nil, err
	}

	return &Handler{bot: bot, answerer: answerer, logger: logger}, nil
}

// ServeHTTP handles POST /webhook. A bad signature is rejected with 400;
// everything after signature verification acks 200 so LINE does not
// redeliver events whose processing failed.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	events, err := h.bot.ParseRequest(r)
	if err != nil {
		if errors.Is(err, linebot.ErrInvalidSignature) {
			h.logger.Warn("Rejected webhook with invalid signature")
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		h.logger.Error("Failed to parse webhook request", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	for _, event := range events {
		h.handleEvent(r.Context(), event)
	}

	w.WriteHeader(http.StatusOK)
}

// handleEvent replies to every event that carries a reply token. Only text
// messages reach the answerer; any other event (stickers, images, follows,
// postbacks) gets the fixed text-only reply.
func (h *Handler) handleEvent(ctx context.Context, event *linebot.Event) {
	if event.ReplyToken == "" {
		return
	}

	userID := "unknown"
	if event.Source != nil && event.Source.UserID != "" {
		userID = event.Source.UserID
	}

	reply := nonTextReply
	if msg, ok := event.Message.(*linebot.TextMessage); ok {
		reply = h.answerer.Answer(ctx, msg.Text, userID)
	}

	if _, err := h.bot.ReplyMessage(
		event.ReplyToken, linebot.NewTextMessage(reply),
	).WithContext(ctx).Do(); err != nil {
		h.logger.Error("Failed to send LINE reply",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}
