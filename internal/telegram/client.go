package telegram

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Client — минимальный интерфейс мессенджера, который нужен ядру:
// отправить сообщение и выпустить инвайт-ссылку.
type Client interface {
	SendMessage(chatID int64, text string) error
	CreateInviteLink(channel string, memberLimit int) (string, error)
}

type botClient struct {
	api *tgbotapi.BotAPI
}

func NewClient(api *tgbotapi.BotAPI) Client {
	return &botClient{api: api}
}

func (c *botClient) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message to %d: %w", chatID, err)
	}
	return nil
}

func (c *botClient) CreateInviteLink(channel string, memberLimit int) (string, error) {
	cfg := tgbotapi.CreateChatInviteLinkConfig{
		ChatConfig:  chatConfig(channel),
		MemberLimit: memberLimit,
	}

	resp, err := c.api.Request(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to create invite link for %s: %w", channel, err)
	}

	var link tgbotapi.ChatInviteLink
	if err := json.Unmarshal(resp.Result, &link); err != nil {
		return "", fmt.Errorf("failed to decode invite link response: %w", err)
	}
	return link.InviteLink, nil
}

// Канал может быть задан как числовой chat id или как @username.
func chatConfig(channel string) tgbotapi.ChatConfig {
	if id, err := strconv.ParseInt(channel, 10, 64); err == nil {
		return tgbotapi.ChatConfig{ChatID: id}
	}
	if !strings.HasPrefix(channel, "@") {
		channel = "@" + channel
	}
	return tgbotapi.ChatConfig{SuperGroupUsername: channel}
}
