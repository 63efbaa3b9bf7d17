package registry

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jpagency/paywall_bot/config"
	"github.com/jpagency/paywall_bot/internal/models"
	"github.com/jpagency/paywall_bot/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	configs []models.BotConfig
	err     error
}

func (s *stubSource) ListActiveBotConfigs(ctx context.Context) ([]models.BotConfig, error) {
	return s.configs, s.err
}

// Фабрика без сети: id берётся из префикса токена.
func offlineFactory(token string) (*tgbotapi.BotAPI, error) {
	id, err := BotIDFromToken(token)
	if err != nil {
		return nil, err
	}
	return &tgbotapi.BotAPI{Self: tgbotapi.User{ID: id}, Token: token}, nil
}

func TestLoadConfigsPrefersLedger(t *testing.T) {
	source := &stubSource{configs: []models.BotConfig{
		{ID: 10, Token: "10:aaa", Category: "of", Active: true},
	}}
	cfg := &config.Config{BotToken: "20:bbb", BotTokens: "30:ccc,40:ddd"}

	configs, err := LoadConfigs(context.Background(), source, cfg, utils.InitLogger())
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, int64(10), configs[0].ID)
}

func TestLoadConfigsFallsBackToTokenList(t *testing.T) {
	cfg := &config.Config{BotToken: "20:bbb", BotTokens: "30:ccc, 40:ddd"}

	configs, err := LoadConfigs(context.Background(), &stubSource{}, cfg, utils.InitLogger())
	require.NoError(t, err)
	require.Len(t, configs, 2)
	assert.Equal(t, int64(30), configs[0].ID)
	assert.Equal(t, int64(40), configs[1].ID)
}

func TestLoadConfigsFallsBackToDefaultToken(t *testing.T) {
	cfg := &config.Config{BotToken: "20:bbb"}

	configs, err := LoadConfigs(context.Background(), &stubSource{err: errors.New("ledger down")}, cfg, utils.InitLogger())
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, int64(20), configs[0].ID)
}

func TestLoadConfigsWithoutTokens(t *testing.T) {
	_, err := LoadConfigs(context.Background(), &stubSource{}, &config.Config{}, utils.InitLogger())
	assert.Error(t, err)
}

func TestBotIDFromToken(t *testing.T) {
	id, err := BotIDFromToken("123456:ABC-DEF")
	require.NoError(t, err)
	assert.Equal(t, int64(123456), id)

	_, err = BotIDFromToken("no-colon")
	assert.Error(t, err)

	_, err = BotIDFromToken(":missing-id")
	assert.Error(t, err)
}

func TestRegistryResolve(t *testing.T) {
	configs := []models.BotConfig{
		{ID: 1, Token: "1:aaa", Category: "of"},
		{ID: 2, Token: "2:bbb", Category: "vip"},
	}

	reg, err := New(configs, offlineFactory, utils.InitLogger())
	require.NoError(t, err)

	inst, err := reg.Resolve(2)
	require.NoError(t, err)
	assert.Equal(t, "vip", inst.Category)

	_, err = reg.Resolve(99)
	assert.ErrorIs(t, err, ErrBotNotFound)

	client, err := reg.Messenger(1)
	require.NoError(t, err)
	assert.NotNil(t, client)

	_, err = reg.Messenger(99)
	assert.ErrorIs(t, err, ErrBotNotFound)

	assert.Len(t, reg.All(), 2)
}

func TestRegistryRejectsEmptyConfig(t *testing.T) {
	_, err := New(nil, offlineFactory, utils.InitLogger())
	assert.Error(t, err)
}
