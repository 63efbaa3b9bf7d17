package registry

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jpagency/paywall_bot/config"
	"github.com/jpagency/paywall_bot/internal/models"
	"github.com/jpagency/paywall_bot/internal/telegram"
	"github.com/jpagency/paywall_bot/utils"
)

var ErrBotNotFound = errors.New("bot not found")

// ConfigSource — источник конфигураций ботов в леджере.
type ConfigSource interface {
	ListActiveBotConfigs(ctx context.Context) ([]models.BotConfig, error)
}

// APIFactory создаёт API-клиент по токену. В проде это tgbotapi.NewBotAPI,
// в тестах — синтетический клиент без сети.
type APIFactory func(token string) (*tgbotapi.BotAPI, error)

func TelegramAPIFactory(token string) (*tgbotapi.BotAPI, error) {
	return tgbotapi.NewBotAPI(token)
}

// Instance — один сконфигурированный бот: API-клиент плюс категория,
// которой ограничены его тарифы.
type Instance struct {
	ID       int64
	Category string
	API      *tgbotapi.BotAPI
	Client   telegram.Client
}

// Registry — неизменяемая после конструктора карта ботов по id.
// После инициализации читается из множества горутин без блокировок.
type Registry struct {
	instances map[int64]*Instance
	order     []int64
	logger    *utils.Logger
}

// LoadConfigs читает активные конфигурации из леджера, при пустом результате
// берёт список BOT_TOKENS из окружения, затем одиночный BOT_TOKEN.
// При сконфигурированном токене по умолчанию всегда возвращает хотя бы одного бота.
func LoadConfigs(ctx context.Context, source ConfigSource, cfg *config.Config, logger *utils.Logger) ([]models.BotConfig, error) {
	configs, err := source.ListActiveBotConfigs(ctx)
	if err != nil {
		logger.Errorf("Failed to load bot configs from ledger: %v", err)
	}
	if len(configs) > 0 {
		return configs, nil
	}

	if cfg.BotTokens != "" {
		var fromEnv []models.BotConfig
		for _, token := range strings.Split(cfg.BotTokens, ",") {
			token = strings.TrimSpace(token)
			if token == "" {
				continue
			}
			id, err := BotIDFromToken(token)
			if err != nil {
				logger.Warnf("Skipping malformed bot token: %v", err)
				continue
			}
			fromEnv = append(fromEnv, models.BotConfig{ID: id, Token: token, Active: true})
		}
		if len(fromEnv) > 0 {
			return fromEnv, nil
		}
	}

	if cfg.BotToken != "" {
		id, err := BotIDFromToken(cfg.BotToken)
		if err != nil {
			return nil, err
		}
		return []models.BotConfig{{ID: id, Token: cfg.BotToken, Active: true}}, nil
	}

	return nil, errors.New("no bot tokens configured")
}

// BotIDFromToken извлекает числовой id бота из токена вида "<id>:<hash>".
func BotIDFromToken(token string) (int64, error) {
	idx := strings.Index(token, ":")
	if idx <= 0 {
		return 0, fmt.Errorf("malformed bot token")
	}
	id, err := strconv.ParseInt(token[:idx], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed bot token: %w", err)
	}
	return id, nil
}

func New(configs []models.BotConfig, factory APIFactory, logger *utils.Logger) (*Registry, error) {
	reg := &Registry{
		instances: make(map[int64]*Instance, len(configs)),
		logger:    logger,
	}

	for _, cfg := range configs {
		api, err := factory(cfg.Token)
		if err != nil {
			return nil, fmt.Errorf("failed to init bot %d: %w", cfg.ID, err)
		}
		id := cfg.ID
		if id == 0 {
			id = api.Self.ID
		}
		reg.instances[id] = &Instance{
			ID:       id,
			Category: cfg.Category,
			API:      api,
			Client:   telegram.NewClient(api),
		}
		reg.order = append(reg.order, id)
		logger.Infof("🤖 Registered bot %d (category=%q)", id, cfg.Category)
	}

	if len(reg.instances) == 0 {
		return nil, errors.New("bot registry is empty")
	}
	return reg, nil
}

// Resolve возвращает бота по id. Неизвестный id — обычная ошибка, не паника:
// ссылка из леджера могла пережить деактивацию бота.
func (r *Registry) Resolve(botID int64) (*Instance, error) {
	inst, ok := r.instances[botID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrBotNotFound, botID)
	}
	return inst, nil
}

// Messenger отдаёт клиент мессенджера владеющего бота.
func (r *Registry) Messenger(botID int64) (telegram.Client, error) {
	inst, err := r.Resolve(botID)
	if err != nil {
		return nil, err
	}
	return inst.Client, nil
}

// All возвращает ботов в порядке регистрации.
func (r *Registry) All() []*Instance {
	out := make([]*Instance, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.instances[id])
	}
	return out
}
