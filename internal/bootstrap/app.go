package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"docchat/internal/ai"
	"docchat/internal/cache"
	"docchat/internal/config"
	"docchat/internal/platform/database"
	"docchat/internal/platform/objectstore"
	rabbitmqClient "docchat/internal/platform/rabbitmq"
	redisClient "docchat/internal/platform/redis"
	"docchat/internal/repository"
	"docchat/internal/worker"
)

// App holds every long-lived dependency. Optional integrations are nil when
// disabled in config.
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	Redis       *redis.Client
	MQConn      *amqp.Connection
	ChatWorker  *worker.ChatTurnPersistWorker
	ObjectStore *objectstore.MinioStore
	Models      ai.Models

	StartedAt time.Time

	onClose []func()
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg, StartedAt: time.Now()}

	db, err := database.New(ctx, database.Config{
		Driver: cfg.Database.Driver,
		DSN:    cfg.DatabaseDSN(),
		Path:   cfg.SQLite.Path,
	})
	if err != nil {
		return nil, err
	}
	a.DB = db
	if err := database.Migrate(db); err != nil {
		_ = a.Close()
		return nil, err
	}

	models, err := ai.New(ai.Config{
		Provider:    cfg.LLM.Provider,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		VisionModel: cfg.LLM.VisionModel,
		BaseURL:     cfg.LLM.BaseURL,
		Timeout:     cfg.LLMTimeout(),
	})
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("init llm client failed: %w", err)
	}
	a.Models = models

	if cfg.Redis.Enabled {
		redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.Redis = redisCli
	}

	if cfg.RabbitMQ.Enabled {
		mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.MQConn = mqConn

		var history worker.HistoryDropper
		if historyCache := a.HistoryCache(); historyCache != nil {
			history = historyCache
		}
		chatWorker := worker.NewChatTurnPersistWorker(mqConn, repository.NewChatTurnRepository(db), history, cfg.RabbitMQ.ChatTurnPersistQueue)
		if err := chatWorker.Start(ctx); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("start chat turn worker failed: %w", err)
		}
		a.ChatWorker = chatWorker
	}

	if cfg.Storage.Enabled {
		store, err := objectstore.New(ctx, objectstore.Config{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
		})
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.ObjectStore = store
	}

	slog.Info("dependencies ready",
		"db_driver", cfg.Database.Driver,
		"llm_provider", cfg.LLM.Provider,
		"redis", a.Redis != nil,
		"rabbitmq", a.MQConn != nil,
		"storage", a.ObjectStore != nil,
	)
	return a, nil
}

// HistoryCache returns nil when redis is disabled.
func (a *App) HistoryCache() *cache.HistoryCache {
	if a.Redis == nil {
		return nil
	}
	return cache.NewHistoryCache(
		a.Redis,
		time.Duration(a.Config.Redis.HistoryTTLSeconds)*time.Second,
		time.Duration(a.Config.Redis.HistoryDirtyTTLSeconds)*time.Second,
	)
}

// ChatTurnPublisher returns nil when rabbitmq is disabled.
func (a *App) ChatTurnPublisher() *rabbitmqClient.ChatTurnPublisher {
	if a.MQConn == nil {
		return nil
	}
	return rabbitmqClient.NewChatTurnPublisher(a.MQConn, a.Config.RabbitMQ.ChatTurnPersistQueue)
}

// OnClose registers fn to run first when the app is closed, in reverse
// registration order.
func (a *App) OnClose(fn func()) {
	a.onClose = append(a.onClose, fn)
}

func (a *App) Close() error {
	for i := len(a.onClose) - 1; i >= 0; i-- {
		a.onClose[i]()
	}
	a.onClose = nil

	var closeErr error
	if a.ChatWorker != nil {
		a.ChatWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
