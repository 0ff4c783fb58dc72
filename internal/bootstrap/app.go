package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"repbep/internal/ai"
	"repbep/internal/app"
	"repbep/internal/cache"
	"repbep/internal/config"
	"repbep/internal/pkg/keylock"
	"repbep/internal/pkg/logger"
	"repbep/internal/platform/database"
	mongoClient "repbep/internal/platform/mongo"
	rabbitmqClient "repbep/internal/platform/rabbitmq"
	redisClient "repbep/internal/platform/redis"
	"repbep/internal/platform/tracing"
	"repbep/internal/repository"
	"repbep/internal/repository/mongostore"
)

// Probe is a named readiness check reported by the health endpoint.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

type stores struct {
	users         app.UserStore
	projects      app.ProjectStore
	conversations app.ConversationStore
	messages      app.MessageStore
}

type App struct {
	Config *config.Config
	Logger *zap.Logger

	DB     *gorm.DB
	Mongo  *mongo.Client
	Redis  *redis.Client
	MQConn *amqp.Connection

	Auth     *app.AuthService
	Projects *app.ProjectService
	Chat     *app.ChatService

	Probes    []Probe
	StartedAt time.Time

	shutdownTracing tracing.ShutdownFunc
}

// New connects every configured backend and wires the services. Resources opened
// before a failure are released.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (_ *App, err error) {
	a := &App{Config: cfg, Logger: log, StartedAt: time.Now()}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	a.shutdownTracing, err = tracing.Init(ctx, cfg.Tracing, logger.Module(log, "tracing"))
	if err != nil {
		return nil, err
	}

	s, err := a.openStores(ctx)
	if err != nil {
		return nil, err
	}

	history, err := a.openHistory(ctx)
	if err != nil {
		return nil, err
	}

	completer, err := newCompleter(ctx, cfg.LLM)
	if err != nil {
		return nil, err
	}
	gateway := ai.NewGateway(completer, ai.GatewayConfig{
		Model:        cfg.LLM.Model,
		SystemPrompt: cfg.LLM.SystemPrompt,
		MaxTokens:    cfg.LLM.MaxTokens,
		Timeout:      time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
	}, logger.Module(log, "assistant"))

	var publisher app.ExchangePublisher
	if cfg.RabbitMQ.Enabled {
		a.MQConn, err = rabbitmqClient.New(cfg.RabbitMQ.URL)
		if err != nil {
			return nil, err
		}
		p, err := rabbitmqClient.NewExchangePublisher(a.MQConn, cfg.RabbitMQ.ExchangeQueue)
		if err != nil {
			return nil, err
		}
		publisher = p
		a.Probes = append(a.Probes, Probe{Name: "rabbitmq", Check: func(context.Context) error {
			if a.MQConn.IsClosed() {
				return errors.New("connection closed")
			}
			return nil
		}})
	}

	a.Auth = app.NewAuthService(s.users, cfg.Auth.JWTSecret, time.Duration(cfg.Auth.JWTExpireMinute)*time.Minute)
	a.Projects = app.NewProjectService(s.projects)
	a.Chat = app.NewChatService(app.ChatDeps{
		Conversations: s.conversations,
		Messages:      s.messages,
		History:       history,
		Gateway:       gateway,
		Locks:         keylock.New(),
		Publisher:     publisher,
		Logger:        log,
	})

	log.Info("application wired",
		zap.String("driver", cfg.Database.Driver),
		zap.String("history", cfg.History.Backend),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.Bool("rabbitmq", cfg.RabbitMQ.Enabled),
	)
	return a, nil
}

func (a *App) openStores(ctx context.Context) (*stores, error) {
	cfg := a.Config
	if cfg.Database.Driver == config.DriverMongo {
		client, err := mongoClient.New(ctx, cfg.Mongo.URI)
		if err != nil {
			return nil, err
		}
		a.Mongo = client
		db := client.Database(cfg.Mongo.DB)
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			return nil, err
		}
		a.Probes = append(a.Probes, Probe{Name: "mongo", Check: func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		}})
		return &stores{
			users:         mongostore.NewUserStore(db),
			projects:      mongostore.NewProjectStore(db),
			conversations: mongostore.NewConversationStore(db),
			messages:      mongostore.NewMessageStore(db),
		}, nil
	}

	db, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.DB = db
	if err := repository.Migrate(db); err != nil {
		return nil, err
	}
	a.Probes = append(a.Probes, Probe{Name: cfg.Database.Driver, Check: func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}})
	return &stores{
		users:         repository.NewUserRepository(db),
		projects:      repository.NewProjectRepository(db),
		conversations: repository.NewConversationRepository(db),
		messages:      repository.NewMessageRepository(db),
	}, nil
}

func (a *App) openHistory(ctx context.Context) (app.HistoryCache, error) {
	cfg := a.Config
	if cfg.History.Backend != config.HistoryRedis {
		return cache.NewMemoryHistory(time.Duration(cfg.History.IdleTTLSeconds) * time.Second), nil
	}

	client, err := redisClient.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	a.Redis = client
	a.Probes = append(a.Probes, Probe{Name: "redis", Check: func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}})
	return cache.NewRedisHistory(client, time.Duration(cfg.Redis.HistoryTTLSeconds)*time.Second), nil
}

func newCompleter(ctx context.Context, cfg config.LLMConfig) (ai.Completer, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return ai.NewGeminiClient(ctx, cfg.APIKey)
	case config.ProviderOpenAI, "":
		return ai.NewOpenAICompatibleClient(cfg.BaseURL, cfg.APIKey), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}

// Migrate applies the schema for the configured backend without wiring services.
func Migrate(ctx context.Context, cfg *config.Config) error {
	if cfg.Database.Driver == config.DriverMongo {
		client, err := mongoClient.New(ctx, cfg.Mongo.URI)
		if err != nil {
			return err
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		return mongostore.EnsureIndexes(ctx, client.Database(cfg.Mongo.DB))
	}

	db, err := database.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()
	return repository.Migrate(db)
}

func (a *App) Close() error {
	var closeErr error
	if a.shutdownTracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.shutdownTracing(ctx); err != nil {
			closeErr = err
		}
		cancel()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MQConn != nil && !a.MQConn.IsClosed() {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Mongo != nil {
		if err := a.Mongo.Disconnect(context.Background()); err != nil {
			closeErr = err
		}
	}
	if a.DB != nil {
		if err := database.Close(a.DB); err != nil {
			closeErr = err
		}
	}
	return closeErr
}
