package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"subdesk/internal/caching"
	"subdesk/internal/config"
	"subdesk/internal/jobs"
	"subdesk/internal/logging"
	"subdesk/internal/models"
	"subdesk/internal/notifications"
	"subdesk/internal/repositories"
	"subdesk/internal/services"
	"subdesk/pkg/database"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// app holds the wired dependencies shared by every command.
type app struct {
	cfg         *config.AppConfig
	reminderCfg *config.ReminderConfig

	pool     *pgxpool.Pool
	cache    caching.CacheService
	queue    *asynq.Client
	whatsapp *notifications.WhatsAppPublisher

	auth          services.AuthService
	customers     services.CustomerService
	categories    services.CategoryService
	products      services.ProductService
	subscriptions services.SubscriptionService
	reminders     services.ReminderService
	dashboard     services.DashboardService
	exports       services.ExportService

	reminderJobs     *jobs.ReminderJobs
	exportJobs       *jobs.ExportJobs
	dashboardRefresh *jobs.DashboardRefreshService
}

// loadConfig reads the environment and initializes logging for component.
func loadConfig(component string) (*config.AppConfig, error) {
	logging.Init(logging.Config{Format: "auto", Level: "info", Component: component})
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Init(logging.Config{Format: cfg.Log.Format, Level: cfg.Log.Level, Component: component})
	return cfg, nil
}

// bootstrap connects to every backing service and wires the services.
// Optional integrations fall back quietly: without Postmark or AMQP reminders
// are logged instead of delivered, and without MinIO exports are disabled.
func bootstrap(ctx context.Context, component string) (*app, error) {
	cfg, err := loadConfig(component)
	if err != nil {
		return nil, err
	}
	reminderCfg, err := config.LoadReminderConfig(cfg.ReminderConfigPath)
	if err != nil {
		return nil, err
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, reminderCfg: reminderCfg, pool: pool}
	if cfg.MigrateOnStart {
		if err := database.Migrate(ctx, pool); err != nil {
			a.close()
			return nil, err
		}
	}

	a.cache = caching.NewRedisCacheService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	a.queue = asynq.NewClient(redisConnOpt(cfg))

	dispatcher, err := a.newDispatcher()
	if err != nil {
		a.close()
		return nil, err
	}

	customerRepo := repositories.NewCustomerRepo(pool)
	categoryRepo := repositories.NewCategoryRepo(pool)
	productRepo := repositories.NewProductRepo(pool)
	subscriptionRepo := repositories.NewSubscriptionRepo(pool)
	reminderRepo := repositories.NewReminderRepo(pool)
	settingsRepo := repositories.NewReminderSettingsRepo(pool)
	userRepo := repositories.NewUserRepo(pool)

	a.auth = services.NewAuthService(userRepo, a.cache, cfg.JWTSecret, cfg.TokenTTL)
	a.customers = services.NewCustomerService(customerRepo, a.cache)
	a.categories = services.NewCategoryService(categoryRepo)
	a.products = services.NewProductService(productRepo, categoryRepo, a.cache)
	a.subscriptions = services.NewSubscriptionService(subscriptionRepo, customerRepo, productRepo, a.cache)
	a.reminders = services.NewReminderService(reminderRepo, settingsRepo, subscriptionRepo, dispatcher, reminderCfg.ReminderPolicy())
	a.dashboard = services.NewDashboardService(customerRepo, productRepo, subscriptionRepo, reminderRepo, a.cache)

	if cfg.Minio.Endpoint != "" {
		minioSvc, err := services.NewMinioService(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to initialize MinIO service: %w", err)
		}
		a.exports = services.NewExportService(subscriptionRepo, minioSvc, cfg.Minio.ExportBucket, cfg.Minio.URLExpiry)
		a.exportJobs = jobs.NewExportJobs(a.exports)
	} else {
		log.Info().Msg("MINIO_ENDPOINT not set, subscription exports disabled")
	}

	a.reminderJobs = jobs.NewReminderJobs(a.reminders, a.subscriptions, a.queue, reminderCfg.Dispatch.MaxRetry)
	a.dashboardRefresh = jobs.NewDashboardRefreshService(a.dashboard, a.cache)
	return a, nil
}

func (a *app) newDispatcher() (*notifications.Dispatcher, error) {
	renderer, err := notifications.NewRenderer(a.reminderCfg.Templates.Subject, a.reminderCfg.Templates.Body)
	if err != nil {
		return nil, fmt.Errorf("invalid reminder templates: %w", err)
	}

	senders := map[models.ReminderType]notifications.Sender{
		models.ReminderTypeEmail:    notifications.LogSender{},
		models.ReminderTypeWhatsApp: notifications.LogSender{},
	}
	if pm := a.cfg.Postmark; pm.ServerToken != "" {
		sender, err := notifications.NewPostmarkSender(notifications.PostmarkConfig{
			ServerToken:  pm.ServerToken,
			AccountToken: pm.AccountToken,
			From:         pm.From,
			ReplyTo:      pm.ReplyTo,
		})
		if err != nil {
			return nil, err
		}
		senders[models.ReminderTypeEmail] = sender
	} else {
		log.Warn().Msg("POSTMARK_SERVER_TOKEN not set, email reminders are only logged")
	}
	if amqpCfg := a.cfg.AMQP; amqpCfg.URL != "" {
		publisher, err := notifications.NewWhatsAppPublisher(amqpCfg.URL, amqpCfg.Exchange, amqpCfg.RoutingKey)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to the WhatsApp gateway broker: %w", err)
		}
		a.whatsapp = publisher
		senders[models.ReminderTypeWhatsApp] = publisher
	} else {
		log.Warn().Msg("AMQP_URL not set, WhatsApp reminders are only logged")
	}

	d := a.reminderCfg.Dispatch
	return notifications.NewDispatcher(renderer, senders, d.PerSecond, d.Burst), nil
}

func (a *app) close() {
	if a.queue != nil {
		if err := a.queue.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close task queue client")
		}
	}
	if a.whatsapp != nil {
		a.whatsapp.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

// redisConnOpt builds the asynq connection from the cache settings so both
// share one Redis.
func redisConnOpt(cfg *config.AppConfig) asynq.RedisConnOpt {
	if strings.HasPrefix(cfg.RedisAddr, "redis://") || strings.HasPrefix(cfg.RedisAddr, "rediss://") {
		opt, err := asynq.ParseRedisURI(cfg.RedisAddr)
		if err == nil {
			return opt
		}
		log.Warn().Err(err).Msg("invalid redis url for task queue, using it as an address")
	}
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
}

var errNoExports = errors.New("exports require MINIO_ENDPOINT")
