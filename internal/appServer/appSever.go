package appServer

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/mateolafalce/padelpro/config"
	"github.com/mateolafalce/padelpro/internal/agent"
	repository "github.com/mateolafalce/padelpro/internal/database/postgres"
	redisdb "github.com/mateolafalce/padelpro/internal/database/redis"
	"github.com/mateolafalce/padelpro/internal/entity"
	"github.com/mateolafalce/padelpro/internal/schedule"
	"github.com/mateolafalce/padelpro/internal/service"
	"github.com/mateolafalce/padelpro/internal/transport"
	"github.com/mateolafalce/padelpro/internal/transport/middleware"
	"github.com/mateolafalce/padelpro/internal/worker"

	"github.com/mateolafalce/padelpro/pkg/events"
	"github.com/mateolafalce/padelpro/pkg/mail"
	"github.com/mateolafalce/padelpro/pkg/postgres"
	"github.com/mateolafalce/padelpro/pkg/queue"
	"github.com/mateolafalce/padelpro/pkg/redis"
	"github.com/mateolafalce/padelpro/pkg/telegram"
	"github.com/mateolafalce/padelpro/pkg/tracing"
	"github.com/mateolafalce/padelpro/pkg/whatsapp"
)

const shutdownTimeout = 15 * time.Second

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// unavailableModel answers every turn with the configuration error so the
// rest of the API keeps serving without an OpenAI key.
type unavailableModel struct {
	err error
}

func (m unavailableModel) Complete(context.Context, []agent.Message, []agent.ToolSpec) (*agent.Reply, error) {
	return nil, m.err
}

func setupLogger(level string) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}

func NewServer(cfg *config.Config) {
	setupLogger(cfg.Server.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Init(ctx, &cfg.Tracing, cfg.Server.AppVersion, cfg.Server.Env)
	if err != nil {
		logrus.Fatalf("Failed to initialize tracing: %v", err)
	}

	grid, err := schedule.GridByName(cfg.Slots.Grid)
	if err != nil {
		logrus.Fatalf("Invalid slot grid: %v", err)
	}

	// Initialize database
	db, err := postgres.NewPostgresDB(&cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := postgres.RunMigrations(ctx, db, grid); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	repo := repository.NewRepository(db)

	// Redis backs the notification queue, the chat rate limiter and the agent
	// sessions. Without it sessions live in memory and nothing is limited.
	var (
		redisClient *goredis.Client
		redisQueue  *queue.RedisQueue
		dlqHandler  *queue.DefaultDLQHandler
		limiter     middleware.Limiter
		sessions    agent.SessionStore = agent.NewMemorySessionStore(cfg.Agent.SessionTTL)
	)
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			logrus.Errorf("Failed to connect to Redis: %v. Continuing without it...", err)
		} else {
			defer redisClient.Close()

			sessions = redisdb.NewSessionStore(redisClient, cfg.Queue.Prefix, cfg.Agent.SessionTTL)
			if cfg.RateLimit.Enabled {
				limiter = redisdb.NewRateLimiter(redisClient, cfg.Queue.Prefix, cfg.RateLimit.Limit, cfg.RateLimit.Window)
			}

			if cfg.Queue.Enabled {
				redisQueue, dlqHandler = newQueue(redisClient, &cfg.Queue)
			}
		}
	}

	// Reservation events fan out to every enabled target
	publisher := service.NewFanOutPublisher()
	var closers []io.Closer

	if cfg.Events.RabbitMQ.Enabled {
		rabbit, err := events.NewRabbitMQPublisher(cfg.Events.RabbitMQ.URL, cfg.Events.RabbitMQ.Exchange)
		if err != nil {
			logrus.Errorf("Failed to connect to RabbitMQ: %v", err)
		} else {
			publisher.Add("rabbitmq", rabbit)
			closers = append(closers, rabbit)
		}
	}
	if cfg.Events.Kafka.Enabled {
		kafka := events.NewKafkaPublisher(cfg.Events.Kafka.Brokers, cfg.Events.Kafka.Topic)
		publisher.Add("kafka", kafka)
		closers = append(closers, kafka)
	}
	if redisQueue != nil {
		publisher.Add("queue", service.NewNotifyAdminPublisher(service.NewQueueAdapter(redisQueue), cfg.Queue.MaxRetries))
		startQueueConsumer(ctx, redisQueue, cfg)
	}
	logrus.WithField("targets", publisher.Len()).Info("Event publisher initialized")

	// Initialize services
	availabilityService := service.NewAvailabilityService(grid, repo.Courts, repo.Reservations)
	reservationService := service.NewReservationService(grid, availabilityService, repo, publisher)
	blockService := service.NewBlockService(grid, repo, publisher)
	catalogService := service.NewCatalogService(grid, repo.Courts, repo.Slots)
	courtService := service.NewCourtService(repo.Courts)
	historyService := service.NewHistoryService(repo.Conversations, cfg.History.ContextMessages, cfg.History.KeepMessages)
	businessService := service.NewBusinessService(repo.Config, entity.Business{
		Name:    cfg.Business.Name,
		Kind:    cfg.Business.Kind,
		Address: cfg.Business.Address,
	})

	// Booking agent
	loc, err := time.LoadLocation(cfg.Agent.Location)
	if err != nil {
		logrus.Warnf("Unknown location %q, using local time: %v", cfg.Agent.Location, err)
		loc = time.Local
	}

	var model agent.Model
	openAIModel, err := agent.NewOpenAIModel(&cfg.OpenAI, cfg.Agent.ModelTimeout)
	if err != nil {
		logrus.Errorf("Booking agent disabled: %v", err)
		model = unavailableModel{err: err}
	} else {
		model = openAIModel
	}

	bookingAgent := agent.New(agent.Deps{
		Model:        model,
		Sessions:     sessions,
		Availability: availabilityService,
		Reservations: reservationService,
		Catalog:      catalogService,
		Business:     businessService,
	}, cfg.Agent.MaxRounds, loc)
	conversation := agent.NewConversation(bookingAgent, historyService)

	// Background workers
	retentionWorker := worker.NewHistoryRetentionWorker(historyService, cfg.History.SweepInterval)
	go retentionWorker.Start(ctx)
	logrus.Info("History retention worker started")

	// Initialize handlers
	var (
		queueInspector transport.QueueInspector
		dlqInspector   transport.DLQInspector
	)
	if redisQueue != nil {
		queueInspector = redisQueue
		dlqInspector = dlqHandler
	}

	handlers := &transport.Handlers{
		Courts:       transport.NewCourtHandler(catalogService, courtService),
		Reservations: transport.NewReservationHandler(reservationService, availabilityService),
		Block:        transport.NewBlockHandler(blockService),
		Config:       transport.NewConfigHandler(businessService),
		History:      transport.NewHistoryHandler(historyService),
		Chat:         transport.NewChatHandler(conversation),
		WhatsApp: transport.NewWhatsAppHandler(
			conversation,
			whatsapp.NewClient(&cfg.WhatsApp),
			bookingAgent,
			limiter,
			cfg.WhatsApp.VerifyToken,
		),
		DeadLetters: transport.NewDeadLetterHandler(dlqInspector),
		Health:      transport.NewHealthHandler(db, queueInspector, cfg.Server.AppVersion),
	}

	router := transport.InitRoutes(handlers, transport.RouterOptions{
		Mode:           cfg.Server.Mode,
		RequestTimeout: cfg.Server.RequestTimeout,
		ChatLimiter:    limiter,
	})

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, router); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.WithFields(logrus.Fields{
		"port": cfg.Server.Port,
		"grid": grid.Name(),
	}).Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}

	cancel()
	logrus.WithFields(retentionWorker.GetStats()).Info("History retention worker stopped")

	if redisQueue != nil {
		if err := redisQueue.Close(); err != nil {
			logrus.Errorf("error occured on queue closing: %s", err.Error())
		}
	}
	for _, c := range closers {
		if err := c.Close(); err != nil {
			logrus.Errorf("error occured on event publisher closing: %s", err.Error())
		}
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logrus.Errorf("error occured on tracer shutting down: %s", err.Error())
	}
}

func newQueue(client *goredis.Client, cfg *config.QueueConfig) (*queue.RedisQueue, *queue.DefaultDLQHandler) {
	queueConfig := queue.DefaultRedisQueueConfig(cfg.Prefix)
	queueConfig.MaxRetries = cfg.MaxRetries
	queueConfig.BaseDelay = cfg.BaseDelay

	retryManager := queue.NewRetryManager(cfg.MaxRetries, cfg.BaseDelay)
	dlqHandler := queue.NewDefaultDLQHandler(client, queueConfig.DLQ, queueConfig.MainQueue)

	q, err := queue.NewRedisQueue(client, queueConfig, retryManager, dlqHandler)
	if err != nil {
		logrus.Errorf("Failed to initialize Redis queue: %v. Continuing without queue...", err)
		return nil, nil
	}
	logrus.Info("Redis queue initialized")
	return q, dlqHandler
}

func startQueueConsumer(ctx context.Context, q *queue.RedisQueue, cfg *config.Config) {
	var notifiers []queue.Notifier

	if cfg.Telegram.Enabled {
		bot, err := telegram.NewBot(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			logrus.Errorf("Telegram notifications disabled: %v", err)
		} else {
			notifiers = append(notifiers, bot)
		}
	}
	if cfg.Email.Enabled {
		mailer, err := mail.NewClient(&cfg.Email)
		if err != nil {
			logrus.Errorf("Email notifications disabled: %v", err)
		} else {
			notifiers = append(notifiers, mailer)
		}
	}
	if len(notifiers) == 0 {
		logrus.Warn("No notifiers configured, admin notifications will only be logged")
	}

	taskHandler := queue.NewTaskHandler(30*time.Second, notifiers...)
	if err := q.Subscribe(ctx, taskHandler.HandleTask); err != nil {
		logrus.Errorf("Queue subscriber error: %v", err)
	}
}
