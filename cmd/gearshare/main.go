package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gearshare/internal/app/commands"
	availabilityapp "gearshare/internal/app/handlers/availability"
	bookingapp "gearshare/internal/app/handlers/booking"
	listingsapp "gearshare/internal/app/handlers/listings"
	reviewsapp "gearshare/internal/app/handlers/reviews"
	"gearshare/internal/app/middleware"
	appoutbox "gearshare/internal/app/outbox"
	"gearshare/internal/app/queries"
	"gearshare/internal/app/uow"
	domainitems "gearshare/internal/domain/items"
	"gearshare/internal/domain/shared/money"
	kafkabroker "gearshare/internal/infra/broker/kafka"
	"gearshare/internal/infra/config"
	mongodb "gearshare/internal/infra/db/mongo"
	ginserver "gearshare/internal/infra/http/gin"
	"gearshare/internal/infra/obs"
	infraoutbox "gearshare/internal/infra/outbox"
	"gearshare/internal/infra/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("using fallback configuration", "error", err)
		cfg.Env = env
		cfg.HTTPAddr = getenv("HTTP_ADDR", ":8080")
		cfg.IdempotencyTTL = 168 * time.Hour
		cfg.OutboxPollInterval = 500 * time.Millisecond
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	app, err := buildApplication(cfg, logger)
	if err != nil {
		logger.Error("application wiring failed", "error", err)
		os.Exit(1)
	}
	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	fixturesPath := cfg.ItemFixtures
	if fixturesPath == "" {
		fixturesPath = defaultItemFixturesPath()
	}
	if err := app.loadItemFixtures(ctx, fixturesPath, logger); err != nil {
		logger.Warn("item fixtures load failed", "error", err, "path", fixturesPath)
	}

	if app.worker != nil {
		go func() {
			if err := app.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}
	if app.consumer != nil {
		defer app.consumer.Close()
		go func() {
			if err := app.consumer.Run(ctx, app.topics); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("event consumer stopped", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers   ginserver.Handlers
	uowFactory uow.UoWFactory
	worker     *infraoutbox.Worker
	consumer   *kafkabroker.Consumer
	topics     []string
	ready      func() error
}

func buildApplication(cfg config.Config, logger *slog.Logger) (application, error) {
	var (
		uowFactory uow.UoWFactory
		outboxPort appoutbox.Outbox
		idStore    middleware.IdempotencyStore
		worker     *infraoutbox.Worker
		consumer   *kafkabroker.Consumer
		topics     []string
		ready      = func() error { return nil }
	)

	if cfg.MongoURI != "" {
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, fmt.Errorf("mongo connect: %w", err)
		}
		uowFactory = mongodb.NewFactory(client.DB)
		store := infraoutbox.NewStore(client.DB)
		outboxPort = infraoutbox.TransactionalOutbox{Store: store}
		idStore = mongodb.NewIdempotencyStore(client.DB, cfg.IdempotencyTTL)
		ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}

		if len(cfg.KafkaBrokers) > 0 {
			producer, err := kafkabroker.NewProducer(cfg.KafkaBrokers, nil)
			if err != nil {
				return application{}, fmt.Errorf("kafka producer: %w", err)
			}
			worker = &infraoutbox.Worker{
				Store:       store,
				Producer:    producer,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				Backoff:     cfg.RetryBackoff,
			}
			if cfg.KafkaGroupID != "" {
				consumer, err = kafkabroker.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, nil, kafkabroker.EventLogger{Logger: logger})
				if err != nil {
					return application{}, fmt.Errorf("kafka consumer: %w", err)
				}
				topics = kafkabroker.EventTopics(cfg.KafkaTopicPrefix)
			}
		} else {
			logger.Info("kafka brokers not configured, outbox worker disabled")
		}
	} else {
		logger.Info("mongo not configured, using in-memory storage")
		uowFactory = memory.NewFactory()
		outboxPort = memory.NewOutbox()
		idStore = memory.NewIdempotencyStore(cfg.IdempotencyTTL)
	}

	commandBus := commands.NewInMemoryBus()
	encoder := appoutbox.JSONEventEncoder{}

	commands.RegisterHandler(commandBus, bookingapp.RequestBookingCommand{}.Key(), &bookingapp.RequestBookingHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxPort,
		Encoder:    encoder,
		Logger:     logger,
	})
	commands.RegisterHandler(commandBus, bookingapp.DecideBookingCommand{}.Key(), &bookingapp.DecideBookingHandler{
		Outbox:  outboxPort,
		Encoder: encoder,
		Logger:  logger,
	})
	commands.RegisterHandler(commandBus, bookingapp.CancelBookingCommand{}.Key(), &bookingapp.CancelBookingHandler{
		Outbox:  outboxPort,
		Encoder: encoder,
		Logger:  logger,
	})
	commands.RegisterHandler(commandBus, bookingapp.CompleteBookingCommand{}.Key(), &bookingapp.CompleteBookingHandler{
		Outbox:  outboxPort,
		Encoder: encoder,
		Logger:  logger,
	})
	commands.RegisterHandler(commandBus, availabilityapp.AddManualBlockCommand{}.Key(), &availabilityapp.AddManualBlockHandler{
		Outbox:  outboxPort,
		Encoder: encoder,
		Logger:  logger,
	})
	commands.RegisterHandler(commandBus, availabilityapp.RemoveBlockCommand{}.Key(), &availabilityapp.RemoveBlockHandler{
		Outbox:  outboxPort,
		Encoder: encoder,
		Logger:  logger,
	})
	commands.RegisterHandler(commandBus, availabilityapp.RecomputeCalendarCommand{}.Key(), &availabilityapp.RecomputeCalendarHandler{
		Logger: logger,
	})
	commands.RegisterHandler(commandBus, reviewsapp.SubmitReviewCommand{}.Key(), &reviewsapp.SubmitReviewHandler{
		Outbox:  outboxPort,
		Encoder: encoder,
		Logger:  logger,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, availabilityapp.GetCalendarQuery{}.Key(), &availabilityapp.GetCalendarHandler{
		UoWFactory: uowFactory,
		Logger:     logger,
	})
	queries.RegisterHandler(queryBus, bookingapp.ListRenterBookingsQuery{}.Key(), &bookingapp.ListRenterBookingsHandler{
		UoWFactory: uowFactory,
		Logger:     logger,
	})
	queries.RegisterHandler(queryBus, bookingapp.ListOwnerBookingsQuery{}.Key(), &bookingapp.ListOwnerBookingsHandler{
		UoWFactory: uowFactory,
		Logger:     logger,
	})
	queries.RegisterHandler(queryBus, listingsapp.ListOwnerItemsQuery{}.Key(), &listingsapp.ListOwnerItemsHandler{
		UoWFactory: uowFactory,
	})
	queries.RegisterHandler(queryBus, listingsapp.GetItemQuery{}.Key(), &listingsapp.GetItemHandler{
		UoWFactory: uowFactory,
	})
	queries.RegisterHandler(queryBus, reviewsapp.ListItemReviewsQuery{}.Key(), &reviewsapp.ListItemReviewsHandler{
		UoWFactory: uowFactory,
	})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Idempotency(idStore, nil),
		middleware.Transaction(uowFactory, nil),
		middleware.OutboxFlush(outboxPort),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus)

	return application{
		handlers: ginserver.Handlers{
			Booking: ginserver.BookingHandler{
				Commands: commandBusWithMiddleware,
				Queries:  queryBusWithMiddleware,
				Logger:   logger,
			},
			Availability: ginserver.AvailabilityHandler{
				Commands: commandBusWithMiddleware,
				Queries:  queryBusWithMiddleware,
				Logger:   logger,
			},
			Listing: ginserver.ListingHandler{
				Queries: queryBusWithMiddleware,
				Logger:  logger,
			},
			Review: ginserver.ReviewHandler{
				Commands: commandBusWithMiddleware,
				Queries:  queryBusWithMiddleware,
				Logger:   logger,
			},
		},
		uowFactory: uowFactory,
		worker:     worker,
		consumer:   consumer,
		topics:     topics,
		ready:      ready,
	}, nil
}

func (a application) loadItemFixtures(ctx context.Context, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("item fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	if len(data) == 0 {
		logger.Warn("item fixtures file empty", "path", path)
		return nil
	}

	var fixtures []itemFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}
	if len(fixtures) == 0 {
		return nil
	}

	unit, err := a.uowFactory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return err
	}
	execCtx := ctx
	if injector, ok := unit.(interface {
		InjectContext(context.Context) context.Context
	}); ok {
		execCtx = injector.InjectContext(ctx)
	}
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(execCtx)
		}
	}()

	now := time.Now().UTC()
	for _, fx := range fixtures {
		currency := fx.Currency
		if currency == "" {
			currency = money.DefaultCurrency
		}
		item, err := domainitems.NewItem(domainitems.CreateParams{
			ID:          domainitems.ItemID(fx.ID),
			OwnerEmail:  fx.OwnerEmail,
			Title:       fx.Title,
			Description: fx.Description,
			Category:    fx.Category,
			PricePerDay: money.Money{Amount: fx.PricePerDay, Currency: currency},
			Photos:      fx.Photos,
			Now:         now,
		})
		if err != nil {
			logger.Error("fixture invalid", "item_id", fx.ID, "error", err)
			continue
		}
		if err := item.Activate(now); err != nil {
			logger.Error("fixture activation failed", "item_id", fx.ID, "error", err)
			continue
		}
		item.ClearEvents()
		if err := unit.Items().Save(execCtx, item); err != nil {
			logger.Error("cannot store fixture item", "item_id", fx.ID, "error", err)
			continue
		}
		logger.Info("item fixture imported", "item_id", item.ID)
	}

	if err := unit.Commit(execCtx); err != nil {
		return err
	}
	committed = true
	return nil
}

type itemFixture struct {
	ID          string   `json:"id"`
	OwnerEmail  string   `json:"owner_email"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	PricePerDay int64    `json:"price_per_day"`
	Currency    string   `json:"currency"`
	Photos      []string `json:"photos"`
}

func defaultItemFixturesPath() string {
	candidates := []string{
		filepath.Join("data", "items.json"),
		filepath.Join("backend", "data", "items.json"),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return candidates[0]
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
