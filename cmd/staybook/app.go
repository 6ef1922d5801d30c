package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"

	"staybook/internal/app/commands"
	availabilityapp "staybook/internal/app/handlers/availability"
	bookingapp "staybook/internal/app/handlers/booking"
	"staybook/internal/app/handlers/hostcalendar"
	pricingapp "staybook/internal/app/handlers/pricing"
	"staybook/internal/app/middleware"
	"staybook/internal/app/outbox"
	"staybook/internal/app/policies"
	"staybook/internal/app/queries"
	"staybook/internal/app/snapshot"
	"staybook/internal/app/uow"
	"staybook/internal/domain/availability"
	"staybook/internal/domain/listings"
	"staybook/internal/domain/pricing"
	"staybook/internal/infra/broker/kafka"
	"staybook/internal/infra/config"
	"staybook/internal/infra/db/mongo"
	ginserver "staybook/internal/infra/http/gin"
	"staybook/internal/infra/obs"
	infraoutbox "staybook/internal/infra/outbox"
	"staybook/internal/infra/storage/memory"
	"staybook/internal/infra/storage/scylla"
	"staybook/internal/infra/validation"
)

type worker struct {
	name string
	run  func(ctx context.Context) error
}

type application struct {
	handlers ginserver.Handlers
	checks   []obs.Check
	workers  []worker
	closers  []func()

	listings  listings.Repository
	snapshots *snapshot.Cache
	commands  commands.Bus
	queries   queries.Bus
	// subscribe is nil unless events are delivered in process.
	subscribe func(memory.Subscriber)
}

// storage is what a backend contributes to the application.
type storage struct {
	factory     uow.UoWFactory
	listings    listings.Repository
	outbox      outbox.Outbox
	idempotency middleware.IdempotencyStore
	// subscribe is set when events can be delivered in process.
	subscribe func(memory.Subscriber)
	// relay is set when events leave the process through the outbox worker.
	relay *infraoutbox.Store
	// overrideCalendar replaces the blocked range and price rule stores.
	overrideCalendar func(availability.BlockedRangeRepository, pricing.RuleRepository)
	ping             func(ctx context.Context) error
	close            func()
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{}

	var (
		st  storage
		err error
	)
	switch cfg.StorageMode {
	case config.StorageMongo:
		st, err = mongoStorage(ctx, cfg)
	default:
		st = memoryStorage()
	}
	if err != nil {
		return nil, err
	}
	if st.close != nil {
		app.closers = append(app.closers, st.close)
	}
	if st.ping != nil {
		app.checks = append(app.checks, obs.Check{Name: cfg.StorageMode, Probe: st.ping})
	}

	if cfg.CalendarStore == config.CalendarStoreScylla {
		session, err := scylla.NewSession(ctx, cfg, logger)
		if err != nil {
			app.close()
			return nil, err
		}
		app.closers = append(app.closers, session.Close)
		store := scylla.NewCalendarStore(session, logger)
		st.overrideCalendar(store.BlockedRanges(), store.PriceRules())
		app.checks = append(app.checks, obs.Check{Name: "scylla", Probe: store.Ping})
	}

	policy := policies.Calendar{
		Clock:           policies.SystemClock{},
		DefaultLocation: cfg.HostTimezone,
		CutoffHour:      cfg.LeadTimeCutoffHour,
	}
	cache := snapshot.NewCache(snapshot.FactorySource{Factory: st.factory}, cfg.SnapshotRefreshInterval, snapshot.WithLogger(logger))
	if st.subscribe != nil {
		st.subscribe(cache.HandleRecord)
		eventLog := logger.With("component", "events")
		st.subscribe(func(ctx context.Context, rec outbox.EventRecord) {
			eventLog.DebugContext(ctx, "event delivered", "event", rec.Name, "listing_id", rec.ListingID, "traceparent", rec.Headers[outbox.HeaderTraceParent])
		})
		app.subscribe = st.subscribe
	}

	if st.relay != nil {
		if err := app.startRelay(cfg, logger, st.relay, cache); err != nil {
			app.close()
			return nil, err
		}
	}

	app.listings = st.listings
	app.snapshots = cache
	app.commands, app.queries = registerBuses(cfg, st, policy, cache, logger)
	app.handlers = ginserver.Handlers{
		Availability: ginserver.AvailabilityHandler{Queries: app.queries},
		Booking:      ginserver.BookingHandler{Commands: app.commands, Queries: app.queries},
		HostCalendar: ginserver.HostCalendarHandler{Commands: app.commands, Queries: app.queries},
		Admin:        ginserver.AdminHandler{Commands: app.commands, Queries: app.queries},
	}
	return app, nil
}

func registerBuses(cfg config.Config, st storage, policy policies.Calendar, cache *snapshot.Cache, logger *slog.Logger) (commands.Bus, queries.Bus) {
	encoder := outbox.JSONEventEncoder{}
	validator := validation.New()

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.RequestBookingCommand{}.Key(), &bookingapp.RequestBookingHandler{
		UoWFactory: st.factory,
		Policy:     policy,
		Outbox:     st.outbox,
		Encoder:    encoder,
	})
	transitions := &bookingapp.TransitionHandler{UoWFactory: st.factory, Policy: policy, Outbox: st.outbox, Encoder: encoder}
	commands.RegisterHandler(commandBus, bookingapp.CancelBookingCommand{}.Key(), transitions.Cancel())
	commands.RegisterHandler(commandBus, bookingapp.ConfirmBookingCommand{}.Key(), transitions.Confirm())
	commands.RegisterHandler(commandBus, bookingapp.DeclineBookingCommand{}.Key(), transitions.Decline())
	blocked := &hostcalendar.BlockedRangesHandler{UoWFactory: st.factory, Policy: policy, Outbox: st.outbox, Encoder: encoder}
	commands.RegisterHandler(commandBus, hostcalendar.BlockRangeCommand{}.Key(), blocked.Block())
	commands.RegisterHandler(commandBus, hostcalendar.UnblockRangeCommand{}.Key(), blocked.Unblock())
	rules := &hostcalendar.PriceRulesHandler{UoWFactory: st.factory, Policy: policy, Outbox: st.outbox, Encoder: encoder}
	commands.RegisterHandler(commandBus, hostcalendar.SetPriceRuleCommand{}.Key(), rules.Set())
	commands.RegisterHandler(commandBus, hostcalendar.DeletePriceRuleCommand{}.Key(), rules.Delete())

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, availabilityapp.MonthGridQuery{}.Key(), &availabilityapp.MonthGridHandler{UoWFactory: st.factory, Snapshots: cache, Policy: policy})
	queries.RegisterHandler(queryBus, availabilityapp.CheckStayQuery{}.Key(), &availabilityapp.CheckStayHandler{UoWFactory: st.factory, Snapshots: cache, Policy: policy})
	queries.RegisterHandler(queryBus, availabilityapp.SelectDayQuery{}.Key(), &availabilityapp.SelectDayHandler{UoWFactory: st.factory, Snapshots: cache, Policy: policy})
	queries.RegisterHandler(queryBus, availabilityapp.TimelineQuery{}.Key(), &availabilityapp.TimelineHandler{UoWFactory: st.factory, Policy: policy, Logger: logger})
	queries.RegisterHandler(queryBus, pricingapp.QuoteQuery{}.Key(), &pricingapp.QuoteHandler{UoWFactory: st.factory, Snapshots: cache, Policy: policy})
	queries.RegisterHandler(queryBus, hostcalendar.CalendarConfigQuery{}.Key(), &hostcalendar.CalendarConfigHandler{UoWFactory: st.factory, Policy: policy})
	queries.RegisterHandler(queryBus, bookingapp.ListBookingsQuery{}.Key(), &bookingapp.ListBookingsHandler{UoWFactory: st.factory})

	logger.Debug("buses registered", "commands", commandBus.Keys(), "queries", queryBus.Keys())

	commandsWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Validation(validator),
		middleware.Idempotency(st.idempotency, nil, cfg.IdempotencyTTL, logger),
		middleware.OutboxFlush(st.outbox, logger),
		middleware.Transaction(st.factory, nil),
	)
	queriesWithMiddleware := middleware.ChainQueries(queryBus, middleware.QueryValidation(validator))
	return commandsWithMiddleware, queriesWithMiddleware
}

func memoryStorage() storage {
	factory := memory.NewFactory()
	box := memory.NewOutbox()
	return storage{
		factory:     factory,
		listings:    factory.ListingsRepo,
		outbox:      box,
		idempotency: memory.NewIdempotencyStore(),
		subscribe:   box.Subscribe,
		overrideCalendar: func(br availability.BlockedRangeRepository, pr pricing.RuleRepository) {
			factory.BlockedRangesRepo, factory.PriceRulesRepo = br, pr
		},
	}
}

func mongoStorage(ctx context.Context, cfg config.Config) (storage, error) {
	client, err := mongo.New(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return storage{}, fmt.Errorf("mongo connect: %w", err)
	}
	closeClient := func() { _ = client.Close(context.Background()) }
	if err := client.EnsureIndexes(ctx); err != nil {
		closeClient()
		return storage{}, fmt.Errorf("mongo indexes: %w", err)
	}
	idem, err := mongo.NewIdempotencyStore(ctx, client.DB)
	if err != nil {
		closeClient()
		return storage{}, fmt.Errorf("mongo idempotency store: %w", err)
	}
	box, err := infraoutbox.NewStore(ctx, client.DB)
	if err != nil {
		closeClient()
		return storage{}, fmt.Errorf("mongo outbox: %w", err)
	}
	factory := mongo.NewFactory(client.DB)
	return storage{
		factory:     &factory,
		listings:    factory.ListingsRepo,
		outbox:      box,
		idempotency: idem,
		relay:       box,
		overrideCalendar: func(br availability.BlockedRangeRepository, pr pricing.RuleRepository) {
			factory.BlockedRangesRepo, factory.PriceRulesRepo = br, pr
		},
		ping:  client.Ping,
		close: closeClient,
	}, nil
}

// calendarTopics are the topics whose events change what a calendar shows.
func calendarTopics(prefix string) []string {
	return []string{
		infraoutbox.TopicFor(prefix, "booking"),
		infraoutbox.TopicFor(prefix, "calendar"),
		infraoutbox.TopicFor(prefix, "pricing"),
	}
}

func (a *application) startRelay(cfg config.Config, logger *slog.Logger, store *infraoutbox.Store, cache *snapshot.Cache) error {
	producer, err := kafka.NewProducer(cfg.KafkaBrokers, sarama.NewConfig())
	if err != nil {
		return fmt.Errorf("kafka producer: %w", err)
	}
	a.closers = append(a.closers, func() { _ = producer.Close() })
	relay := &infraoutbox.Worker{
		Store:       store,
		Producer:    producer,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		Backoff:     cfg.RetryBackoff,
		Logger:      logger.With("component", "outbox"),
	}
	a.workers = append(a.workers, worker{name: "outbox-relay", run: relay.Run})

	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, sarama.NewConfig(), kafka.InvalidationHandler{
		Cache:  cache,
		Logger: logger.With("component", "snapshot-invalidation"),
	}, logger.With("component", "kafka-consumer"))
	if err != nil {
		return fmt.Errorf("kafka consumer: %w", err)
	}
	a.closers = append(a.closers, func() { _ = consumer.Close() })
	topics := calendarTopics(cfg.KafkaTopicPrefix)
	a.workers = append(a.workers, worker{name: "snapshot-invalidation", run: func(ctx context.Context) error {
		return consumer.Run(ctx, topics)
	}})
	return nil
}

// close releases resources in reverse order of acquisition.
func (a *application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
