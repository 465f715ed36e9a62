package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	bradapters "bloodlink/internal/bloodrequest/adapters"
	brmetrics "bloodlink/internal/bloodrequest/metrics"
	brservice "bloodlink/internal/bloodrequest/service"
	brstore "bloodlink/internal/bloodrequest/store"
	btservice "bloodlink/internal/bloodtype/service"
	btstore "bloodlink/internal/bloodtype/store"
	"bloodlink/internal/certificate"
	dadapters "bloodlink/internal/donation/adapters"
	dmetrics "bloodlink/internal/donation/metrics"
	dservice "bloodlink/internal/donation/service"
	dstore "bloodlink/internal/donation/store"
	invadapters "bloodlink/internal/inventory/adapters"
	invservice "bloodlink/internal/inventory/service"
	invstore "bloodlink/internal/inventory/store"
	jwttoken "bloodlink/internal/jwt_token"
	"bloodlink/internal/notification"
	"bloodlink/internal/platform/config"
	"bloodlink/internal/platform/metrics"
	"bloodlink/internal/platform/postgres"
	platformredis "bloodlink/internal/platform/redis"
	"bloodlink/internal/reminder"
	useradapters "bloodlink/internal/user/adapters"
	usermodels "bloodlink/internal/user/models"
	userservice "bloodlink/internal/user/service"
	userstore "bloodlink/internal/user/store"
	"bloodlink/pkg/platform/audit"
	auditmemory "bloodlink/pkg/platform/audit/store/memory"
	auditpostgres "bloodlink/pkg/platform/audit/store/postgres"
	txcontext "bloodlink/pkg/platform/tx"
	"bloodlink/pkg/requestcontext"
)

type bloodTypeStore interface {
	btservice.Store
	btstore.Seeder
}

type stores struct {
	users      userservice.UserStore
	bloodTypes bloodTypeStore
	inventory  invservice.Store
	requests   brservice.Store
	donations  dservice.Store
	audit      audit.Store
	// bloodTypeUsage lists the stores whose rows reference blood types.
	bloodTypeUsage []btservice.UsageChecker
	// tx is shared by every module so nested units of work join one
	// transaction (or one lock) instead of opening their own.
	tx txcontext.Runner
}

func memoryStores() stores {
	users, inventory, requests := userstore.NewInMemoryUserStore(), invstore.NewInMemory(), brstore.NewInMemory()
	return stores{
		users:          users,
		bloodTypes:     btstore.NewInMemory(),
		inventory:      inventory,
		requests:       requests,
		donations:      dstore.NewInMemory(),
		audit:          auditmemory.NewInMemoryStore(),
		bloodTypeUsage: []btservice.UsageChecker{users, requests, inventory},
		tx:             txcontext.NewLockRunner(),
	}
}

func postgresStores(db *sql.DB) stores {
	users, inventory, requests := userstore.NewPostgres(db), invstore.NewPostgres(db), brstore.NewPostgres(db)
	return stores{
		users:          users,
		bloodTypes:     btstore.NewPostgres(db),
		inventory:      inventory,
		requests:       requests,
		donations:      dstore.NewPostgres(db),
		audit:          auditpostgres.New(db),
		bloodTypeUsage: []btservice.UsageChecker{users, requests, inventory},
		tx:             txcontext.NewSQLRunner(db),
	}
}

// app owns every long-lived resource of the process.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	db      *sql.DB
	redis   *platformredis.Client
	stores  stores

	dispatcher *notification.Dispatcher
	kafka      *notification.KafkaSender
	tokens     *jwttoken.JWTService

	users      *userservice.Service
	bloodTypes *btservice.Service
	inventory  *invservice.Service
	requests   *brservice.Service
	donations  *dservice.Service
	reminder   *reminder.Job
}

// newApp connects to the configured backends and wires the modules. Without
// DATABASE_URL every store lives in memory and the blood type catalog is
// seeded on start.
func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (_ *app, err error) {
	a := &app{cfg: cfg, logger: logger, metrics: metrics.New()}
	defer func() {
		if err != nil {
			_ = a.close(context.Background())
		}
	}()

	if cfg.Database.URL != "" {
		a.db, err = postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		a.stores = postgresStores(a.db)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory stores")
		a.stores = memoryStores()
		if _, err = btstore.Seed(ctx, a.stores.bloodTypes, time.Now().UTC()); err != nil {
			return nil, err
		}
	}

	a.redis, err = platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}

	sender, err := a.sender(ctx)
	if err != nil {
		return nil, err
	}
	a.dispatcher = notification.NewDispatcher(sender,
		notification.WithLogger(logger),
		notification.WithQueueSize(cfg.Donation.NotifyQueueSize),
		notification.WithWorkers(cfg.Donation.NotifyWorkers),
		notification.WithRegisterer(a.metrics.Registry),
	)

	uploader, err := certificate.NewUploader(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	a.wire(uploader)
	return a, nil
}

func (a *app) sender(ctx context.Context) (notification.Sender, error) {
	if len(a.cfg.Kafka.Brokers) == 0 {
		return notification.NewLogSender(a.logger), nil
	}
	kafka, err := notification.NewKafkaSender(ctx, a.cfg.Kafka.Brokers, a.cfg.Kafka.NotificationTopic, a.logger)
	if err != nil {
		return nil, err
	}
	a.kafka = kafka
	return kafka, nil
}

func (a *app) wire(uploader certificate.Uploader) {
	cfg, logger, reg, st := a.cfg, a.logger, a.metrics.Registry, a.stores

	publisher := audit.NewPublisher(st.audit, audit.WithLogger(logger), audit.WithRegisterer(reg))
	a.tokens = jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer)

	btOpts := []btservice.Option{
		btservice.WithLogger(logger),
		btservice.WithAuditPublisher(publisher),
		btservice.WithUsageCheckers(st.bloodTypeUsage...),
	}
	if a.redis != nil {
		btOpts = append(btOpts, btservice.WithCache(btstore.NewRedisCache(a.redis.Client, cfg.Redis.CacheTTL)))
	}
	a.bloodTypes = btservice.New(st.bloodTypes, st.tx, btOpts...)

	a.users = userservice.New(st.users, st.tx, a.tokens,
		userservice.WithLogger(logger),
		userservice.WithAuditPublisher(publisher),
		userservice.WithTokenTTL(cfg.Auth.TokenTTL),
		userservice.WithBcryptCost(cfg.Auth.BcryptCost),
		userservice.WithBloodTypeCatalog(useradapters.NewBloodTypeAdapter(a.bloodTypes)),
	)

	a.inventory = invservice.New(st.inventory,
		invservice.WithLogger(logger),
		invservice.WithAuditPublisher(publisher),
		invservice.WithCatalog(invadapters.NewBloodTypeAdapter(a.bloodTypes)),
	)

	a.donations = dservice.New(st.donations, st.tx,
		dadapters.NewUserAdapter(a.users),
		dadapters.NewBloodTypeAdapter(a.bloodTypes),
		dadapters.NewInventoryAdapter(a.inventory),
		dservice.WithLogger(logger),
		dservice.WithAuditPublisher(publisher),
		dservice.WithMetrics(dmetrics.New(reg)),
		dservice.WithNotifier(a.dispatcher),
		dservice.WithCertificates(certificate.NewIssuer(certificate.NewRenderer(), uploader, cfg.Storage.Prefix)),
		dservice.WithFacility(cfg.Donation.Facility),
		dservice.WithMaxVolume(cfg.Donation.MaxCollectVolume),
	)

	a.requests = brservice.New(st.requests, st.tx,
		bradapters.NewBloodTypeAdapter(a.bloodTypes),
		bradapters.NewUserAdapter(a.users),
		brservice.WithLogger(logger),
		brservice.WithAuditPublisher(publisher),
		brservice.WithMetrics(brmetrics.New(reg)),
		brservice.WithNotifier(a.dispatcher),
		brservice.WithEmergencyOpener(bradapters.NewDonationAdapter(a.donations)),
	)

	a.reminder = reminder.New(a.users, a.dispatcher,
		reminder.WithCooldown(time.Duration(cfg.Reminder.CooldownDays)*24*time.Hour),
		reminder.WithLogger(logger),
	)
}

// seed loads the blood type catalog and, when adminEmail is set, makes sure
// that account is an admin.
func (a *app) seed(ctx context.Context, adminEmail, adminPassword string) error {
	now := time.Now().UTC()
	created, err := btstore.Seed(ctx, a.stores.bloodTypes, now)
	if err != nil {
		return err
	}
	a.logger.InfoContext(ctx, "blood type catalog seeded", "created", created)

	if adminEmail == "" {
		return nil
	}
	admin, changed, err := a.users.BootstrapAdmin(requestcontext.WithTime(ctx, now), &usermodels.RegisterRequest{
		Email:    adminEmail,
		Password: adminPassword,
	})
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	a.logger.InfoContext(ctx, "admin account ready", "user_id", admin.ID.String(), "changed", changed)
	return nil
}

// close drains notifications and releases connections. Background pledge
// fan-out is waited for first so its messages make it into the queue.
func (a *app) close(ctx context.Context) error {
	if a == nil {
		return nil
	}
	var errs []error
	if a.requests != nil {
		a.requests.Wait()
	}
	if a.dispatcher != nil {
		if err := a.dispatcher.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("drain notifications: %w", err))
		}
	}
	if a.kafka != nil {
		if err := a.kafka.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close kafka: %w", err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close postgres: %w", err))
		}
	}
	return errors.Join(errs...)
}
