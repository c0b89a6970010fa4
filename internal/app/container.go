package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Olprog59/go-familyhub/internal/cache"
	"github.com/Olprog59/go-familyhub/internal/config"
	"github.com/Olprog59/go-familyhub/internal/events"
	"github.com/Olprog59/go-familyhub/internal/media"
	"github.com/Olprog59/go-familyhub/internal/metrics"
	"github.com/Olprog59/go-familyhub/internal/ports"
	"github.com/Olprog59/go-familyhub/internal/repository"
	"github.com/Olprog59/go-familyhub/internal/repository/db"
	"github.com/Olprog59/go-familyhub/internal/service"
	"github.com/Olprog59/go-familyhub/internal/service/auth"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robfig/cron/v3"
)

// Container holds application dependencies / Contient les dépendances de l'application
type Container struct {
	DB       *sqlx.DB
	DBType   db.DatabaseType
	Config   *config.Config
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry

	UserRepo          ports.UserRepository
	RefreshTokenStore ports.RefreshTokenStore

	Tokens       *auth.Issuer
	Access       *service.Authorizer
	UserSvc      *service.UserService
	AuthSvc      *service.AuthService
	PostSvc      *service.PostService
	CommentSvc   *service.CommentService
	ReactionSvc  *service.ReactionService
	EventSvc     *service.EventService
	GoalSvc      *service.GoalService
	HelpSvc      *service.HelpRequestService
	SharePostSvc *service.SharePostService
	Notifier     *service.Notifier

	Cache ports.Cache
	Hub   *events.Hub
	Media ports.MediaStore

	adapter   *repository.Adapter
	nats      *events.NATSPublisher
	scheduler *cron.Cron
}

// NewContainer initializes application container / Initialise le conteneur de l'application
func NewContainer(cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}

	// Own registry so several containers can live in one process / Registre propre au conteneur
	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.Metrics = metrics.NewMetrics(c.Registry)

	database, dbType, err := OpenDatabase(cfg)
	if err != nil {
		return nil, fmt.Errorf("database init: %w", err)
	}
	c.DB, c.DBType = database, dbType
	if err := c.Metrics.WatchDatabase(c.DB.DB, string(dbType)); err != nil {
		slog.Warn("database pool metrics unavailable", "err", err)
	}

	if err := db.Migrate(c.DB.DB, c.DBType, cfg.Database.MigrationsPath); err != nil {
		c.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	c.initRepositories()

	if err := c.initInfrastructure(); err != nil {
		c.Close()
		return nil, fmt.Errorf("infrastructure init: %w", err)
	}

	if err := c.initServices(); err != nil {
		c.Close()
		return nil, fmt.Errorf("service init: %w", err)
	}

	if cfg.Scheduler.Enabled || cfg.Backup.Enabled {
		if err := c.startScheduler(); err != nil {
			c.Close()
			return nil, fmt.Errorf("scheduler init: %w", err)
		}
	}

	return c, nil
}

// OpenDatabase opens the configured database / Ouvre la base de données configurée
func OpenDatabase(cfg *config.Config) (*sqlx.DB, db.DatabaseType, error) {
	dbType, err := db.ParseDatabaseType(cfg.Database.Type)
	if err != nil {
		return nil, "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	database, err := db.Open(ctx, db.Options{
		Type:         dbType,
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to initialize %s database: %w", dbType, err)
	}
	return database, dbType, nil
}

// initRepositories initializes repositories / Initialise les repositories
func (c *Container) initRepositories() {
	c.adapter = repository.NewAdapter(c.DB, string(c.DBType))
	c.UserRepo = c.adapter.UserRepository()
	c.RefreshTokenStore = c.adapter.RefreshTokenStore()

	slog.Info("repositories initialized", "database", c.DBType)
}

// initInfrastructure connects cache, broker, hub and media store / Connecte cache, broker, hub et stockage
func (c *Container) initInfrastructure() error {
	c.Cache = cache.Noop{}
	if c.Config.Cache.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		redisCache, err := cache.NewRedis(ctx, c.Config.Cache.URL, c.Config.Cache.KeyPrefix)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		c.Cache = redisCache
		slog.Info("profile cache enabled", "prefix", c.Config.Cache.KeyPrefix)
	}

	if c.Config.Messaging.Enabled {
		publisher, err := events.ConnectNATS(
			c.Config.Messaging.URL,
			c.Config.Messaging.ClientName,
			c.Config.Messaging.SubjectPrefix,
		)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		c.nats = publisher
		slog.Info("nats publisher connected", "subject_prefix", c.Config.Messaging.SubjectPrefix)
	}

	c.Hub = events.NewHub(c.Config.Cors.AllowedOrigins, c.Metrics)

	store, err := media.NewLocalStore(c.Config.Media.Path)
	if err != nil {
		return fmt.Errorf("media store: %w", err)
	}
	c.Media = store

	return nil
}

// publisher fans activities out to the hub and, when enabled, NATS / Diffuse vers le hub et NATS
func (c *Container) publisher() ports.ActivityPublisher {
	targets := []ports.ActivityPublisher{c.Hub}
	if c.nats != nil {
		targets = append(targets, c.nats)
	}
	return events.NewMulti(c.Metrics, targets...)
}

// initServices initializes application services / Initialise les services applicatifs
func (c *Container) initServices() error {
	sender, err := service.NewEmailSender(c.Config)
	if err != nil {
		return fmt.Errorf("failed to initialize email sender: %w", err)
	}

	publisher := c.publisher()
	posts := c.adapter.PostRepository()
	goals := c.adapter.GoalRepository()
	helpRequests := c.adapter.HelpRequestRepository()
	sharePosts := c.adapter.SharePostRepository()
	eventRepo := c.adapter.EventRepository()

	c.UserSvc = service.NewUserService(c.UserRepo, c.RefreshTokenStore, c.Config, service.UserDeps{
		Posts: posts,
		Goals: goals,
		Counters: map[string]service.Counter{
			"posts":         posts,
			"goals":         goals,
			"events":        eventRepo,
			"help_requests": helpRequests,
			"share_posts":   sharePosts,
		},
		Cache:     c.Cache,
		Publisher: publisher,
		Metrics:   c.Metrics,
	})
	tokens, err := auth.NewIssuer(
		c.Config.Auth.JWTSecret,
		c.Config.Auth.AccessTokenDuration,
		c.Config.Auth.RefreshTokenDuration,
	)
	if err != nil {
		return err
	}
	c.Tokens = tokens
	c.AuthSvc = service.NewAuthService(c.UserRepo, c.RefreshTokenStore, tokens, c.Config.Security, c.DB, c.Metrics)

	c.Access = service.NewAuthorizer(c.UserRepo)
	deps := service.ContentDeps{
		Access:    c.Access,
		Publisher: publisher,
		Profiles:  c.UserSvc,
		Metrics:   c.Metrics,
	}

	c.Notifier = service.NewNotifier(
		sender,
		c.UserRepo,
		c.Config.Notifications.Provider,
		c.Config.Server.FrontendURL,
		c.Metrics,
	)

	c.PostSvc = service.NewPostService(posts, deps)
	c.CommentSvc = service.NewCommentService(c.adapter.CommentRepository(), posts, deps)
	c.ReactionSvc = service.NewReactionService(c.adapter.ReactionRepository(), posts, sharePosts, deps)
	c.EventSvc = service.NewEventService(eventRepo, deps)
	c.GoalSvc = service.NewGoalService(goals, deps)
	c.HelpSvc = service.NewHelpRequestService(helpRequests, c.UserRepo, c.Notifier, c.Config.Scheduler.HelpRequestGrace, deps)
	c.SharePostSvc = service.NewSharePostService(sharePosts, c.Config.Server.FrontendURL, deps)

	return nil
}

// Ping checks the database and the cache / Vérifie la base de données et le cache
func (c *Container) Ping(ctx context.Context) error {
	if err := c.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Cache.Ping(ctx); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	return nil
}

// Close performs graceful shutdown / Effectue un arrêt gracieux
func (c *Container) Close() error {
	var errs []error

	if c.scheduler != nil {
		<-c.scheduler.Stop().Done()
		slog.Info("scheduler stopped")
	}
	if c.Notifier != nil {
		c.Notifier.Wait()
	}
	if c.Hub != nil {
		c.Hub.Close()
	}
	if c.nats != nil {
		errs = append(errs, c.nats.Close())
	}
	if c.Cache != nil {
		errs = append(errs, c.Cache.Close())
	}
	if c.DB != nil {
		slog.Info("closing database")
		errs = append(errs, c.DB.Close())
	}

	return errors.Join(errs...)
}
