package main

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ashmount/ClanBot/config"
	"github.com/ashmount/ClanBot/internal/consumer"
	"github.com/ashmount/ClanBot/internal/gateway"
	"github.com/ashmount/ClanBot/internal/handlers"
	"github.com/ashmount/ClanBot/internal/jobs"
	"github.com/ashmount/ClanBot/internal/pkg/kafka"
	"github.com/ashmount/ClanBot/internal/routers"
	"github.com/ashmount/ClanBot/internal/services"
	"github.com/ashmount/ClanBot/internal/storage"
	"github.com/ashmount/ClanBot/middleware/jwt"
	logger "github.com/ashmount/ClanBot/middleware/log"
	"github.com/ashmount/ClanBot/pkg/confirm"
	"github.com/ashmount/ClanBot/pkg/cooldown"
)

func main() {
	cfg, err := config.LoadConfig("./config.toml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.NewLogger(&cfg.Logging)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer zlog.Sync()

	dsn := storage.BuildDSN(cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.DBName)
	db, err := storage.InitPostgres(dsn, cfg.Postgres.MaxIdleConns, cfg.Postgres.MaxOpenConns)
	if err != nil {
		zlog.Fatal("failed to init postgres", zap.Error(err))
	}

	redisClient, err := storage.InitRedis(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize, cfg.Redis.MinIdleConns)
	if err != nil {
		zlog.Fatal("failed to init redis", zap.Error(err))
	}

	loc := time.UTC
	if cfg.Rewards.Timezone != "" {
		loc, err = time.LoadLocation(cfg.Rewards.Timezone)
		if err != nil {
			zlog.Fatal("invalid rewards timezone", zap.String("timezone", cfg.Rewards.Timezone), zap.Error(err))
		}
	}

	clanService := services.NewClanService(db, zlog)
	economyService := services.NewEconomyService(db, zlog)
	rewardService := services.NewRewardService(db, zlog, loc)
	shopService := services.NewShopService(db, zlog)
	settingService := services.NewSettingService(db, zlog)
	reconcileService := services.NewReconcileService(db, zlog)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Kafka carries role-change events from the gateway to the reconciler.
	// When the brokers are unreachable the bot still serves commands; it just
	// stops hearing about role changes until kafka comes back.
	producer, err := kafka.NewProducer(&cfg.Kafka)
	if err != nil {
		zlog.Warn("kafka unavailable, running without role reconciliation", zap.Error(err))
	} else {
		defer producer.Close()

		roleConsumer := consumer.NewRoleEventConsumer(reconcileService, zlog)
		group, err := consumer.StartConsumer(ctx, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic, roleConsumer, zlog)
		if err != nil {
			zlog.Fatal("failed to start role event consumer", zap.Error(err))
		}
		defer group.Close()

		if cfg.Gateway.URL != "" {
			gw := gateway.New(cfg.Gateway.URL, cfg.Gateway.Token, cfg.Kafka.Topic, producer, zlog)
			go gw.Run(ctx)
		}
	}

	runner := jobs.NewRunner(db, zlog)
	if err := runner.Start(); err != nil {
		zlog.Fatal("failed to start background jobs", zap.Error(err))
	}
	defer runner.Stop()

	tokenManager := jwt.NewTokenManager(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	guard := cooldown.NewGuard(redisClient, time.Duration(cfg.Cooldown.WindowMs)*time.Millisecond)
	prompts := confirm.NewManager()

	clanHandler := handlers.NewClanHandler(clanService, zlog)
	economyHandler := handlers.NewEconomyHandler(economyService, zlog)
	rewardHandler := handlers.NewRewardHandler(rewardService, prompts, zlog)
	shopHandler := handlers.NewShopHandler(shopService, economyService, zlog)
	settingHandler := handlers.NewSettingHandler(settingService, zlog)

	gin.SetMode(cfg.Server.Mode)
	r := gin.Default()
	routers.SetupRoutes(r,
		clanHandler,
		economyHandler,
		rewardHandler,
		shopHandler,
		settingHandler,
		tokenManager,
		guard,
	)

	zlog.Info("starting server", zap.Int("port", cfg.Server.Port))
	if err := r.Run(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
		zlog.Fatal("server exited", zap.Error(err))
	}
}
