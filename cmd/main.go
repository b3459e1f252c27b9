package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vastaff/gatekeeper/internal/api"
	"github.com/vastaff/gatekeeper/internal/controller"
	"github.com/vastaff/gatekeeper/internal/gatekeeper"
	"github.com/vastaff/gatekeeper/internal/migrations"
	"github.com/vastaff/gatekeeper/internal/service"
	"github.com/vastaff/gatekeeper/internal/storage"
	"github.com/vastaff/gatekeeper/internal/storage/memory"
	"github.com/vastaff/gatekeeper/internal/storage/postgres"
	redisstore "github.com/vastaff/gatekeeper/internal/storage/redis"
	"github.com/vastaff/gatekeeper/internal/util"

	_ "github.com/lib/pq"
)

func main() {
	ctx := context.Background()
	logger := util.NewZapLogger()

	db, dbCleanup, err := util.NewDBConnection(logger)
	if err != nil {
		logger.Fatal(zap.Error(err))
	}
	if err := migrations.RunMigrations(db, logger, "./internal/migrations"); err != nil {
		logger.Fatal(zap.Error(err))
	}

	redisClient, redisCleanup, err := util.NewRedisClient(logger, util.NewRedisConfig())
	if err != nil {
		logger.Fatal(zap.Error(err))
	}
	cleanupFuncs := []func(){dbCleanup, redisCleanup}

	rateCfg := util.NewRateLimiterConfig()
	csrfCfg := util.NewCSRFConfig()
	sessionCfg := util.NewSessionConfig()

	var rateStore storage.RateLimitStore
	var csrfStore storage.CSRFStore

	if util.StoreBackend() == "memory" {
		memRates := memory.NewRateLimitStore(rateCfg.BurstInterval)
		memCSRF := memory.NewCSRFStore()
		rateStore, csrfStore = memRates, memCSRF

		// In-memory таблицы чистятся фоновым sweep'ом, иначе они растут
		// весь срок жизни процесса.
		go sweepLoop(ctx, rateCfg.SweepInterval, memRates.Sweep)
		go sweepLoop(ctx, csrfCfg.SweepInterval, memCSRF.Sweep)

		logger.Warn("gatekeeper state is in-memory; rate limits and CSRF tokens are not shared between instances")
	} else {
		rateStore = redisstore.NewRateLimitStore(redisClient, rateCfg.BurstInterval)
		csrfStore = redisstore.NewCSRFStore(redisClient)
	}

	store := postgres.NewStorage(db)
	revocations := redisstore.NewRevocationList(redisClient)

	identityService := service.NewIdentityService(sessionCfg, revocations)
	authService := service.NewAuthService(store, logger)
	profileService := service.NewProfileService(store)
	csrf := gatekeeper.NewCSRF(csrfStore, csrfCfg)

	gk := gatekeeper.New(identityService, profileService, rateStore, csrf, rateCfg, sessionCfg, logger)
	ctl := controller.NewController(logger, authService, identityService, profileService, csrf)

	apiServer := api.NewAPI(ctl, gk, util.NewServerConfig(), logger, cleanupFuncs)
	apiServer.Run(ctx)
}

func sweepLoop(ctx context.Context, interval time.Duration, sweep func(now time.Time)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep(time.Now())
		}
	}
}
