package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"golang.org/x/sync/errgroup"

	grpcctx "github.com/dkovalev/deskflow-server/internal/api/grpc/context"
	grpcrouter "github.com/dkovalev/deskflow-server/internal/api/grpc/router"
	grpcserver "github.com/dkovalev/deskflow-server/internal/api/grpc/server"

	"github.com/dkovalev/deskflow-server/internal/access"
	"github.com/dkovalev/deskflow-server/internal/config"
	"github.com/dkovalev/deskflow-server/internal/httpapi"
	"github.com/dkovalev/deskflow-server/internal/logger"
	"github.com/dkovalev/deskflow-server/internal/model"
	"github.com/dkovalev/deskflow-server/internal/oauth"
	"github.com/dkovalev/deskflow-server/internal/obs"
	"github.com/dkovalev/deskflow-server/internal/pipeline"
	"github.com/dkovalev/deskflow-server/internal/repository/postgres"
	redisrepo "github.com/dkovalev/deskflow-server/internal/repository/redis"
	"github.com/dkovalev/deskflow-server/internal/role"
	"github.com/dkovalev/deskflow-server/internal/server"
	"github.com/dkovalev/deskflow-server/internal/service"
	storage "github.com/dkovalev/deskflow-server/internal/storage/minio"
	"github.com/dkovalev/deskflow-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)
	obs.Init()

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize database", "error", err)
	}
	defer db.Close()

	redisClient, err := redisrepo.NewClient(ctx, cfg.Redis.URL)
	if err != nil {
		logger.Fatal("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Fatal("failed to create minio client", "error", err)
	}
	storageClient, err := storage.NewClient(ctx, minioClient, cfg.Storage.Bucket)
	if err != nil {
		logger.Fatal("failed to initialize storage client", "error", err)
	}

	userRepo := postgres.NewUserRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	identityRepo := postgres.NewIdentityRepository(db)
	requestRepo := postgres.NewRequestRepository(db)
	attachmentRepo := postgres.NewAttachmentRepository(db)
	intentRepo := redisrepo.NewIntentRepository(redisClient)

	tokenManager := token.NewJWT(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	tokenService := service.NewTokenService(tokenManager, sessionRepo, userRepo, logger)
	authService := service.NewAuth(userRepo, tokenService, logger)
	requestService := service.NewRequest(requestRepo, attachmentRepo, storageClient, logger)
	linkService := service.NewLinkService(tokenManager, intentRepo, userRepo, identityRepo, logger)

	hierarchy := role.NewHierarchy()
	evaluator := access.NewEvaluator(access.DefaultPolicies(), hierarchy, requestRepo, logger)
	pipe := pipeline.New(tokenService, hierarchy, evaluator, logger)

	provider, err := oauth.NewProvider(cfg.OAuth, cfg.HTTP.BaseURL+"/v1/oauth/callback")
	if err != nil {
		logger.Fatal("failed to configure oauth provider", "error", err)
	}

	api := httpapi.New(authService, tokenService, requestService, linkService, provider, pipe, db, logger)
	httpServer := httpapi.NewHTTPServer(api.Handler(), fmt.Sprintf(":%s", cfg.HTTP.Port))

	grpcRouter := grpcrouter.New(tokenService, grpcctx.NewManager(), logger)
	grpcSrv := grpcserver.NewGRPCServer(grpcRouter.Register(), fmt.Sprintf(":%s", cfg.GRPC.Port))
	grpcRouter.SetServing(true)

	var sl model.SecurityLayer
	if cfg.GRPC.EnableHTTPS {
		sl = server.NewTLSListener(cfg.GRPC.CertFileName, cfg.GRPC.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range []model.Server{httpServer, grpcSrv} {
		g.Go(func() error {
			logger.Info("starting server", "address", s.Address())
			return s.Start(sl)
		})
	}

	logAppVersion()

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("received interruption signal, shutting down")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		grpcRouter.SetServing(false)
		for _, s := range []model.Server{httpServer, grpcSrv} {
			if err := s.Stop(shutdownCtx); err != nil {
				logger.Error("error during server shutdown", "error", err, "address", s.Address())
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("server exited with error", "error", err)
	}
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
