package main

import (
	// Go Internal Packages
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Local Packages
	config "receipt-verifier/config"
	kafka "receipt-verifier/kafka"
	models "receipt-verifier/models"
	providers "receipt-verifier/providers"
	mongodb "receipt-verifier/repositories/mongodb"
	redisrepo "receipt-verifier/repositories/redis"
	server "receipt-verifier/server"
	verification "receipt-verifier/services/verification"

	// External Packages
	"github.com/alecthomas/kingpin/v2"
	_ "github.com/jsternberg/zap-logfmt"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/twmb/franz-go/plugin/kprom"
	"go.uber.org/zap"
)

// LoadConfig loads the default configuration and overrides it with the config
// file specified by the path defined in the config flag
func LoadConfig() *koanf.Koanf {
	configPathMsg := "Path to the application config file"
	configPath := kingpin.Flag("config", configPathMsg).Short('c').Default("config.yml").String()

	kingpin.Parse()
	k := koanf.New(".")
	_ = k.Load(rawbytes.Provider(config.DefaultConfig), yaml.Parser())
	if *configPath != "" {
		_ = k.Load(file.Provider(*configPath), yaml.Parser())
	}
	return k
}

func main() {
	k := LoadConfig()
	appKonf := config.Config{}

	// Unmarshalling config into struct
	err := k.Unmarshal("", &appKonf)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Validate the config loaded
	if err = appKonf.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if !appKonf.IsProdMode {
		k.Print()
	}

	cfg := zap.NewProductionConfig()
	cfg.Encoding = "logfmt"
	_ = cfg.Level.UnmarshalText([]byte(k.String("logger.level")))
	cfg.InitialFields = make(map[string]any)
	cfg.InitialFields["host"], _ = os.Hostname()
	cfg.InitialFields["service"] = appKonf.Application
	cfg.OutputPaths = []string{"stdout"}
	logger, _ := cfg.Build()
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Mongo Connection
	mongoClient, err := mongodb.Connect(ctx, appKonf.Mongo.URI)
	if err != nil {
		logger.Fatal("cannot create mongo client", zap.Error(err))
	}

	receiptsRepo := mongodb.NewReceiptsRepository(mongoClient, appKonf.Mongo.Database)
	if err = receiptsRepo.EnsureIndexes(ctx); err != nil {
		logger.Fatal("cannot ensure receipt indexes", zap.Error(err))
	}
	apiKeysRepo := mongodb.NewApiKeysRepository(mongoClient, appKonf.Mongo.Database)

	// Redis-backed rate limiter, only when enabled
	var limiter server.Limiter
	if appKonf.RateLimit.Enabled {
		redisClient, err := redisrepo.Connect(ctx, appKonf.Redis.URI, appKonf.Redis.Password)
		if err != nil {
			logger.Fatal("cannot create redis client", zap.Error(err))
		}
		window := time.Duration(appKonf.RateLimit.WindowSeconds) * time.Second
		limiter = redisrepo.NewRateLimiter(redisClient, logger, appKonf.RateLimit.Requests, window)
	}

	// Verified-receipt event publisher, only when enabled
	var publisher verification.EventPublisher
	if appKonf.Kafka.Publish {
		metrics := kprom.NewMetrics("receiptverifier")
		conf := &kafka.PublisherConfig{Brokers: appKonf.Kafka.Brokers, Topic: appKonf.Kafka.Topic}
		kafkaPublisher, err := kafka.NewReceiptPublisher(conf, metrics, logger)
		if err != nil {
			logger.Fatal("cannot create receipt event publisher", zap.Error(err))
		}
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	timeout := time.Duration(appKonf.Providers.TimeoutSeconds) * time.Second
	verifiers := []providers.Verifier{
		providers.NewCBE(appKonf.Providers.CBE.BaseURL, timeout, logger),
		providers.NewTelebirr(providers.TelebirrConfig{
			ReceiptURL:      appKonf.Providers.Telebirr.ReceiptURL,
			ProxyURL:        appKonf.Providers.Telebirr.ProxyURL,
			TryPrimaryFirst: appKonf.Providers.Telebirr.TryPrimaryFirst,
		}, timeout, logger),
		providers.NewDashen(appKonf.Providers.Dashen.BaseURL, timeout, logger),
		providers.NewAbyssinia(appKonf.Providers.Abyssinia.BaseURL, timeout, logger),
		providers.NewCBEBirr(appKonf.Providers.CBEBirr.BaseURL, timeout, logger),
	}

	accounts := make(map[models.Bank]string, len(appKonf.Operator.Accounts))
	for bank, suffix := range appKonf.Operator.Accounts {
		accounts[models.Bank(bank)] = suffix
	}

	svc := verification.New(logger, receiptsRepo, publisher, verifiers, appKonf.Operator.Name, accounts)
	handler := server.NewHandler(svc, logger)
	srv := server.New(appKonf.Server.ListenAddr, handler, apiKeysRepo, limiter, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal("http server failed", zap.Error(err))
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown did not complete cleanly", zap.Error(err))
		}
	}
}
