// Команда order-store — стаб REST-хранилища заказов витрины для локальной разработки.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/backoffice/internal/domain"
	"github.com/vladislavdragonenkov/backoffice/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/backoffice/internal/storage/memory"
	"github.com/vladislavdragonenkov/backoffice/internal/storage/postgres"
	"github.com/vladislavdragonenkov/backoffice/internal/transport/storeapi"
)

type options struct {
	addr         string
	dsn          string
	seed         string
	kafkaBrokers []string
	kafkaTopic   string
}

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("failed to load .env")
	}

	opts := parseOptions(os.Args[1:], os.Getenv)
	logger := log.WithField("component", "order-store")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Fatal("order store stopped with error")
	}
	logger.Info("order store stopped")
}

func parseOptions(args []string, getenv func(string) string) options {
	fs := flag.NewFlagSet("order-store", flag.ExitOnError)
	opts := options{}
	fs.StringVar(&opts.addr, "addr", envOr(getenv, "ORDER_STORE_ADDR", ":3001"), "listen address")
	fs.StringVar(&opts.dsn, "dsn", getenv("ORDER_STORE_POSTGRES_DSN"), "PostgreSQL DSN (empty: in-memory)")
	fs.StringVar(&opts.seed, "seed", getenv("ORDER_STORE_SEED"), "JSON file with initial orders")
	brokers := fs.String("kafka-brokers", getenv("ORDER_STORE_KAFKA_BROKERS"), "comma separated kafka brokers")
	fs.StringVar(&opts.kafkaTopic, "kafka-topic", envOr(getenv, "ORDER_STORE_KAFKA_TOPIC", kafka.TopicStoreChanges), "topic for store changes")
	_ = fs.Parse(args)

	for _, b := range strings.Split(*brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			opts.kafkaBrokers = append(opts.kafkaBrokers, b)
		}
	}
	return opts
}

func envOr(getenv func(string) string, key, def string) string {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	return def
}

func run(ctx context.Context, opts options, logger *log.Entry) error {
	records, closeRecords, err := openRecords(ctx, opts.dsn, logger)
	if err != nil {
		return err
	}
	defer closeRecords()

	if opts.seed != "" {
		orders, err := loadSeed(opts.seed)
		if err != nil {
			return err
		}
		n, err := seedRecords(ctx, records, orders)
		if err != nil {
			return err
		}
		logger.WithFields(log.Fields{"file": opts.seed, "created": n}).Info("seed loaded")
	}

	serverOpts := []storeapi.Option{storeapi.WithLogger(logger)}
	if len(opts.kafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(opts.kafkaBrokers)
		if err != nil {
			logger.WithError(err).Warn("failed to create kafka producer, store changes will not be published")
		} else {
			defer func() { _ = producer.Close() }()
			serverOpts = append(serverOpts, storeapi.WithChangeNotifier(kafka.NewChangePublisher(producer, opts.kafkaTopic)))
		}
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           storeapi.New(records, serverOpts...).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("order store listening on %s", opts.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// openRecords выбирает PostgreSQL при заданном DSN, иначе память процесса.
func openRecords(ctx context.Context, dsn string, logger *log.Entry) (domain.OrderRecordStore, func(), error) {
	if strings.TrimSpace(dsn) == "" {
		logger.Info("using in-memory order records")
		return memory.NewRecordStore(), func() {}, nil
	}

	store, err := postgres.Open(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	logger.Info("using postgres order records")
	return postgres.NewRecordStore(store), func() { _ = store.Close() }, nil
}

func loadSeed(path string) ([]domain.Order, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", path, err)
	}
	var orders []domain.Order
	if err := json.Unmarshal(raw, &orders); err != nil {
		return nil, fmt.Errorf("decode seed %s: %w", path, err)
	}
	return orders, nil
}

// seedRecords создаёт записи, пропуская уже существующие.
func seedRecords(ctx context.Context, records domain.OrderRecordStore, orders []domain.Order) (int, error) {
	created := 0
	for _, order := range orders {
		_, err := records.Create(ctx, order)
		if errors.Is(err, domain.ErrOrderExists) {
			continue
		}
		if err != nil {
			return created, fmt.Errorf("seed order %s: %w", order.ID, err)
		}
		created++
	}
	return created, nil
}
