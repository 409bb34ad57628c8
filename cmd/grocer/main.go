package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sethvargo/go-retry"

	"github.com/hollis/grocer/internal/auth"
	"github.com/hollis/grocer/internal/checklist"
	"github.com/hollis/grocer/internal/database"
	"github.com/hollis/grocer/internal/ident"
	"github.com/hollis/grocer/internal/logging"
	"github.com/hollis/grocer/internal/server"
	"github.com/hollis/grocer/internal/session"
	"github.com/hollis/grocer/internal/store"
	"github.com/hollis/grocer/internal/store/local"
	"github.com/hollis/grocer/internal/store/remote"
)

type s3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

func (c s3Config) configured() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

func newS3Client(cfg s3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// probeBucket checks the remote store answers at startup so a bad endpoint
// or credentials show up in the log immediately. Transient failures retry
// with backoff; a probe failure never unwires the remote.
func probeBucket(ctx context.Context, client *s3.Client, bucket string, logger *slog.Logger) error {
	backoff := retry.WithMaxRetries(5, retry.NewExponential(500*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		_, err := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:  aws.String(bucket),
			MaxKeys: aws.Int32(1),
		})
		if err != nil {
			logger.Warn("remote store not reachable yet", "bucket", bucket, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
}

func main() {
	logger := logging.Setup(os.Getenv("GROCER_LOG_LEVEL"))

	port := os.Getenv("GROCER_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("GROCER_DB_PATH")
	if dbPath == "" {
		dbPath = "grocer.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	passphraseHash := os.Getenv("GROCER_PASSPHRASE_HASH")
	if passphraseHash == "" {
		if pass := os.Getenv("GROCER_PASSPHRASE"); pass != "" {
			passphraseHash, err = auth.HashPassphrase(pass)
			if err != nil {
				log.Fatalf("failed to hash passphrase: %v", err)
			}
		}
	}

	s3cfg := s3Config{
		Endpoint:  os.Getenv("GROCER_S3_ENDPOINT"),
		Bucket:    os.Getenv("GROCER_S3_BUCKET"),
		Region:    os.Getenv("GROCER_S3_REGION"),
		AccessKey: os.Getenv("GROCER_S3_ACCESS_KEY"),
		SecretKey: os.Getenv("GROCER_S3_SECRET_KEY"),
	}
	remoteUser := os.Getenv("GROCER_REMOTE_USER")
	if remoteUser == "" {
		remoteUser = "owner"
	}

	// A configured remote stays wired even when the startup probe fails:
	// trusted sessions must never be served from local storage, so an
	// unreachable remote surfaces as store-unavailable on each call instead.
	var remoteFactory store.RemoteFactory
	if s3cfg.configured() {
		client := newS3Client(s3cfg)
		probeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := probeBucket(probeCtx, client, s3cfg.Bucket, logger); err != nil {
			logger.Warn("remote store unreachable at startup, trusted sessions will see errors until it recovers", "error", err)
		}
		cancel()
		remoteFactory = func(userID string) store.Provider {
			return remote.New(client, s3cfg.Bucket, userID, logger.With("component", "remote"))
		}
	} else {
		logger.Info("no remote store configured, all sessions use local storage")
	}

	broker := session.NewBroker()
	localProvider := local.New(db)
	router := store.NewRouter(localProvider, remoteFactory, broker, logger.With("component", "router"))
	svc := checklist.NewService(router, ident.New(), logger.With("component", "checklist"))

	srv := server.New(router, svc, broker, server.Config{
		PassphraseHash: passphraseHash,
		RemoteUser:     remoteUser,
	}, logger)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Grocer running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
