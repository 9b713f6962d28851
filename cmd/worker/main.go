package main

import (
	"context"   // Shutdown signalling
	"os"        // Signals
	"os/signal" // Signal handling
	"syscall"   // SIGTERM

	"crowdfunding/internal/config" // Application configuration
	"crowdfunding/internal/notify" // Email job queue and senders

	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// Main runs the email worker until interrupted
func main() {
	cfg := config.LoadConfig() // Load configuration

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	sender := notify.NewSender(cfg)
	worker := notify.NewWorker(notify.NewRedisQueue(redisClient, cfg.EmailQueue), sender)
	logrus.WithFields(logrus.Fields{
		"queue":  cfg.EmailQueue,
		"sender": senderName(sender),
	}).Info("Email worker started")
	if err := worker.Run(ctx); err != nil {
		logrus.Fatalf("worker stopped: %v", err)
	}
	logrus.Info("Email worker stopped")
}

func senderName(s notify.Sender) string {
	switch s.(type) {
	case *notify.MailjetSender:
		return "mailjet"
	case *notify.HTTPSender:
		return "http"
	default:
		return "log"
	}
}
