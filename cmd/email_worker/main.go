package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/config"
	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/pkg/helpers"
	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/pkg/mailer"
)

type outcome int

const (
	ack outcome = iota
	drop
	retry
)

// handle decides what happens to one queued email. Malformed or unrenderable
// jobs are dropped; delivery failures go back on the queue.
func handle(ctx context.Context, body []byte, s mailer.Sender) (outcome, error) {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return drop, err
	}
	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	err := mailer.Process(c, job, s)
	switch {
	case err == nil:
		return ack, nil
	case errors.Is(err, mailer.ErrRender), errors.Is(err, mailer.ErrNoRecipient), errors.Is(err, mailer.ErrEmptyBody):
		return drop, err
	default:
		return retry, err
	}
}

func consume(ctx context.Context, msgs <-chan amqp.Delivery, s mailer.Sender, logger *logrus.Logger) {
	for msg := range msgs {
		out, err := handle(ctx, msg.Body, s)
		entry := logger.WithField("message_id", msg.MessageId)
		switch out {
		case ack:
			_ = msg.Ack(false)
		case drop:
			entry.WithError(err).Error("dropping email job")
			_ = msg.Nack(false, false)
		case retry:
			entry.WithError(err).Warn("email send failed, requeueing")
			_ = msg.Nack(false, true)
		}
	}
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; email worker disabled")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		logger.Fatal("Mailgun not configured")
	}

	consumer, err := helpers.NewRabbitConsumer(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue, 16)
	if err != nil {
		logger.WithError(err).Fatal("amqp connect")
	}
	defer consumer.Close()

	msgs, err := consumer.Deliveries()
	if err != nil {
		logger.WithError(err).Fatal("consume")
	}

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)

	done := make(chan struct{})
	go func() {
		consume(context.Background(), msgs, mg, logger)
		close(done)
	}()

	logger.WithField("queue", cfg.RabbitMQEmailQueue).Info("email worker listening")
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-stop:
		logger.Info("shutting down")
		consumer.Close()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
		}
	case <-done:
		logger.Warn("delivery channel closed")
	}
}
