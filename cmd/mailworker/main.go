package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"app/internal/config"
	"app/internal/infra/mail"
	"app/internal/infra/queue"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// メール送信ワーカー。キューから取り出してSMTPで送るだけ。
func main() {
	_ = godotenv.Load("../.env")

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}

	amqpConn, amqpCh, err := queue.SetupConn(cfg.AMQPURL)
	if err != nil {
		logger.Fatal("rabbitmq connect failed", zap.Error(err))
	}
	defer amqpConn.Close()
	defer amqpCh.Close()

	sender := mail.NewSMTPSender(
		cfg.SMTPHost,
		strconv.Itoa(cfg.SMTPPort),
		cfg.SMTPUser,
		cfg.SMTPPassword,
		cfg.MailFrom,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("mail worker started")

	err = queue.Consume(ctx, amqpCh, func(msg queue.MailMessage) error {
		if err := sender.Send(msg.To, msg.Subject, msg.Body); err != nil {
			logger.Warn("mail send failed",
				zap.String("mail_id", msg.ID),
				zap.String("to", msg.To),
				zap.Error(err),
			)
			return err
		}
		logger.Info("mail sent", zap.String("mail_id", msg.ID))
		return nil
	})
	if err != nil && err != context.Canceled {
		logger.Fatal("consumer stopped", zap.Error(err))
	}
}
