// Worker consumes queued mail jobs from Kafka and delivers them over SMTP.
// Set KAFKA_BROKERS, MAIL_KAFKA_TOPIC, KAFKA_GROUP_ID, and the SMTP_* settings.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"

	"user-auth-service/internal/config"
	"user-auth-service/internal/mailer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	brokers := cfg.MailKafkaBrokersList()
	if len(brokers) == 0 {
		log.Fatal("worker: KAFKA_BROKERS is required")
	}
	if cfg.SMTPAddr == "" {
		log.Fatal("worker: SMTP_ADDR is required")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          cfg.MailKafkaTopic,
		GroupID:        cfg.KafkaGroupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		CommitInterval: time.Second,
	})
	defer reader.Close()

	sender := mailer.NewSMTPSender(cfg.SMTPAddr, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("worker: shutting down...")
		cancel()
	}()

	log.Printf("worker: consuming from %s (group %s), delivering via %s",
		cfg.MailKafkaTopic, cfg.KafkaGroupID, cfg.SMTPAddr)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("worker: stopped")
				return
			}
			log.Printf("worker: kafka read error: %v", err)
			continue
		}

		var m mailer.Message
		if err := json.Unmarshal(msg.Value, &m); err != nil {
			log.Printf("worker: bad mail job at offset %d: %v", msg.Offset, err)
			continue
		}

		sendCtx, sendCancel := context.WithTimeout(ctx, 30*time.Second)
		if err := sender.Send(sendCtx, m); err != nil {
			log.Printf("worker: deliver to %s failed: %v", m.To, err)
		}
		sendCancel()
	}
}
