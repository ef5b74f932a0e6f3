package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/agentbase/agentbase/internal/ai"
	"github.com/agentbase/agentbase/internal/chat"
	"github.com/agentbase/agentbase/internal/config"
	"github.com/agentbase/agentbase/internal/db"
	"github.com/agentbase/agentbase/internal/secrets"
	"github.com/agentbase/agentbase/internal/store/rabbitmq"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	maxAttempts = 3
	retryDelay  = 10 * time.Second
)

func workerConcurrency() int {
	v := os.Getenv("WORKER_CONCURRENCY")
	if v == "" {
		return 2
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 2
	}
	if n > 50 {
		return 50
	}
	return n
}

func main() {
	cfg := config.Load()

	gdb, err := db.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}

	codec, err := secrets.NewCodecFromConfig(cfg.CredentialKey)
	if err != nil {
		log.Fatalf("credential codec: %v", err)
	}

	// No rate limiter here: the limit was applied when the job was accepted.
	svc := chat.NewService(chat.NewRepo(gdb), ai.NewRegistry(), codec, nil)

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("rabbit dial: %v", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("rabbit channel: %v", err)
	}
	defer ch.Close()

	if err := rabbitmq.DeclareTopology(ch, cfg.RabbitQueue); err != nil {
		log.Fatalf("declare topology: %v", err)
	}

	concurrency := workerConcurrency()
	if err := ch.Qos(concurrency, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("worker started, queue=%s concurrency=%d", cfg.RabbitQueue, concurrency)

	jobs := make(chan amqp.Delivery, concurrency*2)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(workerID int) {
			defer wg.Done()
			for d := range jobs {
				handleDelivery(ctx, svc, ch, cfg.RabbitQueue, workerID, d)
			}
		}(i)
	}

	for {
		select {
		case <-ctx.Done():
			log.Printf("worker shutting down")
			close(jobs)
			wg.Wait()
			return

		case d, ok := <-msgs:
			if !ok {
				log.Printf("delivery channel closed")
				time.Sleep(1 * time.Second)
				continue
			}
			jobs <- d
		}
	}
}

func handleDelivery(ctx context.Context, svc *chat.Service, ch *amqp.Channel, queue string, workerID int, d amqp.Delivery) {
	var m rabbitmq.JobMessage
	if err := json.Unmarshal(d.Body, &m); err != nil || m.JobID == "" {
		log.Printf("worker=%d bad message: %v", workerID, err)
		_ = d.Nack(false, false)
		return
	}

	start := time.Now()
	err := svc.RunJob(ctx, m.JobID)
	if err == nil {
		if err := d.Ack(false); err != nil {
			log.Printf("worker=%d ack failed job=%s err=%v", workerID, m.JobID, err)
		}
		return
	}

	attempt := attemptCount(d) + 1
	log.Printf("worker=%d job %s attempt=%d cost=%s err=%v", workerID, m.JobID, attempt, time.Since(start), err)

	if attempt >= maxAttempts {
		// Dead-letters to the DLQ via the main queue's x-dead-letter config.
		_ = d.Nack(false, false)
		return
	}
	if err := publishRetry(ctx, ch, queue, d.Body, attempt); err != nil {
		log.Printf("worker=%d retry publish failed job=%s err=%v", workerID, m.JobID, err)
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

func attemptCount(d amqp.Delivery) int {
	if d.Headers == nil {
		return 0
	}
	switch v := d.Headers["x-attempt"].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

// publishRetry parks the message on the retry queue, whose TTL dead-letters
// it back to the main queue.
func publishRetry(ctx context.Context, ch *amqp.Channel, queue string, body []byte, attempt int) error {
	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return ch.PublishWithContext(cctx,
		"",
		queue+".retry",
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
			Expiration:   strconv.FormatInt(retryDelay.Milliseconds(), 10),
			Headers:      amqp.Table{"x-attempt": int32(attempt)},
		},
	)
}
