// Command republish drains the order_outbox table: events whose
// original publication failed are written to Kafka with their original
// correlation token, then marked sent. Orders themselves are never
// touched. Run it ad hoc after a broker outage or on a schedule.
package main

import (
	"context"
	"database/sql"
	"flag"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"ordersvc/pkg/events"
	"ordersvc/pkg/logger"
	"ordersvc/pkg/order"
)

func main() {
	batch := flag.Int("batch", 100, "max records per run")
	timeout := flag.Duration("timeout", 30*time.Second, "overall run timeout")
	flag.Parse()

	log, err := logger.New("ordersvc-republish")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := sql.Open("postgres", os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	writer := events.NewWriter(brokers())
	defer writer.Close()
	publisher := events.NewKafkaPublisher(writer)
	outbox := events.NewOutbox(db)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pending, err := outbox.FetchPending(ctx, *batch)
	if err != nil {
		log.Fatal("fetch pending", zap.Error(err))
	}
	if len(pending) == 0 {
		log.Info("outbox empty")
		return
	}

	sent := 0
	for _, rec := range pending {
		evt := order.OrderCreatedEvent{OrderID: rec.OrderID}
		if err := publisher.Publish(ctx, evt, rec.CorrelationID); err != nil {
			log.Error("republish", zap.String("order_id", rec.OrderID), zap.Error(err))
			continue
		}
		if err := outbox.MarkSent(ctx, rec.ID); err != nil {
			log.Error("mark sent", zap.Int64("outbox_id", rec.ID), zap.Error(err))
			continue
		}
		sent++
	}
	log.Info("republish done", zap.Int("pending", len(pending)), zap.Int("sent", sent))
}

func brokers() []string {
	var out []string
	for _, b := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	if len(out) == 0 {
		out = []string{"localhost:9092"}
	}
	return out
}
