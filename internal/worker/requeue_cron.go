package worker

// requeue_cron.go
// Background goroutine that periodically drains the email DLQ back onto
// jobs:email once the SMTP circuit breaker has recovered. Reports whose
// delivery failed while the relay was down are re-sent without manual
// intervention; entries that keep failing go straight back to the DLQ via
// the normal retry path.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/DanielShofela/Stock/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	requeueTickInterval = 60 * time.Second
	requeueBatchSize    = 10
)

// StartRequeueCron launches a background goroutine that ticks every minute
// and, while the circuit breaker is not open, moves a bounded batch of DLQ
// entries back to the email queue. It respects the context for graceful
// shutdown.
func StartRequeueCron(ctx context.Context, rdb *redis.Client, cb *infra.CircuitBreaker) {
	go func() {
		ticker := time.NewTicker(requeueTickInterval)
		defer ticker.Stop()

		log.Info().Msg("requeue_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("requeue_cron: shutting down")
				return
			case <-ticker.C:
				processRequeues(ctx, rdb, cb)
			}
		}
	}()
}

func processRequeues(ctx context.Context, rdb *redis.Client, cb *infra.CircuitBreaker) {
	// If CB is open, skip entirely — the relay is still down
	if cb.State() == infra.CBOpen {
		log.Debug().Msg("requeue_cron: circuit breaker is open, skipping tick")
		return
	}

	dlqKey := DLQPrefix + QueueEmail
	for i := 0; i < requeueBatchSize; i++ {
		raw, err := rdb.RPop(ctx, dlqKey).Result()
		if err != nil {
			return // empty queue or Redis error — either way stop this tick
		}

		var entry DLQEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			log.Error().Err(err).Msg("requeue_cron: unreadable DLQ entry dropped")
			continue
		}

		// Attempts reset to zero: the failure cause (dead relay) is gone
		job := Job{Type: entry.JobType, Payload: entry.Payload}
		encoded, err := json.Marshal(job)
		if err != nil {
			continue
		}
		if err := rdb.LPush(ctx, QueueEmail, encoded).Err(); err != nil {
			log.Error().Err(err).Msg("requeue_cron: requeue failed, entry lost from DLQ")
			return
		}
		log.Info().Str("job_type", entry.JobType).Msg("requeue_cron: DLQ entry requeued")
	}
}
