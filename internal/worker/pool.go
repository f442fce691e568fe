package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueReports = "jobs:reports"
	QueueEmail   = "jobs:email"
)

const maxAttempts = 3

// Job is the generic envelope for all async tasks.
type Job struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Handler processes one job payload. A returned error triggers a retry;
// after maxAttempts the job lands in the DLQ.
type Handler func(ctx context.Context, raw json.RawMessage) error

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueReport pushes a report generation job and returns its job ID.
func (d *Dispatcher) EnqueueReport(ctx context.Context, payload interface{}) (string, error) {
	return d.enqueue(ctx, QueueReports, "report", payload)
}

// EnqueueEmail pushes an email delivery job.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload interface{}) (string, error) {
	return d.enqueue(ctx, QueueEmail, "email", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	job := Job{ID: uuid.NewString(), Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return "", err
	}
	if err := d.rdb.LPush(ctx, queue, encoded).Err(); err != nil {
		return "", err
	}
	return job.ID, nil
}

// Pool consumes the job queues with a fixed number of goroutines.
type Pool struct {
	rdb      *redis.Client
	handlers map[string]Handler // queue → handler
}

func NewPool(rdb *redis.Client) *Pool {
	return &Pool{rdb: rdb, handlers: make(map[string]Handler)}
}

// Register binds a handler to a queue. Must be called before Start.
func (p *Pool) Register(queue string, h Handler) {
	p.handlers[queue] = h
}

// Start launches numWorkers goroutines consuming all registered queues.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go p.run(ctx, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func (p *Pool) run(ctx context.Context, id int) {
	queues := make([]string, 0, len(p.handlers))
	for q := range p.handlers {
		queues = append(queues, q)
	}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			p.process(ctx, result[0], result[1])
		}
	}
}

func (p *Pool) process(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	handler, ok := p.handlers[queue]
	if !ok {
		log.Error().Str("queue", queue).Msg("no handler registered")
		return
	}

	log.Info().Str("job_id", job.ID).Str("type", job.Type).Str("queue", queue).Msg("processing job")
	err := handler(ctx, job.Payload)
	if err == nil {
		return
	}

	job.Attempts++
	if job.Attempts >= maxAttempts {
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts)
		return
	}

	log.Warn().Err(err).Str("job_id", job.ID).Int("attempts", job.Attempts).Msg("job failed, requeueing")
	if encoded, mErr := json.Marshal(job); mErr == nil {
		if pushErr := p.rdb.LPush(ctx, queue, encoded).Err(); pushErr != nil {
			log.Error().Err(pushErr).Str("job_id", job.ID).Msg("requeue failed")
		}
	}
}
