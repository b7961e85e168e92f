package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"adaptive-eval-service/internal/app"
)

// JobQueueName is the RabbitMQ queue recommendation jobs travel on.
const JobQueueName = "eval.recommendations"

// envelope wraps a job with a message id and enqueue time for tracing.
// Delivery is at-least-once; the pipeline's persister dedups replays.
type envelope struct {
	ID         uuid.UUID             `json:"id"`
	Job        app.RecommendationJob `json:"job"`
	EnqueuedAt time.Time             `json:"enqueuedAt"`
}

// RabbitQueue publishes recommendation jobs to RabbitMQ and consumes them
// with a small worker pool.
type RabbitQueue struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	handler Handler
	workers int

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRabbitQueue(url string, handler Handler, workers int) (*RabbitQueue, error) {
	if workers <= 0 {
		workers = 2
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := channel.QueueDeclare(JobQueueName, true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	return &RabbitQueue{
		conn:    conn,
		channel: channel,
		handler: handler,
		workers: workers,
	}, nil
}

// Enqueue publishes the job as a persistent JSON message.
func (q *RabbitQueue) Enqueue(ctx context.Context, job app.RecommendationJob) error {
	body, err := json.Marshal(envelope{
		ID:         uuid.New(),
		Job:        job,
		EnqueuedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}

	err = q.channel.PublishWithContext(ctx, "", JobQueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish job: %w", err)
	}
	return nil
}

// Start begins consuming jobs. Manual acks: a job is acked once the handler
// returns; the pipeline logs and drops its own failures, so handler errors
// are terminal and failed messages are rejected without requeue.
func (q *RabbitQueue) Start(ctx context.Context) error {
	if err := q.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	msgs, err := q.channel.Consume(JobQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, msgs)
	}
	log.Printf("rabbitmq consumer started with %d workers", q.workers)
	return nil
}

func (q *RabbitQueue) worker(ctx context.Context, msgs <-chan amqp.Delivery) {
	defer q.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			q.process(ctx, msg)
		}
	}
}

func (q *RabbitQueue) process(ctx context.Context, msg amqp.Delivery) {
	var env envelope
	if err := json.Unmarshal(msg.Body, &env); err != nil {
		log.Printf("malformed recommendation job: %v", err)
		_ = msg.Reject(false)
		return
	}
	if err := q.handler(ctx, env.Job); err != nil {
		log.Printf("recommendation job %s failed: %v", env.ID, err)
		_ = msg.Reject(false)
		return
	}
	_ = msg.Ack(false)
}

// Close stops the workers and tears down the AMQP resources.
func (q *RabbitQueue) Close() {
	if q.cancel != nil {
		q.cancel()
	}
	q.wg.Wait()
	_ = q.channel.Close()
	_ = q.conn.Close()
}
