// Package events publishes submission refresh requests to Kafka. Publishing
// is best-effort: requests are queued without blocking the caller and
// failures are logged, never returned.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gartstein/compliance/internal/checklist/metrics"
	"github.com/gartstein/compliance/internal/checklist/models"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var jsonMarshal = json.Marshal

const (
	DefaultQueueSize  = 1000
	defaultRetries    = 3
	retryInitialDelay = 100 * time.Millisecond
)

// RefreshRequested asks the registry fetch job to refresh the filed
// submissions of one company.
type RefreshRequested struct {
	CompanyID          uuid.UUID `json:"company_id"`
	BusinessID         uuid.UUID `json:"business_id"`
	RegistrationNumber string    `json:"registration_number"`
	RequestedAt        time.Time `json:"requested_at"`
}

type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	writer    KafkaWriter
	requests  chan RefreshRequested
	logger    *zap.Logger
	metrics   *metrics.Metrics
	retries   uint64
	now       func() time.Time
	ctx       context.Context
	cancel    context.CancelFunc
	closeChan chan struct{}
	done      chan struct{}
}

// EnsureTopic creates the refresh topic if it doesn't exist.
func EnsureTopic(brokers []string, topic string, logger *zap.Logger) error {
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return err
	}
	defer conn.Close()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     3,
		ReplicationFactor: 1,
	})
	if err != nil {
		logger.Warn("failed to create topic (may already exist)", zap.Error(err))
	}
	return nil
}

// NewKafkaWriter returns a writer for topic. Messages are keyed by company id
// so requests for one company stay ordered within a partition.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.Hash{},
		Topic:    topic,
	}
}

// NewProducer starts the background send loop.
func NewProducer(writer KafkaWriter, queueSize int, logger *zap.Logger, m *metrics.Metrics) *Producer {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Producer{
		writer:    writer,
		requests:  make(chan RefreshRequested, queueSize),
		logger:    logger.Named("refresh_producer"),
		metrics:   m,
		retries:   defaultRetries,
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
		closeChan: make(chan struct{}),
		done:      make(chan struct{}),
	}

	go p.eventLoop()
	return p
}

// RequestRefresh queues a refresh for company and returns immediately.
// When the queue is full the request is dropped.
func (p *Producer) RequestRefresh(company *models.Company) {
	req := RefreshRequested{
		CompanyID:          company.ID,
		BusinessID:         company.BusinessID,
		RegistrationNumber: company.RegistrationNumber,
		RequestedAt:        p.now().UTC(),
	}
	select {
	case p.requests <- req:
		p.metrics.ObserveRefresh(metrics.RefreshQueued)
	default:
		p.metrics.ObserveRefresh(metrics.RefreshDropped)
		p.logger.Warn("Refresh queue full, dropping request",
			zap.String("company_id", company.ID.String()),
		)
	}
}

func (p *Producer) eventLoop() {
	defer close(p.done)
	for {
		select {
		case req := <-p.requests:
			p.sendEvent(p.ctx, req)
		case <-p.closeChan:
			return
		}
	}
}

func (p *Producer) sendEvent(ctx context.Context, req RefreshRequested) {
	value, err := jsonMarshal(req)
	if err != nil {
		p.metrics.ObserveRefresh(metrics.RefreshFailed)
		p.logger.Error("Failed to serialize refresh request",
			zap.Error(err),
			zap.String("company_id", req.CompanyID.String()),
		)
		return
	}

	msg := kafka.Message{
		Key:   []byte(req.CompanyID.String()),
		Value: value,
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = retryInitialDelay
	policy := backoff.WithContext(backoff.WithMaxRetries(b, p.retries), ctx)

	err = backoff.Retry(func() error {
		return p.writer.WriteMessages(ctx, msg)
	}, policy)
	if err != nil {
		p.metrics.ObserveRefresh(metrics.RefreshFailed)
		p.logger.Error("Failed to publish refresh request",
			zap.Error(err),
			zap.String("company_id", req.CompanyID.String()),
		)
		return
	}
	p.metrics.ObserveRefresh(metrics.RefreshSent)
}

// Close stops the send loop and closes the writer. Requests still queued are discarded.
func (p *Producer) Close() {
	close(p.closeChan)
	if p.cancel != nil {
		p.cancel()
	}
	if p.done != nil {
		<-p.done
	}
	if err := p.writer.Close(); err != nil {
		p.logger.Error("Failed to close Kafka writer", zap.Error(err))
	}
}

// LogRefresher stands in for the producer when no broker is configured.
type LogRefresher struct {
	logger *zap.Logger
}

func NewLogRefresher(logger *zap.Logger) *LogRefresher {
	return &LogRefresher{logger: logger.Named("refresh_producer")}
}

func (l *LogRefresher) RequestRefresh(company *models.Company) {
	l.logger.Info("No broker configured, refresh request not published",
		zap.String("company_id", company.ID.String()),
	)
}
