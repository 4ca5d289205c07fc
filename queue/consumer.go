// Package queue consumes asynchronous render jobs from Kafka. The HTTP
// API stays synchronous; the queue path exists for callers that submit
// long merges and pick the result up from object storage.
package queue

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
	"github.com/charmbracelet/log"
)

// MessageHandler processes one consumed message. shouldMark false (or a
// returned error) leaves the offset unmarked so the message is retried.
type MessageHandler interface {
	HandleMessage(ctx context.Context, message []byte) (shouldMark bool, err error)
}

// ConsumerConfig holds everything needed to join a consumer group.
type ConsumerConfig struct {
	Brokers []string
	Topic   string
	GroupID string
	Handler MessageHandler
	Logger  *log.Logger
}

// Consumer wraps a sarama consumer group around a pluggable handler.
type Consumer struct {
	group   sarama.ConsumerGroup
	handler MessageHandler
	topic   string
	groupID string
	logger  *log.Logger
	ready   chan bool
}

// NewConsumer connects to the brokers and prepares a consumer group.
func NewConsumer(cfg ConsumerConfig) (*Consumer, error) {
	sc := sarama.NewConfig()
	sc.Version = sarama.V3_6_0_0
	sc.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	sc.Consumer.Offsets.Initial = sarama.OffsetNewest
	sc.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, sc)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Consumer{
		group:   group,
		handler: cfg.Handler,
		topic:   cfg.Topic,
		groupID: cfg.GroupID,
		logger:  logger,
		ready:   make(chan bool),
	}, nil
}

// Start joins the group and consumes until ctx is canceled. It returns
// once the first session is established.
func (c *Consumer) Start(ctx context.Context) error {
	h := &groupHandler{
		handler: c.handler,
		logger:  c.logger,
		ready:   c.ready,
	}

	go func() {
		for {
			if err := c.group.Consume(ctx, []string{c.topic}, h); err != nil {
				if err == context.Canceled {
					return
				}
				c.logger.Error("consumer session failed", "err", err)
			}
			if ctx.Err() != nil {
				return
			}
			h.ready = make(chan bool)
		}
	}()

	<-c.ready
	c.logger.Info("kafka consumer started", "group", c.groupID, "topic", c.topic)

	go func() {
		for err := range c.group.Errors() {
			c.logger.Error("kafka consumer error", "err", err)
		}
	}()

	return nil
}

// Close leaves the group and releases the connection.
func (c *Consumer) Close() error {
	return c.group.Close()
}

type groupHandler struct {
	handler MessageHandler
	logger  *log.Logger
	ready   chan bool
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error {
	close(h.ready)
	return nil
}

func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}

			h.logger.Debug("render job received",
				"partition", message.Partition, "offset", message.Offset, "key", string(message.Key))

			shouldMark, err := h.handler.HandleMessage(session.Context(), message.Value)
			if err != nil {
				h.logger.Error("render job failed", "offset", message.Offset, "err", err)
			}
			if shouldMark {
				session.MarkMessage(message, "")
			}

		case <-session.Context().Done():
			return nil
		}
	}
}

// TypedMessageHandler decodes JSON into T before delegating. Malformed
// payloads are marked and skipped when AlwaysMark is set, since retrying
// them can never succeed.
type TypedMessageHandler[T any] struct {
	Validate   func(msg *T) bool
	Process    func(ctx context.Context, msg *T) error
	AlwaysMark bool
	Logger     *log.Logger
}

// HandleMessage implements MessageHandler.
func (h *TypedMessageHandler[T]) HandleMessage(ctx context.Context, message []byte) (bool, error) {
	var msg T
	if err := json.Unmarshal(message, &msg); err != nil {
		if h.Logger != nil {
			h.Logger.Warn("discarding malformed job payload", "err", err)
		}
		return h.AlwaysMark, nil
	}

	if h.Validate != nil && !h.Validate(&msg) {
		return h.AlwaysMark, nil
	}

	if err := h.Process(ctx, &msg); err != nil {
		return false, err
	}
	return true, nil
}
