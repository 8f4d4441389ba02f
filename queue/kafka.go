package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/IBM/sarama"

	"github.com/franclarke/multidub-ai/types"
)

// KafkaConfig holds broker settings for the Kafka-backed queue.
type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// Kafka is a Queue backed by a Kafka topic and consumer group. Offsets are
// committed only after Ack, so an unacknowledged task is redelivered when the
// group rebalances or the worker restarts.
type Kafka struct {
	cfg      KafkaConfig
	log      *slog.Logger
	producer sarama.SyncProducer
	group    sarama.ConsumerGroup

	deliveries chan *Delivery
	consumeCtx context.Context
	cancel     context.CancelFunc
	startOnce  sync.Once
	done       chan struct{}
}

// kafkaReceipt carries the settle decision back to the ConsumeClaim loop.
type kafkaReceipt struct {
	settle chan bool
}

// NewKafka connects a producer and consumer group to the configured brokers.
func NewKafka(cfg KafkaConfig, log *slog.Logger) (*Kafka, error) {
	sc := sarama.NewConfig()
	sc.Version = sarama.V3_6_0_0
	sc.Producer.Return.Successes = true
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	sc.Consumer.Offsets.Initial = sarama.OffsetOldest
	sc.Consumer.Return.Errors = true

	producer, err := sarama.NewSyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, sc)
	if err != nil {
		producer.Close()
		return nil, fmt.Errorf("kafka consumer group: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Kafka{
		cfg:        cfg,
		log:        log,
		producer:   producer,
		group:      group,
		deliveries: make(chan *Delivery),
		consumeCtx: ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}, nil
}

func (k *Kafka) Enqueue(ctx context.Context, task types.DubbingTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	_, _, err = k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: k.cfg.Topic,
		Key:   sarama.StringEncoder(task.OutputID),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("send task: %w", err)
	}
	return nil
}

func (k *Kafka) Claim(ctx context.Context) (*Delivery, error) {
	k.startOnce.Do(k.startConsuming)
	select {
	case d, ok := <-k.deliveries:
		if !ok {
			return nil, fmt.Errorf("queue closed")
		}
		return d, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (k *Kafka) Ack(ctx context.Context, d *Delivery) error {
	return k.settle(d, true)
}

func (k *Kafka) Nack(ctx context.Context, d *Delivery) error {
	return k.settle(d, false)
}

func (k *Kafka) settle(d *Delivery, ok bool) error {
	r, valid := d.receipt.(*kafkaReceipt)
	if !valid {
		return fmt.Errorf("delivery %s has no kafka receipt", d.ID)
	}
	select {
	case r.settle <- ok:
		return nil
	case <-k.consumeCtx.Done():
		return k.consumeCtx.Err()
	}
}

func (k *Kafka) Close() error {
	k.cancel()
	// If Claim never started the consume loop, nothing will close done.
	// Claiming the once here closes it directly so the wait cannot hang.
	k.startOnce.Do(func() { close(k.done) })
	<-k.done
	k.group.Close()
	return k.producer.Close()
}

func (k *Kafka) startConsuming() {
	handler := &groupHandler{queue: k}
	go func() {
		defer close(k.done)
		for {
			if err := k.group.Consume(k.consumeCtx, []string{k.cfg.Topic}, handler); err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				k.log.Error("kafka consume", "error", err)
			}
			if k.consumeCtx.Err() != nil {
				return
			}
		}
	}()
	go func() {
		for err := range k.group.Errors() {
			k.log.Error("kafka consumer group", "error", err)
		}
	}()
}

// groupHandler implements sarama.ConsumerGroupHandler.
type groupHandler struct {
	queue *Kafka
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim hands each message to a worker through the deliveries channel
// and waits for the worker's verdict before moving on. A positive verdict
// marks the offset; a negative one leaves it unmarked so the message is
// redelivered on the next session.
func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}
			var task types.DubbingTask
			if err := json.Unmarshal(message.Value, &task); err != nil {
				h.queue.log.Error("drop malformed task",
					"partition", message.Partition, "offset", message.Offset, "error", err)
				session.MarkMessage(message, "")
				continue
			}

			receipt := &kafkaReceipt{settle: make(chan bool, 1)}
			d := &Delivery{
				ID:      fmt.Sprintf("%s/%d/%d", message.Topic, message.Partition, message.Offset),
				Task:    task,
				receipt: receipt,
			}

			select {
			case h.queue.deliveries <- d:
			case <-session.Context().Done():
				return nil
			}

			select {
			case ok := <-receipt.settle:
				if ok {
					session.MarkMessage(message, "")
				}
			case <-session.Context().Done():
				return nil
			}

		case <-session.Context().Done():
			return nil
		}
	}
}
