package kafka

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/IBM/sarama"
)

var ErrProducerClosed = errors.New("kafka: producer closed")

// Producer publishes relayed outbox records. Messages are keyed by listing so
// every change to one calendar lands on the same partition in order.
type Producer struct {
	mu     sync.RWMutex
	sync   sarama.SyncProducer
	closed bool
}

func NewProducer(brokers []string, cfg *sarama.Config) (*Producer, error) {
	if cfg == nil {
		cfg = sarama.NewConfig()
	}
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	cfg.Producer.Return.Successes = true
	cfg.Producer.Partitioner = sarama.NewHashPartitioner
	cfg.Net.MaxOpenRequests = 1
	if !cfg.Version.IsAtLeast(sarama.V2_5_0_0) {
		cfg.Version = sarama.V2_5_0_0
	}
	sp, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return &Producer{sync: sp}, nil
}

func (p *Producer) Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed || p.sync == nil {
		return ErrProducerClosed
	}
	_, _, err := p.sync.SendMessage(&sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(payload),
		Headers: recordHeaders(headers),
	})
	return err
}

// recordHeaders sorts by key so identical events produce identical records.
func recordHeaders(headers map[string]string) []sarama.RecordHeader {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	hs := make([]sarama.RecordHeader, 0, len(keys))
	for _, k := range keys {
		hs = append(hs, sarama.RecordHeader{Key: []byte(k), Value: []byte(headers[k])})
	}
	return hs
}

func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.sync == nil {
		return nil
	}
	p.closed = true
	return p.sync.Close()
}
