package kafka

import (
	// Go Internal Packages
	"context"
	"encoding/json"

	// Local Packages
	models "receipt-verifier/models"

	// External Packages
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kprom"
	"go.uber.org/zap"
)

type PublisherConfig struct {
	Brokers []string
	Topic   string
}

// Publisher emits a verified-receipt event after each successful insert.
// Publishing is best effort: a broker failure is logged and never fails the
// verification that produced the event.
type Publisher struct {
	Client *kgo.Client
	Config *PublisherConfig
	Logger *zap.Logger
}

func NewReceiptPublisher(conf *PublisherConfig, metrics *kprom.Metrics, logger *zap.Logger) (*Publisher, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(conf.Brokers...), // Connects to Kafka brokers
		kgo.WithHooks(metrics),           // Attaches monitoring hooks
		kgo.DefaultProduceTopic(conf.Topic),
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, err
	}

	return &Publisher{Client: client, Config: conf, Logger: logger}, nil
}

// PublishVerified fires one event keyed by reference number so all events
// for the same receipt land in the same partition.
func (p *Publisher) PublishVerified(ctx context.Context, record *models.VerifiedReceiptRecord) {
	value, err := json.Marshal(record)
	if err != nil {
		p.Logger.Error("failed to marshal verified receipt event", zap.Error(err))
		return
	}

	rec := &kgo.Record{Key: []byte(record.ReferenceNumber), Value: value}
	p.Client.Produce(ctx, rec, func(_ *kgo.Record, err error) {
		if err != nil {
			p.Logger.Error("failed to publish verified receipt event",
				zap.String("reference", record.ReferenceNumber),
				zap.String("bank", string(record.Bank)),
				zap.Error(err))
		}
	})
}

func (p *Publisher) Close() {
	p.Client.Close()
}
