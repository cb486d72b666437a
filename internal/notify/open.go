package notify

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"healthcare-booking-api/internal/config"
)

// Open builds the publisher named in cfg.
func Open(ctx context.Context, cfg config.EventsConfig) (Publisher, error) {
	switch cfg.Backend {
	case config.EventsNone, "":
		return Nop{}, nil
	case config.EventsKafka:
		return NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	case config.EventsSQS:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("aws config: %w", err)
		}
		return NewSQS(ctx, sqs.NewFromConfig(awsCfg), cfg.SQSQueueName)
	}
	return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
}
