package consumer

import (
	"context"
	"encoding/json"

	"hris/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// OptionsWarmer re-populates the employee options cache. The creating
// transaction drops the cache; warming it here keeps the first picker load
// after a hire fast.
type OptionsWarmer interface {
	WarmOptionsCache(ctx context.Context) error
}

func ConsumeEmployeeLifecycle(
	ctx context.Context,
	reader *kafkago.Reader,
	warmer OptionsWarmer,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.employee_lifecycle")
	log.Info("employee lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("employee lifecycle consumer stopped")
				return
			}
			log.Error("fetch employee lifecycle message failed", zap.Error(err))
			continue
		}

		var event events.EmployeeCreatedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			// Poison message, skip it for good.
			log.Error("decode employee_created event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := warmer.WarmOptionsCache(ctx); err != nil {
			log.Error("warm employee options cache failed",
				zap.String("employee_id", event.EmployeeID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit employee lifecycle message failed", zap.Error(err))
			continue
		}

		log.Info("employee options cache warmed from employee_created event",
			zap.String("employee_id", event.EmployeeID),
			zap.String("employee_number", event.EmployeeNumber),
		)
	}
}
