package consumer

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/ashmount/ClanBot/internal/events"
	"github.com/ashmount/ClanBot/internal/services"
	logger "github.com/ashmount/ClanBot/middleware/log"
)

// RoleEventConsumer feeds platform role-change events into the
// reconciliation service. Reconciliation is idempotent, so at-least-once
// delivery and replays are safe.
type RoleEventConsumer struct {
	reconciler *services.ReconcileService
	log        *logger.Logger
}

func NewRoleEventConsumer(reconciler *services.ReconcileService, log *logger.Logger) *RoleEventConsumer {
	return &RoleEventConsumer{reconciler: reconciler, log: log}
}

// Setup is run at the beginning of a new session, before ConsumeClaim.
func (c *RoleEventConsumer) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

// Cleanup is run at the end of a session, once all ConsumeClaim goroutines have exited.
func (c *RoleEventConsumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim applies each role event through the reconciler. Malformed
// events are marked and skipped; store failures leave the offset unmarked
// so the event redelivers.
func (c *RoleEventConsumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		var event events.RoleEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			c.log.Warn("dropping malformed role event",
				zap.Error(err), zap.Int64("offset", message.Offset))
			session.MarkMessage(message, "")
			continue
		}

		var err error
		switch event.Type {
		case events.RoleGranted:
			err = c.reconciler.HandleRoleGranted(event.RoleID, event.UserID)
		case events.RoleRevoked:
			err = c.reconciler.HandleRoleRevoked(event.RoleID, event.UserID)
		default:
			c.log.Warn("dropping role event of unknown type", zap.String("type", event.Type))
			session.MarkMessage(message, "")
			continue
		}

		if err != nil {
			c.log.Error("failed to apply role event, leaving for redelivery",
				zap.Error(err),
				zap.String("type", event.Type),
				zap.String("role_id", event.RoleID),
				zap.String("user_id", event.UserID))
			continue
		}
		session.MarkMessage(message, "")
	}
	return nil
}

// StartConsumer joins the consumer group and runs the consume loop until the
// context is cancelled.
func StartConsumer(ctx context.Context, brokers []string, groupID, topic string, consumer *RoleEventConsumer, log *logger.Logger) (sarama.ConsumerGroup, error) {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.Strategy = sarama.NewBalanceStrategyRoundRobin()
	config.Consumer.Offsets.Initial = sarama.OffsetNewest

	client, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, err
	}

	go func() {
		for {
			if err := client.Consume(ctx, []string{topic}, consumer); err != nil {
				log.Error("role event consumer error", zap.Error(err))
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()
	return client, nil
}
