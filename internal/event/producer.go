package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Vlad-Innowise/auth-service/internal/domain"
	pkgkafka "github.com/Vlad-Innowise/auth-service/pkg/kafka"
)

// Kafka topic constants for auth domain events.
const (
	TopicUserRegistered  = "auth.user.registered"
	TopicUserDeactivated = "auth.user.deactivated"
)

// Aggregate type constant.
const AggregateTypeUser = "user"

// Source identifier for events originating from this service.
const SourceAuthService = "auth-service"

// UserRegisteredData is the payload for an auth.user.registered event.
type UserRegisteredData struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// UserDeactivatedData is the payload for an auth.user.deactivated event.
type UserDeactivatedData struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Producer publishes auth domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the auth service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishUserRegistered publishes an auth.user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	data := UserRegisteredData{
		ID:    user.ID,
		Email: user.Email,
		Role:  string(user.Role),
	}

	event, err := pkgkafka.NewEvent(TopicUserRegistered, strconv.FormatInt(user.ID, 10), AggregateTypeUser, SourceAuthService, data)
	if err != nil {
		return fmt.Errorf("create user.registered event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserRegistered, event); err != nil {
		return fmt.Errorf("publish user.registered event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.registered event",
		slog.Int64("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return nil
}

// PublishUserDeactivated publishes an auth.user.deactivated event.
func (p *Producer) PublishUserDeactivated(ctx context.Context, user *domain.User) error {
	data := UserDeactivatedData{
		ID:    user.ID,
		Email: user.Email,
	}

	event, err := pkgkafka.NewEvent(TopicUserDeactivated, strconv.FormatInt(user.ID, 10), AggregateTypeUser, SourceAuthService, data)
	if err != nil {
		return fmt.Errorf("create user.deactivated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserDeactivated, event); err != nil {
		return fmt.Errorf("publish user.deactivated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.deactivated event",
		slog.Int64("user_id", user.ID),
	)

	return nil
}
