package service

import (
	"context"
	"strings"

	"github.com/Skotchmaster/greenhaven/internal/models"
	"github.com/Skotchmaster/greenhaven/internal/notify"
)

type Notifier interface {
	Send(ctx context.Context, msg notify.Message) notify.Result
}

type SMSSender interface {
	SendCode(ctx context.Context, mobile, code string) error
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type OrderIndexer interface {
	IndexOrder(ctx context.Context, o *models.Order) error
	DeleteOrder(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	SearchOrders(ctx context.Context, query string, from, size int) (int64, []models.Order, error)
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
