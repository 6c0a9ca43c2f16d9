package notify

import (
	"context"
	"errors"

	"github.com/shenikar/emergency_dispatch/internal/models"
)

// Publisher - получатель событий жизненного цикла
type Publisher interface {
	Publish(ctx context.Context, event models.LifecycleEvent) error
}

// Multi доставляет событие всем получателям; сбой одного не мешает остальным
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event models.LifecycleEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
