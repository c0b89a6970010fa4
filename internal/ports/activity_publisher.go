package ports

import (
	"context"

	"github.com/Olprog59/go-familyhub/internal/domain"
)

// ActivityPublisher broadcasts domain events / Diffuse les événements métier
type ActivityPublisher interface {
	Publish(ctx context.Context, activity domain.Activity) error
}
