package cache

import (
	"context"
	"time"

	"github.com/Olprog59/go-familyhub/internal/ports"
)

var _ ports.Cache = Noop{}

// Noop is used when caching is disabled: every lookup misses / Utilisé quand le cache est désactivé
type Noop struct{}

func (Noop) GetJSON(context.Context, string, any) error { return ports.ErrCacheMiss }

func (Noop) SetJSON(context.Context, string, any, time.Duration) error { return nil }

func (Noop) Delete(context.Context, ...string) error { return nil }

func (Noop) Ping(context.Context) error { return nil }

func (Noop) Close() error { return nil }
