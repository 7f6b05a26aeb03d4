package config

import (
	"context"
	"log/slog"

	"github.com/terraconstructs/postboard/internal/client"
)

// GlobalConfig bundles the resolved settings with the logger and the client
// provider built from them. The root command creates one per invocation.
type GlobalConfig struct {
	*Config
	Logger         *slog.Logger
	ClientProvider *client.Provider
}

type globalKey struct{}

// InjectConfig returns a child of ctx carrying gc.
func InjectConfig(ctx context.Context, gc *GlobalConfig) context.Context {
	return context.WithValue(ctx, globalKey{}, gc)
}

// FromContext returns the GlobalConfig carried by ctx, if any.
func FromContext(ctx context.Context) (*GlobalConfig, bool) {
	gc, ok := ctx.Value(globalKey{}).(*GlobalConfig)
	return gc, ok && gc != nil
}

// MustFromContext is FromContext for subcommands, which always run after the
// root hook has injected the config. A missing value is a wiring bug.
func MustFromContext(ctx context.Context) *GlobalConfig {
	if gc, ok := FromContext(ctx); ok {
		return gc
	}
	panic("config: GlobalConfig missing from command context; was the root PersistentPreRunE skipped?")
}
