package client

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/terraconstructs/postboard/internal/authstate"
	"github.com/terraconstructs/postboard/internal/session"
	"github.com/terraconstructs/postboard/pkg/sdk"
)

// Options configures a Provider.
type Options struct {
	APIURL     string
	SessionDir string
	Timeout    time.Duration
	// Ephemeral keeps the session in memory instead of SessionDir.
	Ephemeral bool
	UserAgent string
	Logger    *slog.Logger
}

// Provider lazily builds the session store, SDK client, auth service and the
// process-wide session manager. Each is built at most once.
type Provider struct {
	opts Options

	storeOnce sync.Once
	store     session.Store
	storeErr  error

	sdkOnce   sync.Once
	sdkClient *sdk.Client
	sdkErr    error

	managerOnce sync.Once
	manager     *authstate.Manager
	managerErr  error
}

// NewProvider constructs a Provider. Nothing touches disk until first use.
func NewProvider(opts Options) *Provider {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Provider{opts: opts}
}

// APIURL returns the API root the provider is bound to.
func (p *Provider) APIURL() string {
	return p.opts.APIURL
}

// Store returns the session store for the configured API origin.
func (p *Provider) Store() (session.Store, error) {
	p.storeOnce.Do(func() {
		if p.opts.Ephemeral {
			p.store = session.NewMemoryStore(sdk.Session{})
			return
		}
		p.store, p.storeErr = session.NewFileStore(p.opts.SessionDir, p.opts.APIURL, p.opts.Logger)
	})
	if p.storeErr != nil {
		return nil, p.storeErr
	}
	return p.store, nil
}

// SDKClient returns an SDK client that reads its bearer token from the store
// before every request.
func (p *Provider) SDKClient() (*sdk.Client, error) {
	p.sdkOnce.Do(func() {
		store, err := p.Store()
		if err != nil {
			p.sdkErr = err
			return
		}

		opts := []sdk.ClientOption{sdk.WithTokenSource(session.TokenSource(store))}
		if p.opts.Timeout > 0 {
			opts = append(opts, sdk.WithTimeout(p.opts.Timeout))
		}
		if p.opts.UserAgent != "" {
			opts = append(opts, sdk.WithUserAgent(p.opts.UserAgent))
		}
		p.sdkClient = sdk.NewClient(p.opts.APIURL, opts...)
	})
	if p.sdkErr != nil {
		return nil, p.sdkErr
	}
	return p.sdkClient, nil
}

// Manager returns the session manager. It is created in Loading; callers
// decide when to Start it.
func (p *Provider) Manager() (*authstate.Manager, error) {
	p.managerOnce.Do(func() {
		store, err := p.Store()
		if err != nil {
			p.managerErr = err
			return
		}
		c, err := p.SDKClient()
		if err != nil {
			p.managerErr = err
			return
		}
		p.manager = authstate.NewManager(store, sdk.NewAuthService(c), p.opts.Logger)
	})
	if p.managerErr != nil {
		return nil, p.managerErr
	}
	return p.manager, nil
}

// ManagerFor adapts Manager to the signature guard.RequireSession expects.
func (p *Provider) ManagerFor(context.Context) (*authstate.Manager, error) {
	return p.Manager()
}

// ResolvedManager starts the manager and waits for it to leave Loading,
// bounded by the request timeout.
func (p *Provider) ResolvedManager(ctx context.Context) (*authstate.Manager, authstate.State, error) {
	mgr, err := p.Manager()
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := ensureTimeout(ctx, p.startupTimeout())
	defer cancel()

	go mgr.Start(ctx)
	state, err := mgr.Wait(ctx)
	return mgr, state, err
}

func (p *Provider) startupTimeout() time.Duration {
	if p.opts.Timeout > 0 {
		return p.opts.Timeout + 5*time.Second
	}
	return 35 * time.Second
}

func ensureTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}

	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	return ctxWithTimeout, cancel
}
