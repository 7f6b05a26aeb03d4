package guard

import (
	"context"
	"errors"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/terraconstructs/postboard/internal/authstate"
)

// ErrLoginRequired is returned by RequireSession when there is no usable session.
var ErrLoginRequired = errors.New("not logged in; run `postctl auth login` first")

// ManagerFunc resolves the session manager for a command invocation.
type ManagerFunc func(ctx context.Context) (*authstate.Manager, error)

// Placeholder is shown while the session is still Loading.
type Placeholder interface {
	Show(message string)
	Hide()
}

// CommandOption configures RequireSession.
type CommandOption func(*commandOptions)

type commandOptions struct {
	placeholder func() Placeholder
}

// WithPlaceholder overrides the spinner shown while the session resolves.
func WithPlaceholder(fn func() Placeholder) CommandOption {
	return func(o *commandOptions) {
		o.placeholder = fn
	}
}

// RequireSession returns a cobra PreRunE that starts session resolution,
// shows a placeholder while it is Loading and only lets the command run once
// the state is Authenticated.
func RequireSession(resolve ManagerFunc, opts ...CommandOption) func(*cobra.Command, []string) error {
	o := commandOptions{placeholder: func() Placeholder { return &spinnerPlaceholder{} }}
	for _, opt := range opts {
		opt(&o)
	}

	return func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		mgr, err := resolve(ctx)
		if err != nil {
			return err
		}

		go mgr.Start(ctx)

		state := mgr.State()
		if Decide(state) == ShowPlaceholder {
			ph := o.placeholder()
			ph.Show("Checking session...")
			state, err = mgr.Wait(ctx)
			ph.Hide()
		}

		switch Decide(state) {
		case RenderProtected:
			return nil
		case RedirectToLogin:
			return ErrLoginRequired
		default:
			return fmt.Errorf("session check did not finish: %w", err)
		}
	}
}

// WithoutPlaceholder shows nothing while the session resolves. Used when
// output is not a terminal.
func WithoutPlaceholder() CommandOption {
	return WithPlaceholder(func() Placeholder { return quietPlaceholder{} })
}

type quietPlaceholder struct{}

func (quietPlaceholder) Show(string) {}
func (quietPlaceholder) Hide()       {}

type spinnerPlaceholder struct {
	spinner *pterm.SpinnerPrinter
}

func (s *spinnerPlaceholder) Show(message string) {
	spinner, err := pterm.DefaultSpinner.WithRemoveWhenDone(true).Start(message)
	if err != nil {
		return
	}
	s.spinner = spinner
}

func (s *spinnerPlaceholder) Hide() {
	if s.spinner != nil {
		_ = s.spinner.Stop()
	}
}
