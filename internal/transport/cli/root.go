package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/domain"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/infra/security"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/usecase"
)

// Runtime is a connected console for one command invocation.
type Runtime struct {
	Console *usecase.Console
	Close   func()
}

// ConnectFunc assembles a Runtime. verbose raises the log level to debug.
type ConnectFunc func(ctx context.Context, verbose bool) (*Runtime, error)

// ServeFunc runs the long-lived API server until ctx ends.
type ServeFunc func(ctx context.Context) error

// Options wires the command tree to its collaborators and streams.
type Options struct {
	Connect   ConnectFunc
	Serve     ServeFunc
	Inspector *security.TokenInspector
	In        io.Reader
	Out       io.Writer
	Err       io.Writer
}

var errNotSignedIn = errors.New("not signed in; run 'console login --email <address>'")

type commandEnv struct {
	opts    Options
	verbose bool
}

// NewRootCommand builds the console command tree.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.Inspector == nil {
		opts.Inspector = security.NewTokenInspector()
	}
	env := &commandEnv{opts: opts}

	root := &cobra.Command{
		Use:           "console",
		Short:         "LaunchKart admin console",
		Long:          "Operator console for the LaunchKart platform: sign in with an emailed code, browse review queues and manage admin roles.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(opts.In)
	root.SetOut(opts.Out)
	root.SetErr(opts.Err)
	root.PersistentFlags().BoolVarP(&env.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(
		newServeCommand(env),
		newLoginCommand(env),
		newLogoutCommand(env),
		newWhoamiCommand(env),
		newListCommand(env),
		newActCommand(env),
		newPromoteCommand(env),
	)
	return root
}

func newServeCommand(env *commandEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the console API and gRPC health endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if env.opts.Serve == nil {
				return errors.New("serve is not available in this build")
			}
			return env.opts.Serve(cmd.Context())
		},
	}
}

// connect assembles the runtime and resolves the persisted session before returning.
func (e *commandEnv) connect(ctx context.Context) (*Runtime, error) {
	if e.opts.Connect == nil {
		return nil, errors.New("console is not configured")
	}
	rt, err := e.opts.Connect(ctx, e.verbose)
	if err != nil {
		return nil, err
	}
	if err := rt.Console.Session.Init(ctx); err != nil && !errors.Is(err, usecase.ErrSessionAlreadyInitialized) {
		rt.close()
		return nil, fmt.Errorf("restore session: %w", err)
	}
	return rt, nil
}

// connectSignedIn is connect for commands that need an authenticated operator.
func (e *commandEnv) connectSignedIn(ctx context.Context) (*Runtime, error) {
	rt, err := e.connect(ctx)
	if err != nil {
		return nil, err
	}
	if !rt.Console.Session.Snapshot().Authenticated() {
		rt.close()
		return nil, errNotSignedIn
	}
	return rt, nil
}

func (rt *Runtime) close() {
	if rt != nil && rt.Close != nil {
		rt.Close()
	}
}

// describeDecision turns a non-allow gate decision into an error.
func describeDecision(decision usecase.Decision, target string) error {
	switch decision {
	case usecase.DecisionAllow:
		return nil
	case usecase.DecisionUnauthenticated:
		return errNotSignedIn
	case usecase.DecisionPending:
		return errors.New("session is still loading")
	default:
		return fmt.Errorf("%s: %w", target, usecase.ErrPermissionDenied)
	}
}

// userError prefers the backend detail for classified errors.
func userError(err error) error {
	if detail := domain.DetailOf(err); detail != "" {
		return errors.New(detail)
	}
	return err
}
