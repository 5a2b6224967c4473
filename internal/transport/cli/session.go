package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/infra/security"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/usecase"
)

const defaultCodeAttempts = 3

func newLoginCommand(env *commandEnv) *cobra.Command {
	var (
		email    string
		attempts int
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with a one-time code sent to your email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rt, err := env.connect(ctx)
			if err != nil {
				return err
			}
			defer rt.close()

			console := rt.Console
			out := cmd.OutOrStdout()
			if snapshot := console.Session.Snapshot(); snapshot.Authenticated() {
				fmt.Fprintf(out, "Already signed in as %s\n", snapshot.Identity.Email)
				return nil
			}

			if err := console.Login.RequestOTP(ctx, email); err != nil {
				return userError(err)
			}

			tickCtx, stop := context.WithCancel(ctx)
			defer stop()
			go console.Login.Run(tickCtx)

			fmt.Fprintf(out, "A code was sent to %s. It expires in %s.\n", email, console.Login.Snapshot().Countdown)
			return promptForCode(cmd, console, attempts)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "operator email address")
	cmd.Flags().IntVar(&attempts, "attempts", defaultCodeAttempts, "how many codes may be entered before giving up")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func promptForCode(cmd *cobra.Command, console *usecase.Console, attempts int) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	reader := bufio.NewReader(cmd.InOrStdin())

	for i := 0; i < attempts; i++ {
		login := console.Login.Snapshot()
		if login.Expired {
			fmt.Fprintln(cmd.ErrOrStderr(), "The code has probably expired; run login again if it is rejected.")
		}

		fmt.Fprintf(out, "Code (%s left): ", login.Countdown)
		line, readErr := reader.ReadString('\n')
		code := strings.TrimSpace(line)
		if readErr != nil && code == "" {
			return fmt.Errorf("read code: %w", readErr)
		}

		if err := console.Login.VerifyOTP(ctx, "", code); err != nil {
			if errors.Is(err, usecase.ErrInvalidTransition) || errors.Is(err, usecase.ErrStaleAttempt) {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), console.Login.Snapshot().Error)
			continue
		}

		identity := console.Session.Snapshot().Identity
		fmt.Fprintf(out, "Signed in as %s (%s)\n", identity.DisplayName, identity.Role)
		return nil
	}
	return fmt.Errorf("no valid code after %d attempts", attempts)
}

func newLogoutCommand(env *commandEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := env.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			if !rt.Console.Session.Snapshot().Authenticated() {
				fmt.Fprintln(cmd.OutOrStdout(), "No active session")
				return nil
			}
			rt.Console.Session.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoamiCommand(env *commandEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in operator and their permissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := env.connectSignedIn(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			session := rt.Console.Session
			identity := session.Snapshot().Identity

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "Name:\t%s\n", identity.DisplayName)
			fmt.Fprintf(w, "Email:\t%s\n", identity.Email)
			fmt.Fprintf(w, "Role:\t%s\n", identity.Role)

			token, _ := session.Token()
			claims, err := env.opts.Inspector.Inspect(token)
			switch {
			case errors.Is(err, security.ErrOpaqueToken):
				fmt.Fprintf(w, "Token:\topaque\n")
			case err != nil:
				fmt.Fprintf(w, "Token:\tunreadable\n")
			case !claims.ExpiresAt.IsZero():
				remaining := claims.Remaining(time.Now()).Round(time.Minute)
				fmt.Fprintf(w, "Token expires:\t%s (in %s)\n", claims.ExpiresAt.Local().Format(time.RFC1123), remaining)
			}

			fmt.Fprintf(w, "Permissions:\t\n")
			engine := rt.Console.Engine
			for _, id := range identity.Permissions.Sorted() {
				entry, ok := engine.Lookup(id)
				if !ok {
					fmt.Fprintf(w, "  %s\t(unrecognised)\n", id)
					continue
				}
				fmt.Fprintf(w, "  %s\t%s\n", id, entry.Label)
			}
			return w.Flush()
		},
	}
}
