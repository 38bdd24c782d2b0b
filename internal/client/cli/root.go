package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/securechat/internal/client/services"
)

func (a *App) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "securechat",
		Short:         "End-to-end encrypted messaging over a SecureChat relay",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	key := &cobra.Command{Use: "key", Short: "Inspect or publish public keys"}
	key.AddCommand(a.keyGetCmd(), a.keySetCmd())

	root.AddCommand(
		a.keygenCmd(),
		a.registerCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		key,
		a.sendCmd(),
		a.inboxCmd(),
		a.attachmentCmd(),
	)
	return root
}

// withSession restores the saved token before running fn.
func (a *App) withSession(fn func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if _, err := a.auth.Restore(cmd.Context()); err != nil {
			if errors.Is(err, services.ErrNotLoggedIn) {
				return fmt.Errorf("%w: run login first", err)
			}
			return err
		}
		return fn(cmd, args)
	}
}
