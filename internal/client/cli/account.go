package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/securechat/internal/common"
)

func (a *App) usernameArg(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	name, err := GetSimpleText(a.in, "Username:", a.out)
	if err != nil {
		return "", err
	}
	if name == "" {
		return "", fmt.Errorf("username is required")
	}
	return name, nil
}

func (a *App) keygenCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Create the local RSA key pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, created, err := a.auth.Keygen(cmd.Context(), force)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintln(a.out, "Generated a new key pair.")
			} else {
				fmt.Fprintln(a.out, "Key pair already exists (use --force to replace it).")
			}
			fmt.Fprint(a.out, pub)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing key pair")
	return cmd
}

func (a *App) registerCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "register [username]",
		Short: "Create an account on the relay",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, err := a.usernameArg(args)
			if err != nil {
				return err
			}
			password, err := GetPassword(a.out)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(password)

			p, err := a.auth.Register(cmd.Context(), username, email, string(password))
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Registered %s.\n", p.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "optional contact email")
	return cmd
}

func (a *App) loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login [username]",
		Short: "Sign in and remember the session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, err := a.usernameArg(args)
			if err != nil {
				return err
			}
			password, err := GetPassword(a.out)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(password)

			if err := a.auth.Login(cmd.Context(), username, string(password)); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Logged in as %s.\n", username)
			return nil
		},
	}
}

func (a *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.auth.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out.")
			return nil
		},
	}
}

func (a *App) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the account of the current session",
		Args:  cobra.NoArgs,
		RunE: a.withSession(func(cmd *cobra.Command, args []string) error {
			p, err := a.auth.WhoAmI(cmd.Context())
			if err != nil {
				return err
			}
			if p.Email != "" {
				fmt.Fprintf(a.out, "%s <%s>\n", p.Username, p.Email)
			} else {
				fmt.Fprintln(a.out, p.Username)
			}
			return nil
		}),
	}
}

func (a *App) keyGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <username>",
		Short: "Print a user's public key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, err := a.auth.LookupKey(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(a.out, pub)
			return nil
		},
	}
}

func (a *App) keySetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set",
		Short: "Publish the local public key for the current user",
		Args:  cobra.NoArgs,
		RunE: a.withSession(func(cmd *cobra.Command, args []string) error {
			p, err := a.auth.PublishKey(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Public key updated for %s.\n", p.Username)
			return nil
		}),
	}
}
