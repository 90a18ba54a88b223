package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/mpx-client/internal/constants"
	"github.com/fivetwenty-io/mpx-client/pkg/mpxclient"
)

// TokenInfo is the result of a sign-in.
type TokenInfo struct {
	User  string `json:"user"  yaml:"user"`
	Token string `json:"token" yaml:"token"`
	Saved bool   `json:"saved" yaml:"saved"`
}

// NewAuthCommand creates the auth command group.
func NewAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign in to and out of MPX",
		Long:  "Obtain and release tokens from the MPX identity service",
	}

	cmd.AddCommand(newAuthSignInCommand())
	cmd.AddCommand(newAuthSignOutCommand())

	return cmd
}

func newAuthSignInCommand() *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "sign-in",
		Short: "Sign in and print a token",
		Long: `Sign in with the configured user and print the issued token.

The token stays live until 'mpx auth sign-out' releases it. With --save it is
stored in the config file and used by later commands.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, password, err := credentials(cmd)
			if err != nil {
				return err
			}

			auth, err := mpxclient.NewAuthenticationClient(clientOptions(cmd)...)
			if err != nil {
				return err
			}

			ok, err := auth.SignIn(cmd.Context(), user, password)
			if err != nil {
				return fmt.Errorf("failed to sign in: %w", err)
			}

			if !ok {
				return fmt.Errorf("%w for user %s", mpxclient.ErrSignInRejected, user)
			}

			info := TokenInfo{User: user, Token: auth.Token()}

			if save {
				err = NewConfigPersister().UpdateToken(user, info.Token)
				if err != nil {
					return err
				}

				info.Saved = true
			}

			done, err := printStructured(cmd.OutOrStdout(), info)
			if done {
				return err
			}

			return renderTable(cmd.OutOrStdout(), []string{"Property", "Value"}, [][]string{
				{"User", info.User},
				{"Token", info.Token},
				{"Saved", fmt.Sprintf("%t", info.Saved)},
			})
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "store the token in the config file")

	return cmd
}

func newAuthSignOutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sign-out [TOKEN]",
		Short: "Release a token",
		Long:  "Sign out TOKEN, or the saved token when none is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			saved := viper.GetString(keyToken)

			token := saved
			if len(args) == 1 {
				token = args[0]
			}

			if token == "" {
				return ErrTokenRequired
			}

			auth, err := mpxclient.NewAuthenticationClient(clientOptions(cmd)...)
			if err != nil {
				return err
			}

			if !auth.SignOut(cmd.Context(), token) {
				return fmt.Errorf("%w: token %s", ErrSignOutFailed, maskToken(token))
			}

			if token == saved {
				err = NewConfigPersister().ClearToken()
				if err != nil {
					return err
				}
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Signed out")

			return nil
		},
	}
}

// maskToken keeps only the first characters of token.
func maskToken(token string) string {
	const visible = 4
	if len(token) <= visible {
		return constants.MaskedSecret
	}

	return token[:visible] + constants.MaskedSecret
}
