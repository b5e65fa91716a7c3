package cmd

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/FreeMarketamilitia/classroom-grader/internal/google"
)

func newAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to Google Classroom",
		Long: `Print the Google consent URL, read the authorization code from stdin and
store the resulting token for the account selected with --account.

Tokens are stored per account under $XDG_CACHE_HOME/classroom-grader.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if _, err := setupLogging(cfg, cmd.ErrOrStderr()); err != nil {
				return err
			}

			conf, err := google.LoadOAuthConfig(cfg.Google.ClientSecretsPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Authorizing account %q.\n", cfg.Google.Account)
			fmt.Fprintf(out, "Open this URL in your browser and grant access:\n\n%s\n\n", google.GetAuthURL(conf))
			fmt.Fprint(out, "Enter the authorization code: ")

			code, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && code == "" {
				return fmt.Errorf("failed to read authorization code: %w", err)
			}
			code = strings.TrimSpace(code)
			if code == "" {
				return fmt.Errorf("authorization code is required")
			}

			if err := google.SaveTokenForAccount(context.Background(), conf, cfg.Google.Account, code); err != nil {
				return err
			}
			fmt.Fprintf(out, "Token saved for account %q.\n", cfg.Google.Account)
			return nil
		},
	}
}
