package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/giantswarm/mcp-oauth/storage/memory"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/teemow/workspace-mcp/internal/google"
	"github.com/teemow/workspace-mcp/internal/logging"
)

func newAuthCmd() *cobra.Command {
	var (
		account  string
		envFile  string
		redirect string
	)

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Obtain a Google OAuth token",
		Long: `Run the one-time Google OAuth flow from a terminal.

The command reads the OAuth client from GOOGLE_CREDENTIALS, prints the consent
URL, waits for the authorization code on stdin and prints the token JSON.
Store the output in GOOGLE_TOKEN_JSON for the serve command.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if envFile != "" {
				if err := godotenv.Load(envFile); err != nil {
					return fmt.Errorf("failed to load env file %s: %w", envFile, err)
				}
			}
			return runAuth(cmd.Context(), os.Getenv(google.EnvCredentials), account, redirect, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&account, "account", google.DefaultAccount, "Account name the token is obtained for")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Load environment variables from a dotenv file")
	cmd.Flags().StringVar(&redirect, "redirect-url", "", "Override the redirect URL from the OAuth client")

	return cmd
}

// runAuth prompts on errOut and writes only the token JSON to out.
func runAuth(ctx context.Context, credentials, account, redirectURL string, in io.Reader, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if credentials == "" {
		return errors.New("GOOGLE_CREDENTIALS is not set")
	}
	if err := google.ValidateAccountName(account); err != nil {
		return err
	}
	conf, err := google.ConfigFromJSON([]byte(credentials), redirectURL)
	if err != nil {
		return err
	}

	store := memory.New()
	defer store.Stop()
	logger := logging.New(logging.Options{Output: errOut})
	auth := google.NewAuthenticator(conf, google.NewStoreTokenProvider(store), logger, nil)

	fmt.Fprintf(errOut, "Visit this URL to authorize account %q:\n\n%s\n\nThen paste the authorization code: ", account, auth.AuthCodeURL("state-token"))

	code, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read authorization code: %w", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return errors.New("authorization code is required")
	}

	tok, err := auth.Exchange(ctx, account, code)
	if err != nil {
		return err
	}
	raw, err := google.MarshalToken(tok, conf)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s\n", raw)
	return nil
}
