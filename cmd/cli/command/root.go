package command

// root.go defines the root command for immersionctl and its global flags.

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"immersionhub/cmd/cli/authentication"
	"immersionhub/cmd/cli/command/client"
)

const defaultAPIURL = "http://localhost:8080"

var (
	apiURL  string // API server URL
	token   string // access token (jwt), overrides the keyring
	tz      string // IANA zone for "today" and date parsing
	noColor bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "immersionctl",
	Short: "immersionctl - immersion tracker command line interface",
	Long: `immersionctl talks to an immersionhub API server. Use it to:
- Set daily goals and check today's progress
- Record immersion sessions or import them from CSV/XLSX
- Review statistics for a day, week, month, year or all time

Use "immersionctl <command> --help" to see all available commands.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}
	},
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envOr("IMMERSIONHUB_API", defaultAPIURL), "API server URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("IMMERSIONHUB_TOKEN"), "access token (defaults to the stored token)")
	rootCmd.PersistentFlags().StringVar(&tz, "tz", os.Getenv("IMMERSIONHUB_TZ"), "IANA time zone, e.g. Asia/Tokyo (defaults to the server's)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// GetAuthenticatedClient returns a client carrying the flag, env or keyring token.
func GetAuthenticatedClient() (*client.HTTPClient, error) {
	accessToken := token
	baseURL := apiURL
	if accessToken == "" {
		creds, err := authentication.GetTokens()
		if err != nil {
			return nil, err
		}
		accessToken = creds.AccessToken
		if creds.APIURL != "" && !rootCmd.PersistentFlags().Changed("api") && os.Getenv("IMMERSIONHUB_API") == "" {
			baseURL = creds.APIURL
		}
	}

	httpClient := client.NewHTTPClient(baseURL)
	httpClient.SetToken(accessToken)
	return httpClient, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printError(err error) {
	fmt.Fprintln(os.Stderr, color.RedString("✗ %v", err))
}
