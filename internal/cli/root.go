// Package cli implements the wardrobe command line client
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"wardrobe/internal/client"
	"wardrobe/internal/domain/wardrobe"
	"wardrobe/internal/observability"
	"wardrobe/internal/render"
)

const (
	serverEnv     = "WARDROBE_SERVER"
	defaultServer = "http://localhost:8080"
)

// API is the part of the wardrobe client the commands use
type API interface {
	Upload(ctx context.Context, files []client.ImageFile) (*wardrobe.UploadResult, error)
	Inventory(ctx context.Context) ([]wardrobe.Item, error)
	Generate(ctx context.Context, city string) (*wardrobe.GenerateResult, error)
	ImageURL(item wardrobe.Item) string
}

// Config holds the dependencies of the commands
type Config struct {
	// NewAPI builds the client for a server URL. Nil uses client.New.
	NewAPI func(serverURL string, logger *observability.Logger) (API, error)
}

type rootFlags struct {
	server   string
	logLevel string
}

// app is the state shared by the subcommands once flags are parsed
type app struct {
	api      API
	renderer *render.Renderer
	logger   *observability.Logger
}

// NewRootCommand creates the wardrobe command with all subcommands
func NewRootCommand(cfg Config) *cobra.Command {
	if cfg.NewAPI == nil {
		cfg.NewAPI = defaultAPI
	}

	f := &rootFlags{}
	a := &app{}

	cmd := &cobra.Command{
		Use:   "wardrobe",
		Short: "Manage your wardrobe and get outfit ideas for the weather",
		Long: `wardrobe talks to a wardrobe server: upload photos of your clothes,
list what you own, and get outfit recommendations for a city's current weather.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.logger = observability.NewLoggerWithWriter(observability.Config{
				ServiceName: "wardrobe-cli",
				LogLevel:    f.logLevel,
				LogFormat:   "console",
			}, cmd.ErrOrStderr())

			api, err := cfg.NewAPI(f.server, a.logger)
			if err != nil {
				return err
			}
			a.api = api
			a.renderer = render.New(api.ImageURL)
			return nil
		},
	}

	server := os.Getenv(serverEnv)
	if server == "" {
		server = defaultServer
	}
	cmd.PersistentFlags().StringVar(&f.server, "server", server, "wardrobe server URL (env "+serverEnv+")")
	cmd.PersistentFlags().StringVar(&f.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	cmd.AddCommand(newUploadCmd(a))
	cmd.AddCommand(newInventoryCmd(a))
	cmd.AddCommand(newGenerateCmd(a))

	return cmd
}

func defaultAPI(serverURL string, logger *observability.Logger) (API, error) {
	return client.New(serverURL, client.WithLogger(logger))
}

// Execute runs the command tree and prints failures as "Error: <message>".
// It returns the process exit code.
func Execute(ctx context.Context, cmd *cobra.Command, args []string, stdout, stderr io.Writer) int {
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, render.New(nil).Error(err))
		return 1
	}
	return 0
}
