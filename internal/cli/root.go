// Package cli holds the cobra commands of the panel terminal application.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	homedir "github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mlorentedev/productai/internal/client"
	"github.com/mlorentedev/productai/internal/product"
)

const (
	appName           = "productai"
	configName        = "panel"
	envPrefix         = "PRODUCTAI"
	defaultBackendURL = "http://localhost:9000"
)

// app carries what every subcommand needs once flags and config are read.
type app struct {
	v       *viper.Viper
	log     *log.Logger
	cfgFile string
	debug   bool

	// newStore and newStreamer are swapped in tests.
	newStore    func() (product.Store, error)
	newStreamer func() *client.Client
}

// NewRootCmd builds the command tree.
func NewRootCmd(version string) *cobra.Command {
	a := &app{v: viper.New(), log: newLogger(os.Stderr)}
	a.newStore = a.store
	a.newStreamer = a.streamer

	root := &cobra.Command{
		Use:   "panel",
		Short: "AI tools for product descriptions",
		Long: `panel rewrites product descriptions with the productai backend.
Pick an action, review the streamed draft, edit it and save it back.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ~/.config/productai/panel.yaml)")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().String("backend", "", "backend base URL")
	root.PersistentFlags().String("api-key", "", "backend API key")
	root.PersistentFlags().String("products-file", "", "read and write products from a local YAML file")
	_ = a.v.BindPFlag("backend_url", root.PersistentFlags().Lookup("backend"))
	_ = a.v.BindPFlag("api_key", root.PersistentFlags().Lookup("api-key"))
	_ = a.v.BindPFlag("products_file", root.PersistentFlags().Lookup("products-file"))

	root.AddCommand(newTUICmd(a), newGenerateCmd(a), newActionsCmd(a))
	return root
}

// Execute runs the root command until it finishes or the process is
// interrupted, and exits non-zero on failure.
func Execute(version string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := NewRootCmd(version).ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newLogger(w io.Writer) *log.Logger {
	l := log.New()
	l.SetOutput(w)
	l.SetLevel(log.InfoLevel)
	l.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	return l
}

// configDir is ~/.config/productai, falling back to the home directory
// when the platform config dir is unknown.
func configDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, herr := homedir.Dir()
		if herr != nil {
			return "", fmt.Errorf("cli: locate config dir: %w", herr)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, appName), nil
}

func (a *app) initConfig() error {
	if a.cfgFile != "" {
		path, err := homedir.Expand(a.cfgFile)
		if err != nil {
			return fmt.Errorf("cli: config path: %w", err)
		}
		a.v.SetConfigFile(path)
	} else {
		dir, err := configDir()
		if err != nil {
			return err
		}
		a.v.AddConfigPath(dir)
		a.v.SetConfigName(configName)
		a.v.SetConfigType("yaml")
	}

	a.v.SetEnvPrefix(envPrefix)
	a.v.AutomaticEnv()
	a.v.SetDefault("backend_url", defaultBackendURL)
	a.v.SetDefault("log.level", "info")

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound), os.IsNotExist(err) && a.cfgFile == "":
			a.log.Debug("no config file found, using defaults and environment")
		default:
			return fmt.Errorf("cli: read config %s: %w", a.v.ConfigFileUsed(), err)
		}
	}

	a.setupLogging()
	return nil
}

func (a *app) setupLogging() {
	level := log.DebugLevel
	if !a.debug {
		var err error
		level, err = log.ParseLevel(a.v.GetString("log.level"))
		if err != nil {
			a.log.Warnf("invalid log level %q, using info", a.v.GetString("log.level"))
			level = log.InfoLevel
		}
	}
	a.log.SetLevel(level)
	a.log.WithField("config", a.v.ConfigFileUsed()).Debug("logger initialized")
}

func (a *app) store() (product.Store, error) {
	if path := a.v.GetString("products_file"); path != "" {
		path, err := homedir.Expand(path)
		if err != nil {
			return nil, fmt.Errorf("cli: products file: %w", err)
		}
		a.log.WithField("path", path).Debug("using product file")
		return product.NewFileStore(path), nil
	}
	return product.NewHTTPStore(a.v.GetString("backend_url"), a.v.GetString("api_key")), nil
}

func (a *app) streamer() *client.Client {
	return client.New(a.v.GetString("backend_url"), a.v.GetString("api_key"))
}
