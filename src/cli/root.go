// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/config"
	"github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/internal/certdb"
	"github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/internal/helper/posix"
	"github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/internal/keystore"
	"github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/internal/metrics"
	"github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/internal/x509/bundle"
	"github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/logger"
)

var (
	// OperationPerformed is set once a command has started working on the store.
	OperationPerformed bool
	// OperationPerformedSuccessfully is set once a command has finished without error.
	OperationPerformedSuccessfully bool
)

// ErrInputFileRequired indicates that a command needs an input file.
var ErrInputFileRequired = errors.New("cli: input file is required")

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath  string
	dbPath      string
	keysDir     string
	keyPassword string
	logFormat   string
}

// app carries what the commands of one invocation share.
type app struct {
	log   logger.Logger
	out   io.Writer
	flags globalFlags

	cfg      *config.Config
	store    certdb.Store
	metrics  *metrics.Recorder
	importer *bundle.Importer
}

// Execute runs the command line with os.Args and writes command output to stdout.
//
// Parameters:
//   - ctx: Context cancelled on interrupt
//   - version: Version reported by --version
//   - log: Logger for progress messages
//
// Returns:
//   - error: First error of the executed command
func Execute(ctx context.Context, version string, log logger.Logger) error {
	return run(ctx, os.Args[1:], version, log, os.Stdout)
}

func run(ctx context.Context, args []string, version string, log logger.Logger, out io.Writer) error {
	a := &app{log: log, out: out}
	defer a.close()

	rootCmd := a.newRootCommand(version)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	return rootCmd.ExecuteContext(ctx)
}

func (a *app) newRootCommand(version string) *cobra.Command {
	exeName := posix.GetExecutableName()

	rootCmd := &cobra.Command{
		Use:           exeName,
		Short:         "Import X.509 certificate bundles into a certificate store",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: fmt.Sprintf(`  %[1]s import server.p12 --password secret --keys ./keys
  %[1]s chain --nickname "My Server" --format tree
  %[1]s list`, exeName),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.flags.configPath, "config", "", "path to configuration file (JSON or YAML)")
	flags.StringVar(&a.flags.dbPath, "db", "", "certificate database file (overrides config)")
	flags.StringVar(&a.flags.keysDir, "keys", "", "directory of local private keys (overrides config)")
	flags.StringVar(&a.flags.keyPassword, "key-password", "", "password of encrypted private keys")
	flags.StringVar(&a.flags.logFormat, "log-format", "", "log format: cli or json (overrides config)")

	rootCmd.AddCommand(
		a.newImportCommand(),
		a.newChainCommand(),
		a.newListCommand(),
	)
	return rootCmd
}

// setup loads the configuration and opens the store for the command about to run.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.flags.configPath)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	changed := cmd.Flags().Changed
	if changed("db") {
		cfg.Store.Path = a.flags.dbPath
	}
	if changed("keys") {
		cfg.Keys.Dir = a.flags.keysDir
	}
	if changed("key-password") {
		cfg.Keys.Password = a.flags.keyPassword
	}
	if changed("log-format") {
		cfg.Log.Format = a.flags.logFormat
	}
	a.cfg = cfg

	// Progress goes to stderr so stdout carries only command output.
	switch cfg.Log.Format {
	case logger.FormatJSON:
		if a.log, err = logger.New(logger.FormatJSON, cmd.ErrOrStderr()); err != nil {
			return err
		}
	case logger.FormatCLI:
		a.log.SetOutput(cmd.ErrOrStderr())
	default:
		return fmt.Errorf("%w: %q", logger.ErrUnknownFormat, cfg.Log.Format)
	}

	var keys keystore.KeyStore
	if cfg.Keys.Dir != "" {
		mem, err := keystore.LoadDir(cfg.Keys.Dir, cfg.Keys.Password)
		if err != nil {
			return fmt.Errorf("loading keys: %w", err)
		}
		a.log.Printf("Loaded %d private key(s) from %s", mem.Len(), cfg.Keys.Dir)
		keys = mem
	}

	if cfg.Store.Path == "" {
		a.store = certdb.NewMemoryStore()
	} else {
		db, err := certdb.NewBoltStore(cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("opening certificate database: %w", err)
		}
		a.store = db
	}

	opts := []bundle.Option{bundle.WithLogger(a.log)}
	if cfg.Metrics.Enabled {
		a.metrics = metrics.New()
		opts = append(opts, bundle.WithMetrics(a.metrics))
	}
	a.importer = bundle.New(a.store, keys, opts...)
	return nil
}

// close writes metrics and releases the store.
func (a *app) close() {
	if a.metrics != nil {
		if err := a.metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
			a.log.Printf("Error writing metrics: %v", err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Printf("Error closing certificate database: %v", err)
		}
	}
}

// writeOutput writes data to path, or to the command output when path is empty.
func (a *app) writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := a.out.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing to output file: %w", err)
	}
	return nil
}
