// Package commands implements the valuetype command line tool.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-valuetype"
	"github.com/goliatone/go-valuetype/pkg/catalog"
	"github.com/goliatone/go-valuetype/pkg/fields"
	pkgvaluetype "github.com/goliatone/go-valuetype/pkg/valuetype"
)

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	catalogDir string
	extended   bool
	verbose    bool
}

// NewRootCommand assembles the CLI.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "valuetype",
		Short:         "Inspect, validate and document value types",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.catalogDir, "catalog", "c", "", "directory of JSON/YAML catalog files")
	flags.BoolVarP(&opts.extended, "extended", "x", false, "register the extra types and the bundled catalog")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log debug diagnostics to stderr")

	cmd.AddCommand(
		newListCommand(opts),
		newValueCommand(opts),
		newPromptCommand(opts),
		newValidateCommand(opts),
		newOpenAPICommand(opts),
		newDocsCommand(opts),
		newImportCommand(),
	)
	return cmd
}

// Execute runs the CLI and reports errors on stderr.
func Execute() int {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return 1
	}
	return 0
}

func (o *globalOptions) logger(cmd *cobra.Command) logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetLevel(logrus.WarnLevel)
	if o.verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// load builds the manager described by the global flags. The returned store
// is empty when no catalog directory was given.
func (o *globalOptions) load(cmd *cobra.Command) (*valuetype.Manager, *catalog.Store, error) {
	logger := o.logger(cmd)
	options := []valuetype.Option{pkgvaluetype.WithLogger(logger)}

	var (
		m   *valuetype.Manager
		err error
	)
	if o.extended {
		m, err = valuetype.NewExtended(options...)
		if err != nil {
			return nil, nil, err
		}
	} else {
		m = valuetype.New(options...)
	}

	if o.catalogDir == "" {
		return m, &catalog.Store{}, nil
	}
	info, err := os.Stat(o.catalogDir)
	if err != nil {
		return nil, nil, fmt.Errorf("catalog: %w", err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("catalog: %s is not a directory", o.catalogDir)
	}
	store, err := valuetype.LoadCatalog(m, os.DirFS(o.catalogDir))
	if err != nil {
		return nil, nil, err
	}
	logger.WithField("types", len(store.Types())).WithField("schemas", len(store.SchemaIDs())).
		Debug("loaded catalog")
	return m, store, nil
}

// compileAll compiles every schema of store, ordered by id.
func compileAll(m *valuetype.Manager, store *catalog.Store, logger logrus.FieldLogger) ([]*fields.Set, error) {
	ids := store.SchemaIDs()
	sets := make([]*fields.Set, 0, len(ids))
	for _, id := range ids {
		set, err := store.Compile(m, id, fields.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}
	return sets, nil
}

// decodeData accepts JSON first and falls back to YAML.
func decodeData(data []byte, out any) error {
	if err := json.Unmarshal(data, out); err == nil {
		return nil
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("invalid JSON or YAML: %w", err)
	}
	return nil
}

// readInput reads path, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

// openOutput returns stdout when path is empty. The closer is always safe to
// call.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if strings.TrimSpace(path) == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
