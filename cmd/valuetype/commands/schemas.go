package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-valuetype"
	"github.com/goliatone/go-valuetype/pkg/catalog"
	"github.com/goliatone/go-valuetype/pkg/docs"
	"github.com/goliatone/go-valuetype/pkg/fields"
	"github.com/goliatone/go-valuetype/pkg/openapi"
)

// errInvalidPayload is returned after a failing report has been printed.
var errInvalidPayload = errors.New("payload is invalid")

func newValidateCommand(opts *globalOptions) *cobra.Command {
	var (
		schemaID    string
		inputPath   string
		schemaCheck bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a JSON or YAML payload against a catalog schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.catalogDir == "" {
				return errors.New("--catalog is required to resolve schemas")
			}
			m, store, err := opts.load(cmd)
			if err != nil {
				return err
			}
			set, err := store.Compile(m, schemaID, fields.WithLogger(opts.logger(cmd)))
			if err != nil {
				return err
			}

			data, err := readInput(cmd, inputPath)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			payload := map[string]any{}
			if err := decodeData(data, &payload); err != nil {
				return fmt.Errorf("decode input: %w", err)
			}

			if schemaCheck {
				if err := checkAgainstSchema(m, set, payload, opts.logger(cmd)); err != nil {
					return err
				}
			}

			report := set.Validate(payload)
			if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if !report.Valid {
				return fmt.Errorf("%w: %v", errInvalidPayload, report.Err())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&schemaID, "schema", "s", "", "schema id declared in the catalog")
	cmd.Flags().StringVarP(&inputPath, "input", "i", "-", "payload file, - for stdin")
	cmd.Flags().BoolVar(&schemaCheck, "openapi-check", false, "also check the payload against the generated OpenAPI schema and warn on stderr")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

// checkAgainstSchema logs what an OpenAPI validator in front of the service
// would reject. The payload goes through JSON first so YAML scalars match
// JSON decoding.
func checkAgainstSchema(m *valuetype.Manager, set *fields.Set, payload map[string]any, logger logrus.FieldLogger) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	var normalised any
	if err := json.Unmarshal(raw, &normalised); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	schema := openapi.NewGenerator(m).ObjectSchema(set)
	result := openapi.ValidatePayload(schema, normalised)
	for _, issue := range result.Issues {
		logger.WithFields(logrus.Fields{"schema": set.ID(), "field": issue.Field}).Warn(issue.Message)
	}
	return nil
}

func newOpenAPICommand(opts *globalOptions) *cobra.Command {
	var (
		title   string
		version string
		format  string
		output  string
		prefix  string
	)

	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Generate an OpenAPI document with a component per type",
		Long: "Generate an OpenAPI document with a component per registered type. " +
			"Every catalog schema becomes a POST operation whose request body is the schema.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, store, err := opts.load(cmd)
			if err != nil {
				return err
			}
			sets, err := compileAll(m, store, opts.logger(cmd))
			if err != nil {
				return err
			}

			operations := make([]openapi.Operation, 0, len(sets))
			for _, set := range sets {
				schema, _ := store.Schema(set.ID())
				operations = append(operations, openapi.Operation{
					ID:          set.ID(),
					Method:      "POST",
					Path:        strings.TrimRight(prefix, "/") + "/" + set.ID(),
					Description: schema.Description,
					Body:        set,
				})
			}

			doc, err := valuetype.BuildOpenAPI(cmd.Context(), m, title, version, operations...)
			if err != nil {
				return err
			}

			var raw []byte
			switch strings.ToLower(format) {
			case "json":
				raw, err = openapi.MarshalJSON(doc)
			case "yaml", "yml":
				raw, err = openapi.MarshalYAML(doc)
			default:
				return fmt.Errorf("unknown format %q (json or yaml)", format)
			}
			if err != nil {
				return err
			}

			w, closeFn, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			if _, err := w.Write(raw); err != nil {
				_ = closeFn()
				return err
			}
			return closeFn()
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "document title")
	cmd.Flags().StringVar(&version, "api-version", "", "document version")
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format: json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&prefix, "path-prefix", "", "prefix for generated operation paths")
	return cmd
}

func newDocsCommand(opts *globalOptions) *cobra.Command {
	var (
		title  string
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Render the type reference as Markdown, HTML or TypeScript",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := docs.ParseFormat(format)
			if err != nil {
				return err
			}
			m, store, err := opts.load(cmd)
			if err != nil {
				return err
			}
			sets, err := compileAll(m, store, opts.logger(cmd))
			if err != nil {
				return err
			}
			renderer, err := docs.New(docs.WithTitle(title))
			if err != nil {
				return err
			}

			w, closeFn, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			if err := renderer.Render(w, f, m, sets...); err != nil {
				_ = closeFn()
				return err
			}
			return closeFn()
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "heading for the reference")
	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "output format: markdown, html or typescript")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}

// importDocument is the catalog layout printed by the import command so its
// output can be saved next to other catalog files.
type importDocument struct {
	Schemas map[string]catalog.Schema `yaml:"schemas"`
}

func newImportCommand() *cobra.Command {
	var (
		operationIDs []string
		noResolve    bool
	)

	cmd := &cobra.Command{
		Use:   "import <openapi-file>",
		Short: "Convert OpenAPI operations into catalog schemas",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return fmt.Errorf("read document: %w", err)
			}
			imported, err := openapi.Import(cmd.Context(), data, openapi.WithReferenceResolution(!noResolve))
			if err != nil {
				return err
			}

			wanted := make(map[string]bool, len(operationIDs))
			for _, id := range operationIDs {
				if _, ok := imported[id]; !ok {
					return fmt.Errorf("operation %q not found (have %s)", id, strings.Join(sortedKeys(imported), ", "))
				}
				wanted[id] = true
			}

			out := importDocument{Schemas: make(map[string]catalog.Schema, len(imported))}
			for id, op := range imported {
				if len(wanted) > 0 && !wanted[id] {
					continue
				}
				description := op.Summary
				if description == "" {
					description = op.Description
				}
				declared := append(append([]fields.Field(nil), op.Body...), op.Query...)
				out.Schemas[id] = catalog.Schema{Description: description, Fields: declared}
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(out); err != nil {
				return err
			}
			return enc.Close()
		},
	}

	cmd.Flags().StringSliceVar(&operationIDs, "operation", nil, "operation ids to keep (all by default)")
	cmd.Flags().BoolVar(&noResolve, "no-resolve", false, "skip external references and validation")
	return cmd
}

func sortedKeys(in map[string]openapi.ImportedOperation) []string {
	keys := make([]string, 0, len(in))
	for key := range in {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
