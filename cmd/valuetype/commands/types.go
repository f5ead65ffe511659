package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-valuetype"
	pkgvaluetype "github.com/goliatone/go-valuetype/pkg/valuetype"
)

type typeSummary struct {
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	TSType        string `json:"tsType"`
	SwaggerType   string `json:"swaggerType"`
	Nullable      bool   `json:"nullable"`
	DefaultFormat bool   `json:"defaultFormat"`
	Builtin       bool   `json:"builtin"`
}

func newListCommand(opts *globalOptions) *cobra.Command {
	var (
		asJSON      bool
		skipNulls   bool
		builtinOnly bool
		query       string
		limit       int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered value types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := opts.load(cmd)
			if err != nil {
				return err
			}

			var rows []typeSummary
			for _, name := range m.Search(query, 0) {
				item, ok := m.Lookup(name)
				if !ok {
					continue
				}
				info := item.Info()
				if skipNulls && info.Nullable {
					continue
				}
				if builtinOnly && !info.Builtin {
					continue
				}
				rows = append(rows, typeSummary{
					Name:          name,
					Description:   info.Description,
					TSType:        info.TSType,
					SwaggerType:   string(info.SwaggerType),
					Nullable:      info.Nullable,
					DefaultFormat: info.DefaultFormat,
					Builtin:       info.Builtin,
				})
			}
			if limit > 0 && len(rows) > limit {
				rows = rows[:limit]
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), rows)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tTS TYPE\tSWAGGER\tFORMAT\tDESCRIPTION")
			for _, row := range rows {
				format := "-"
				if row.DefaultFormat {
					format = "yes"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", row.Name, row.TSType, row.SwaggerType, format, row.Description)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the list as JSON")
	cmd.Flags().BoolVar(&skipNulls, "no-nullable", false, "hide the derived Nullable types")
	cmd.Flags().BoolVar(&builtinOnly, "builtin", false, "only show built-in types")
	cmd.Flags().StringVarP(&query, "search", "q", "", "only show names containing the text, prefix matches first")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of rows (0 for all)")
	return cmd
}

// errRejected marks a value the pipeline refused; the result has already been
// printed.
var errRejected = errors.New("value rejected")

func newValueCommand(opts *globalOptions) *cobra.Command {
	var (
		rawParams string
		jsonInput bool
		format    bool
	)

	cmd := &cobra.Command{
		Use:   "value <type> <input>",
		Short: "Run an input through a type's parse, check and format pipeline",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := opts.load(cmd)
			if err != nil {
				return err
			}
			item, err := lookup(m, args[0])
			if err != nil {
				return err
			}

			var input any = args[1]
			if jsonInput {
				if err := json.Unmarshal([]byte(args[1]), &input); err != nil {
					return fmt.Errorf("input is not valid JSON: %w", err)
				}
			}
			params, err := parseParams(rawParams)
			if err != nil {
				return err
			}
			if err := item.CheckParams(params); err != nil {
				return err
			}

			var result valuetype.ValueResult
			if cmd.Flags().Changed("format") {
				result = item.Value(input, params, format)
			} else {
				result = item.Value(input, params)
			}
			if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if !result.OK {
				return fmt.Errorf("%w: %v", errRejected, result.Err())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&rawParams, "params", "p", "", "type params as JSON, e.g. '[\"a\",\"b\"]' for ENUM")
	cmd.Flags().BoolVar(&jsonInput, "json-input", false, "decode the input argument as JSON")
	cmd.Flags().BoolVar(&format, "format", false, "force or skip the formatter (defaults to the type's setting)")
	return cmd
}

// askInput is swapped in tests.
var askInput = func(message, help string, validate survey.Validator) (string, error) {
	var out string
	prompt := &survey.Input{Message: message, Help: help}
	if err := survey.AskOne(prompt, &out, survey.WithValidator(validate)); err != nil {
		return "", err
	}
	return out, nil
}

func newPromptCommand(opts *globalOptions) *cobra.Command {
	var rawParams string

	cmd := &cobra.Command{
		Use:   "prompt <type>",
		Short: "Ask for a value interactively until the type accepts it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := opts.load(cmd)
			if err != nil {
				return err
			}
			item, err := lookup(m, args[0])
			if err != nil {
				return err
			}
			params, err := parseParams(rawParams)
			if err != nil {
				return err
			}
			if err := item.CheckParams(params); err != nil {
				return err
			}

			var accepted valuetype.ValueResult
			validate := func(ans any) error {
				result := item.Value(ans, params)
				if !result.OK {
					return result.Err()
				}
				accepted = result
				return nil
			}

			info := item.Info()
			if _, err := askInput(fmt.Sprintf("%s:", item.Name()), info.Description, validate); err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), accepted.Value)
		},
	}

	cmd.Flags().StringVarP(&rawParams, "params", "p", "", "type params as JSON")
	return cmd
}

func lookup(m *valuetype.Manager, name string) (*valuetype.Item, error) {
	item, ok := m.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", pkgvaluetype.ErrUnknownType, name)
	}
	return item, nil
}

// parseParams decodes a params flag. Bare words that are not JSON are taken
// as a string, which covers the Array item type shorthand.
func parseParams(raw string) (any, error) {
	if raw == "" {
		return nil, nil
	}
	var params any
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		if json.Valid([]byte(`"` + raw + `"`)) {
			return raw, nil
		}
		return nil, fmt.Errorf("params are not valid JSON: %w", err)
	}
	return params, nil
}
