// Package docs renders reference material for the types registered on a
// manager and for compiled field sets: a Markdown or HTML table and TypeScript
// declarations built from each type's TSType.
package docs

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"
	"unicode"

	"github.com/flosch/pongo2/v6"
	"github.com/gosimple/slug"

	"github.com/goliatone/go-valuetype/pkg/fields"
	"github.com/goliatone/go-valuetype/pkg/valuetype"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

// Format selects the output template.
type Format string

const (
	FormatMarkdown   Format = "markdown"
	FormatHTML       Format = "html"
	FormatTypeScript Format = "typescript"
)

var templateNames = map[Format]string{
	FormatMarkdown:   "reference.md.tpl",
	FormatHTML:       "reference.html.tpl",
	FormatTypeScript: "types.ts.tpl",
}

// Formats lists the supported output formats.
func Formats() []Format {
	return []Format{FormatMarkdown, FormatHTML, FormatTypeScript}
}

// ParseFormat resolves a format name, accepting the usual short aliases.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "md", "markdown":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	case "ts", "typescript":
		return FormatTypeScript, nil
	}
	return "", fmt.Errorf("docs: unknown format %q", raw)
}

// TemplatesFS exposes the embedded templates so callers can copy or extend
// them before passing overrides to WithTemplates.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// Option configures a Renderer.
type Option func(*config)

type config struct {
	title     string
	templates fs.FS
}

// WithTitle sets the heading used by every template.
func WithTitle(title string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(title); trimmed != "" {
			cfg.title = trimmed
		}
	}
}

// WithTemplates overrides embedded templates by name (reference.md.tpl,
// reference.html.tpl, types.ts.tpl). Missing names fall back to the
// embedded copies.
func WithTemplates(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// Renderer executes the reference templates. It is safe for concurrent use.
type Renderer struct {
	mu        sync.RWMutex
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
	title     string
}

var filtersOnce sync.Once

// New builds a renderer backed by pongo2.
func New(options ...Option) (*Renderer, error) {
	cfg := &config{title: "Value types"}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}

	var loaders []pongo2.TemplateLoader
	if cfg.templates != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.templates))
	}
	loaders = append(loaders, pongo2.NewFSLoader(TemplatesFS()))

	if err := registerFilters(); err != nil {
		return nil, err
	}
	return &Renderer{
		set:       pongo2.NewSet("valuetype-docs", loaders...),
		templates: make(map[string]*pongo2.Template),
		title:     cfg.title,
	}, nil
}

// Render writes the reference for m and sets in the given format.
func (r *Renderer) Render(w io.Writer, format Format, m *valuetype.Manager, sets ...*fields.Set) error {
	if r == nil || r.set == nil {
		return errors.New("docs: renderer is nil")
	}
	if m == nil {
		return errors.New("docs: manager is required")
	}
	name, ok := templateNames[format]
	if !ok {
		return fmt.Errorf("docs: unknown format %q", format)
	}
	tmpl, err := r.template(name)
	if err != nil {
		return err
	}

	ctx := pongo2.Context{
		"title": r.title,
		"types": typeRows(m),
		"sets":  setRows(sets),
	}
	if err := tmpl.ExecuteWriter(ctx, w); err != nil {
		return fmt.Errorf("docs: execute %s: %w", name, err)
	}
	return nil
}

// String renders into a string.
func (r *Renderer) String(format Format, m *valuetype.Manager, sets ...*fields.Set) (string, error) {
	var b strings.Builder
	if err := r.Render(&b, format, m, sets...); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (r *Renderer) template(name string) (*pongo2.Template, error) {
	r.mu.RLock()
	tmpl, ok := r.templates[name]
	r.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if tmpl, ok := r.templates[name]; ok {
		return tmpl, nil
	}
	tmpl, err := r.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("docs: load template %q: %w", name, err)
	}
	r.templates[name] = tmpl
	return tmpl, nil
}

type typeRow struct {
	Name          string
	Description   string
	TSType        string
	SwaggerType   string
	Format        string
	Nullable      bool
	DefaultFormat bool
	Builtin       bool
}

type fieldRow struct {
	Name        string
	Type        string
	Required    bool
	HasDefault  bool
	Default     string
	Description string
}

type setRow struct {
	ID     string
	Fields []fieldRow
}

func typeRows(m *valuetype.Manager) []typeRow {
	rows := make([]typeRow, 0, m.Len())
	m.ForEach(func(name string, item *valuetype.Item) bool {
		info := item.Info()
		rows = append(rows, typeRow{
			Name:          name,
			Description:   info.Description,
			TSType:        info.TSType,
			SwaggerType:   string(info.SwaggerType),
			Format:        info.Hints.Format,
			Nullable:      info.Nullable,
			DefaultFormat: info.DefaultFormat,
			Builtin:       info.Builtin,
		})
		return true
	})
	return rows
}

func setRows(sets []*fields.Set) []setRow {
	rows := make([]setRow, 0, len(sets))
	for _, set := range sets {
		if set == nil {
			continue
		}
		row := setRow{ID: set.ID()}
		for _, field := range set.Fields() {
			fr := fieldRow{
				Name:        field.Name,
				Type:        field.Type,
				Required:    field.Required,
				Description: field.Description,
			}
			if field.Default != nil {
				fr.HasDefault = true
				fr.Default = renderDefault(field.Default)
			}
			row.Fields = append(row.Fields, fr)
		}
		rows = append(rows, row)
	}
	return rows
}

func renderDefault(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(raw)
}

func registerFilters() error {
	var err error
	filtersOnce.Do(func() {
		filters := map[string]pongo2.FilterFunction{
			"tskey":   filterTSKey,
			"tsident": filterTSIdent,
			"slugify": filterSlugify,
		}
		for name, fn := range filters {
			if pongo2.FilterExists(name) {
				continue
			}
			if regErr := pongo2.RegisterFilter(name, fn); regErr != nil {
				err = fmt.Errorf("docs: register filter %q: %w", name, regErr)
				return
			}
		}
	})
	return err
}

// filterTSKey quotes a name as a TypeScript property key.
func filterTSKey(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	raw, err := json.Marshal(in.String())
	if err != nil {
		return nil, &pongo2.Error{Sender: "filter:tskey", OrigError: err}
	}
	return pongo2.AsSafeValue(string(raw)), nil
}

// filterSlugify builds HTML anchors from type names.
func filterSlugify(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(slug.Make(in.String())), nil
}

// filterTSIdent turns a set id such as "create-order" into "CreateOrder".
func filterTSIdent(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	var b strings.Builder
	upper := true
	for _, r := range in.String() {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	ident := b.String()
	if ident == "" || unicode.IsDigit([]rune(ident)[0]) {
		ident = "Fields" + ident
	}
	return pongo2.AsValue(ident), nil
}
