// Package extratypes registers optional value types backed by third-party
// libraries: HTML sanitisation, UUIDs, URL slugs and IANA timezone names.
// They are not part of the built-in catalog; call Register to add them to a
// manager.
package extratypes

import (
	"fmt"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-valuetype/pkg/valuetype"
)

// Type names registered by Register.
const (
	TypeHTML     = "HTMLString"
	TypePlain    = "PlainText"
	TypeUUID     = "UUID"
	TypeSlug     = "Slug"
	TypeSlugText = "SlugText"
	TypeTimezone = "Timezone"
)

var (
	policyOnce sync.Once
	ugcPolicy  *bluemonday.Policy
	strict     *bluemonday.Policy
)

func policies() (*bluemonday.Policy, *bluemonday.Policy) {
	policyOnce.Do(func() {
		ugcPolicy = bluemonday.UGCPolicy()
		strict = bluemonday.StrictPolicy()
	})
	return ugcPolicy, strict
}

// Register adds the extra types and their nullable siblings to m.
func Register(m *valuetype.Manager) *valuetype.Manager {
	ugc, plain := policies()

	m.Register(TypeHTML, valuetype.Definition{
		Checker:       valuetype.Is(isString),
		Formatter:     sanitizeWith(ugc),
		Description:   "HTML fragment sanitised for user generated content",
		TSType:        "string",
		SwaggerType:   valuetype.SwaggerString,
		Hints:         valuetype.Hints{Format: "html"},
		DefaultFormat: true,
	})

	m.Register(TypePlain, valuetype.Definition{
		Checker:       valuetype.Is(isString),
		Formatter:     sanitizeWith(plain),
		Description:   "Text with every HTML tag removed",
		TSType:        "string",
		SwaggerType:   valuetype.SwaggerString,
		DefaultFormat: true,
	})

	m.Register(TypeUUID, valuetype.Definition{
		Checker: valuetype.Is(func(value any) bool {
			_, err := toUUID(value)
			return err == nil
		}),
		Formatter: func(value any) (any, error) {
			id, err := toUUID(value)
			if err != nil {
				return nil, err
			}
			return id.String(), nil
		},
		Description:   "UUID (canonical lowercase form)",
		TSType:        "string",
		SwaggerType:   valuetype.SwaggerString,
		Hints:         valuetype.Hints{Format: "uuid"},
		DefaultFormat: true,
	})

	m.Register(TypeSlug, valuetype.Definition{
		Checker: valuetype.Is(func(value any) bool {
			s, ok := value.(string)
			return ok && slug.IsSlug(s)
		}),
		Description: "URL slug (lowercase words joined by dashes)",
		TSType:      "string",
		SwaggerType: valuetype.SwaggerString,
		Hints:       valuetype.Hints{Pattern: "^[a-z0-9]+(?:[-_][a-z0-9]+)*$"},
	})

	m.Register(TypeSlugText, valuetype.Definition{
		Checker: valuetype.Is(func(value any) bool {
			s, ok := value.(string)
			return ok && slug.Make(s) != ""
		}),
		Formatter: func(value any) (any, error) {
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("expected string, got %T", value)
			}
			return slug.Make(s), nil
		},
		Description:   "Free text converted to a URL slug",
		TSType:        "string",
		SwaggerType:   valuetype.SwaggerString,
		DefaultFormat: true,
	})

	m.Register(TypeTimezone, valuetype.Definition{
		Checker: valuetype.Is(func(value any) bool {
			_, err := toLocation(value)
			return err == nil
		}),
		Formatter: func(value any) (any, error) {
			loc, err := toLocation(value)
			if err != nil {
				return nil, err
			}
			return loc.String(), nil
		},
		Description:   "IANA timezone name (Europe/Madrid)",
		TSType:        "string",
		SwaggerType:   valuetype.SwaggerString,
		Hints:         valuetype.Hints{Format: "timezone"},
		DefaultFormat: true,
	})

	return m
}

func isString(value any) bool {
	_, ok := value.(string)
	return ok
}

func sanitizeWith(policy *bluemonday.Policy) valuetype.FormatFunc {
	return func(value any) (any, error) {
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", value)
		}
		return strings.TrimSpace(policy.Sanitize(s)), nil
	}
}

func toUUID(value any) (uuid.UUID, error) {
	switch v := value.(type) {
	case uuid.UUID:
		return v, nil
	case string:
		return uuid.Parse(strings.TrimSpace(v))
	case []byte:
		return uuid.FromBytes(v)
	}
	return uuid.Nil, fmt.Errorf("expected uuid, got %T", value)
}

// toLocation resolves IANA names only. "Local" and the empty name are
// rejected since they depend on the host.
func toLocation(value any) (*time.Location, error) {
	switch v := value.(type) {
	case *time.Location:
		if v == nil {
			return nil, fmt.Errorf("expected timezone, got nil location")
		}
		return v, nil
	case string:
		name := strings.TrimSpace(v)
		if name == "" || name == "Local" {
			return nil, fmt.Errorf("timezone %q is not an IANA name", v)
		}
		return time.LoadLocation(name)
	}
	return nil, fmt.Errorf("expected timezone, got %T", value)
}
