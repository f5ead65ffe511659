package valuetype

import (
	"io/fs"

	"github.com/goliatone/go-valuetype/pkg/catalog"
	"github.com/goliatone/go-valuetype/pkg/docs"
)

// EmbeddedCatalog exposes the bundled catalog of common formats (HexColor,
// CountryCode, Port, ...) for callers that want to inspect or extend it.
func EmbeddedCatalog() fs.FS {
	return catalog.EmbeddedFS()
}

// EmbeddedTemplates exposes the reference doc templates.
func EmbeddedTemplates() fs.FS {
	return docs.TemplatesFS()
}
