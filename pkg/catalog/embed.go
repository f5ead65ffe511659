package catalog

import (
	"embed"
	"io/fs"
)

//go:embed types/*
var embeddedTypes embed.FS

// EmbeddedFS returns the bundled catalog of common string formats. Pass it to
// LoadFS and register the result to make the types available.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedTypes, "types")
	if err != nil {
		panic(err)
	}
	return sub
}

// LoadEmbedded parses EmbeddedFS.
func LoadEmbedded() (*Store, error) {
	return LoadFS(EmbeddedFS())
}
