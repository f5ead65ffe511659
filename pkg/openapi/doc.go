// Package openapi maps registered value types and compiled field sets to
// OpenAPI 3 schemas and back. Generation produces kin-openapi documents that
// are validated before they are returned; import reads request bodies and
// query parameters of existing documents into field declarations.
package openapi
