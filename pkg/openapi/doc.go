// Package openapi imports form documents from OpenAPI 3 descriptions. The
// request body schema of each operation becomes a formdoc.Document whose
// fields mirror the schema properties, so any operation can be filled in
// through a form session. kin-openapi stays behind this package; callers
// only see formdoc types.
package openapi
