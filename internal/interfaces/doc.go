// Package interfaces documents the core abstractions used throughout the
// application and pins them with compile-time checks.
//
// # Adding a New Data Format
//
// To teach the importer a new source format:
//
//  1. Implement formats.Reader in a sub-package of internal/formats/
//
//     type Reader struct{}
//
//     func (r *Reader) Description() string
//     func (r *Reader) CanRead(paths []string) bool
//     func (r *Reader) ReadInformation(paths []string) (*formats.Record, error)
//     func (r *Reader) Read(paths []string) (*formats.Record, error)
//
//  2. Register it in services.DefaultRegistry. Registration order is the
//     tie-break when several readers accept the same input.
//
//  3. Add a compile-time check here:
//
//     var _ formats.Reader = (*Reader)(nil)
//
// # Adding a New Storage Format
//
// Writers work the same way: implement formats.Writer, declare the record
// kinds it handles, register it, and map the kind to an output extension in
// importer.OutputExtension.
//
// # Catalog Access
//
// The pipeline talks to the database through importer.Catalog, implemented
// by catalog.Repository. A test double only needs those six methods.
package interfaces
