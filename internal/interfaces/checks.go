package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/medcatalog/internal/database/catalog"
	"github.com/mrlokans/medcatalog/internal/formats"
	"github.com/mrlokans/medcatalog/internal/formats/dicomfile"
	"github.com/mrlokans/medcatalog/internal/formats/metaimage"
	"github.com/mrlokans/medcatalog/internal/importer"
)

// Format registry implementations
var _ formats.Reader = (*dicomfile.Reader)(nil)
var _ formats.Writer = (*metaimage.Writer)(nil)

// Catalog implementations
var _ importer.Catalog = (*catalog.Repository)(nil)
