package services

import (
	"github.com/mrlokans/medcatalog/internal/formats"
	"github.com/mrlokans/medcatalog/internal/formats/dicomfile"
	"github.com/mrlokans/medcatalog/internal/formats/metaimage"
)

// DefaultRegistry wires up the built-in format handlers. Registration order
// matters: it is the resolver's tie-break.
func DefaultRegistry() *formats.Registry {
	registry := formats.NewRegistry()
	registry.RegisterReader(dicomfile.New())
	registry.RegisterWriter(metaimage.New())
	return registry
}
