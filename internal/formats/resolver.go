package formats

import "log"

// Resolver selects readers and writers from a registry, remembering the last
// successful choice. Real workloads ingest long runs of homogeneous files,
// so trying the previous hit first amortizes the linear registry scan.
//
// A Resolver is scoped to one import run; the cache must not leak across
// runs.
type Resolver struct {
	registry   *Registry
	lastReader string
	lastWriter string
}

func NewResolver(registry *Registry) *Resolver {
	return &Resolver{registry: registry}
}

// Reader returns the first registered reader able to read paths, preferring
// the last successful one. Returns nil when no reader is capable.
func (r *Resolver) Reader(paths []string) Reader {
	for _, reader := range r.registry.Readers() {
		if reader.Description() == r.lastReader && reader.CanRead(paths) {
			return reader
		}
	}

	for _, reader := range r.registry.Readers() {
		if reader.CanRead(paths) {
			r.lastReader = reader.Description()
			return reader
		}
	}

	log.Printf("formats: no suitable reader found for %q", first(paths))
	return nil
}

// Writer returns the first registered writer that handles the record's kind
// and can write to path, preferring the last successful one. Returns nil
// when no writer is capable.
func (r *Resolver) Writer(path string, rec *Record) Writer {
	if rec == nil {
		return nil
	}

	for _, writer := range r.registry.Writers() {
		if writer.Description() == r.lastWriter && handles(writer, rec.Kind) && writer.CanWrite(path) {
			return writer
		}
	}

	for _, writer := range r.registry.Writers() {
		if handles(writer, rec.Kind) && writer.CanWrite(path) {
			r.lastWriter = writer.Description()
			return writer
		}
	}

	return nil
}

func handles(w Writer, kind Kind) bool {
	for _, k := range w.Handled() {
		if k == kind {
			return true
		}
	}
	return false
}

func first(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	return paths[0]
}
