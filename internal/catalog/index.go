package catalog

// Entry is one game record from the catalog. Many variant strings can
// map to the same Entry.
type Entry struct {
	// OriginalName is the canonical display name as given by the catalog.
	OriginalName string
	// CleanName is OriginalName with region and release tags stripped.
	// May equal OriginalName.
	CleanName string
	// Genre is the primary genre token, the first slash-separated
	// segment. "Unknown" when the catalog carries none.
	Genre string
	// FullGenre is the unmodified genre field from the source.
	FullGenre string
}

// Index is the lookup structure the matcher runs against. Built once,
// then read-only: the matching phase shares it freely across
// goroutines without locks.
type Index struct {
	entries map[string]*Entry
	// keys holds variant strings in first-insertion order. A later
	// record overwriting a colliding variant keeps the key's original
	// position, so scans stay deterministic.
	keys  []string
	names []string
}

func newIndex() *Index {
	return &Index{entries: make(map[string]*Entry)}
}

// insert maps a variant string to an entry. Collisions across records
// are resolved last-writer-wins, a defined tie-break: variation
// collisions between distinct games are rare but possible, and the
// later catalog record takes the key.
func (x *Index) insert(variant string, e *Entry) {
	if _, exists := x.entries[variant]; !exists {
		x.keys = append(x.keys, variant)
	}
	x.entries[variant] = e
}

func (x *Index) appendName(name string) {
	x.names = append(x.names, name)
}

// Lookup returns the entry a variant string maps to.
func (x *Index) Lookup(variant string) (*Entry, bool) {
	e, ok := x.entries[variant]
	return e, ok
}

// Keys returns all variant strings in insertion order. Callers must
// not modify the returned slice.
func (x *Index) Keys() []string {
	return x.keys
}

// Names returns the canonical catalog names in source order. Callers
// must not modify the returned slice.
func (x *Index) Names() []string {
	return x.names
}

// EntryForName returns the entry behind the first variant key, in
// insertion order, whose OriginalName equals name.
func (x *Index) EntryForName(name string) (*Entry, bool) {
	for _, k := range x.keys {
		if e := x.entries[k]; e.OriginalName == name {
			return e, true
		}
	}
	return nil, false
}

// Len returns the number of distinct variant keys.
func (x *Index) Len() int {
	return len(x.keys)
}

// GameCount returns the number of catalog records loaded.
func (x *Index) GameCount() int {
	return len(x.names)
}

// Empty reports whether the index holds no usable entries.
func (x *Index) Empty() bool {
	return len(x.keys) == 0
}
