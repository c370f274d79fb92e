package domain

// Source identifies one publishing institution contributing a column of
// GDP figures. Label is the full name read from the document header;
// Key is the short identifier derived from it (initials of each word).
type Source struct {
	Label string `json:"label" validate:"required"`
	Key   string `json:"key" validate:"required"`
}

// RawTable is the uncoerced result of decomposing the multi-source table:
// text values keyed by source key, then by entity name. Sources carries
// the document order of the header labels; Entities carries entity names
// in first-discovered order across all sources. Both orderings are
// significant downstream and must not be re-sorted.
type RawTable struct {
	Sources  []Source                     `json:"sources"`
	Entities []string                     `json:"entities"`
	Values   map[string]map[string]string `json:"values"`
}

// NewRawTable creates an empty raw table for the given sources.
func NewRawTable(sources []Source) *RawTable {
	values := make(map[string]map[string]string, len(sources))
	for _, s := range sources {
		values[s.Key] = make(map[string]string)
	}
	return &RawTable{
		Sources: sources,
		Values:  values,
	}
}

// Set records a raw value for (key, entity), appending the entity to the
// discovery order the first time it is seen under any source. A repeated
// entity under one source overwrites the earlier value (last write wins).
func (t *RawTable) Set(key, entity, raw string) {
	m, ok := t.Values[key]
	if !ok {
		m = make(map[string]string)
		t.Values[key] = m
	}
	if !t.seen(entity) {
		t.Entities = append(t.Entities, entity)
	}
	m[entity] = raw
}

// Get returns the raw value for (key, entity) and whether it is present.
func (t *RawTable) Get(key, entity string) (string, bool) {
	m, ok := t.Values[key]
	if !ok {
		return "", false
	}
	v, ok := m[entity]
	return v, ok
}

func (t *RawTable) seen(entity string) bool {
	for _, e := range t.Entities {
		if e == entity {
			return true
		}
	}
	return false
}

// RateTable maps a bare currency code to its conversion factor relative
// to the base unit of the rate feed.
type RateTable map[string]float64

// ConvertedTable is the fully coerced table in the target currency:
// integer values keyed by source key, then by entity name. Only entities
// with a valid figure under every source survive. Entities preserves the
// relative order of the underlying RawTable.
type ConvertedTable struct {
	Currency string                      `json:"currency" validate:"required,len=3"`
	Sources  []Source                    `json:"sources"`
	Entities []string                    `json:"entities"`
	Values   map[string]map[string]int64 `json:"values"`
}
