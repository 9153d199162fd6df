package extract

// multimap is an insertion-ordered string multimap with the lookup rules of
// the connection tables: Value is the most recent entry, Values lists the
// most recent first.
type multimap struct {
	entries map[string][]string
}

func newMultimap() *multimap {
	return &multimap{entries: map[string][]string{}}
}

func (m *multimap) Insert(key, value string) {
	m.entries[key] = append(m.entries[key], value)
}

// Value returns the most recent value for key, or "".
func (m *multimap) Value(key string) string {
	vs := m.entries[key]
	if len(vs) == 0 {
		return ""
	}
	return vs[len(vs)-1]
}

// Values returns every value for key, most recent first.
func (m *multimap) Values(key string) []string {
	vs := m.entries[key]
	out := make([]string, len(vs))
	for i, v := range vs {
		out[len(vs)-1-i] = v
	}
	return out
}

func (m *multimap) Has(key string) bool {
	return len(m.entries[key]) > 0
}

func (m *multimap) Contains(key, value string) bool {
	for _, v := range m.entries[key] {
		if v == value {
			return true
		}
	}
	return false
}

// Take removes and returns the most recent value for key.
func (m *multimap) Take(key string) string {
	vs := m.entries[key]
	if len(vs) == 0 {
		return ""
	}
	v := vs[len(vs)-1]
	if len(vs) == 1 {
		delete(m.entries, key)
	} else {
		m.entries[key] = vs[:len(vs)-1]
	}
	return v
}

// Remove drops every (key, value) pair.
func (m *multimap) Remove(key, value string) {
	vs := m.entries[key]
	kept := vs[:0]
	for _, v := range vs {
		if v != value {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		delete(m.entries, key)
		return
	}
	m.entries[key] = kept
}
