package graph

// VertexIndex maps external vertex names (paper ids) to dense ids in
// first-seen order.
type VertexIndex struct {
	hash map[string]int
	keys []string
}

// NewVertexIndex creates an empty index.
func NewVertexIndex() *VertexIndex {
	return &VertexIndex{
		hash: make(map[string]int),
		keys: make([]string, 0),
	}
}

// GetOrCreate returns the id of name, assigning the next free id if the name
// has not been seen.
func (vi *VertexIndex) GetOrCreate(name string) int {
	if vid, exists := vi.hash[name]; exists {
		return vid
	}

	vid := len(vi.keys)
	vi.hash[name] = vid
	vi.keys = append(vi.keys, name)
	return vid
}

// Lookup returns the id of name if it is known.
func (vi *VertexIndex) Lookup(name string) (int, bool) {
	vid, ok := vi.hash[name]
	return vid, ok
}

// Name returns the name of a vertex by id, or "" when out of range.
func (vi *VertexIndex) Name(vid int) string {
	if vid < 0 || vid >= len(vi.keys) {
		return ""
	}
	return vi.keys[vid]
}

// Len returns the number of known vertices.
func (vi *VertexIndex) Len() int {
	return len(vi.keys)
}
