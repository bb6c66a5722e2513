package database

// Table namespaces a Database under a fixed key prefix, mirroring how the
// chain store keeps headers, blocks and the height/id links in logically
// separate tables on top of a single key-value engine.
type Table struct {
	db     Database
	prefix []byte
}

// NewTable returns a Table view over db scoped to prefix.
func NewTable(db Database, prefix []byte) *Table {
	return &Table{db: db, prefix: prefix}
}

func (t *Table) key(k []byte) []byte {
	key := make([]byte, 0, len(t.prefix)+len(k))
	key = append(key, t.prefix...)
	key = append(key, k...)
	return key
}

// Put stores value under key, scoped to this table.
func (t *Table) Put(key, value []byte) error {
	return t.db.Put(t.key(key), value)
}

// Get returns the value stored under key, scoped to this table.
func (t *Table) Get(key []byte) ([]byte, error) {
	return t.db.Get(t.key(key))
}

// Has reports whether key is present, scoped to this table.
func (t *Table) Has(key []byte) (bool, error) {
	return t.db.Has(t.key(key))
}

// Delete removes key, scoped to this table.
func (t *Table) Delete(key []byte) error {
	return t.db.Delete(t.key(key))
}

// Prefix returns the values of every key in this table starting with the
// given sub-prefix.
func (t *Table) Prefix(sub []byte) ([][]byte, error) {
	return t.db.Prefix(t.key(sub))
}
