// Package symbol interns identifiers, field names, and overload ids into
// small comparable integers. Message field names (types.Field,
// types.Object) are stored as interned IDs; AST nodes and activation frames
// keep plain strings.
package symbol

import (
	"sync"

	"github.com/grailbio/base/log"
	"github.com/grailbio/cel/hash"
)

// ID is an interned symbol.
type ID int32

// Invalid is the zero-value sentinel. No real symbol is ever assigned it.
const Invalid = ID(0)

type idInfo struct {
	name string
	hash hash.Hash
}

type table struct {
	mu   sync.Mutex
	ids  []idInfo
	byID map[string]ID
}

var symbols = newTable()

func newTable() *table {
	t := &table{byID: map[string]ID{}}
	t.ids = append(t.ids, idInfo{"(invalid)", hash.String("(invalid)")})
	return t
}

// Intern finds or creates the ID for the given string.
func Intern(name string) ID {
	if name == "" {
		log.Panicf("symbol: empty name")
	}
	symbols.mu.Lock()
	defer symbols.mu.Unlock()
	if id, ok := symbols.byID[name]; ok {
		return id
	}
	id := ID(len(symbols.ids))
	symbols.ids = append(symbols.ids, idInfo{name, hash.String(name)})
	symbols.byID[name] = id
	return id
}

// Str returns the interned string for id.
func (id ID) Str() string {
	symbols.mu.Lock()
	defer symbols.mu.Unlock()
	if int(id) >= len(symbols.ids) {
		log.Panicf("symbol: id %d not found", id)
	}
	return symbols.ids[id].name
}

// Hash returns the content hash of id's underlying string.
func (id ID) Hash() hash.Hash {
	symbols.mu.Lock()
	defer symbols.mu.Unlock()
	return symbols.ids[id].hash
}

// String implements fmt.Stringer.
func (id ID) String() string { return id.Str() }
