package interpreter

import (
	"strconv"

	"github.com/grailbio/cel/symbol"
)

// blockIndexName returns the identifier a cel.@block slot binds to in its
// body, e.g. blockIndexName(0) == "@index0".
func blockIndexName(i int) string {
	return "@index" + strconv.Itoa(i)
}

func symbolIntern(name string) symbol.ID {
	return symbol.Intern(name)
}
