// Package reader loads the type information exported by a compiled ojava
// library from its shared object.
package reader

import (
	"github.com/coreos/pkg/dlopen"
)

// #include <stdlib.h>
import "C"

// Symbol is the name of the global holding the JSON type information.
const Symbol = "__ojava_types"

func ReadTypeInfo(from string) (string, error) {
	handle, err := dlopen.GetHandle([]string{from})
	if err != nil {
		return "", err
	}
	defer handle.Close()

	sym, err := handle.GetSymbolPointer(Symbol)
	if err != nil {
		return "", err
	}

	return C.GoString((*C.char)(sym)), nil
}
