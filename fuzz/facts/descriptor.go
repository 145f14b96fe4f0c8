package facts

import (
	"fmt"
	"strconv"
	"strings"
)

// DataDescriptor names a piece of data: an object id, optionally followed by
// a path of composite indices selecting a sub-object.
type DataDescriptor struct {
	Object uint32   `msgpack:"object"`
	Index  []uint32 `msgpack:"index,omitempty"`
}

// MakeDataDescriptor returns the descriptor of object with the given index path.
func MakeDataDescriptor(object uint32, index ...uint32) DataDescriptor {
	return DataDescriptor{Object: object, Index: append([]uint32(nil), index...)}
}

// Parent returns the descriptor with the last index removed. ok is false for
// a descriptor without indices.
func (d DataDescriptor) Parent() (parent DataDescriptor, last uint32, ok bool) {
	if len(d.Index) == 0 {
		return DataDescriptor{}, 0, false
	}
	n := len(d.Index) - 1
	return MakeDataDescriptor(d.Object, d.Index[:n]...), d.Index[n], true
}

// Child returns the descriptor extended with index i.
func (d DataDescriptor) Child(i uint32) DataDescriptor {
	return MakeDataDescriptor(d.Object, append(append([]uint32(nil), d.Index...), i)...)
}

// String returns the descriptor as "%id[i][j]".
func (d DataDescriptor) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%%%d", d.Object)
	for _, i := range d.Index {
		sb.WriteString("[")
		sb.WriteString(strconv.FormatUint(uint64(i), 10))
		sb.WriteString("]")
	}
	return sb.String()
}

// Equal reports whether two descriptors name the same data syntactically.
func (d DataDescriptor) Equal(other DataDescriptor) bool {
	return d.String() == other.String()
}
