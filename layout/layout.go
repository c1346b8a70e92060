// Package layout answers size and offset queries against a target data
// layout. All offset and element-size computation in the argument
// materialization path goes through this package; nothing else is allowed
// to hard-code type sizes.
package layout

import (
	"tinygo.org/x/go-llvm"
)

// DataLayout wraps an llvm.TargetData built from the opaque data-layout
// string carried on the source module. An empty string yields the
// layout-agnostic defaults.
type DataLayout struct {
	td llvm.TargetData
}

func New(spec string) *DataLayout {
	return &DataLayout{td: llvm.NewTargetData(spec)}
}

// Size returns the allocation size of t in bytes, including tail padding.
func (l *DataLayout) Size(t llvm.Type) uint64 {
	return l.td.TypeAllocSize(t)
}

// Offset returns the byte offset of field i within the struct type st.
func (l *DataLayout) Offset(st llvm.Type, i int) uint64 {
	return l.td.ElementOffset(st, i)
}

// PointerSize returns the target pointer size in bytes.
func (l *DataLayout) PointerSize() int {
	return l.td.PointerSize()
}

func (l *DataLayout) Dispose() {
	l.td.Dispose()
}
