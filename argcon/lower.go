package argcon

import (
	"tinygo.org/x/go-llvm"

	"github.com/wahorvat/cuda-quantum/types"
)

// llvmType lowers a type to its IR value form. Variable-length sequences
// and charspans lower to a {ptr, i64} span aggregate; tuples lower in
// forward declaration order.
func (c *Converter) llvmType(t types.Type) llvm.Type {
	switch t := t.(type) {
	case types.Int:
		return c.Context.IntType(int(t.Width))
	case types.Float:
		switch t.Width {
		case 32:
			return c.Context.FloatType()
		case 64:
			return c.Context.DoubleType()
		default:
			return c.Context.X86FP80Type()
		}
	case types.Complex:
		f := c.llvmType(t.Elem)
		return c.Context.StructType([]llvm.Type{f, f}, false)
	case types.Charspan:
		i8Ptr := llvm.PointerType(c.Context.Int8Type(), 0)
		return c.Context.StructType([]llvm.Type{i8Ptr, c.Context.Int64Type()}, false)
	case types.Ptr:
		return llvm.PointerType(c.llvmType(t.Elem), 0)
	case types.State:
		return c.stateType()
	case types.Stdvec:
		elePtr := llvm.PointerType(c.llvmType(t.Elem), 0)
		return c.Context.StructType([]llvm.Type{elePtr, c.Context.Int64Type()}, false)
	case types.Array:
		size := 0
		if t.Size > 0 {
			size = int(t.Size)
		}
		return llvm.ArrayType(c.llvmType(t.Elem), size)
	case types.Struct:
		return c.Context.StructType(c.llvmTypes(t.Members), false)
	case types.Tuple:
		return c.Context.StructType(c.llvmTypes(t.Members), false)
	default:
		panic("unknown type in llvmType: " + t.String())
	}
}

func (c *Converter) llvmTypes(ts []types.Type) []llvm.Type {
	out := make([]llvm.Type, 0, len(ts))
	for _, t := range ts {
		out = append(out, c.llvmType(t))
	}
	return out
}

// hostType lowers a type to its host storage form, used exclusively for
// data-layout size and offset queries. A Stdvec occupies three machine
// pointers in host memory; a Tuple is stored in reverse declaration order.
func (c *Converter) hostType(t types.Type) llvm.Type {
	i8Ptr := llvm.PointerType(c.Context.Int8Type(), 0)
	switch t := t.(type) {
	case types.Stdvec:
		return c.Context.StructType([]llvm.Type{i8Ptr, i8Ptr, i8Ptr}, false)
	case types.Charspan:
		return c.Context.StructType([]llvm.Type{i8Ptr, c.Context.Int64Type()}, false)
	case types.Ptr:
		return i8Ptr
	case types.Array:
		size := 0
		if t.Size > 0 {
			size = int(t.Size)
		}
		return llvm.ArrayType(c.hostType(t.Elem), size)
	case types.Struct:
		return c.Context.StructType(c.hostTypes(t.Members), false)
	case types.Tuple:
		members := make([]llvm.Type, 0, len(t.Members))
		for i := len(t.Members) - 1; i >= 0; i-- {
			members = append(members, c.hostType(t.Members[i]))
		}
		return c.Context.StructType(members, false)
	default:
		return c.llvmType(t)
	}
}

func (c *Converter) hostTypes(ts []types.Type) []llvm.Type {
	out := make([]llvm.Type, 0, len(ts))
	for _, t := range ts {
		out = append(out, c.hostType(t))
	}
	return out
}

// stateType returns the opaque named struct standing in for the quantum
// state handle, creating it on first use.
func (c *Converter) stateType() llvm.Type {
	if c.stateTy.IsNil() {
		c.stateTy = c.Context.StructCreateNamed("cudaq.State")
	}
	return c.stateTy
}
