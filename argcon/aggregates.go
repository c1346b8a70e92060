package argcon

import (
	"unsafe"

	"fortio.org/safecast"
	"go.uber.org/zap"
	"tinygo.org/x/go-llvm"

	"github.com/wahorvat/cuda-quantum/state"
	"github.com/wahorvat/cuda-quantum/types"
)

// dispatchSubtype is the recursive walker over the type algebra. It
// returns the materialized IR value, or ok=false when the (type, pointer)
// pair has no materialization and the field or parameter is skipped.
func (c *Converter) dispatchSubtype(t types.Type, p unsafe.Pointer) (llvm.Value, bool) {
	switch t := t.(type) {
	case types.Int:
		return c.genIntConstant(t, p)
	case types.Float:
		return c.genFloatConstant(t, p), true
	case types.Complex:
		return c.genComplexConstant(t, p)
	case types.Charspan:
		return c.genCharspanConstant(readCharspan(p)), true
	case types.Ptr:
		if t.Elem.Kind() == types.StateKind {
			return c.genStateConstant((*state.State)(p)), true
		}
		return llvm.Value{}, false
	case types.Stdvec:
		return c.genStdvecConstant(t, p)
	case types.Struct:
		return c.genStructConstant(t, p)
	case types.Array:
		return c.genArrayConstant(t, p)
	case types.Tuple:
		return c.genTupleConstant(t, p)
	default:
		return llvm.Value{}, false
	}
}

// genStructConstant walks the record field by field at the offsets the
// data layout dictates. Fields whose recursion is skipped stay undefined
// in the aggregate.
func (c *Converter) genStructConstant(t types.Struct, p unsafe.Pointer) (llvm.Value, bool) {
	if len(t.Members) == 0 {
		return llvm.Value{}, false
	}
	hostTy := c.hostType(t)
	aggie := llvm.Undef(c.llvmType(t))
	for i, member := range t.Members {
		off := c.layout.Offset(hostTy, i)
		if v, ok := c.dispatchSubtype(member, unsafe.Add(p, off)); ok {
			aggie = c.builder.CreateInsertValue(aggie, v, i, "field")
		}
	}
	return aggie, true
}

// genTupleConstant reads the tuple out through a synthetic record whose
// fields are the tuple's types reversed, because host memory lays tuples
// out in reverse declaration order, then rebuilds the forward-ordered
// aggregate.
func (c *Converter) genTupleConstant(t types.Tuple, p unsafe.Pointer) (llvm.Value, bool) {
	n := len(t.Members)
	if n == 0 {
		return llvm.Value{}, false
	}
	members := make([]types.Type, 0, n)
	for i := n - 1; i >= 0; i-- {
		members = append(members, t.Members[i])
	}
	revCon, ok := c.genStructConstant(types.Struct{Members: members}, p)
	if !ok {
		return llvm.Value{}, false
	}
	aggie := llvm.Undef(c.llvmType(t))
	for i := 0; i < n; i++ {
		v := c.builder.CreateExtractValue(revCon, n-i-1, "tuple.rev")
		aggie = c.builder.CreateInsertValue(aggie, v, i, "tuple.fwd")
	}
	return aggie, true
}

// genArrayConstant walks a fixed-size array; element stride comes from the
// data layout. Arrays of unknown size are skipped.
func (c *Converter) genArrayConstant(t types.Array, p unsafe.Pointer) (llvm.Value, bool) {
	if t.Size == types.UnknownSize {
		return llvm.Value{}, false
	}
	eleSize := c.layout.Size(c.hostType(t.Elem))
	aggie := llvm.Undef(c.llvmType(t))
	arrSize, err := safecast.Conv[int](t.Size)
	if err != nil {
		panic("array size out of range: " + err.Error())
	}
	cursor := p
	for i := 0; i < arrSize; i++ {
		if v, ok := c.dispatchSubtype(t.Elem, cursor); ok {
			aggie = c.builder.CreateInsertValue(aggie, v, i, "elem")
		}
		cursor = unsafe.Add(cursor, eleSize)
	}
	return aggie, true
}

// readVecHeader reads the vendor three-pointer sequence header
// {begin, end, capacity}; capacity is not consulted.
func readVecHeader(p unsafe.Pointer) (begin, end uintptr) {
	ptrSize := unsafe.Sizeof(uintptr(0))
	begin = *(*uintptr)(p)
	end = *(*uintptr)(unsafe.Add(p, ptrSize))
	return begin, end
}

// genStdvecConstant materializes a variable-length sequence. Unlike the
// other aggregates it goes through memory: a temporary array allocation is
// filled element by element, then wrapped with the length in a span init.
func (c *Converter) genStdvecConstant(t types.Stdvec, p unsafe.Pointer) (llvm.Value, bool) {
	begin, end := readVecHeader(p)
	delta := uint64(end - begin)
	if delta == 0 {
		return llvm.Value{}, false
	}
	eleTy := t.Elem
	eleSize := c.layout.Size(c.hostType(eleTy))
	if eleSize == 0 {
		panic("element must have a size")
	}
	if delta%eleSize != 0 {
		c.log.Warn("vector byte length is not a multiple of the element size; trailing bytes dropped",
			zap.String("element", eleTy.String()),
			zap.Uint64("bytes", delta),
			zap.Uint64("elementSize", eleSize))
	}
	vecSize, err := safecast.Conv[int](delta / eleSize)
	if err != nil {
		panic("vector length out of range: " + err.Error())
	}

	eleLLVM := c.llvmType(eleTy)
	eleArrTy := llvm.ArrayType(eleLLVM, vecSize)
	buffer := c.builder.CreateAlloca(eleArrTy, "vec.buffer")
	zero := llvm.ConstInt(c.Context.Int64Type(), 0, false)
	cursor := unsafe.Pointer(begin)
	for i := 0; i < vecSize; i++ {
		if v, ok := c.dispatchSubtype(eleTy, cursor); ok {
			idx := llvm.ConstInt(c.Context.Int64Type(), uint64(i), false)
			at := c.builder.CreateGEP(eleArrTy, buffer, []llvm.Value{zero, idx}, "vec.at")
			c.builder.CreateStore(v, at)
		}
		cursor = unsafe.Add(cursor, eleSize)
	}
	size := llvm.ConstInt(c.Context.Int64Type(), uint64(vecSize), false)
	dataPtr := c.builder.CreateBitCast(buffer, llvm.PointerType(eleLLVM, 0), "vec.data")
	return c.spanInit(c.llvmType(t), dataPtr, size), true
}
