package argcon

import (
	"unsafe"

	"tinygo.org/x/go-llvm"

	"github.com/wahorvat/cuda-quantum/state"
	"github.com/wahorvat/cuda-quantum/types"
)

// genStateConstant materializes a quantum state argument. The strategy is
// keyed on the platform profile:
//
//   - local simulator: the compiled code shares memory with the runtime,
//     so the host pointer itself is emitted as an integer of the host
//     pointer width and cast to a state pointer;
//   - remote simulator: the amplitudes are read out and materialized as a
//     fixed array of complex constants (a later pass const-props the
//     qubit-count queries over it);
//   - hardware: state data cannot be reconstructed from amplitudes.
func (c *Converter) genStateConstant(st *state.State) llvm.Value {
	if c.platform.IsSimulator && !c.platform.IsRemote {
		ptrBits := int(8 * unsafe.Sizeof(uintptr(0)))
		raw := llvm.ConstInt(c.Context.IntType(ptrBits), uint64(uintptr(unsafe.Pointer(st))), false)
		return c.builder.CreateIntToPtr(raw, llvm.PointerType(c.stateType(), 0), "state.addr")
	}
	if c.platform.IsSimulator && c.platform.IsRemote {
		stateData := state.ReadStateData(st)
		defer stateData.Release()
		eleTy := types.Complex{Elem: types.Float{Width: 32}}
		if stateData.ElementSize == state.Complex128Size {
			eleTy = types.Complex{Elem: types.Float{Width: 64}}
		}
		arrTy := types.Array{Elem: eleTy, Size: stateData.Size}
		v, ok := c.genArrayConstant(arrTy, stateData.Data)
		if !ok {
			panic("state amplitude array did not materialize")
		}
		return v
	}
	panic("not yet implemented: state argument synthesis for quantum hardware")
}

// substValueType gives the IR type of the terminal value a parameter's
// record will hold. For a state argument on a remote simulator the record
// carries the amplitude array, whose shape depends on the live state.
func (c *Converter) substValueType(t types.Type, p unsafe.Pointer) llvm.Type {
	if pt, ok := t.(types.Ptr); ok && pt.Elem.Kind() == types.StateKind &&
		c.platform.IsSimulator && c.platform.IsRemote {
		st := (*state.State)(p)
		tensor := st.Simulation().Tensor()
		eleTy := types.Complex{Elem: types.Float{Width: 32}}
		if tensor.ElementSize == state.Complex128Size {
			eleTy = types.Complex{Elem: types.Float{Width: 64}}
		}
		return c.llvmType(types.Array{Elem: eleTy, Size: tensor.NumElements})
	}
	return c.llvmType(t)
}
