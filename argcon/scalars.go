package argcon

import (
	"fmt"
	"math/big"
	"unsafe"

	"tinygo.org/x/go-llvm"

	"github.com/wahorvat/cuda-quantum/types"
)

// Leaf constant emitters. Every leaf in the type algebra has exactly one
// emitter; each takes a typed host value and produces the matching IR
// constant.

func (c *Converter) genIntConstant(t types.Int, p unsafe.Pointer) (llvm.Value, bool) {
	switch t.Width {
	case 1:
		bit := uint64(0)
		if *(*byte)(p) != 0 {
			bit = 1
		}
		return llvm.ConstInt(c.Context.Int1Type(), bit, false), true
	case 8:
		v := *(*int8)(p)
		return llvm.ConstInt(c.Context.Int8Type(), uint64(int64(v)), true), true
	case 16:
		v := *(*int16)(p)
		return llvm.ConstInt(c.Context.Int16Type(), uint64(int64(v)), true), true
	case 32:
		v := *(*int32)(p)
		return llvm.ConstInt(c.Context.Int32Type(), uint64(int64(v)), true), true
	case 64:
		v := *(*int64)(p)
		return llvm.ConstInt(c.Context.Int64Type(), uint64(v), true), true
	default:
		return llvm.Value{}, false
	}
}

func (c *Converter) genFloatConstant(t types.Float, p unsafe.Pointer) llvm.Value {
	switch t.Width {
	case 32:
		return llvm.ConstFloat(c.Context.FloatType(), float64(*(*float32)(p)))
	case 64:
		return llvm.ConstFloat(c.Context.DoubleType(), *(*float64)(p))
	default:
		// Extended precision goes through the decimal rendering of the
		// host value against the declared float semantics.
		return llvm.ConstFloatFromString(c.Context.X86FP80Type(), extendedDecimalString(p))
	}
}

// extendedDecimalString decodes the x87 80-bit extended slot at p into its
// decimal rendering. The significand carries an explicit integer bit.
func extendedDecimalString(p unsafe.Pointer) string {
	mant := *(*uint64)(p)
	se := *(*uint16)(unsafe.Add(p, 8))
	negative := se&0x8000 != 0
	exp := int(se & 0x7fff)

	f := new(big.Float).SetPrec(64).SetUint64(mant)
	if exp == 0 {
		f.SetMantExp(f, -16382-63)
	} else {
		f.SetMantExp(f, exp-16383-63)
	}
	if negative {
		f.Neg(f)
	}
	return f.Text('g', 21)
}

func (c *Converter) genComplexConstant(t types.Complex, p unsafe.Pointer) (llvm.Value, bool) {
	switch t.Elem.Width {
	case 32:
		fTy := c.Context.FloatType()
		re := float64(*(*float32)(p))
		im := float64(*(*float32)(unsafe.Add(p, unsafe.Sizeof(float32(0)))))
		return c.Context.ConstStruct([]llvm.Value{
			llvm.ConstFloat(fTy, re),
			llvm.ConstFloat(fTy, im),
		}, false), true
	case 64:
		fTy := c.Context.DoubleType()
		re := *(*float64)(p)
		im := *(*float64)(unsafe.Add(p, unsafe.Sizeof(float64(0))))
		return c.Context.ConstStruct([]llvm.Value{
			llvm.ConstFloat(fTy, re),
			llvm.ConstFloat(fTy, im),
		}, false), true
	default:
		return llvm.Value{}, false
	}
}

// readCharspan reads the {data pointer, byte length} header a charspan
// leaf occupies in host memory.
func readCharspan(p unsafe.Pointer) string {
	return *(*string)(p)
}

// genCharspanConstant interns v as a NUL-terminated global byte literal in
// the substitution module and pairs its address with the pre-NUL length in
// a span aggregate, so callees interoperate with C string APIs without
// losing the original length.
func (c *Converter) genCharspanConstant(v string) llvm.Value {
	strConst := c.Context.ConstString(v, true)
	arrType := llvm.ArrayType(c.Context.Int8Type(), len(v)+1)
	name := fmt.Sprintf("cstr.%d", c.literalCounter)
	c.literalCounter++
	global := llvm.AddGlobal(c.SubstModule, arrType, name)
	global.SetInitializer(strConst)
	global.SetLinkage(llvm.PrivateLinkage)
	global.SetUnnamedAddr(true)
	global.SetGlobalConstant(true)

	zero := llvm.ConstInt(c.Context.Int64Type(), 0, false)
	addr := c.builder.CreateGEP(arrType, global, []llvm.Value{zero, zero}, "cstr.addr")
	i8Ptr := llvm.PointerType(c.Context.Int8Type(), 0)
	cast := c.builder.CreateBitCast(addr, i8Ptr, "cstr.ptr")
	size := llvm.ConstInt(c.Context.Int64Type(), uint64(len(v)), false)
	return c.spanInit(c.llvmType(types.Charspan{}), cast, size)
}

// spanInit pairs a data pointer with a 64-bit length in a span aggregate.
func (c *Converter) spanInit(spanTy llvm.Type, ptr, size llvm.Value) llvm.Value {
	agg := llvm.Undef(spanTy)
	agg = c.builder.CreateInsertValue(agg, ptr, 0, "span.ptr")
	agg = c.builder.CreateInsertValue(agg, size, 1, "span.len")
	return agg
}
