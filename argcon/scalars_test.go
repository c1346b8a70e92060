package argcon

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/wahorvat/cuda-quantum/types"
)

// extended80 is an x87 80-bit extended slot: 64-bit significand with an
// explicit integer bit, then sign and biased exponent.
type extended80 struct {
	mant uint64
	se   uint16
}

func TestExtendedDecimalString(t *testing.T) {
	v := extended80{mant: 0xC000000000000000, se: 0x3FFF} // 1.5
	require.Equal(t, "1.5", extendedDecimalString(unsafe.Pointer(&v)))

	v.se = 0xBFFF // sign bit set
	require.Equal(t, "-1.5", extendedDecimalString(unsafe.Pointer(&v)))

	v = extended80{}
	require.Equal(t, "0", extendedDecimalString(unsafe.Pointer(&v)))
}

func TestExtendedFloatConstant(t *testing.T) {
	sig := []types.Type{types.Float{Width: 80}}
	c := newTestConverter(t, "ext", sig, simLocal())

	v := extended80{mant: 0xC000000000000000, se: 0x3FFF}
	require.NoError(t, c.Gen([]unsafe.Pointer{unsafe.Pointer(&v)}))

	require.Contains(t, c.GenerateIR(), "x86_fp80")
}

func TestFloat32Constant(t *testing.T) {
	sig := []types.Type{types.F32}
	c := newTestConverter(t, "f32", sig, simLocal())

	v := float32(0.25)
	require.NoError(t, c.Gen([]unsafe.Pointer{unsafe.Pointer(&v)}))
	require.Contains(t, c.GenerateIR(), "ret float 2.500000e-01")
}
