package layout

import (
	"testing"

	"github.com/stretchr/testify/require"
	"tinygo.org/x/go-llvm"
)

func TestScalarSizes(t *testing.T) {
	l := New("")
	defer l.Dispose()
	ctx := llvm.GlobalContext()

	require.Equal(t, uint64(1), l.Size(ctx.Int8Type()))
	require.Equal(t, uint64(2), l.Size(ctx.Int16Type()))
	require.Equal(t, uint64(4), l.Size(ctx.Int32Type()))
	require.Equal(t, uint64(8), l.Size(ctx.Int64Type()))
	require.Equal(t, uint64(4), l.Size(ctx.FloatType()))
	require.Equal(t, uint64(8), l.Size(ctx.DoubleType()))
}

func TestStructOffsets(t *testing.T) {
	l := New("")
	defer l.Dispose()
	ctx := llvm.GlobalContext()

	// Padding after the i8 pushes the i32 to its alignment boundary.
	st := llvm.StructType([]llvm.Type{ctx.Int8Type(), ctx.Int32Type()}, false)
	require.Equal(t, uint64(0), l.Offset(st, 0))
	require.Equal(t, uint64(4), l.Offset(st, 1))
	require.Equal(t, uint64(8), l.Size(st))
}

func TestArraySize(t *testing.T) {
	l := New("")
	defer l.Dispose()
	ctx := llvm.GlobalContext()

	arr := llvm.ArrayType(ctx.FloatType(), 4)
	require.Equal(t, uint64(16), l.Size(arr))
}

func TestPointerSize(t *testing.T) {
	l := New("")
	defer l.Dispose()

	require.Equal(t, 8, l.PointerSize())
}
