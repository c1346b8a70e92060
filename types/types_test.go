package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTypeStrings(t *testing.T) {
	require.Equal(t, "I32", I32.String())
	require.Equal(t, "F64", F64.String())
	require.Equal(t, "Complex_F32", Complex{Elem: Float{Width: 32}}.String())
	require.Equal(t, "Charspan", Charspan{}.String())
	require.Equal(t, "Ptr_State", Ptr{Elem: State{}}.String())
	require.Equal(t, "Stdvec_F32", Stdvec{Elem: F32}.String())
	require.Equal(t, "Array_I8_4", Array{Elem: I8, Size: 4}.String())
	require.Equal(t, "Array_I8_?", Array{Elem: I8, Size: UnknownSize}.String())
	require.Equal(t, "{I8, I32}", Struct{Members: []Type{I8, I32}}.String())
	require.Equal(t, "(I8, I32)", Tuple{Members: []Type{I8, I32}}.String())
}

func TestTypeEqual(t *testing.T) {
	require.True(t, TypeEqual(I32, Int{Width: 32}))
	require.False(t, TypeEqual(I32, I64))
	require.False(t, TypeEqual(I32, F32))

	require.True(t, TypeEqual(Complex{Elem: Float{Width: 64}}, Complex{Elem: Float{Width: 64}}))
	require.False(t, TypeEqual(Complex{Elem: Float{Width: 64}}, Complex{Elem: Float{Width: 32}}))

	require.True(t, TypeEqual(Ptr{Elem: State{}}, Ptr{Elem: State{}}))
	require.False(t, TypeEqual(Ptr{Elem: State{}}, Ptr{Elem: I8}))

	require.True(t, TypeEqual(Stdvec{Elem: F32}, Stdvec{Elem: F32}))
	require.False(t, TypeEqual(Stdvec{Elem: F32}, Stdvec{Elem: F64}))

	require.True(t, TypeEqual(Array{Elem: I8, Size: 4}, Array{Elem: I8, Size: 4}))
	require.False(t, TypeEqual(Array{Elem: I8, Size: 4}, Array{Elem: I8, Size: 5}))
	require.False(t, TypeEqual(Array{Elem: I8, Size: UnknownSize}, Array{Elem: I8, Size: 0}))
}

func TestStructuralAggregates(t *testing.T) {
	a := Struct{Members: []Type{I8, Stdvec{Elem: F64}}}
	b := Struct{Members: []Type{I8, Stdvec{Elem: F64}}}
	require.True(t, TypeEqual(a, b))
	require.False(t, TypeEqual(a, Struct{Members: []Type{I8}}))

	// A tuple is not a struct even with identical members.
	require.False(t, TypeEqual(Tuple{Members: a.Members}, a))
}

func TestEqualTypes(t *testing.T) {
	require.True(t, EqualTypes([]Type{I32, F64}, []Type{I32, F64}))
	require.False(t, EqualTypes([]Type{I32, F64}, []Type{F64, I32}))
	require.False(t, EqualTypes([]Type{I32}, []Type{I32, F64}))
}
