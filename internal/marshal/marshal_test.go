package marshal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_Order(t *testing.T) {
	arrayA := []float64{1, 2, 3}
	arrayB := make([]float64, 3)

	args, err := Marshal(Params{
		{Kind: "array", Value: [][]float64{arrayA, arrayB}},
		{Kind: "int", Value: []int{5, 3}},
	})
	require.NoError(t, err)
	require.Len(t, args, 4)

	a0, ok := args[0].(ArrayArg)
	require.True(t, ok)
	a1, ok := args[1].(ArrayArg)
	require.True(t, ok)
	assert.Same(t, &arrayA[0], a0.Ptr())
	assert.Same(t, &arrayB[0], a1.Ptr())
	assert.Equal(t, IntArg(5), args[2])
	assert.Equal(t, IntArg(3), args[3])
}

func TestMarshal_ArrayIsBorrowed(t *testing.T) {
	out := make([]float64, 2)
	args, err := Marshal(Params{{Kind: "array", Value: out}})
	require.NoError(t, err)
	require.Len(t, args, 1)

	args[0].(ArrayArg).Data[1] = 42
	assert.Equal(t, 42.0, out[1])
}

func TestMarshal_Scalars(t *testing.T) {
	args, err := Marshal(Params{
		{Kind: "double", Value: 0.5},
		{Kind: "int", Value: int64(7)},
		{Kind: "double", Value: []float64{1.5, 2.5}},
		{Kind: "int", Value: []any{1, int32(2)}},
	})
	require.NoError(t, err)
	assert.Equal(t, []Arg{FloatArg(0.5), IntArg(7), FloatArg(1.5), FloatArg(2.5), IntArg(1), IntArg(2)}, args)
}

func TestMarshal_Errors(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantErr error
	}{
		{name: "Unknown kind", params: Params{{Kind: "to_str", Value: "x"}}, wantErr: ErrUnsupportedKind},
		{name: "Unknown kind after valid", params: Params{{Kind: "int", Value: 1}, {Kind: "ptr", Value: 1}}, wantErr: ErrUnsupportedKind},
		{name: "Int for double", params: Params{{Kind: "double", Value: 1}}, wantErr: ErrTypeMismatch},
		{name: "Float for int", params: Params{{Kind: "int", Value: 1.5}}, wantErr: ErrTypeMismatch},
		{name: "Scalar for array", params: Params{{Kind: "array", Value: 1.0}}, wantErr: ErrTypeMismatch},
		{name: "Mixed list", params: Params{{Kind: "int", Value: []any{1, "2"}}}, wantErr: ErrTypeMismatch},
		{name: "Int32 overflow", params: Params{{Kind: "int", Value: int64(1) << 40}}, wantErr: ErrTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := Marshal(tt.params)
			assert.Nil(t, args)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestMarshal_UnsupportedKindNamesValidSet(t *testing.T) {
	_, err := Marshal(Params{{Kind: "to_d_ptr", Value: []float64{1}}})
	var kindErr *UnsupportedKindError
	require.True(t, errors.As(err, &kindErr))
	assert.Equal(t, "to_d_ptr", kindErr.Kind)
	assert.Equal(t, []Kind{KindArray, KindInt, KindDouble}, kindErr.Valid)
	assert.Contains(t, err.Error(), "to_d_ptr")
	assert.Contains(t, err.Error(), "array")
}

func TestMarshal_TypeMismatchNamesKind(t *testing.T) {
	_, err := Marshal(Params{{Kind: "double", Value: "fast"}})
	var typeErr *TypeMismatchError
	require.True(t, errors.As(err, &typeErr))
	assert.Equal(t, KindDouble, typeErr.Kind)
	assert.Equal(t, "fast", typeErr.Value)
	assert.Contains(t, err.Error(), "float64")
}

func TestParams_Merge(t *testing.T) {
	in := []float64{1, 2}
	out := []float64{0, 0}
	high := []float64{3, 4}
	low := []float64{0.5, 1}
	base := Params{
		{Kind: "array", Value: [][]float64{in, out}},
		{Kind: "int", Value: []int{2, 1}},
	}

	t.Run("Fan out duplicate kinds", func(t *testing.T) {
		merged := base.Merge(Params{{Kind: "array", Value: [][]float64{high, low}}})
		args, err := Marshal(merged)
		require.NoError(t, err)
		require.Len(t, args, 6)
		assert.Same(t, &in[0], args[0].(ArrayArg).Ptr())
		assert.Same(t, &out[0], args[1].(ArrayArg).Ptr())
		assert.Same(t, &high[0], args[2].(ArrayArg).Ptr())
		assert.Same(t, &low[0], args[3].(ArrayArg).Ptr())
		assert.Equal(t, IntArg(2), args[4])
		assert.Equal(t, IntArg(1), args[5])
	})

	t.Run("Append new kind", func(t *testing.T) {
		merged := base.Merge(Params{{Kind: "double", Value: 0.3}})
		args, err := Marshal(merged)
		require.NoError(t, err)
		assert.Equal(t, Signature{KindArray, KindArray, KindInt, KindInt, KindDouble}, kindsOf(args))
	})

	t.Run("Scalar extra appended to int list", func(t *testing.T) {
		merged := base.Merge(Params{{Kind: "int", Value: []int{10, 30}}})
		args, err := Marshal(merged)
		require.NoError(t, err)
		assert.Equal(t, []Arg{IntArg(2), IntArg(1), IntArg(10), IntArg(30)}, args[2:])
	})

	t.Run("Inputs untouched", func(t *testing.T) {
		_ = base.Merge(Params{{Kind: "int", Value: 9}})
		assert.Equal(t, []int{2, 1}, base[1].Value)
		assert.Len(t, base, 2)
	})
}

func TestSignature_Check(t *testing.T) {
	sig := Signature{KindArray, KindArray, KindInt, KindInt}
	data := []float64{1}

	assert.NoError(t, sig.Check([]Arg{ArrayArg{data}, ArrayArg{data}, IntArg(1), IntArg(1)}))

	err := sig.Check([]Arg{ArrayArg{data}, ArrayArg{data}, IntArg(1)})
	assert.True(t, errors.Is(err, ErrSignatureMismatch))

	err = sig.Check([]Arg{ArrayArg{data}, ArrayArg{data}, IntArg(1), FloatArg(1)})
	var sigErr *SignatureError
	require.True(t, errors.As(err, &sigErr))
	assert.Equal(t, 3, sigErr.Position)
	assert.Equal(t, "(array, array, int, int)", sig.String())
}
