package scval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	binarycodec "github.com/LeJamon/goVaultd/internal/codec/binary-codec"
	"github.com/LeJamon/goVaultd/internal/core/amount"
	"github.com/LeJamon/goVaultd/internal/core/vault"
)

func TestAccessors(t *testing.T) {
	b, err := Bool(true).AsBool()
	require.NoError(t, err)
	assert.True(t, b)

	u32, err := U32(365).AsU32()
	require.NoError(t, err)
	assert.Equal(t, uint32(365), u32)

	u64, err := U64(1 << 40).AsU64()
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<40), u64)

	a, err := I128(amount.NewAmount(1000_0000000)).AsI128()
	require.NoError(t, err)
	assert.Equal(t, amount.NewAmount(1000_0000000), a)

	addr, err := Address("VABC").AsAddress()
	require.NoError(t, err)
	assert.Equal(t, "VABC", addr)
}

func TestAccessorMismatch(t *testing.T) {
	_, err := U32(1).AsU64()
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = String("x").AsSymbol()
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = Value{Kind: KindU32, Uint: 1 << 33}.AsU32()
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = Vec(U64(1)).AsTuple(2)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestI128Range(t *testing.T) {
	_, err := Value{Kind: KindI128, Int: "not-a-number"}.AsI128()
	assert.ErrorIs(t, err, ErrTypeMismatch)

	// fits i128 but not the amount range
	_, err = Value{Kind: KindI128, Int: "170141183460469231731687303715884105727"}.AsI128()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTypeMismatch)

	_, err = Value{Kind: KindI128, Int: "170141183460469231731687303715884105728"}.AsI128()
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestOption(t *testing.T) {
	_, ok, err := None().AsOption()
	require.NoError(t, err)
	assert.False(t, ok)

	inner, ok, err := Some(U64(9)).AsOption()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, U64(9), inner)
	assert.Equal(t, "some(9)", Some(U64(9)).String())
}

func TestStructSortedKeys(t *testing.T) {
	v := Struct(map[string]Value{"b": U32(2), "a": U32(1), "c": U32(3)})
	require.Len(t, v.Map, 3)
	for i, want := range []string{"a", "b", "c"} {
		assert.Equal(t, want, v.Map[i].Key.Str)
	}
}

func TestVaultRecordRoundTrip(t *testing.T) {
	rec := vault.Vault{
		ID:         4,
		Owner:      "VOWNER",
		Amount:     amount.NewAmount(250_0000000),
		CreatedAt:  1_700_000_000,
		UnlockTime: 1_700_000_000 + 30*vault.SecondsPerDay,
		Active:     true,
	}

	raw, err := binarycodec.Encode(Some(FromVault(rec)))
	require.NoError(t, err)

	var decoded Value
	require.NoError(t, binarycodec.Decode(raw, &decoded))

	got, found, err := ToOptionalVault(4, decoded)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, rec, got)
}

func TestVaultRecordMissing(t *testing.T) {
	_, found, err := ToOptionalVault(1, None())
	require.NoError(t, err)
	assert.False(t, found)

	v := FromVault(vault.Vault{Owner: "V1"})
	v.Map = v.Map[1:]
	_, err = ToVault(1, v)
	assert.Error(t, err)

	_, _, err = ToOptionalVault(1, U64(1))
	assert.ErrorIs(t, err, ErrTypeMismatch)
}
