package keys

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goVaultd/internal/core/tx"
	"github.com/LeJamon/goVaultd/internal/core/vault"
	"github.com/LeJamon/goVaultd/internal/scval"
)

const testSeed = "289c2857d4598e37fb9647507e47a309d6133539bf21a8b9cb6df88fd5232032"

func unsignedPayload(t *testing.T, source, network string) string {
	t.Helper()
	env := &tx.Envelope{Tx: tx.Transaction{
		Source:  source,
		Network: network,
		Nonce:   1,
		Fee:     100,
		Operation: tx.Operation{
			Contract: "CVAULT",
			Function: tx.FnWithdraw,
			Args:     []scval.Value{scval.U64(1)},
		},
	}}
	payload, err := env.Encode()
	require.NoError(t, err)
	return payload
}

func TestFromSeedDeterministic(t *testing.T) {
	for _, kt := range []KeyType{KeyTypeEd25519, KeyTypeSecp256k1} {
		t.Run(string(kt), func(t *testing.T) {
			a, err := FromSeedHex(kt, testSeed)
			require.NoError(t, err)
			b, err := FromSeedHex(kt, strings.ToUpper(testSeed))
			require.NoError(t, err)

			assert.Equal(t, a.Address(), b.Address())
			assert.Equal(t, testSeed, a.SeedHex())
			assert.NoError(t, ValidateAddress(a.Address()))
			assert.Len(t, a.Address(), 1+2*(accountIDSize+checksumSize))
		})
	}
}

func TestKeyTypesDeriveDifferentAddresses(t *testing.T) {
	ed, err := FromSeedHex(KeyTypeEd25519, testSeed)
	require.NoError(t, err)
	secp, err := FromSeedHex(KeyTypeSecp256k1, testSeed)
	require.NoError(t, err)
	assert.NotEqual(t, ed.Address(), secp.Address())
}

func TestFromSeedRejects(t *testing.T) {
	_, err := FromSeedHex(KeyTypeEd25519, "abcd")
	assert.ErrorIs(t, err, ErrInvalidSeed)

	_, err = FromSeedHex(KeyTypeEd25519, "zz")
	assert.ErrorIs(t, err, ErrInvalidSeed)

	_, err = FromSeed(KeyTypeSecp256k1, make([]byte, seedSize))
	assert.ErrorIs(t, err, ErrInvalidSeed)

	_, err = FromSeed("rsa", make([]byte, seedSize))
	assert.ErrorIs(t, err, ErrUnknownKeyType)
}

func TestParseKeyType(t *testing.T) {
	kt, err := ParseKeyType("SECP256K1")
	require.NoError(t, err)
	assert.Equal(t, KeyTypeSecp256k1, kt)

	_, err = ParseKeyType("dsa")
	assert.ErrorIs(t, err, ErrUnknownKeyType)
}

func TestSignAndVerifyEnvelope(t *testing.T) {
	for _, kt := range []KeyType{KeyTypeEd25519, KeyTypeSecp256k1} {
		t.Run(string(kt), func(t *testing.T) {
			kp, err := Generate(kt)
			require.NoError(t, err)

			signed, err := kp.Sign(context.Background(), unsignedPayload(t, kp.Address(), "net"), "net")
			require.NoError(t, err)

			env, err := tx.DecodeEnvelope(signed)
			require.NoError(t, err)
			require.Len(t, env.Signatures, 1)

			signers, err := VerifyEnvelope(env)
			require.NoError(t, err)
			assert.Equal(t, []string{kp.Address()}, signers)

			env.Tx.Fee++
			_, err = VerifyEnvelope(env)
			assert.Error(t, err)
		})
	}
}

func TestSignRefusesForeignEnvelopes(t *testing.T) {
	kp, err := FromSeedHex(KeyTypeEd25519, testSeed)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = kp.Sign(ctx, unsignedPayload(t, "VSOMEONEELSE", "net"), "net")
	assert.ErrorIs(t, err, vault.ErrSigningRejected)

	_, err = kp.Sign(ctx, unsignedPayload(t, kp.Address(), "net"), "other")
	assert.ErrorIs(t, err, vault.ErrSigningRejected)

	_, err = kp.Sign(ctx, "garbage", "net")
	assert.ErrorIs(t, err, vault.ErrSigningRejected)
}

func TestValidateAddress(t *testing.T) {
	kp, err := FromSeedHex(KeyTypeEd25519, testSeed)
	require.NoError(t, err)
	addr := kp.Address()

	assert.ErrorIs(t, ValidateAddress("X"+addr[1:]), ErrInvalidAddress)
	assert.ErrorIs(t, ValidateAddress(addr[:len(addr)-2]), ErrInvalidAddress)

	last := addr[len(addr)-1]
	flipped := byte('0')
	if last == '0' {
		flipped = '1'
	}
	assert.ErrorIs(t, ValidateAddress(addr[:len(addr)-1]+string(flipped)), ErrInvalidAddress)
}

func TestVerifyRejectsMalformedKeys(t *testing.T) {
	hash := make([]byte, 32)
	assert.False(t, Verify(KeyTypeEd25519, []byte{1, 2}, hash, nil))
	assert.False(t, Verify(KeyTypeSecp256k1, []byte{1, 2}, hash, nil))
	assert.False(t, Verify("dsa", nil, hash, nil))
}
