package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestEncryptDecrypt(t *testing.T) {
	key, err := DeriveKey(testKey)
	require.NoError(t, err)

	enc, err := Encrypt("BNcRdreALRFXTkOOUHK1EtK2wtaz5Ry4YfYCA", key)
	require.NoError(t, err)
	assert.NotContains(t, enc, "BNcRdreALRFX")

	dec, err := Decrypt(enc, key)
	require.NoError(t, err)
	assert.Equal(t, "BNcRdreALRFXTkOOUHK1EtK2wtaz5Ry4YfYCA", dec)

	again, err := Encrypt("BNcRdreALRFXTkOOUHK1EtK2wtaz5Ry4YfYCA", key)
	require.NoError(t, err)
	assert.NotEqual(t, enc, again, "nonce must differ per call")
}

func TestDecryptWrongKey(t *testing.T) {
	key, err := DeriveKey(testKey)
	require.NoError(t, err)
	other, err := DeriveKey(strings.Repeat("ab", 32))
	require.NoError(t, err)

	enc, err := Encrypt("secret", key)
	require.NoError(t, err)

	_, err = Decrypt(enc, other)
	assert.Error(t, err)
}

func TestDeriveKeyValidation(t *testing.T) {
	_, err := DeriveKey("zz")
	assert.Error(t, err)
	_, err = DeriveKey("abcd")
	assert.Error(t, err)
}
