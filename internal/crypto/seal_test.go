package crypto

import (
	"crypto/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSealer(t *testing.T) *Sealer {
	t.Helper()

	key := make([]byte, KeySize)
	_, _ = rand.Read(key)

	sealer, err := NewSealer(key)
	require.NoError(t, err)
	return sealer
}

func TestNewSealer_InvalidKey(t *testing.T) {
	sealer, err := NewSealer(make([]byte, 16))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encryption key must be 32 bytes")
	assert.Nil(t, sealer)
}

func TestSealOpen(t *testing.T) {
	sealer := newTestSealer(t)

	testCases := [][]byte{
		[]byte(`{"player_id":"p1","status":"present"}`),
		[]byte("Тренировка перенесена 🏃"),
		make([]byte, 2048),
	}
	_, _ = rand.Read(testCases[len(testCases)-1])

	for i, plaintext := range testCases {
		t.Run(string(rune('A'+i)), func(t *testing.T) {
			sealed, err := sealer.Seal(plaintext)
			require.NoError(t, err)
			assert.True(t, IsSealed(sealed))

			opened, err := sealer.Open(sealed)
			require.NoError(t, err)
			assert.Equal(t, plaintext, opened)
		})
	}
}

func TestSeal_Randomness(t *testing.T) {
	sealer := newTestSealer(t)

	// Одинаковые данные шифруются по-разному из-за случайного nonce
	first, err := sealer.Seal([]byte("same data"))
	require.NoError(t, err)
	second, err := sealer.Seal([]byte("same data"))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestSeal_EmptyPlaintext(t *testing.T) {
	sealer := newTestSealer(t)

	sealed, err := sealer.Seal(nil)
	require.Error(t, err)
	assert.Empty(t, sealed)
}

func TestOpen_Errors(t *testing.T) {
	sealer := newTestSealer(t)
	valid, err := sealer.Seal([]byte("payload"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		sealed string
		errMsg string
		sealer *Sealer
	}{
		{name: "not sealed", sealed: `{"a":1}`, errMsg: "value is not sealed", sealer: sealer},
		{name: "invalid base64", sealed: SealPrefix + "!!!", errMsg: "failed to decode base64", sealer: sealer},
		{name: "too short", sealed: SealPrefix + "AAAA", errMsg: "sealed data too short", sealer: sealer},
		{name: "wrong key", sealed: valid, errMsg: "failed to decrypt", sealer: newTestSealer(t)},
		{name: "truncated", sealed: strings.TrimSuffix(valid, valid[len(valid)-4:]), errMsg: "failed", sealer: sealer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opened, err := tt.sealer.Open(tt.sealed)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.Nil(t, opened)
		})
	}
}
