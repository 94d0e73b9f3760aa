package integrity_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/medvault/server/internal/integrity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Известный тестовый вектор SHA-256 для строки "abc".
const sha256ABC = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"

// Дайджест пустого содержимого.
const sha256Empty = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

func TestHashBytes(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected string
	}{
		{
			name:     "Известный вектор abc",
			data:     []byte("abc"),
			expected: sha256ABC,
		},
		{
			name:     "Пустое содержимое",
			data:     []byte{},
			expected: sha256Empty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, integrity.HashBytes(tt.data))
		})
	}
}

func TestHashBytes_Determinism(t *testing.T) {
	data := []byte("medical report contents")

	first := integrity.HashBytes(data)
	second := integrity.HashBytes(data)

	// Одинаковые байты всегда дают одинаковый дайджест
	assert.Equal(t, first, second)
	assert.Len(t, first, 64) // hex-строка фиксированной длины

	// Разные байты дают разные дайджесты
	other := integrity.HashBytes([]byte("medical report contents!"))
	assert.NotEqual(t, first, other)
}

func TestHashReader(t *testing.T) {
	digest, err := integrity.HashReader(strings.NewReader("abc"))
	require.NoError(t, err)
	assert.Equal(t, sha256ABC, digest)

	// HashReader и HashBytes согласованы
	assert.Equal(t, integrity.HashBytes([]byte("abc")), digest)
}

// errReader всегда возвращает ошибку чтения.
type errReader struct{}

func (errReader) Read(_ []byte) (int, error) {
	return 0, errors.New("disk failure")
}

func TestHashReader_ReadError(t *testing.T) {
	// Ошибка чтения источника должна дойти до вызывающего
	_, err := integrity.HashReader(errReader{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk failure")
}

func TestHashReader_LargeContent(t *testing.T) {
	// Содержимое больше одного буфера io.Copy
	data := bytes.Repeat([]byte{0x42}, 1<<20)

	digest, err := integrity.HashReader(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, integrity.HashBytes(data), digest)
}
