package crypto

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashReader(t *testing.T) {
	data := "the quick brown fox jumps over the lazy dog"

	hr := NewHashReader(strings.NewReader(data))
	read, err := io.ReadAll(hr)
	require.NoError(t, err)

	assert.Equal(t, data, string(read))
	assert.Equal(t, int64(len(data)), hr.Size())
	assert.Equal(t, ComputeMD5([]byte(data)), hr.MD5())
	assert.Equal(t, ComputeSHA256([]byte(data)), hr.SHA256())
	assert.Equal(t, `"`+ComputeMD5([]byte(data))+`"`, hr.ETag())
}

func TestHashReader_EmptyInput(t *testing.T) {
	hr := NewHashReader(strings.NewReader(""))
	_, err := io.ReadAll(hr)
	require.NoError(t, err)

	assert.Equal(t, int64(0), hr.Size())
	assert.Equal(t, ComputeMD5(nil), hr.MD5())
}
