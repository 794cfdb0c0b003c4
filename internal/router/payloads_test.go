package router

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmium-toolchains/osmium-cli/internal/domain"
)

func TestFlexString(t *testing.T) {
	tests := []struct {
		input string
		want  flexString
	}{
		{`"21000"`, "21000"},
		{`21000`, "21000"},
		{`" 1.5 "`, "1.5"},
		{`null`, ""},
		{`""`, ""},
		{`1e18`, "1000000000000000000"},
		{`2.5E3`, "2500"},
		{`1.5e-3`, "1.5e-3"},
		{`1e500000000`, "1e500000000"},
	}
	for _, tt := range tests {
		var got flexString
		require.NoError(t, json.Unmarshal([]byte(tt.input), &got), tt.input)
		assert.Equal(t, tt.want, got)
	}

	var bad flexString
	assert.Error(t, json.Unmarshal([]byte(`{}`), &bad))
}

func TestFlexString_Uint(t *testing.T) {
	n, err := flexString("").Uint("gasLimit")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = flexString("300000").Uint("gasLimit")
	require.NoError(t, err)
	assert.Equal(t, uint64(300000), n)

	_, err = flexString("-1").Uint("gasLimit")
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}
