package jsonutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalObjectToleratesCommentary(t *testing.T) {
	var out struct {
		Category string `json:"category"`
	}
	err := UnmarshalObject("Sure! Here you go:\n{\"category\": \"refund\"}\nHope that helps.", &out)
	require.NoError(t, err)
	assert.Equal(t, "refund", out.Category)
}

func TestUnmarshalObjectRejectsGarbage(t *testing.T) {
	var out map[string]any
	assert.Error(t, UnmarshalObject("I cannot classify this", &out))
	assert.ErrorIs(t, UnmarshalObject("   ", &out), ErrNoObject)
	assert.Error(t, UnmarshalObject("{not json}", &out))
}

func TestMarshalNoEscape(t *testing.T) {
	b, err := MarshalNoEscape(map[string]string{"q": "a<b"})
	require.NoError(t, err)
	assert.Equal(t, `{"q":"a<b"}`, string(b))
}
