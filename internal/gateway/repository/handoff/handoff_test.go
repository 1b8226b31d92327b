package handoff

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supportflow/internal/types"
)

func TestMemoryArchive_PutGetList(t *testing.T) {
	a := NewMemoryArchive()
	ctx := context.Background()
	pkg := types.NewEscalationPackage(types.NewTicket("T-1", "s", "d", "", ""), types.Classification{}, nil,
		"complaints require human review", types.PriorityCritical, "", "hold on")

	key, err := a.Put(ctx, pkg)
	require.NoError(t, err)
	assert.Equal(t, "escalations/critical/T-1.json", key)

	got, err := a.Get(ctx, "T-1")
	require.NoError(t, err)
	assert.Equal(t, "hold on", got.CustomerMessage)

	keys, err := a.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{key}, keys)

	_, err = a.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = a.Put(ctx, types.EscalationPackage{})
	assert.Error(t, err)
}

func TestS3Config_CanUse(t *testing.T) {
	assert.False(t, S3Config{Endpoint: "localhost:9000"}.CanUse())
	assert.True(t, S3Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b", Bucket: "c"}.CanUse())
	_, err := NewS3Archive(S3Config{})
	assert.Error(t, err)
}
