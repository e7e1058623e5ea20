package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryClient_RoundTrip(t *testing.T) {
	ctx := context.Background()
	client := NewMemoryClient()

	require.NoError(t, client.Upload(ctx, "bucket", "a/b.csv", strings.NewReader("x,y"), "text/csv"))

	rc, err := client.Download(ctx, "bucket", "a/b.csv")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "x,y", string(data))

	obj, ok := client.Get("bucket", "a/b.csv")
	require.True(t, ok)
	assert.Equal(t, "text/csv", obj.ContentType)

	url, err := client.GetPresignedURL(ctx, "bucket", "a/b.csv", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "memory://bucket/a/b.csv", url)
	assert.Equal(t, []string{"bucket/a/b.csv"}, client.Keys())

	require.NoError(t, client.Delete(ctx, "bucket", "a/b.csv"))
	_, err = client.Download(ctx, "bucket", "a/b.csv")
	assert.True(t, errors.Is(err, ErrObjectNotFound))
}
