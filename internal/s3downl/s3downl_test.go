package s3downl

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseObjectUrl(t *testing.T) {
	bucket, key, err := parseObjectUrl("s3://corpus-bucket/jpeg/seed1")
	require.NoError(t, err)
	require.Equal(t, "corpus-bucket", bucket)
	require.Equal(t, "jpeg/seed1", key)

	bucket, key, err = parseObjectUrl("https://corpus-bucket.s3.eu-central-1.amazonaws.com/jpeg/seed1.zst")
	require.NoError(t, err)
	require.Equal(t, "corpus-bucket", bucket)
	require.Equal(t, "jpeg/seed1.zst", key)

	_, _, err = parseObjectUrl("ftp://corpus-bucket/jpeg/seed1")
	require.Error(t, err)
}

func TestIsZstd(t *testing.T) {
	ct := "application/zstd"
	require.True(t, isZstd(&ct, "seed1"))
	require.True(t, isZstd(nil, "seed1.zst"))
	require.False(t, isZstd(nil, "seed1"))
}
