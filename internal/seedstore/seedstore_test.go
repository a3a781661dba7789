package seedstore_test

import (
	"crypto/sha256"
	"fmt"
	"os"
	"testing"

	"github.com/fuzzkit/fuzzkit/internal/seedstore"
	"github.com/stretchr/testify/require"
)

func shaOf(body string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(body)))
}

func stubDownload(objects map[string]string) func(url string, path string) error {
	return func(url string, path string) error {
		body, ok := objects[url]
		if !ok {
			return fmt.Errorf("no such object: %s", url)
		}
		return os.WriteFile(path, []byte(body), 0644)
	}
}

func TestSeedStore(t *testing.T) {
	objects := map[string]string{
		"s3://corpus/seed1": "seed-one-body",
		"s3://corpus/seed2": "seed-two-body",
	}

	store := seedstore.New(t.TempDir(), t.TempDir(), stubDownload(objects))
	go store.Start()

	sha1 := shaOf("seed-one-body")
	require.NoError(t, store.Schedule(sha1, "s3://corpus/seed1"))

	// Duplicate schedules are a no-op.
	require.NoError(t, store.Schedule(sha1, "s3://corpus/seed1"))

	body, err := store.Await(sha1)
	require.NoError(t, err)
	require.Equal(t, "seed-one-body", string(body))

	// Integrity mismatch surfaces on Await.
	wrongSha := shaOf("something-else")
	require.NoError(t, store.Schedule(wrongSha, "s3://corpus/seed2"))
	_, err = store.Await(wrongSha)
	require.Error(t, err)

	// The same object under its true hash still verifies.
	sha2 := shaOf("seed-two-body")
	require.NoError(t, store.Schedule(sha2, "s3://corpus/seed2"))
	body, err = store.Await(sha2)
	require.NoError(t, err)
	require.Equal(t, "seed-two-body", string(body))

	_, err = store.Await("ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")
	require.Error(t, err)
}
