package campaign_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fuzzkit/fuzzkit/internal/campaign"
	"github.com/stretchr/testify/require"
)

const sampleCampaign = `
workers = 4
max_iters = 1000

[target]
cmd = ["/usr/bin/djpeg", "___FILE___"]
timeout_sec = 5
as_limit_mib = 256
nullify_stdio = true

[corpus]
dir = "seeds"

[[corpus.remote]]
sha256 = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
url = "s3://corpus-bucket/jpeg/seed1"

[report]
sink = "nats"
`

func writeCampaign(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "campaign.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestParseCampaign(t *testing.T) {
	camp, err := campaign.Parse(writeCampaign(t, sampleCampaign))
	require.NoError(t, err)

	require.Equal(t, []string{"/usr/bin/djpeg", "___FILE___"}, camp.Config.Cmdline)
	require.Equal(t, int64(5), camp.Config.TimeoutSec)
	require.Equal(t, int64(256), camp.Config.AsLimitMiB)
	require.True(t, camp.Config.NullifyStdio)
	require.False(t, camp.Config.FuzzStdin)

	require.Equal(t, "seeds", camp.CorpusDir)
	require.Equal(t, "nats", camp.Sink)
	require.Equal(t, 4, camp.Workers)
	require.Equal(t, int64(1000), camp.MaxIters)

	require.Len(t, camp.RemoteSeeds, 1)
	require.Equal(t, "s3://corpus-bucket/jpeg/seed1", camp.RemoteSeeds[0].Url)
}

func TestParseRequiresTargetCmd(t *testing.T) {
	_, err := campaign.Parse(writeCampaign(t, `
[corpus]
dir = "seeds"
`))
	require.Error(t, err)
}

func TestParseRequiresCorpusDir(t *testing.T) {
	_, err := campaign.Parse(writeCampaign(t, `
[target]
cmd = ["/bin/true"]
`))
	require.Error(t, err)
}

func TestValidateDefaults(t *testing.T) {
	camp, err := campaign.Parse(writeCampaign(t, `
[target]
cmd = ["/bin/true"]

[corpus]
dir = "seeds"
`))
	require.NoError(t, err)
	require.Equal(t, 1, camp.Workers)
	require.Equal(t, "term", camp.Sink)
	require.Equal(t, int64(0), camp.Config.TimeoutSec)
}

func TestParseRejectsIncompleteRemoteSeed(t *testing.T) {
	_, err := campaign.Parse(writeCampaign(t, `
[target]
cmd = ["/bin/true"]

[corpus]
dir = "seeds"

[[corpus.remote]]
sha256 = "aaaa"
`))
	require.Error(t, err)
}
