// Package campaign parses TOML campaign descriptions into runnable
// configuration.
package campaign

import (
	"fmt"
	"os"

	"github.com/fuzzkit/fuzzkit/internal"
	"github.com/pelletier/go-toml/v2"
)

type specTarget struct {
	Cmd          []string `toml:"cmd"`
	FuzzStdin    bool     `toml:"fuzz_stdin"`
	NullifyStdio bool     `toml:"nullify_stdio"`
	TimeoutSec   int64    `toml:"timeout_sec"`
	AsLimitMiB   int64    `toml:"as_limit_mib"`
}

type specSeed struct {
	Sha256 string `toml:"sha256"`
	Url    string `toml:"url"`
}

type specCorpus struct {
	Dir    string     `toml:"dir"`
	Remote []specSeed `toml:"remote"`
}

type specReport struct {
	Sink string `toml:"sink"`
}

type specRoot struct {
	Target   specTarget `toml:"target"`
	Corpus   specCorpus `toml:"corpus"`
	Report   specReport `toml:"report"`
	Workers  int        `toml:"workers"`
	MaxIters int64      `toml:"max_iters"`
}

// RemoteSeed references a seed object to fetch before the campaign.
type RemoteSeed struct {
	Sha256 string
	Url    string
}

// Campaign is a validated, runnable campaign description.
type Campaign struct {
	Config      internal.Config
	CorpusDir   string
	RemoteSeeds []RemoteSeed
	Sink        string
	Workers     int
	MaxIters    int64
}

// Parse reads a campaign TOML file and validates it.
func Parse(path string) (*Campaign, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read campaign file: %w", err)
	}

	var root specRoot
	if err := toml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse campaign TOML: %w", err)
	}

	camp := &Campaign{
		Config: internal.Config{
			Cmdline:      root.Target.Cmd,
			FuzzStdin:    root.Target.FuzzStdin,
			NullifyStdio: root.Target.NullifyStdio,
			TimeoutSec:   root.Target.TimeoutSec,
			AsLimitMiB:   root.Target.AsLimitMiB,
		},
		CorpusDir: root.Corpus.Dir,
		Sink:      root.Report.Sink,
		Workers:   root.Workers,
		MaxIters:  root.MaxIters,
	}
	for _, s := range root.Corpus.Remote {
		if s.Sha256 == "" || s.Url == "" {
			return nil, fmt.Errorf("remote seed entries require both sha256 and url")
		}
		camp.RemoteSeeds = append(camp.RemoteSeeds, RemoteSeed(s))
	}

	if err := camp.Validate(); err != nil {
		return nil, err
	}
	return camp, nil
}

// Validate fills defaults and rejects incomplete campaigns.
func (c *Campaign) Validate() error {
	if len(c.Config.Cmdline) == 0 {
		return fmt.Errorf("campaign is missing target.cmd")
	}
	if c.CorpusDir == "" {
		return fmt.Errorf("campaign is missing corpus.dir")
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.Sink == "" {
		c.Sink = "term"
	}
	return nil
}
