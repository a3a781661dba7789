package fuzzkit

// CampaignReq is the queue message asking a fuzzkit instance to run a
// fuzzing campaign and stream findings to the response queue.
type CampaignReq struct {
	CampaignUuid string `json:"campaign_uuid"`
	ResSqsUrl    string `json:"res_sqs_url"`

	Target Target    `json:"target"`
	Seeds  []SeedRef `json:"seeds"`

	Workers  int   `json:"workers"`
	MaxIters int64 `json:"max_iters"`
}

// Target mirrors the campaign file's [target] table.
type Target struct {
	Cmd          []string `json:"cmd"`
	FuzzStdin    bool     `json:"fuzz_stdin"`
	NullifyStdio bool     `json:"nullify_stdio"`
	TimeoutSec   int64    `json:"timeout_sec"`
	AsLimitMiB   int64    `json:"as_limit_mib"`
}

// SeedRef delivers a corpus seed either inline or by reference.
// Content carries the seed bytes base64 encoded.
type SeedRef struct {
	Sha256  string  `json:"sha256"`
	Url     *string `json:"url"`
	Content *string `json:"content"`
}
