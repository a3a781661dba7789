package natsgath

import (
	"github.com/nats-io/nats.go"
)

// New creates a NATS gatherer that streams campaign reports to the
// given subject.
func New(nc *nats.Conn, campaignUuid string, subject string) *natsGatherer {
	return &natsGatherer{
		nc:           nc,
		subject:      subject,
		campaignUuid: campaignUuid,
	}
}
