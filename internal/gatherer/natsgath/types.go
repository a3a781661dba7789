package natsgath

import (
	"fmt"

	"github.com/fuzzkit/fuzzkit/api"
	"github.com/fuzzkit/fuzzkit/internal"
	"github.com/nats-io/nats.go"
)

var _ internal.ReportGatherer = (*natsGatherer)(nil)

type natsGatherer struct {
	nc           *nats.Conn
	subject      string
	campaignUuid string
}

func (s *natsGatherer) StartCampaign(systemInfo string) {
	s.send(api.NewStartCampaign(s.campaignUuid, systemInfo))
}

func (s *natsGatherer) ReachCase(casePath string) {
	s.send(api.NewReachCase(s.campaignUuid, casePath))
}

func (s *natsGatherer) FinishCase(run *internal.RunState) {
	s.send(api.NewFinishCase(s.campaignUuid, mapRunData(run)))
}

func (s *natsGatherer) ReportCrash(crash *internal.CrashReport, input []byte) {
	s.send(api.NewCrashFound(s.campaignUuid,
		crash.Signal, crash.SignalName, fmt.Sprintf("%#x", crash.PC),
		crash.CasePath, crash.InputSha, inputPreview(input)))
}

func (s *natsGatherer) ReportHang(casePath string) {
	s.send(api.NewHangFound(s.campaignUuid, casePath))
}

func (s *natsGatherer) InternalError(msg string) {
	s.send(api.NewInternalError(s.campaignUuid, msg))
}

func (s *natsGatherer) FinishCampaign(stats *internal.CampaignStats) {
	s.send(api.NewFinishCampaign(s.campaignUuid,
		stats.Execs, stats.Crashes, stats.UniqueCrashes, stats.Hangs, stats.Signals))
}

func mapRunData(run *internal.RunState) *api.RunData {
	if run == nil {
		return nil
	}
	data := &api.RunData{
		CasePath: run.CasePath,
		Exited:   run.Exited,
		ExitCode: run.ExitCode,
		Branches: run.BranchCount,
	}
	if !run.Exited {
		sig := run.TermSignal
		data.TermSignal = &sig
	}
	return data
}
