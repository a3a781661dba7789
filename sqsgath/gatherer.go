package sqsgath

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/fuzzkit/fuzzkit/api"
	"github.com/fuzzkit/fuzzkit/internal"
)

var _ internal.ReportGatherer = (*sqsResQueueGatherer)(nil)

type sqsResQueueGatherer struct {
	sqsClient    *sqs.Client
	queueUrl     string
	campaignUuid string
}

func (s *sqsResQueueGatherer) StartCampaign(systemInfo string) {
	s.send(api.NewStartCampaign(s.campaignUuid, systemInfo))
}

func (s *sqsResQueueGatherer) ReachCase(casePath string) {
	s.send(api.NewReachCase(s.campaignUuid, casePath))
}

func (s *sqsResQueueGatherer) FinishCase(run *internal.RunState) {
	s.send(api.NewFinishCase(s.campaignUuid, mapRunData(run)))
}

func (s *sqsResQueueGatherer) ReportCrash(crash *internal.CrashReport, input []byte) {
	s.send(api.NewCrashFound(s.campaignUuid,
		crash.Signal, crash.SignalName, fmt.Sprintf("%#x", crash.PC),
		crash.CasePath, crash.InputSha, inputPreview(input)))
}

func (s *sqsResQueueGatherer) ReportHang(casePath string) {
	s.send(api.NewHangFound(s.campaignUuid, casePath))
}

func (s *sqsResQueueGatherer) InternalError(msg string) {
	s.send(api.NewInternalError(s.campaignUuid, msg))
}

func (s *sqsResQueueGatherer) FinishCampaign(stats *internal.CampaignStats) {
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
