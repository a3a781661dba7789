package internal

// ReportGatherer streams campaign progress and findings to some sink.
type ReportGatherer interface {
	StartCampaign(systemInfo string)

	ReachCase(casePath string)
	FinishCase(run *RunState)

	ReportCrash(crash *CrashReport, input []byte)
	ReportHang(casePath string)

	InternalError(msg string)
	FinishCampaign(stats *CampaignStats)
}
