package api

import "time"

// MsgType is a message type for streaming campaign reports
type MsgType string

// Streaming message type constants
const (
	StartCampaignMsg  MsgType = "campaign_start"
	ReachCaseMsg      MsgType = "case_reach"
	FinishCaseMsg     MsgType = "case_finish"
	CrashFoundMsg     MsgType = "crash_found"
	HangFoundMsg      MsgType = "hang_found"
	InternalErrorMsg  MsgType = "internal_error"
	FinishCampaignMsg MsgType = "campaign_finish"
)

// Crash input previews are trimmed to this rectangle before streaming
const (
	MaxPreviewHeight = 40
	MaxPreviewWidth  = 80
)

// Header is the common header for all streaming report messages
type Header struct {
	CampaignUuid string  `json:"campaign_uuid"`
	MsgType      MsgType `json:"msg_type"`
}

// StartCampaign message sent when a campaign begins
type StartCampaign struct {
	Header
	SystemInfo  string `json:"system_info"`
	StartedTime string `json:"started_time"`
}

// ReachCase message sent when a worker picks up a case
type ReachCase struct {
	Header
	CasePath string `json:"case_path"`
}

// FinishCase message sent when a run reaches a terminal state
type FinishCase struct {
	Header
	RunData *RunData `json:"run_data"`
}

// CrashFound message sent once per unique crash
type CrashFound struct {
	Header
	Signal       int     `json:"signal"`
	SignalName   string  `json:"signal_name"`
	PC           string  `json:"pc"`
	CasePath     string  `json:"case_path"`
	InputSha     string  `json:"input_sha256"`
	InputPreview *string `json:"input_preview"`
}

// HangFound message sent when a run is killed by a watchdog
type HangFound struct {
	Header
	CasePath string `json:"case_path"`
}

// InternalError message sent when the engine itself fails
type InternalError struct {
	Header
	Message string `json:"message"`
}

// FinishCampaign message sent when a campaign ends
type FinishCampaign struct {
	Header
	Execs         uint64   `json:"execs"`
	Crashes       uint64   `json:"crashes"`
	UniqueCrashes uint64   `json:"unique_crashes"`
	Hangs         uint64   `json:"hangs"`
	Signals       []string `json:"signals"`
}

// Helper function to create a header
func NewHeader(campaignUuid string, msgType MsgType) Header {
	return Header{
		CampaignUuid: campaignUuid,
		MsgType:      msgType,
	}
}

// Helper functions to create specific streaming message types
func NewStartCampaign(campaignUuid, systemInfo string) StartCampaign {
	return StartCampaign{
		Header:      NewHeader(campaignUuid, StartCampaignMsg),
		SystemInfo:  systemInfo,
		StartedTime: time.Now().Format(time.RFC3339),
	}
}

func NewReachCase(campaignUuid, casePath string) ReachCase {
	return ReachCase{
		Header:   NewHeader(campaignUuid, ReachCaseMsg),
		CasePath: casePath,
	}
}

func NewFinishCase(campaignUuid string, runData *RunData) FinishCase {
	return FinishCase{
		Header:  NewHeader(campaignUuid, FinishCaseMsg),
		RunData: runData,
	}
}

func NewCrashFound(campaignUuid string, signal int, signalName, pc, casePath, inputSha string, preview *string) CrashFound {
	return CrashFound{
		Header:       NewHeader(campaignUuid, CrashFoundMsg),
		Signal:       signal,
		SignalName:   signalName,
		PC:           pc,
		CasePath:     casePath,
		InputSha:     inputSha,
		InputPreview: preview,
	}
}

func NewHangFound(campaignUuid, casePath string) HangFound {
	return HangFound{
		Header:   NewHeader(campaignUuid, HangFoundMsg),
		CasePath: casePath,
	}
}

func NewInternalError(campaignUuid, message string) InternalError {
	return InternalError{
		Header:  NewHeader(campaignUuid, InternalErrorMsg),
		Message: message,
	}
}

func NewFinishCampaign(campaignUuid string, execs, crashes, uniqueCrashes, hangs uint64, signals []string) FinishCampaign {
	return FinishCampaign{
		Header:        NewHeader(campaignUuid, FinishCampaignMsg),
		Execs:         execs,
		Crashes:       crashes,
		UniqueCrashes: uniqueCrashes,
		Hangs:         hangs,
		Signals:       signals,
	}
}
