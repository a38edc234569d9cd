package protocol

// Client to server request methods.
const (
	MethodInitialize    = "initialize"
	MethodThreadStart   = "thread/start"
	MethodThreadArchive = "thread/archive"
	MethodTurnStart     = "turn/start"
	MethodTurnSteer     = "turn/steer"
	MethodTurnInterrupt = "turn/interrupt"
)

// Client to server notification methods.
const (
	MethodInitialized = "initialized"
)

// Server to client notification methods.
const (
	MethodThreadStarted           = "thread/started"
	MethodThreadStatusChanged     = "thread/status/changed"
	MethodThreadTokenUsageUpdated = "thread/tokenUsage/updated"
	MethodTurnStarted             = "turn/started"
	MethodTurnCompleted           = "turn/completed"
	MethodTurnFailed              = "turn/failed"
	MethodItemStarted             = "item/started"
	MethodItemCompleted           = "item/completed"
	MethodAgentMessageDelta       = "item/agentMessage/delta"
	MethodCommandOutputDelta      = "item/commandExecution/outputDelta"
	MethodFileChangeOutputDelta   = "item/fileChange/outputDelta"
	MethodReasoningSummaryDelta   = "item/reasoning/summaryTextDelta"
	MethodError                   = "error"
)

// Server to client request methods (approval flow).
const (
	MethodCommandApproval    = "item/commandExecution/requestApproval"
	MethodFileChangeApproval = "item/fileChange/requestApproval"
)
