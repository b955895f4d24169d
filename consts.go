package ctxlog

const (
	emptyString = ""

	// FallbackMarker replaces any value that cannot be serialised to JSON.
	FallbackMarker = "[unserializable]"

	defaultRemoteTimeoutMS   = 5000
	defaultShutdownTimeoutMS = 2000
	defaultLogFileName       = "app"
)

const (
	errMsgNilConfig     = "Logging config is nil."
	errMsgNilService    = "Logger service is nil."
	errMsgConfigInvalid = "Logging configuration is invalid."
	errMsgLogDir        = "Failed to create logs directory."
	errMsgUnsafeLogDir  = "RelLogFileDir must be a relative path inside the working directory."
	errMsgInvalidLevel  = "Invalid log level."
	errMsgMetrics       = "Failed to register logging metrics."
	errMsgCloseFile     = "Failed to close log file."
	errMsgLoadSettings  = "Failed to load logging settings."
)

const (
	diagMsgParamsUnserializable = "Failed to serialise log params"
	diagMsgValueUnserializable  = "Failed to serialise log value"
	diagMsgRenderPanic          = "Recovered from panic while rendering log line"
	diagMsgForwardFailed        = "Failed to send log to remote sink"
	diagMsgForwardPanic         = "Recovered from panic in remote forwarder"
	diagMsgRemoteQueued         = "Remote log queued"
	diagMsgShutdownTimeout      = "Logger shutdown timeout exceeded"
)

const (
	statusBannerStart = "--------- Logging Status ---------"
	statusBannerEnd   = "------- Logging Status End -------"
)

// defaultRemoteIgnore lists message fragments that are never forwarded.
// The first one is raised on every empty upstream response by a third-party
// HTTP client and floods the aggregator.
var defaultRemoteIgnore = []string{
	"Unexpected end of JSON input",
}
