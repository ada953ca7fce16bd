package errors

// ErrorCode là mã lỗi ổn định trả về cho client
type ErrorCode int

const (
	ErrorCode_HTTP_OK ErrorCode = 200

	// General
	ErrorCode_INTERNAL          ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT  ErrorCode = 1001
	ErrorCode_NOT_FOUND         ErrorCode = 1002
	ErrorCode_UNAUTHENTICATED   ErrorCode = 1003
	ErrorCode_INVALID_PAYLOAD   ErrorCode = 1004
	ErrorCode_PERMISSION_DENIED ErrorCode = 1005

	// Auth
	ErrorCode_AUTH_INVALID_TOKEN ErrorCode = 2001
	ErrorCode_AUTH_TOKEN_EXPIRED ErrorCode = 2002

	// Pipeline
	ErrorCode_PIPELINE_TRANSCRIPTION_FAILED ErrorCode = 3001
	ErrorCode_PIPELINE_MALFORMED_OUTPUT     ErrorCode = 3002
	ErrorCode_PIPELINE_PERSISTENCE_FAILED   ErrorCode = 3003
	ErrorCode_PIPELINE_VALIDATION_FAILED    ErrorCode = 3004
	ErrorCode_PIPELINE_UNSUPPORTED_AUDIO    ErrorCode = 3005
	ErrorCode_PIPELINE_RUN_NOT_FOUND        ErrorCode = 3006

	// Report
	ErrorCode_REPORT_NOT_FOUND     ErrorCode = 4001
	ErrorCode_REPORT_INVALID_ID    ErrorCode = 4002
	ErrorCode_REPORT_SEND_FAILED   ErrorCode = 4003
	ErrorCode_REPORT_NOT_AVAILABLE ErrorCode = 4004

	// Integration
	ErrorCode_INTEGRATION_STORAGE_FAILED ErrorCode = 5001
	ErrorCode_INTEGRATION_CACHE_FAILED   ErrorCode = 5002
)

var codeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:                       "HTTP_OK",
	ErrorCode_INTERNAL:                      "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:              "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                     "NOT_FOUND",
	ErrorCode_UNAUTHENTICATED:               "UNAUTHENTICATED",
	ErrorCode_INVALID_PAYLOAD:               "INVALID_PAYLOAD",
	ErrorCode_PERMISSION_DENIED:             "PERMISSION_DENIED",
	ErrorCode_AUTH_INVALID_TOKEN:            "AUTH_INVALID_TOKEN",
	ErrorCode_AUTH_TOKEN_EXPIRED:            "AUTH_TOKEN_EXPIRED",
	ErrorCode_PIPELINE_TRANSCRIPTION_FAILED: "PIPELINE_TRANSCRIPTION_FAILED",
	ErrorCode_PIPELINE_MALFORMED_OUTPUT:     "PIPELINE_MALFORMED_OUTPUT",
	ErrorCode_PIPELINE_PERSISTENCE_FAILED:   "PIPELINE_PERSISTENCE_FAILED",
	ErrorCode_PIPELINE_VALIDATION_FAILED:    "PIPELINE_VALIDATION_FAILED",
	ErrorCode_PIPELINE_UNSUPPORTED_AUDIO:    "PIPELINE_UNSUPPORTED_AUDIO",
	ErrorCode_PIPELINE_RUN_NOT_FOUND:        "PIPELINE_RUN_NOT_FOUND",
	ErrorCode_REPORT_NOT_FOUND:              "REPORT_NOT_FOUND",
	ErrorCode_REPORT_INVALID_ID:             "REPORT_INVALID_ID",
	ErrorCode_REPORT_SEND_FAILED:            "REPORT_SEND_FAILED",
	ErrorCode_REPORT_NOT_AVAILABLE:          "REPORT_NOT_AVAILABLE",
	ErrorCode_INTEGRATION_STORAGE_FAILED:    "INTEGRATION_STORAGE_FAILED",
	ErrorCode_INTEGRATION_CACHE_FAILED:      "INTEGRATION_CACHE_FAILED",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
