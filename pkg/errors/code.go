package errors

// ErrorCode represents a unique error identifier
type ErrorCode int

// Error code ranges allocation:
// 10000-10999: System & Common errors
// 12000-12999: Problem errors
// 13000-13299: Submission & Judge errors
// 13300-13399: Client & Transport errors
// 14000-14999: Chat assistant errors

const (
	// ========== System & Common Errors (10000-10999) ==========

	// Success
	Success ErrorCode = 10000

	// Generic errors (10000-10099)
	InternalServerError ErrorCode = 10001
	InvalidParams       ErrorCode = 10002
	NotFound            ErrorCode = 10003
	TooManyRequests     ErrorCode = 10006
	ServiceUnavailable  ErrorCode = 10007
	Timeout             ErrorCode = 10008

	// Cache errors (10200-10299)
	CacheError     ErrorCode = 10200
	CacheMiss      ErrorCode = 10201
	CacheSetFailed ErrorCode = 10202

	// Validation errors (10300-10399)
	ValidationFailed   ErrorCode = 10300
	InvalidFormat      ErrorCode = 10301
	InvalidValue       ErrorCode = 10302
	RequiredFieldEmpty ErrorCode = 10303

	// ========== Problem Errors (12000-12999) ==========

	ProblemNotFound       ErrorCode = 12000
	ProblemGenerateFailed ErrorCode = 12001
	TestCaseInvalid       ErrorCode = 12102

	// ========== Submission & Judge Errors (13000-13299) ==========

	// Submission (13000-13099)
	SubmissionNotFound     ErrorCode = 13000
	SubmissionCreateFailed ErrorCode = 13001
	LanguageNotSupported   ErrorCode = 13003
	NoSubmissionTokens     ErrorCode = 13006

	// Judge (13100-13199)
	JudgeSystemError ErrorCode = 13101

	// ========== Client & Transport Errors (13300-13399) ==========

	UpstreamRequestFailed ErrorCode = 13300
	DecodeFailed          ErrorCode = 13301
	StreamInterrupted     ErrorCode = 13302
	PollTimedOut          ErrorCode = 13303
	RequestCancelled      ErrorCode = 13304

	// ========== Chat Assistant Errors (14000-14999) ==========

	ChatMessageEmpty ErrorCode = 14000
	ChatRateLimited  ErrorCode = 14001
)

// errorMessages maps error codes to their default English messages
var errorMessages = map[ErrorCode]string{
	// System & Common
	Success:             "Success",
	InternalServerError: "Internal server error",
	InvalidParams:       "Invalid parameters",
	NotFound:            "Resource not found",
	TooManyRequests:     "Too many requests, please try again later",
	ServiceUnavailable:  "Service temporarily unavailable",
	Timeout:             "Request timeout",

	// Cache
	CacheError:     "Cache operation failed",
	CacheMiss:      "Cache miss",
	CacheSetFailed: "Failed to set cache",

	// Validation
	ValidationFailed:   "Validation failed",
	InvalidFormat:      "Invalid format",
	InvalidValue:       "Invalid value",
	RequiredFieldEmpty: "Required field is empty",

	// Problem
	ProblemNotFound:       "Problem not found",
	ProblemGenerateFailed: "Failed to generate problem",
	TestCaseInvalid:       "Invalid test case format",

	// Submission
	SubmissionNotFound:     "Submission not found",
	SubmissionCreateFailed: "Submission failed",
	LanguageNotSupported:   "Programming language not supported",
	NoSubmissionTokens:     "No submission tokens provided",

	// Judge
	JudgeSystemError: "Judge system error",

	// Client & Transport
	UpstreamRequestFailed: "Upstream request failed",
	DecodeFailed:          "Failed to parse response",
	StreamInterrupted:     "Response stream interrupted",
	PollTimedOut:          "Timed out waiting for submission results",
	RequestCancelled:      "Request cancelled",

	// Chat
	ChatMessageEmpty: "Chat message is empty",
	ChatRateLimited:  "Chat rate limit exceeded, please wait a minute",
}

// Message returns the default message for the error code
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "Unknown error"
}

// HTTPStatus returns the recommended HTTP status code for the error code
func (c ErrorCode) HTTPStatus() int {
	switch {
	case c == Success:
		return 200
	case c == NotFound, c == ProblemNotFound, c == SubmissionNotFound:
		return 404
	case c == TooManyRequests, c == ChatRateLimited:
		return 429
	case c == ServiceUnavailable:
		return 503
	case c == Timeout, c == PollTimedOut:
		return 504
	case c == UpstreamRequestFailed, c == DecodeFailed, c == StreamInterrupted:
		return 502
	case c >= 10300 && c < 10400: // Validation errors
		return 400
	case c == InvalidParams, c == NoSubmissionTokens, c == LanguageNotSupported, c == ChatMessageEmpty, c == TestCaseInvalid:
		return 400
	default:
		return 500
	}
}
