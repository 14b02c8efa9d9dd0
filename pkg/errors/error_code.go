package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidAsset         ErrorCode = 102
	ErrCodeInvalidWindow        ErrorCode = 103

	// Price data errors (200-299)
	ErrCodeInsufficientHistory ErrorCode = 200
	ErrCodeNonPositivePrice    ErrorCode = 201
	ErrCodeUnorderedHistory    ErrorCode = 202
	ErrCodeMisalignedHistory   ErrorCode = 203
	ErrCodeDataNotFound        ErrorCode = 204

	// Optimization errors (300-399)
	ErrCodeSingularCovariance ErrorCode = 300
	ErrCodeNonFiniteEstimate  ErrorCode = 301

	// Rebalance errors (400-499)
	ErrCodeNonFiniteWeight ErrorCode = 400

	// Backtest errors (500-599)
	ErrCodeBacktestNotIdle     ErrorCode = 500
	ErrCodeBacktestNoHistory   ErrorCode = 501
	ErrCodeBacktestAborted     ErrorCode = 502
	ErrCodeBacktestDayFailed   ErrorCode = 503
	ErrCodeBacktestConfigError ErrorCode = 504

	// Result store errors (600-699)
	ErrCodeStoreOpenFailed  ErrorCode = 600
	ErrCodeStoreQueryFailed ErrorCode = 601
	ErrCodeStoreWriteFailed ErrorCode = 602
)
