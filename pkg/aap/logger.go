package aap

// NoopLogger discards everything.
type NoopLogger struct{}

func (NoopLogger) Debug(string, map[string]interface{}) {}
func (NoopLogger) Info(string, map[string]interface{})  {}
func (NoopLogger) Warn(string, map[string]interface{})  {}
func (NoopLogger) Error(string, map[string]interface{}) {}

// MultiLogger fans every message out to several loggers, e.g. a structured
// logger plus a legacy line-oriented one.
type MultiLogger []Logger

// NewMultiLogger drops nil loggers and returns the rest as one Logger.
func NewMultiLogger(loggers ...Logger) MultiLogger {
	multi := make(MultiLogger, 0, len(loggers))

	for _, logger := range loggers {
		if logger != nil {
			multi = append(multi, logger)
		}
	}

	return multi
}

// Debug implements Logger.
func (m MultiLogger) Debug(msg string, fields map[string]interface{}) {
	for _, logger := range m {
		logger.Debug(msg, fields)
	}
}

// Info implements Logger.
func (m MultiLogger) Info(msg string, fields map[string]interface{}) {
	for _, logger := range m {
		logger.Info(msg, fields)
	}
}

// Warn implements Logger.
func (m MultiLogger) Warn(msg string, fields map[string]interface{}) {
	for _, logger := range m {
		logger.Warn(msg, fields)
	}
}

// Error implements Logger.
func (m MultiLogger) Error(msg string, fields map[string]interface{}) {
	for _, logger := range m {
		logger.Error(msg, fields)
	}
}
