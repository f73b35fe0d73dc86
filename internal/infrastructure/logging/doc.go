// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: colored console output for human readability
//
// File paths logged by the store are always the client-facing relative
// form; absolute paths under the storage root never reach the log stream.
//
// Example usage:
//
//	logger := logging.NewDefault()
//	logger.Info("Server starting", zap.String("port", "8000"))
package logging
