// Package logger provides structured logging based on Zap.
//
// New builds a development logger for the debug level and a production logger
// otherwise, with json or console encoding. NewCLI is the console logger used by
// one-shot commands.
//
// # Ray IDs
//
// Every HTTP request carries a ray id set by the rayid middleware. WithRayID reads it
// from the Fiber context and attaches it to the logger, so every line logged for a
// promotion or repair can be correlated.
//
// # Usage
//
//	log, _ := logger.New(&cfg.Log)
//	log.Info("Server started")
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("Promotion failed", zap.Error(err))
package logger
