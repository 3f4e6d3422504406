// Package logger builds *slog.Logger instances with functional options and
// provides attribute constructors that keep key names consistent across the
// service.
//
// New wraps the chosen slog handler (JSON or text) in LogHandlerDecorator,
// which runs the registered ContextExtractor callbacks on every record. The
// RequestIDExtractor callback copies the id assigned by chi's RequestID
// middleware into each record, and Middleware emits one access log line per
// HTTP request.
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, cfg.ServiceName),
//		logger.WithContextExtractors(logger.RequestIDExtractor()),
//	)
package logger
