// Package logger builds the process slog.Logger.
//
// New picks a JSON or text handler at the configured level, optionally tees
// warnings and errors to Sentry, and wraps the result in LogHandlerDecorator so
// request-scoped values (request ID, tenant) are attached to every record:
//
//	log, flush, err := logger.New(logger.Config{Level: "info", Format: "json"},
//		logger.ContextKeyExtractor(tenantKey{}, "tenant"),
//	)
//	if err != nil {
//		return err
//	}
//	defer flush(context.Background())
//
// An empty SentryDSN, or a failed Sentry init, leaves local output only.
package logger
