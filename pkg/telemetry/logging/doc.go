// Package logging provides structured logging with redaction on top of
// log/slog.
//
// # Overview
//
// New builds a *Logger whose handler redacts every record before it is
// written: API keys, bearer tokens, passwords and e-mail addresses are
// masked in string values, and values stored under sensitive keys such as
// "api_key", "authorization", "prompt" or "negative_prompt" are replaced
// entirely. Installing the logger with SetDefault makes the same guarantee
// hold for components that log through slog.Default().
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:     "info",
//	    Format:    "json",
//	    RedactPII: true,
//	})
//	if err != nil {
//	    return err
//	}
//	logger.SetDefault()
//
//	ctx = logging.WithRequestID(ctx, "req-123")
//	slog.InfoContext(ctx, "image generated", "platform", "instagram")
//	// request_id is added from the context automatically
//
// # Prompt Fragments
//
// A generated prompt must never reach a log sink. ForPrompt derives a logger
// that additionally masks any fragment of the given prompt, so an upstream
// error message that echoes the prompt is still safe to log.
package logging
