// Package logging provides structured logging utilities for fizzy-mcp.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Usage Patterns
//
// Attach the standard attributes to each record:
//
//	logger.WarnContext(ctx, "task step failed",
//	    logging.Operation("tag_add:bug"),
//	    logging.Account(slug),
//	    logging.Card(42),
//	    logging.Err(err))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("client configured",
//	    slog.String("token", logging.SanitizeToken(token)))
//
// # Security Considerations
//
//   - User identifiers are hashed to prevent leakage while allowing correlation
//   - Tokens are never logged directly
package logging
