package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyOperation = "operation"
	KeyAccount   = "account"
	KeyUser      = "user"
	KeyUserHash  = "user_hash"
	KeyCard      = "card"
	KeyBoard     = "board"
	KeyColumn    = "column"
	KeySource    = "source"
	KeyDuration  = "duration"
	KeyStatus    = "status"
	KeyError     = "error"
	KeyTool      = "tool"
)

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Account returns a slog attribute for the account slug.
func Account(account string) slog.Attr {
	return slog.String(KeyAccount, strings.TrimPrefix(account, "/"))
}

// Card returns a slog attribute for a card number.
func Card(number int) slog.Attr {
	return slog.Int(KeyCard, number)
}

// Board returns a slog attribute for a board ID.
func Board(id string) slog.Attr {
	return slog.String(KeyBoard, id)
}

// Column returns a slog attribute for a column ID.
func Column(id string) slog.Attr {
	return slog.String(KeyColumn, id)
}

// Source returns a slog attribute describing where a value came from
// (for example the account resolution source).
func Source(source string) slog.Attr {
	return slog.String(KeySource, source)
}

// Tool returns a slog attribute for the tool name.
func Tool(tool string) slog.Attr {
	return slog.String(KeyTool, tool)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Err returns a slog attribute for an error.
// If err is nil, returns an empty Group attribute that will be omitted from output.
//
// Usage:
//
//	logger.Info("operation", logging.Err(err))  // Safe even if err is nil
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// AnonymizeUser returns a hashed representation of a user identifier (ID or
// display name) so log entries can be correlated without exposing who it was.
func AnonymizeUser(user string) string {
	if user == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(user))
	return "user:" + hex.EncodeToString(hash[:8])
}

// UserHash returns a slog attribute with the anonymized user identifier.
//
// Usage:
//
//	logger.Info("account selected", logging.UserHash(session.User.ID))
func UserHash(user string) slog.Attr {
	return slog.String(KeyUserHash, AnonymizeUser(user))
}

// SanitizeToken returns a masked version of a token for logging.
// It returns a length indicator without exposing any token content.
func SanitizeToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[token:%d chars]", len(token))
}
