// Package account_tools provides MCP tools for choosing the Fizzy account
// that later tool calls apply to.
//
// # Available Tools
//
//   - fizzy_whoami: List the accounts the access token can reach and the
//     current session
//   - fizzy_select_account: Make an account the session account
//   - fizzy_reset_account: Clear the session, the auto-detect cache or both
//
// The session is process-wide: once an account is selected or auto-detected
// every tool call without an explicit account argument uses it.
package account_tools
