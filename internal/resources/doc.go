// Package resources provides MCP resources describing the Fizzy session.
// Resources are read-only data sources that MCP clients can fetch without
// calling a tool:
//
//   - fizzy://session: the account tool calls currently apply to
//   - fizzy://accounts: every account the access token can reach
package resources
