// Package comment_tools provides MCP tools for card comments.
//
// # Available Tools
//
//   - fizzy_list_comments: List comments, newest first on the first page
//   - fizzy_add_comment: Post a Markdown comment (not in read-only mode)
//   - fizzy_delete_comment: Delete a comment (not in read-only mode)
package comment_tools
