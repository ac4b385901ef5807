// Package board_tools provides MCP tools for browsing the structure of a
// Fizzy account: boards, their columns, tags and users.
//
// # Available Tools
//
//   - fizzy_list_boards: List boards
//   - fizzy_get_board: Get a single board
//   - fizzy_list_columns: List the columns of a board
//   - fizzy_list_tags: List the account's tags
//   - fizzy_list_users: List the account's users
//
// All list tools return {"items": [...], "pagination": {...}}. Pass
// pagination.next_cursor back as cursor to fetch the following page.
package board_tools
