// Package step_tools provides MCP tools for the checklist steps of a card.
//
// # Available Tools
//
//   - fizzy_list_steps: List the steps of a card
//   - fizzy_create_step: Append a step (not in read-only mode)
//   - fizzy_update_step: Change a step's text or completion (not in
//     read-only mode)
//   - fizzy_delete_step: Remove a step (not in read-only mode)
package step_tools
