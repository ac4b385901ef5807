// Package card_tools provides MCP tools for working with Fizzy cards.
//
// # Available Tools
//
// Read tools, always available:
//   - fizzy_list_cards: List cards, filtered by board, column, tag, assignee
//     or search terms
//   - fizzy_get_card: Get a single card by number
//
// Write tools, registered unless the server runs read-only:
//   - fizzy_task: Create or update a card and apply steps, tags, assignees,
//     a status change and a column move in one call
//   - fizzy_card_action: Close, reopen, defer, triage or untriage one or
//     more cards
//   - fizzy_toggle_tag: Add or remove a tag on a card
//   - fizzy_toggle_assignee: Assign or unassign a user
//   - fizzy_delete_card: Permanently delete a card
//   - fizzy_bulk_close: Close many cards selected by number or by filters
//
// fizzy_task never aborts half way once the card exists: steps that fail are
// reported under "failures" next to the operations that succeeded.
package card_tools
