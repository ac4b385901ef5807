package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCategoryFromToolName(t *testing.T) {
	tests := map[string]string{
		"fizzy_whoami":         "Account Tools",
		"fizzy_select_account": "Account Tools",
		"fizzy_list_boards":    "Board Tools",
		"fizzy_list_tags":      "Board Tools",
		"fizzy_toggle_tag":     "Card Tools",
		"fizzy_task":           "Card Tools",
		"fizzy_update_step":    "Step Tools",
		"fizzy_delete_comment": "Comment Tools",
		"something_else":       "Other",
		"fizzy":                "Other",
	}
	for name, want := range tests {
		assert.Equal(t, want, getCategoryFromToolName(name), name)
	}
}

func TestGenerateToolMarkdown(t *testing.T) {
	tool := mcp.NewTool("fizzy_get_card",
		mcp.WithDescription("Get a card"),
		mcp.WithNumber("card_number", mcp.Required(), mcp.Description("Card number")),
		mcp.WithString("account"),
	)

	md := generateToolMarkdown(tool)
	assert.Contains(t, md, "### fizzy_get_card\n\nGet a card\n\n")
	assert.Contains(t, md, "| `account` | string | no |  |\n")
	assert.Contains(t, md, "| `card_number` | number | yes | Card number |\n")
}

func TestRunGenerateDocs(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runGenerateDocs(&out))

	md := out.String()
	assert.Contains(t, md, "# MCP Tools Reference")
	assert.Contains(t, md, "## Card Tools")
	assert.Contains(t, md, "### fizzy_bulk_close")
	assert.Contains(t, md, "`FIZZY_ACCOUNT`")

	// sections follow the fixed category order
	assert.Less(t, strings.Index(md, "## Account Tools"), strings.Index(md, "## Board Tools"))
	assert.Less(t, strings.Index(md, "## Card Tools"), strings.Index(md, "## Step Tools"))
	assert.NotContains(t, md, "## Other")
}
