package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"

	"github.com/teemow/fizzy-mcp/internal/fizzy"
	"github.com/teemow/fizzy-mcp/internal/server"
)

// toolCategories lists the documentation sections in output order.
var toolCategories = []string{
	"Account Tools",
	"Board Tools",
	"Card Tools",
	"Step Tools",
	"Comment Tools",
	"Other",
}

const docsPreamble = `# MCP Tools Reference

Every tool fizzy-mcp registers when it runs as an MCP server. This file is
generated from the tool definitions with ` + "`fizzy-mcp generate-docs`" + `.

## Account Selection

Tools that work on Fizzy data take an optional ` + "`account`" + ` argument holding
the account slug. Without it the account is resolved in this order:

1. The account chosen with ` + "`fizzy_select_account`" + `
2. The ` + "`FIZZY_ACCOUNT`" + ` environment variable
3. The only account the token can access

List tools return a ` + "`next_cursor`" + ` while more results exist. Pass it back
as ` + "`cursor`" + ` to fetch the next page.

`

func newGenerateDocsCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate markdown documentation for the MCP tools",
		Long: `Registers every tool in read-write mode and writes a markdown reference
of their names, descriptions and arguments.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output == "" {
				return runGenerateDocs(cmd.OutOrStdout())
			}
			return writeDocsFile(output, cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

func writeDocsFile(path string, status io.Writer) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("write %s: %w", path, cerr)
		}
	}()
	if err := runGenerateDocs(f); err != nil {
		return err
	}
	fmt.Fprintf(status, "Documentation written to %s\n", path)
	return nil
}

func runGenerateDocs(w io.Writer) error {
	// Registration never calls the API.
	client, err := fizzy.NewClient(fizzy.DefaultBaseURL, "docs-token")
	if err != nil {
		return err
	}
	sc, err := server.NewServerContext(context.Background(), client)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() { _ = sc.Shutdown() }()

	mcpSrv := newMCPServer(nil, nil)
	if err := registerAllTools(mcpSrv, sc); err != nil {
		return err
	}

	tools := make([]mcp.Tool, 0)
	for _, st := range mcpSrv.ListTools() {
		tools = append(tools, st.Tool)
	}
	_, err = io.WriteString(w, generateToolsMarkdown(tools))
	return err
}

func generateToolsMarkdown(tools []mcp.Tool) string {
	byCategory := make(map[string][]mcp.Tool)
	for _, tool := range tools {
		c := getCategoryFromToolName(tool.Name)
		byCategory[c] = append(byCategory[c], tool)
	}

	var sb strings.Builder
	sb.WriteString(docsPreamble)

	sb.WriteString("## Contents\n\n")
	for _, c := range toolCategories {
		if len(byCategory[c]) > 0 {
			fmt.Fprintf(&sb, "- [%s](#%s) (%d)\n", c, strings.ToLower(strings.ReplaceAll(c, " ", "-")), len(byCategory[c]))
		}
	}
	sb.WriteString("\n")

	for _, c := range toolCategories {
		group := byCategory[c]
		if len(group) == 0 {
			continue
		}
		slices.SortFunc(group, func(a, b mcp.Tool) int { return strings.Compare(a.Name, b.Name) })

		fmt.Fprintf(&sb, "## %s\n\n", c)
		for _, tool := range group {
			sb.WriteString(generateToolMarkdown(tool))
		}
	}
	return sb.String()
}

// getCategoryFromToolName files a fizzy_* tool under the resource named by
// the last word of its name.
func getCategoryFromToolName(name string) string {
	rest, ok := strings.CutPrefix(name, "fizzy_")
	if !ok || rest == "" {
		return "Other"
	}
	words := strings.Split(rest, "_")

	switch words[len(words)-1] {
	case "account", "whoami":
		return "Account Tools"
	case "boards", "board", "columns", "tags", "users":
		return "Board Tools"
	case "steps", "step":
		return "Step Tools"
	case "comments", "comment":
		return "Comment Tools"
	}
	return "Card Tools"
}

// generateToolMarkdown renders one tool as a heading, its description and
// an argument table.
func generateToolMarkdown(tool mcp.Tool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "### %s\n\n", tool.Name)
	if tool.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", tool.Description)
	}

	props := tool.InputSchema.Properties
	if len(props) == 0 {
		return sb.String()
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	slices.Sort(names)

	sb.WriteString("| Argument | Type | Required | Description |\n")
	sb.WriteString("|---|---|---|---|\n")
	for _, name := range names {
		prop, _ := props[name].(map[string]any)
		typ, _ := prop["type"].(string)
		if typ == "" {
			typ = "any"
		}
		desc, _ := prop["description"].(string)
		required := "no"
		if slices.Contains(tool.InputSchema.Required, name) {
			required = "yes"
		}
		fmt.Fprintf(&sb, "| `%s` | %s | %s | %s |\n", name, typ, required, strings.ReplaceAll(desc, "|", `\|`))
	}
	sb.WriteString("\n")
	return sb.String()
}
