package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/FreeMarketamilitia/classroom-grader/internal/server"
)

// toolCategories lists the reference sections in the order they are written.
// A tool belongs to the first category whose verb matches the second segment
// of its name.
var toolCategories = []struct {
	title string
	verbs []string
}{
	{title: "Listing Tools", verbs: []string{"list"}},
	{title: "Extraction Tools", verbs: []string{"extract"}},
	{title: "Feedback Tools", verbs: []string{"generate"}},
	{title: "Grade Tools", verbs: []string{"patch", "return"}},
}

const otherCategory = "Other"

func newGenerateDocsCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Generate a markdown reference of every MCP tool the server registers,
including the grade write tools. The reference is built from the live tool
definitions.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			markdown, err := buildToolsReference()
			if err != nil {
				return err
			}
			if outputFile == "" {
				_, err = io.WriteString(cmd.OutOrStdout(), markdown)
				return err
			}
			if err := os.WriteFile(outputFile, []byte(markdown), 0o644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Documentation written to: %s\n", outputFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

// buildToolsReference registers the tools against a credential-free server
// context and renders them.
func buildToolsReference() (string, error) {
	sc, err := server.NewServerContext(context.Background(), server.Options{})
	if err != nil {
		return "", fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		_ = sc.Shutdown()
	}()

	mcpSrv, err := newMCPServer(sc, false)
	if err != nil {
		return "", err
	}

	tools := make([]mcp.Tool, 0, len(mcpSrv.ListTools()))
	for _, st := range mcpSrv.ListTools() {
		tools = append(tools, st.Tool)
	}
	return renderToolsReference(tools), nil
}

func toolCategory(name string) string {
	parts := strings.SplitN(name, "_", 3)
	if len(parts) < 2 || parts[0] != "classroom" {
		return otherCategory
	}
	for _, c := range toolCategories {
		if slices.Contains(c.verbs, parts[1]) {
			return c.title
		}
	}
	return otherCategory
}

func renderToolsReference(tools []mcp.Tool) string {
	grouped := make(map[string][]mcp.Tool)
	for _, tool := range tools {
		c := toolCategory(tool.Name)
		grouped[c] = append(grouped[c], tool)
	}

	var titles []string
	for _, c := range toolCategories {
		if len(grouped[c.title]) > 0 {
			titles = append(titles, c.title)
		}
	}
	if len(grouped[otherCategory]) > 0 {
		titles = append(titles, otherCategory)
	}

	var b strings.Builder
	b.WriteString("# MCP Tools Reference\n\n")
	b.WriteString("Tools exposed by `classroom-grader serve`. Generated from the registered tool definitions.\n\n")

	b.WriteString("## Table of Contents\n\n")
	for _, title := range titles {
		fmt.Fprintf(&b, "- [%s](#%s)\n", title, strings.ToLower(strings.ReplaceAll(title, " ", "-")))
	}

	b.WriteString("\n## Accounts\n\n")
	b.WriteString("Every tool accepts an optional `account` parameter naming the Google account whose token is used. ")
	b.WriteString("Without it the configured account is used (`default` unless `google.account` or `GRADER_ACCOUNT` is set). ")
	b.WriteString("Authorize an account with `classroom-grader auth --account <name>`.\n\n")
	b.WriteString("Grade write tools are not registered when the server runs with `--read-only`.\n\n")

	for _, title := range titles {
		group := grouped[title]
		sort.Slice(group, func(i, j int) bool { return group[i].Name < group[j].Name })

		fmt.Fprintf(&b, "## %s\n\n", title)
		for _, tool := range group {
			writeToolSection(&b, tool)
		}
	}
	return b.String()
}

func writeToolSection(b *strings.Builder, tool mcp.Tool) {
	fmt.Fprintf(b, "### %s\n\n", tool.Name)
	if tool.Description != "" {
		fmt.Fprintf(b, "%s\n\n", tool.Description)
	}

	props := tool.InputSchema.Properties
	if len(props) == 0 {
		return
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	b.WriteString("**Arguments:**\n")
	for _, name := range names {
		prop, ok := props[name].(map[string]any)
		if !ok {
			continue
		}
		presence := "optional"
		if slices.Contains(tool.InputSchema.Required, name) {
			presence = "required"
		}
		desc, _ := prop["description"].(string)
		if desc == "" {
			kind, _ := prop["type"].(string)
			if kind == "" {
				kind = "any"
			}
			desc = kind + " parameter"
		}
		fmt.Fprintf(b, "- `%s` (%s): %s\n", name, presence, desc)
	}
	b.WriteString("\n")
}
