package cmd

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/workspace-mcp/internal/server"
)

const (
	docsFormatMarkdown = "markdown"
	docsFormatHTML     = "html"
)

func newGenerateDocsCmd() *cobra.Command {
	var (
		outputFile string
		format     string
	)

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Generate documentation for all available MCP tools.
This command introspects the registered tools and outputs their documentation
in markdown or HTML, ensuring the documentation is always accurate and in sync
with the actual tool implementations.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateDocs(outputFile, format)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&format, "format", docsFormatMarkdown, "Output format: markdown or html")

	return cmd
}

func runGenerateDocs(outputFile, format string) error {
	if format != docsFormatMarkdown && format != docsFormatHTML {
		return fmt.Errorf("unsupported format: %s (supported: markdown, html)", format)
	}

	// No credentials are needed to describe the tools.
	serverContext := server.NewServerContext(context.Background(), server.Config{}, nil)
	defer func() {
		_ = serverContext.Shutdown()
	}()

	// Note: mcp.Implementation has Title field but WithTitle() ServerOption not available in v0.43.0
	mcpSrv := mcpserver.NewMCPServer("workspace-mcp", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
	)

	// Register write tools too so the reference is complete.
	if err := registerAllTools(mcpSrv, serverContext, false); err != nil {
		return err
	}

	serverTools := mcpSrv.ListTools()
	tools := make([]mcp.Tool, 0, len(serverTools))
	for _, serverTool := range serverTools {
		tools = append(tools, serverTool.Tool)
	}

	doc := generateToolsMarkdown(tools)
	if format == docsFormatHTML {
		doc = renderHTML(doc)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(doc), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Documentation written to: %s\n", outputFile)
	} else {
		fmt.Print(doc)
	}

	return nil
}

// renderHTML converts the markdown reference into a standalone HTML page.
func renderHTML(md string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: "workspace-mcp tools reference",
	})
	return string(markdown.ToHTML([]byte(md), p, renderer))
}

// toolCategories orders the reference. Tools are grouped by name prefix.
var toolCategories = []struct {
	prefix string
	title  string
}{
	{"sheets", "Google Sheets Tools"},
	{"accomplishment", "Accomplishment Journal Tools"},
	{"calendar", "Google Calendar Tools"},
	{"gmail", "Gmail Tools"},
	{"tasks", "Google Tasks Tools"},
	{"drive", "Google Drive Tools"},
	{"google", "Google Account Tools"},
}

const otherCategory = "Other Tools"

func generateToolsMarkdown(tools []mcp.Tool) string {
	var sb strings.Builder

	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("This document lists every tool available when running workspace-mcp as an MCP server.\n\n")
	sb.WriteString("**Note:** This documentation is automatically generated from the tool definitions.\n\n")

	grouped := groupToolsByCategory(tools)
	titles := make([]string, 0, len(toolCategories)+1)
	for _, c := range toolCategories {
		if len(grouped[c.title]) > 0 {
			titles = append(titles, c.title)
		}
	}
	if len(grouped[otherCategory]) > 0 {
		titles = append(titles, otherCategory)
	}

	sb.WriteString("## Table of Contents\n\n")
	for _, title := range titles {
		fmt.Fprintf(&sb, "- [%s](#%s)\n", title, strings.ToLower(strings.ReplaceAll(title, " ", "-")))
	}
	sb.WriteString("\n")

	sb.WriteString("## Accounts and Safety Mode\n\n")
	sb.WriteString("- Every tool accepts an optional `account` argument. Without it the `default` account is used.\n")
	sb.WriteString("- Tools that modify data are only registered when the server runs with `--yolo`.\n")
	sb.WriteString("- Spreadsheet tools fall back to the configured `SPREADSHEET_ID` when `spreadsheet_id` is omitted.\n\n")

	for _, title := range titles {
		group := grouped[title]
		sort.Slice(group, func(i, j int) bool { return group[i].Name < group[j].Name })

		fmt.Fprintf(&sb, "## %s\n\n", title)
		for _, tool := range group {
			sb.WriteString(generateToolMarkdown(tool))
		}
	}

	return sb.String()
}

func groupToolsByCategory(tools []mcp.Tool) map[string][]mcp.Tool {
	grouped := make(map[string][]mcp.Tool)
	for _, tool := range tools {
		title := getCategoryFromToolName(tool.Name)
		grouped[title] = append(grouped[title], tool)
	}
	return grouped
}

func getCategoryFromToolName(name string) string {
	prefix, _, _ := strings.Cut(name, "_")
	for _, c := range toolCategories {
		if c.prefix == prefix {
			return c.title
		}
	}
	return otherCategory
}

// generateToolMarkdown renders one tool with its arguments as a table.
func generateToolMarkdown(tool mcp.Tool) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "### %s\n\n", tool.Name)
	if tool.Description != "" {
		sb.WriteString(tool.Description + "\n\n")
	}

	props := tool.InputSchema.Properties
	if len(props) == 0 {
		return sb.String()
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	// Required arguments first, then alphabetical.
	sort.Slice(names, func(i, j int) bool {
		ri := slices.Contains(tool.InputSchema.Required, names[i])
		rj := slices.Contains(tool.InputSchema.Required, names[j])
		if ri != rj {
			return ri
		}
		return names[i] < names[j]
	})

	sb.WriteString("| Argument | Type | Required | Description |\n")
	sb.WriteString("|---|---|---|---|\n")
	for _, name := range names {
		prop, ok := props[name].(map[string]any)
		if !ok {
			continue
		}
		required := "no"
		if slices.Contains(tool.InputSchema.Required, name) {
			required = "yes"
		}
		desc, _ := prop["description"].(string)
		fmt.Fprintf(&sb, "| `%s` | %s | %s | %s |\n", name, getPropertyType(prop), required, escapeTableCell(desc))
	}
	sb.WriteString("\n")

	return sb.String()
}

func getPropertyType(prop map[string]any) string {
	if t, ok := prop["type"].(string); ok {
		return t
	}
	return "any"
}

func escapeTableCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
