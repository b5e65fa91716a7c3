package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Persistent flags shared by every command.
var (
	configPath string
	debugFlag  bool
	accountArg string
)

// rootCmd represents the base command for the classroom-grader application
var rootCmd = &cobra.Command{
	Use:   "classroom-grader",
	Short: "Extracts Google Classroom submissions and drafts AI feedback",
	Long: `classroom-grader reads student submissions from Google Classroom, extracts
the text of their Drive files, Forms responses and linked Docs, and can draft
AI feedback, write grades and email students.

It can run as:
  - A standalone CLI tool (default)
  - An MCP (Model Context Protocol) server for AI assistants`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "classroom-grader version %s\n" .Version}}`)

	// If no subcommand is provided, list courses by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "courses")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/classroom-grader/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging. Can also use GRADER_DEBUG env var.")
	rootCmd.PersistentFlags().StringVar(&accountArg, "account", "", "Google account name (default: the configured account). Can also use GRADER_ACCOUNT env var.")

	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newCoursesCmd())
	rootCmd.AddCommand(newAssignmentsCmd())
	rootCmd.AddCommand(newExtractCmd())
	rootCmd.AddCommand(newGradeCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}
