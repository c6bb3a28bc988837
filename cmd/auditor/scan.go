package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/config"
	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/detector"
	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/models"
	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/orchestrator"
	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/report"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#6C5CE7"))
	cleanStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00B894"))
	metaStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#636e72"))

	severityStyles = map[models.Severity]lipgloss.Style{
		models.SeverityLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("#74B9FF")),
		models.SeverityMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FDCB6E")),
		models.SeverityHigh:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E17055")),
		models.SeverityCritical: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#D63031")),
	}
)

func newScanCmd(a *app) *cobra.Command {
	var localOnly bool

	cmd := &cobra.Command{
		Use:   "scan [file|-]",
		Short: "Scan a file or stdin through the classification chain",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "-"
			if len(args) == 1 {
				name = args[0]
			}

			content, err := readInput(cmd.InOrStdin(), name)
			if err != nil {
				return err
			}

			var chain *orchestrator.Classification
			if localOnly {
				chain = orchestrator.LocalOnly(a.logger)
			} else {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				chain = orchestrator.NewClassification(cmd.Context(), cfg, a.logger)
			}

			issues := chain.Scanner.Scan(cmd.Context(), content)
			if name != "-" {
				issues = detector.SupplementFileNameIssues(filepath.Base(name), issues)
			}

			fmt.Fprintln(cmd.OutOrStdout(), render(name, issues))
			return nil
		},
	}

	cmd.Flags().BoolVar(&localOnly, "local", false, "use the pattern matcher only")
	return cmd
}

func readInput(stdin io.Reader, name string) (string, error) {
	if name == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return string(data), nil
}

func render(name string, issues []models.Issue) string {
	source := name
	if source == "-" {
		source = "stdin"
	}

	if len(issues) == 0 {
		return cleanStyle.Render(fmt.Sprintf("No compliance issues found in %s.", source))
	}

	summary := report.Summarize(issues)
	style, ok := severityStyles[summary.Severity]
	if !ok {
		style = metaStyle
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Compliance scan: "+source),
		report.FormatIssues(issues, "file", source),
		"",
		metaStyle.Render("Combined severity: ")+style.Render(summary.Severity.String()),
	)
}
