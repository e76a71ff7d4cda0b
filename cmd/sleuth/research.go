package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/avelez/sleuth/pkg/engine"
	"github.com/avelez/sleuth/pkg/research"
	"github.com/avelez/sleuth/pkg/sleuthdir"
)

func runResearch(configPath, sleuthDirPath, query string, save bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := engine.LoadConfig(resolveConfigPath(configPath, sleuthDirPath))
	if err != nil {
		return err
	}

	eng, err := engine.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	progress := func(step, detail string) {
		line := stepNameStyle.Render("● "+step) + " " + stepDetailStyle.Render(detail)
		fmt.Println(line)
	}

	wf, err := eng.NewResearchWorkflow(progress)
	if err != nil {
		return err
	}

	fmt.Println(stepDetailStyle.Render("Researching: ") + stepNameStyle.Render(query))

	state, err := wf.Run(ctx, query)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(renderReport(state))

	if save {
		path, err := saveReport(sleuthDirPath, query, state)
		if err != nil {
			return err
		}
		fmt.Println(stepDetailStyle.Render("Saved report to " + path))
	}

	return nil
}

// listReports returns a listing of saved reports under .sleuth/reports/,
// or a hint when none exist yet.
func listReports(sleuthDirPath string) string {
	d := sleuthdir.New(sleuthDirPath)

	if !d.Exists() {
		return "No " + d.Root() + " directory found. Run 'sleuth init' first."
	}

	reports := d.Reports()
	if len(reports) == 0 {
		return "No saved reports. Run 'sleuth research --save \"<query>\"' to create one."
	}

	out := "Saved reports:\n"
	for _, path := range reports {
		out += "  " + filepath.Base(path) + "\n"
	}

	return out
}

// renderReport formats the final analysis for the terminal. A width-aware
// glamour renderer is used when stdout is a TTY.
func renderReport(state *research.State) string {
	width := 100
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}
	initMarkdownRenderer(width - 2)

	return renderMarkdown(reportMarkdown(state))
}

// reportMarkdown assembles the report document from the workflow state.
func reportMarkdown(state *research.State) string {
	doc := "# Research: " + state.Query + "\n\n"

	if len(state.Companies) > 0 {
		doc += "## Candidates\n\n"
		for _, c := range state.Companies {
			doc += "- **" + c.Name + "**"
			if c.Website != "" {
				doc += " (" + c.Website + ")"
			}
			doc += "\n"
		}
		doc += "\n"
	}

	doc += "## Recommendation\n\n" + state.Analysis + "\n"

	return doc
}

// saveReport writes the report markdown under .sleuth/reports/ with a
// slug-plus-date filename.
func saveReport(sleuthDirPath, query string, state *research.State) (string, error) {
	d := sleuthdir.New(sleuthDirPath)

	if err := os.MkdirAll(d.ReportsDir(), 0o750); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}

	name := fmt.Sprintf("%s-%s.md", slugify(query), time.Now().Format("2006-01-02"))
	path := filepath.Join(d.ReportsDir(), name)

	if err := os.WriteFile(path, []byte(reportMarkdown(state)), 0o600); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	return path, nil
}
