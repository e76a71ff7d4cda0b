// Sleuth is an interactive terminal client for researching developer tools.
// It loads a YAML configuration, wires LLM providers and MCP web tools into
// agents, and offers three entry points: an interactive chat with the entry
// agent, a one-shot research workflow, and an init wizard that scaffolds the
// .sleuth/ directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/avelez/sleuth/pkg/engine"
	"github.com/avelez/sleuth/pkg/sleuthdir"
)

func main() {
	// Handle subcommands before flag parsing.
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "init":
			initCmd := flag.NewFlagSet("init", flag.ExitOnError)
			initCmd.Usage = func() {
				fmt.Fprintf(os.Stderr, "Usage: sleuth init [flags]\n\nInitialize a .sleuth directory with default structure and config.\n\nFlags:\n")
				initCmd.PrintDefaults()
			}
			dir := initCmd.String("sleuth-dir", ".sleuth", "path to .sleuth directory")
			defaults := initCmd.Bool("defaults", false, "skip the wizard and write the default config")
			_ = initCmd.Parse(os.Args[2:])

			if err := runInit(*dir, *defaults); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}

			return
		case "research":
			researchCmd := flag.NewFlagSet("research", flag.ExitOnError)
			researchCmd.Usage = func() {
				fmt.Fprintf(os.Stderr, "Usage: sleuth research [flags] <query>\n\nResearch alternatives for a developer tool and print a recommendation report.\nWithout a query, lists saved reports.\n\nFlags:\n")
				researchCmd.PrintDefaults()
			}
			configPath := researchCmd.String("config", "", "path to configuration file (default: .sleuth/config.yaml or sleuth.yaml)")
			dir := researchCmd.String("sleuth-dir", ".sleuth", "path to .sleuth directory")
			envFile := researchCmd.String("env", ".env", "path to .env file (ignored if missing)")
			save := researchCmd.Bool("save", false, "save the report under .sleuth/reports/")
			_ = researchCmd.Parse(os.Args[2:])

			// Without a query, list the saved reports instead.
			query := researchCmd.Arg(0)
			if query == "" {
				fmt.Println(listReports(*dir))
				return
			}

			if err := loadDotEnv(*envFile); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}

			if err := runResearch(*configPath, *dir, query, *save); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}

			return
		}
	}

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: sleuth [flags]\n       sleuth <command> [flags]\n\nFlags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nCommands:\n  init      Initialize a .sleuth directory with default structure and config\n  research  Research alternatives for a developer tool\n")
	}

	configPath := flag.String("config", "", "path to configuration file (default: .sleuth/config.yaml or sleuth.yaml)")
	sleuthDir := flag.String("sleuth-dir", ".sleuth", "path to .sleuth directory")
	envFile := flag.String("env", ".env", "path to .env file (ignored if missing)")
	agentName := flag.String("agent", "", "agent to start with (overrides entry_agent in config)")
	flag.Parse()

	if err := loadDotEnv(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := runChat(*configPath, *sleuthDir, *agentName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runInit(dirPath string, defaults bool) error {
	d := sleuthdir.New(dirPath)

	if defaults {
		if err := sleuthdir.Bootstrap(d); err != nil {
			return err
		}
		fmt.Printf("Initialized %s\n", d.Root())
		return nil
	}

	configYAML, err := runWizard()
	if err != nil {
		return err
	}

	if err := sleuthdir.BootstrapWithConfig(d, configYAML); err != nil {
		return err
	}

	fmt.Printf("Initialized %s\n", d.Root())
	fmt.Println("Put your API keys in a .env file and run 'sleuth' to start chatting.")

	return nil
}

func runChat(configPath, sleuthDirPath, agentName string) error {
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

	sess, err := eng.NewSession(agentName)
	if err != nil {
		return err
	}

	p := tea.NewProgram(newAppModel(ctx, sess, eng))

	// Send the program reference so the model can start the event bridge.
	go func() {
		p.Send(programReadyMsg{program: p})
	}()

	_, err = p.Run()
	return err
}
