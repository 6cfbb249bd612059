package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/monkeyWie/flutter-treeview/pkg/config"
	"github.com/monkeyWie/flutter-treeview/pkg/debug"
	"github.com/monkeyWie/flutter-treeview/pkg/export"
	"github.com/monkeyWie/flutter-treeview/pkg/loader"
	"github.com/monkeyWie/flutter-treeview/pkg/treeview"
	"github.com/monkeyWie/flutter-treeview/pkg/ui"
	"github.com/monkeyWie/flutter-treeview/pkg/version"
	"github.com/monkeyWie/flutter-treeview/pkg/watcher"
)

func main() {
	file := flag.String("file", "", "Tree definition file (.json, .yaml or .yml)")
	watch := flag.Bool("watch", false, "Reload the tree when the file changes on disk")
	plain := flag.Bool("plain", false, "Print the tree once without the interactive UI")
	levels := flag.Int("levels", -1, "Initially expanded levels (0 = all, overrides config)")
	jsonOut := flag.String("json", "", "Write the final selection as JSON to this file")
	svgOut := flag.String("snapshot-svg", "", "Write an SVG snapshot of the final tree to this file")
	sqliteOut := flag.String("export-sqlite", "", "Export the final tree to a SQLite database at this path")
	versionFlag := flag.Bool("version", false, "Show version")
	help := flag.Bool("help", false, "Show help")
	flag.Parse()

	if *help {
		fmt.Println("Usage: treeview -file <tree.json|tree.yaml> [options]")
		fmt.Println("\nAn interactive tri-state checkbox tree for the terminal.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("treeview %s\n", version.Version)
		os.Exit(0)
	}

	if *file == "" {
		fmt.Fprintln(os.Stderr, "Error: -file is required (see -help)")
		os.Exit(2)
	}

	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		// Non-fatal: continue with defaults.
		debug.Log("config load failed, using defaults: %v", cfgErr)
		cfg = config.DefaultConfig()
	}
	if *levels >= 0 {
		cfg.UI.InitialExpandedLevels = treeview.Levels(*levels)
	}

	tr, err := buildTree(*file, cfg.UI)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading tree: %v\n", err)
		os.Exit(1)
	}

	if *plain {
		fmt.Print(ui.RenderPlainTree(tr))
		return
	}

	theme := ui.DefaultTheme(lipgloss.DefaultRenderer())
	m := ui.NewModel(tr, theme, cfg.UI)
	m.SetTitle(*file)
	m.SetCopyFunc(export.CopyToClipboard)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithoutSignalHandler())

	var w *watcher.Watcher
	if *watch {
		w, err = watcher.New(*file, watcher.WithOnChange(func() {
			reloaded, loadErr := buildTree(*file, cfg.UI)
			if loadErr != nil {
				debug.Log("reload skipped, file unreadable: %v", loadErr)
				return
			}
			p.Send(ui.TreeReloadedMsg[string]{Tree: reloaded})
		}))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error watching %s: %v\n", *file, err)
			os.Exit(1)
		}
		if err := w.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Error watching %s: %v\n", *file, err)
			os.Exit(1)
		}
		defer w.Stop()
	}

	final, err := runTUIProgram(p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running treeview: %v\n", err)
		os.Exit(1)
	}

	if final == nil {
		return
	}
	finishedTree := final.Tree()
	values := finishedTree.SelectedValues()

	if *jsonOut != "" {
		if err := export.SaveJSON(*jsonOut, values); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing selection JSON: %v\n", err)
			os.Exit(1)
		}
	} else if err := export.WriteJSON(os.Stdout, values); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing selection: %v\n", err)
		os.Exit(1)
	}

	if *svgOut != "" {
		if err := export.SaveTreeSVG(*svgOut, finishedTree, *file); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing SVG snapshot: %v\n", err)
			os.Exit(1)
		}
	}
	if *sqliteOut != "" {
		if err := export.ExportSQLite(*sqliteOut, finishedTree); err != nil {
			fmt.Fprintf(os.Stderr, "Error exporting SQLite: %v\n", err)
			os.Exit(1)
		}
	}
}

// buildTree loads the definition file and builds the engine with the
// configured initial expansion and header affordances.
func buildTree(path string, uiCfg config.UIConfig) (*treeview.Tree[string], error) {
	roots, err := loader.LoadFile(path)
	if err != nil {
		return nil, err
	}
	onChanged := func(values []string) {
		debug.Log("selection changed: %d values", len(values))
	}
	return treeview.New(roots, onChanged, treeview.Config{
		InitialExpandedLevels:    uiCfg.InitialExpandedLevels,
		ShowSelectAll:            uiCfg.ShowSelectAll,
		ShowExpandCollapseButton: uiCfg.ShowExpandCollapseButton,
	}), nil
}

// runTUIProgram runs the bubbletea program with graceful shutdown on
// SIGINT/SIGTERM and returns the final widget state.
func runTUIProgram(p *tea.Program) (*ui.Model[string], error) {
	runDone := make(chan struct{})
	defer close(runDone)

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set TREEVIEW_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("TREEVIEW_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()

				select {
				case <-runDone:
					return
				case <-time.After(2 * time.Second):
				}

				p.Kill()
			}()
		}
	}

	finalModel, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
			err = nil
		} else {
			return nil, err
		}
	}
	if m, ok := finalModel.(ui.Model[string]); ok {
		return &m, nil
	}
	return nil, nil
}
