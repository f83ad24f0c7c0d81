package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	tui := flag.Bool("tui", false, "show program output in a scrollable TUI")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: pseudo [-tui] <source file>")
		os.Exit(2)
	}
	path := flag.Arg(0)
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pseudo: %v\n", err)
		os.Exit(1)
	}

	if !*tui {
		if err := runPlain(string(src)); err != nil {
			fmt.Fprintf(os.Stderr, "pseudo: %v\n", err)
			os.Exit(1)
		}
		return
	}

	p := tea.NewProgram(newModel(path, string(src)), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "tui: %v\n", err)
		os.Exit(1)
	}
}
