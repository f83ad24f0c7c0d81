package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/gosuda/pseudocode"
)

// runPlain executes the program with its output stream attached straight
// to stdout.
func runPlain(src string) error {
	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	if err := pseudocode.Run(src, w); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}
