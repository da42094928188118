// Copyright (c) 2026 Grove
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package terminal holds small ANSI helpers for interactive prompts.
package terminal

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// ClearPreviousLines erases a prompt and the input typed into it. textLength
// is the combined character count of prompt and input; line wrapping is
// derived from the current terminal width (80 when the width is unknown).
// One extra line is cleared for the newline the Enter key produced.
func ClearPreviousLines(textLength int) {
	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}

	lines := (textLength + width - 1) / width
	if lines < 1 {
		lines = 1
	}
	lines++ // the empty line the cursor landed on after Enter

	for i := 0; i < lines; i++ {
		fmt.Print("\r\x1b[2K")
		if i < lines-1 {
			fmt.Print("\x1b[1A")
		}
	}
}
