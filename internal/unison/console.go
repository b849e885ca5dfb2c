package unison

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Console prints the operator-facing status lines on stdout.
type Console struct {
	w     io.Writer
	red   *color.Color
	green *color.Color
}

// NewConsole writes to w, colouring output only when w is a terminal.
func NewConsole(w io.Writer) *Console {
	c := &Console{
		w:     w,
		red:   color.New(color.FgHiRed, color.Bold),
		green: color.New(color.FgHiGreen),
	}
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) && !color.NoColor {
		c.red.EnableColor()
		c.green.EnableColor()
	} else {
		c.red.DisableColor()
		c.green.DisableColor()
	}
	return c
}

// Println prints msg uncoloured.
func (c *Console) Println(msg string) {
	fmt.Fprintln(c.w, msg)
}

// Success prints msg in green.
func (c *Console) Success(msg string) {
	fmt.Fprintln(c.w, c.green.Sprint(msg))
}

// Failure starts on a fresh line: unison often leaves its last line unterminated.
func (c *Console) Failure(msg string) {
	fmt.Fprintln(c.w, "\n"+c.red.Sprint(msg))
}
