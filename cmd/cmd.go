/*
Package cmd provides CLI functionality shared by the scr commands.
*/
package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// PrintError prints the error in red to the given writer, typically stderr.
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %s\n", color.HiRedString("Error:"), err.Error())
}
