package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// printBanner tells the operator what is served and how to reach it.
func printBanner(w io.Writer, base, addr string) {
	var (
		title = color.New(color.Bold)
		label = color.New(color.FgHiBlack)
		link  = color.New(color.FgCyan)
	)
	title.Fprintf(w, "Serving random HTML from: %s\n", base)
	examples := []struct{ what, path string }{
		{"Random from all:", "/"},
		{"Random from dir:", "/christmas"},
		{"Exact file:", "/silly/forest"},
		{"List all:", "/?list"},
		{"List dir:", "/silly?list"},
	}
	for _, e := range examples {
		label.Fprintf(w, "  %-20s", e.what)
		link.Fprintf(w, "http://%s%s", addr, e.path)
		fmt.Fprintln(w)
	}
}
