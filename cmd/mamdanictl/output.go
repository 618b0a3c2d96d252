package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	outputAuto = "auto"
	outputJSON = "json"
	outputText = "text"
)

type printer struct {
	w    io.Writer
	json bool
}

func newPrinter(w io.Writer, mode string) (*printer, error) {
	switch mode {
	case outputJSON:
		return &printer{w: w, json: true}, nil
	case outputText:
		return &printer{w: w}, nil
	case outputAuto, "":
		return &printer{w: w, json: !isTerminal(w)}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", mode)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *printer) JSON() bool {
	return p.json
}

func (p *printer) Encode(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *printer) Printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}
