//go:build linux || darwin

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
)

func setupLineEditor(u *uiContext) error {
	var err error
	u.in, err = newReadlineEditor(u.out)
	return err
}

type readlineEditor struct {
	currentPrompt    string
	promptNeedsReset bool
	instance         *readline.Instance
	out              io.Writer
}

func newReadlineEditor(out io.Writer) (readlineEditor, error) {
	instance, err := readline.NewEx(readlineConfig(out, nil))
	if err != nil {
		return readlineEditor{}, err
	}

	return readlineEditor{instance: instance, out: out}, nil
}

func readlineConfig(out io.Writer, connCompleter func(string) []string) *readline.Config {
	var completer readline.AutoCompleter
	if connCompleter != nil {
		completer = readlineAutocompleter(connCompleter)
	}

	return &readline.Config{
		Prompt: "> ",

		AutoComplete: completer,

		HistoryFile:            "",
		HistoryLimit:           1000,
		DisableAutoSaveHistory: true,

		InterruptPrompt: "interrupt",
		EOFPrompt:       "exit",

		Stdin:  os.Stdin,
		Stdout: out,
		Stderr: os.Stderr,

		UniqueEditLine: false,
	}
}

// Line implements LineEditor.Line
func (r readlineEditor) Line(prompt string) (string, error) {
	if r.currentPrompt != prompt || r.promptNeedsReset {
		r.currentPrompt = prompt
		r.promptNeedsReset = false
		r.instance.SetPrompt(prompt)
	}

	s, err := r.instance.Readline()
	switch err {
	case nil:
		return s, nil
	case io.EOF:
		r.promptNeedsReset = true
		return "", ErrEnd
	case readline.ErrInterrupt:
		return "", ErrInterrupt
	default:
		return "", err
	}
}

// LineHidden implements LineEditor.LineHidden
func (r readlineEditor) LineHidden(prompt string) (string, error) {
	byt, err := r.instance.ReadPassword(prompt)
	switch err {
	case nil:
		return string(byt), nil
	case io.EOF:
		r.promptNeedsReset = true
		return "", ErrEnd
	case readline.ErrInterrupt:
		return "", ErrInterrupt
	default:
		return "", err
	}
}

// AddHistory adds a line to history
func (r readlineEditor) AddHistory(line string) {
	err := r.instance.SaveHistory(line)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to save history line:", err)
	}
}

// SetConnCompleter sets a completion function for connection names.
func (r readlineEditor) SetConnCompleter(connCompleter func(string) []string) {
	r.instance.SetConfig(readlineConfig(r.out, connCompleter))
}

func readlineAutocompleter(connCompleter func(string) []string) readline.AutoCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("ls"),
		readline.PcItem("search"),
		readline.PcItem("add"),
		readline.PcItem("edit", readline.PcItemDynamic(connCompleter)),
		readline.PcItem("rm", readline.PcItemDynamic(connCompleter)),
		readline.PcItem("connect", readline.PcItemDynamic(connCompleter)),
		readline.PcItem("cp", readline.PcItemDynamic(connCompleter)),
		readline.PcItem("totp", readline.PcItemDynamic(connCompleter)),
		readline.PcItem("gen"),
		readline.PcItem("passwd"),
		readline.PcItem("db"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
}

// Close the readline editor
func (r readlineEditor) Close() error {
	return r.instance.Close()
}
