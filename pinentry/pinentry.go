// Package pinentry prompts for secrets via a gpg pinentry program when
// one is installed, keeping master passwords out of terminal echo and
// scrollback.
package pinentry

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// ErrNotFound is returned when no pinentry program can be located, or
// when $PINENTRY is set to "none".
var ErrNotFound = errors.New("pinentry program not found")

var candidates = []string{
	"pinentry",
	"pinentry-gnome3",
	"pinentry-kde",
	"pinentry-x11",
	"pinentry-curses",
	"pinentry-tty",
}

var cached string

func findProgram() string {
	program := os.Getenv("PINENTRY")
	if len(program) != 0 {
		return program
	}

	if len(cached) == 0 {
		for _, c := range candidates {
			if _, err := exec.LookPath(c); err == nil {
				cached = c
				break
			}
		}
	}

	return cached
}

// Password asks a pinentry program for a secret using the given
// description. A cancelled dialog returns an empty string and no error.
func Password(description string) (string, error) {
	program := findProgram()
	if len(program) == 0 || program == "none" {
		return "", ErrNotFound
	}

	cmd := exec.Command(program, "--ttyname", "/dev/tty")
	cmd.Stderr = os.Stderr

	in, err := cmd.StdinPipe()
	if err != nil {
		return "", fmt.Errorf("failed to open pinentry stdin: %w", err)
	}
	out, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("failed to open pinentry stdout: %w", err)
	}

	if err = cmd.Start(); err != nil {
		return "", fmt.Errorf("failed to start pinentry: %w", err)
	}

	conv := conversation{in: in, scanner: bufio.NewScanner(out)}

	password, err := conv.getPIN(description)
	if err != nil {
		return "", err
	}

	if err = cmd.Wait(); err != nil {
		return "", err
	}

	return password, nil
}

type conversation struct {
	in      io.Writer
	scanner *bufio.Scanner
}

func (c conversation) line() (string, error) {
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return c.scanner.Text(), nil
}

func (c conversation) send(line string) error {
	_, err := fmt.Fprintln(c.in, line)
	return err
}

func (c conversation) expectOK(context string) error {
	resp, err := c.line()
	if err != nil {
		return err
	}
	if resp != "OK" {
		return fmt.Errorf("pinentry rejected %s", context)
	}
	return nil
}

func (c conversation) getPIN(description string) (string, error) {
	greeting, err := c.line()
	if err != nil {
		return "", err
	}
	if greeting != "OK Pleased to meet you" {
		return "", errors.New("rogue pinentry program")
	}

	setup := []string{
		"SETTITLE SSH connection manager",
		"SETDESC " + description,
		"OPTION lc-ctype UTF-8",
	}
	if term := os.Getenv("TERM"); len(term) != 0 {
		setup = append(setup, "OPTION ttytype "+term)
	}
	if display := os.Getenv("DISPLAY"); len(display) != 0 {
		setup = append(setup, "OPTION display "+display)
	}

	for _, s := range setup {
		if err = c.send(s); err != nil {
			return "", err
		}
		if err = c.expectOK(s); err != nil {
			return "", err
		}
	}

	if err = c.send("GETPIN"); err != nil {
		return "", err
	}

	var password string
	resp, err := c.line()
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(resp, "D ") {
		password = resp[2:]
		if resp, err = c.line(); err != nil {
			return "", err
		}
	} else if strings.HasPrefix(resp, "ERR") && strings.Contains(resp, "Operation cancelled") {
		return "", nil
	}
	if resp != "OK" {
		return "", errors.New("rogue pinentry program")
	}

	return password, c.send("BYE")
}
