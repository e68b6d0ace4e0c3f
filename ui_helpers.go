package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/szwenni/sshConnectionManager/pinentry"
	"github.com/szwenni/sshConnectionManager/registry"

	"github.com/gookit/color"
)

var (
	errColor         = color.FgLightRed
	infoColor        = color.FgLightMagenta
	inputPromptColor = color.FgYellow
	keyColor         = color.FgLightGreen
	folderColor      = color.FgLightBlue
)

// promptPassword prefers an external pinentry program and falls back
// to hidden terminal entry.
func (u *uiContext) promptPassword(prompt string) (string, error) {
	password, err := pinentry.Password(color.ClearCode(prompt))
	if err == nil {
		return password, nil
	} else if err != pinentry.ErrNotFound {
		return "", err
	}

	return u.in.LineHidden(prompt)
}

func (u *uiContext) prompt(prompt string) (string, error) {
	line, err := u.in.Line(prompt)
	if err != nil {
		return "", err
	}

	return line, nil
}

// getString ensures a non-empty string
func (u *uiContext) getString(key string) (string, error) {
	var str string
	var err error

Again:
	str, err = u.prompt(inputPromptColor.Sprint(key + ": "))
	if err != nil {
		return "", err
	}
	if len(str) == 0 {
		errColor.Println(key, "cannot be empty")
		goto Again
	}

	return str, nil
}

// getStringDefault returns def when the user enters nothing.
func (u *uiContext) getStringDefault(key, def string) (string, error) {
	str, err := u.prompt(inputPromptColor.Sprintf("%s [%s]: ", key, def))
	if err != nil {
		return "", err
	}
	if len(str) == 0 {
		return def, nil
	}

	return str, nil
}

func (u *uiContext) getInt(key string, min, max int) (int, error) {
	var str string
	var err error
	var integer int

Again:
	str, err = u.prompt(inputPromptColor.Sprint(key + ": "))
	if err != nil {
		return 0, err
	}

	if len(str) == 0 {
		errColor.Println(key, "cannot be empty")
		goto Again
	}

	integer, err = strconv.Atoi(str)
	if err != nil || integer < min || integer > max {
		errColor.Printf("%s must be an integer between %d and %d\n", key, min, max)
		goto Again
	}

	return integer, nil
}

func (u *uiContext) getMenuChoice(prompt string, items []string) (int, error) {
	var choice string
	var integer int
	var i int
	var item string
	var err error

Again:
	for i, item = range items {
		inputPromptColor.Printf(" %d) %s\n", i+1, item)
	}
	choice, err = u.prompt(infoColor.Sprint(prompt))
	if err != nil {
		return 0, err
	}

	integer, err = strconv.Atoi(choice)
	if err != nil {
		errColor.Println("invalid choice")
		goto Again
	}

	integer--
	if integer < 0 || integer >= len(items) {
		goto Again
	}

	return integer, nil
}

// findOne resolves an argument to a single connection. Numeric
// arguments are ids, anything else matches by exact name or ip. A nil
// return with nil error means a message was already shown to the user.
func (u *uiContext) findOne(arg string) (*registry.Connection, error) {
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		conn, err := u.reg.Get(id)
		if err == registry.ErrNotFound {
			errColor.Printf("No connection with id %d\n", id)
			return nil, nil
		}
		return conn, err
	}

	conn, err := u.reg.FindByHost(arg)
	if err == registry.ErrNotFound {
		errColor.Printf("No connection named %q\n", arg)
		return nil, nil
	}

	return conn, err
}

// showTree renders the folder hierarchy the way the curses UI of old
// did it, folders first, then their connections indented beneath.
func (u *uiContext) showTree(root *registry.Folder) {
	if len(root.Connections) == 0 && len(root.Children) == 0 {
		infoColor.Println("No connections yet, try \"add\"")
		return
	}

	u.showFolder(root, 0)
}

func (u *uiContext) showFolder(f *registry.Folder, depth int) {
	indent := strings.Repeat("  ", depth)

	for _, c := range f.Connections {
		port := ""
		if c.Type == registry.TypeSSH {
			port = fmt.Sprintf(":%d", c.SSHPort())
		}
		fmt.Fprintf(u.out, "%s└─ %s %s  %s@%s%s (%s)\n",
			indent,
			keyColor.Sprintf("%4d", c.ID),
			c.Name, c.Username, c.IP, port, c.Type,
		)
	}

	for _, child := range f.Children {
		fmt.Fprintf(u.out, "%s%s/\n", indent, folderColor.Sprint(child.Name))
		u.showFolder(child, depth+1)
	}
}
