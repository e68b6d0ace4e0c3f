package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gookit/color"
)

const replHelp = `Commands:
 ls   [query]    - List connections as a folder tree, query fuzzy-filters
 search <query>  - Same as ls with a required query
 add             - Add a new connection
 edit <id|name>  - Edit a connection and its secrets
 rm   <id|name>  - Delete a connection and its secrets
 connect <id|name> - Open an ssh or rdp session
 cp   <id|name>  - Copy a connection's password to the clipboard
 totp <id|name>  - Show the current two-factor code
 gen  [length]   - Generate a password
 passwd          - Set, change or remove the master password
 db              - Reconfigure the connection database
 help            - This help
 quit            - Exit

Arguments:
  id:    the number shown by ls
  name:  an exact connection name or ip
  query: a fuzzy match on name, ip, user or folder
`

const promptColor = color.FgLightBlue

type repl struct {
	ctx *uiContext

	prompt string
}

func (r *repl) run() error {
	r.prompt = promptColor.Sprint("(sshcm)> ")

	for {
		unknownCmd := false
		line, err := r.ctx.in.Line(r.prompt)
		switch err {
		case ErrInterrupt:
			return err
		case ErrEnd:
			// All done
			return nil
		case nil:
			// Allow through
		default:
			return err
		}

		line = strings.TrimSpace(line)
		splits := strings.Fields(line)
		if len(splits) == 0 {
			continue
		}

		cmd := splits[0]
		splits = splits[1:]

		if r.ctx.reg == nil && needsRegistry(cmd) {
			errColor.Println("no database connection, run \"db\" first")
			continue
		}

		switch cmd {
		case "ls":
			query := ""
			if len(splits) != 0 {
				query = splits[0]
			}
			err = r.ctx.list(query)

		case "search":
			if len(splits) < 1 {
				errColor.Println("syntax: search <query>")
				continue
			}
			err = r.ctx.list(splits[0])

		case "add":
			err = r.ctx.addNew()

		case "edit":
			if len(splits) < 1 {
				errColor.Println("syntax: edit <id|name>")
				continue
			}
			err = r.ctx.edit(splits[0])

		case "rm":
			if len(splits) < 1 {
				errColor.Println("syntax: rm <id|name>")
				continue
			}
			err = r.ctx.remove(splits[0])

		case "connect":
			if len(splits) < 1 {
				errColor.Println("syntax: connect <id|name>")
				continue
			}
			err = r.ctx.connect(splits[0])

		case "cp":
			if len(splits) < 1 {
				errColor.Println("syntax: cp <id|name>")
				continue
			}
			err = r.ctx.copyPassword(splits[0])

		case "totp":
			if len(splits) < 1 {
				errColor.Println("syntax: totp <id|name>")
				continue
			}
			err = r.ctx.totpCode(splits[0])

		case "gen":
			length := 24
			if len(splits) != 0 {
				length, err = strconv.Atoi(splits[0])
				if err != nil {
					errColor.Println("length must be an integer")
					continue
				}
			}
			err = r.ctx.showGenerated(length)

		case "passwd":
			err = r.ctx.passwd()

		case "db":
			err = r.ctx.configureDB()

		case "help":
			fmt.Printf("%s\n", replHelp)

		case "quit", "exit":
			return nil

		default:
			unknownCmd = true
		}

		if err == ErrInterrupt || err == ErrEnd {
			errColor.Println("Aborted")
			err = nil
		}
		if err != nil {
			return err
		}

		if unknownCmd {
			fmt.Println(`unknown command, try "help"`)
		} else {
			r.ctx.in.AddHistory(line)
		}
	}
}

func needsRegistry(cmd string) bool {
	switch cmd {
	case "ls", "search", "add", "edit", "rm", "connect", "cp", "totp":
		return true
	}
	return false
}
