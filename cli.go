package main

import (
	"os"
	"path/filepath"

	"github.com/integrii/flaggy"
)

var (
	flagHelp    bool
	flagNoColor bool
	flagDir     string

	flagMasterKey   string
	flagConnectHost string
	flagGenLength   = 24
)

var (
	versionCmd = flaggy.NewSubcommand("version")
	genCmd     = flaggy.NewSubcommand("gen")
	connectCmd = flaggy.NewSubcommand("connect")
)

func parseCli() {
	defaultDir := ".sshConnectionManager"
	homeDir, err := os.UserHomeDir()
	if err == nil && len(homeDir) != 0 {
		defaultDir = filepath.Join(homeDir, defaultDir)
	}
	flagDir = defaultDir

	parser := flaggy.NewParser("sshConnectionManager")
	parser.Bool(&flagNoColor, "", "no-color", "Turn off color output")
	parser.Bool(&flagHelp, "h", "help", "Show help")
	parser.String(&flagDir, "f", "dir", "The config directory to use (can be set by $SSHCM_DIR)")

	versionCmd.Description = "print version and exit"
	genCmd.Description = "generate a password"
	genCmd.Int(&flagGenLength, "l", "length", "Password length")
	connectCmd.Description = "connect to a host without the interactive ui"
	connectCmd.AddPositionalValue(&flagConnectHost, "host", 1, true, "Connection name or ip")
	connectCmd.String(&flagMasterKey, "k", "master-key", "Master password for an encrypted config")

	parser.AdditionalHelpAppend = "sshConnectionManager respects $SSHCM_DIR and $PINENTRY env vars\n$PINENTRY can be set to none to prevent it from using pinentry"

	parser.ShowHelpWithHFlag = false
	parser.ShowHelpOnUnexpected = false

	parser.DisableShowVersionWithVersion()
	if err := parser.SetHelpTemplate(helpTemplate); err != nil {
		// This should never occur
		panic(err)
	}

	parser.AttachSubcommand(versionCmd, 1)
	parser.AttachSubcommand(genCmd, 1)
	parser.AttachSubcommand(connectCmd, 1)
	parser.Parse()

	if flagDir == defaultDir {
		envDir := os.Getenv("SSHCM_DIR")
		if len(envDir) != 0 {
			flagDir = envDir
		}
	}

	if flagHelp {
		parser.ShowHelp()
		os.Exit(0)
	}
}

var helpTemplate = `Usage:
  {{.CommandName}} [flags]{{if .Subcommands}} [command]{{end}}
{{- if .Subcommands}}

Commands:
  {{range .Subcommands -}}
  {{.LongName}}
  {{end -}}
{{- end}}
{{- if .Flags}}
Flags:
  {{- range .Flags}}
  {{if .ShortName}}-{{.ShortName}}{{if .LongName}}, {{else}}  {{end}}{{else}}    {{end}}{{printf "--%-15s" .LongName}}
  {{- if .Description}} {{.Description}}{{end}}
  {{- if and (.DefaultValue) (not (eq "false" .DefaultValue))}} ({{.DefaultValue}}){{end}}
  {{- end -}}
{{- end}}{{if .AppendMessage}}

{{.AppendMessage}}
{{- end}}
`
