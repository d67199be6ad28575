package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/brizzai/tokenctl/internal/authorizations"
	"github.com/pterm/pterm"
	"gopkg.in/yaml.v3"
)

type format string

const (
	formatTable format = "table"
	formatJSON  format = "json"
	formatYAML  format = "yaml"
)

func parseFormat(s string) (format, error) {
	switch f := format(s); f {
	case formatTable, formatJSON, formatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (table|json|yaml)", s)
	}
}

var tableHeader = []string{"ID", "NOTE", "APPLICATION", "SCOPES", "TOKEN", "UPDATED"}

func tableRow(a authorizations.Authorization) []string {
	app := ""
	if a.Application != nil {
		app = a.Application.Name
		if app == "" {
			app = a.Application.ClientID
		}
	}
	token := a.Token
	if token == "" && a.TokenLastEight != "" {
		token = "..." + a.TokenLastEight
	}
	updated := ""
	if !a.UpdatedAt.IsZero() {
		updated = a.UpdatedAt.Format(time.RFC3339)
	}
	return []string{strconv.FormatInt(a.ID, 10), a.Note, app, a.ScopesDelimited(), token, updated}
}

// render writes authorizations in the requested format. A single
// authorization is encoded as an object, not a list.
func render(w io.Writer, f format, auths []authorizations.Authorization, single bool) error {
	var data any = auths
	if single && len(auths) == 1 {
		data = auths[0]
	}

	switch f {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	default:
		rows := pterm.TableData{tableHeader}
		for _, a := range auths {
			rows = append(rows, tableRow(a))
		}
		table, err := pterm.DefaultTable.WithHasHeader().WithData(rows).Srender()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, table)
		return err
	}
}
