// Package cli renders conversation attention records for the attnwatch host,
// the way choplin's internal/format renders session summaries: one writer
// function per output mode, switched on a --format flag.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/nrobbins/attnwatch/internal/conversation"
	"github.com/nrobbins/attnwatch/internal/workspacemeta"
)

// record is the JSON-serializable projection of a Conversation (§6 "Output —
// subscriber interface").
type record struct {
	ID           string `json:"id"`
	StorageKind  string `json:"storageKind"`
	EventCount   int    `json:"eventCount"`
	LastModified string `json:"lastModified"`
	Status       string `json:"status"`
	Reason       string `json:"reason"`
	TurnID       string `json:"turnId,omitempty"`
	LastMessage  string `json:"lastMessage,omitempty"`
	Project      string `json:"project,omitempty"`
}

func toRecords(convs []conversation.Conversation) []record {
	out := make([]record, 0, len(convs))
	for _, c := range convs {
		out = append(out, record{
			ID:           c.ID,
			StorageKind:  string(c.StorageKind),
			EventCount:   c.EventCount,
			LastModified: c.LastModified.Format(time.RFC3339),
			Status:       string(c.Status.Code),
			Reason:       c.Status.Reason,
			TurnID:       c.Status.TurnID,
			LastMessage:  c.Status.LastMessage,
			Project:      workspacemeta.ProjectName(c.Metadata),
		})
	}
	return out
}

// Write renders conversations to w in the requested format: table, plain,
// json, or jsonl. An empty format auto-selects table on a terminal and plain
// otherwise, matching codexlog's TTY-aware default.
func Write(w io.Writer, convs []conversation.Conversation, format string) error {
	if format == "" {
		format = defaultFormatFor(w)
	}
	switch strings.ToLower(format) {
	case "table":
		return writeTable(w, convs)
	case "plain":
		return writePlain(w, convs)
	case "json":
		return writeJSON(w, convs)
	case "jsonl":
		return writeJSONL(w, convs)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeJSON(w io.Writer, convs []conversation.Conversation) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toRecords(convs))
}

func writeJSONL(w io.Writer, convs []conversation.Conversation) error {
	enc := json.NewEncoder(w)
	for _, r := range toRecords(convs) {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

func writePlain(w io.Writer, convs []conversation.Conversation) error {
	for _, r := range toRecords(convs) {
		line := fmt.Sprintf("%s\t%s\t%s\t%s\t%s", r.ID, r.Project, r.Status, r.LastModified, escapeNewlines(r.Reason))
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func writeTable(w io.Writer, convs []conversation.Conversation) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.Style().Options.SeparateRows = true
	tw.Style().Options.SeparateHeader = true

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 3, Align: text.AlignCenter, AlignHeader: text.AlignCenter},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 5, Align: text.AlignLeft, AlignHeader: text.AlignCenter, WidthMax: reasonColumnWidth(w)},
	})

	tw.AppendHeader(table.Row{"ID", "Project", "Status", "Last Activity", "Reason"})

	now := time.Now()
	for _, c := range convs {
		tw.AppendRow(table.Row{
			c.ID,
			workspacemeta.ProjectName(c.Metadata),
			string(c.Status.Code),
			humanize.RelTime(c.LastModified, now, "ago", "from now"),
			escapeNewlines(c.Status.Reason),
		})
	}

	if len(convs) == 0 {
		tw.AppendRow(table.Row{"-", "-", "-", "-", "(nothing needs attention)"})
	}

	tw.Render()
	return nil
}

func escapeNewlines(s string) string {
	return strings.ReplaceAll(s, "\n", "\\n")
}

// defaultFormatFor picks table for an interactive terminal and plain
// otherwise (piped output, redirected files), the way codexlog's view
// command auto-detects color support.
func defaultFormatFor(w io.Writer) string {
	f, ok := w.(*os.File)
	if !ok {
		return "plain"
	}
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return "table"
	}
	return "plain"
}

// reasonColumnWidth caps the Reason column so the table fits the terminal,
// falling back to a fixed width when not attached to one.
func reasonColumnWidth(w io.Writer) int {
	const fallback = 60
	f, ok := w.(*os.File)
	if !ok {
		return fallback
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return fallback
	}
	// ID, Project, Status, Last Activity columns plus borders consume
	// roughly the first half of a typical terminal width.
	reasonWidth := width - 50
	if reasonWidth < 20 {
		return 20
	}
	return reasonWidth
}
