package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
	"golang.org/x/term"

	"github.com/glabrego/copilotlog/internal/chat"
	"github.com/glabrego/copilotlog/internal/render/preview"
	"github.com/glabrego/copilotlog/internal/store"
	"github.com/glabrego/copilotlog/internal/tui/platform"
	"github.com/glabrego/copilotlog/internal/tui/view"
)

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE...",
		Short: "Import one or more chat-export JSON files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer s.Close()

			failed := 0
			for _, arg := range args {
				path, err := platform.NormalizeDroppedPath(arg)
				if err == nil {
					var c chat.Chat
					c, err = s.svc.ImportFile(path)
					if err == nil {
						fmt.Fprintf(cmd.OutOrStdout(), "imported %s %s\n", shortID(c.ID), c.Title)
						continue
					}
				}
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: Upload failed: %v\n", arg, err)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files could not be imported", failed, len(args))
			}
			return nil
		},
	}
}

func newPasteCmd(opts *rootOptions) *cobra.Command {
	var fromStdin bool
	cmd := &cobra.Command{
		Use:   "paste",
		Short: "Import a chat from the clipboard (or stdin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var text string
			if fromStdin {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(data)
			} else {
				var err error
				text, err = platform.SystemClipboard().ReadText()
				if err != nil {
					return fmt.Errorf("read clipboard: %w", err)
				}
			}

			s, err := opts.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer s.Close()

			c, err := s.svc.ImportPaste(text)
			if err != nil {
				return fmt.Errorf("Upload failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %s %s\n", shortID(c.ID), c.Title)
			return nil
		},
	}
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "read the chat JSON from stdin instead of the clipboard")
	return cmd
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var (
		filterFlag string
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored chats, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := chat.ParseFilter(filterFlag)
			if err != nil {
				return err
			}
			s, err := opts.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer s.Close()

			state := s.svc.State()
			state.Filter = filter
			chats := store.FilteredChats(state)

			if asJSON {
				if chats == nil {
					chats = []chat.Chat{}
				}
				data, err := json.Marshal(chats)
				if err != nil {
					return fmt.Errorf("encode chats: %w", err)
				}
				_, err = cmd.OutOrStdout().Write(pretty.Pretty(data))
				return err
			}

			if len(chats) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), view.EmptyList(filter))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderChatTable(chats, state.SelectedChatID, time.Now()))
			return nil
		},
	}
	cmd.Flags().StringVar(&filterFlag, "filter", string(chat.FilterAll), "all, shared or unshared")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print chats as JSON")
	return cmd
}

func renderChatTable(chats []chat.Chat, selectedID string, now time.Time) string {
	rows := make([][]string, 0, len(chats))
	for _, c := range chats {
		marker := " "
		if c.ID == selectedID {
			marker = "*"
		}
		shared := ""
		if c.Shared {
			shared = "yes"
		}
		rows = append(rows, []string{marker + shortID(c.ID), shared, view.TimeLabel(now, c.Created()), view.ChatLabel(c)})
	}
	return table.New().
		Border(lipgloss.HiddenBorder()).
		Headers(" ID", "SHARED", "CREATED", "TITLE").
		Rows(rows...).
		String()
}

func newShowCmd(opts *rootOptions) *cobra.Command {
	var width int
	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Print a chat preview and select it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer s.Close()

			c, err := s.svc.FindChat(args[0])
			if err != nil {
				return err
			}
			s.svc.Dispatch(store.SelectChat{ID: c.ID})
			if width <= 0 {
				width = terminalWidth(cmd.OutOrStdout())
			}
			lines := view.DetailLines(c, width, 0, preview.Styles{})
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(lines, "\n"))
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 0, "wrap width (default: terminal width or 80)")
	return cmd
}

const fallbackWidth = 80

func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return fallbackWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return fallbackWidth
	}
	return width
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer s.Close()

			c, err := s.svc.FindChat(args[0])
			if err != nil {
				return err
			}
			s.svc.Dispatch(store.DeleteChat{ID: c.ID})
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s %s\n", shortID(c.ID), c.Title)
			return nil
		},
	}
}

func newShareCmd(opts *rootOptions) *cobra.Command {
	var off bool
	cmd := &cobra.Command{
		Use:   "share ID",
		Short: "Mark a chat as shared (or not, with --off)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer s.Close()

			c, err := s.svc.FindChat(args[0])
			if err != nil {
				return err
			}
			s.svc.SetShared(c.ID, !off)
			state := "shared"
			if off {
				state = "not shared"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s is %s\n", shortID(c.ID), c.Title, state)
			return nil
		},
	}
	cmd.Flags().BoolVar(&off, "off", false, "clear the shared flag")
	return cmd
}

func newThemeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [light|dark|toggle]",
		Short:     "Show or change the stored theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"light", "dark", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer s.Close()

			current := s.svc.State().Theme
			if len(args) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), current)
				return nil
			}
			next := current.Toggle()
			if args[0] != "toggle" {
				next, err = chat.ParseTheme(args[0])
				if err != nil {
					return err
				}
			}
			state := s.svc.Dispatch(store.SetTheme{Theme: next})
			fmt.Fprintln(cmd.OutOrStdout(), state.Theme)
			return nil
		},
	}
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export ID",
		Short: "Write a chat as a standalone HTML page and mark it shared",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer s.Close()

			if out == "" {
				out = s.cfg.ExportDir
			}
			path, err := s.svc.ExportHTML(args[0], out)
			if err != nil {
				return err
			}
			size := ""
			if info, statErr := os.Stat(path); statErr == nil {
				size = " (" + humanize.Bytes(uint64(info.Size())) + ")"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported to %s%s\n", path, size)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output .html file or directory (default: export_dir)")
	return cmd
}
