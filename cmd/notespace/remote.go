package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/codey22/notespace/internal/client"
	"github.com/codey22/notespace/internal/note"

	"github.com/spf13/cobra"
)

type remoteFlags struct {
	server      string
	sessionFile string
	noteTTL     time.Duration
}

func (f *remoteFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.server, "server", "http://localhost:8080", "NoteSpace server URL")
	cmd.Flags().StringVar(&f.sessionFile, "session-file", defaultSessionFile(), "file holding the session cookie between runs")
	cmd.Flags().DurationVar(&f.noteTTL, "note-ttl", note.DefaultTTL, "the server's NOTE_TTL, for the expiry warning")
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".notespace-session"
	}
	return filepath.Join(dir, "notespace", "session")
}

// connect returns a client carrying the saved session, or a fresh one that
// is then saved.
func (f *remoteFlags) connect(ctx context.Context) (*client.Client, error) {
	c, err := client.New(f.server, client.WithNoteTTL(f.noteTTL))
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(f.sessionFile)
	switch {
	case err == nil:
		if tok := strings.TrimSpace(string(raw)); tok != "" {
			c.SetSessionToken(tok)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("read session: %w", err)
	}

	had := c.SessionToken()
	if err := c.EnsureSession(ctx); err != nil {
		return nil, err
	}
	if tok := c.SessionToken(); tok != had {
		if err := os.MkdirAll(filepath.Dir(f.sessionFile), 0o700); err != nil {
			return nil, err
		}
		if err := os.WriteFile(f.sessionFile, []byte(tok+"\n"), 0o600); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
	}
	return c, nil
}

func newOpenCmd() *cobra.Command {
	var rf remoteFlags

	cmd := &cobra.Command{
		Use:   "open [slug]",
		Short: "Print a note; a missing or expired slug gets a fresh note",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := rf.connect(ctx)
			if err != nil {
				return err
			}

			var (
				n           *client.Note
				provisioned bool
			)
			if len(args) == 0 {
				n, err = c.Provision(ctx)
				provisioned = true
			} else {
				n, provisioned, err = c.Open(ctx, args[0])
			}
			if err != nil {
				return err
			}

			if provisioned && len(args) > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "note %s has expired, opened %s instead\n", args[0], n.Slug)
			}
			if !c.Editable(n, time.Now()) {
				fmt.Fprintln(cmd.ErrOrStderr(), "note is empty and about to expire")
			}
			return printNote(cmd.OutOrStdout(), n)
		},
	}
	rf.register(cmd)
	return cmd
}

func newEditCmd() *cobra.Command {
	var (
		rf       remoteFlags
		title    string
		logoText string
		rename   string
		delay    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "edit <slug>",
		Short: "Stream stdin into a note's content, autosaving as it arrives",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := rf.connect(ctx)
			if err != nil {
				return err
			}

			n, provisioned, err := c.Open(ctx, args[0])
			if err != nil {
				return err
			}
			if provisioned {
				fmt.Fprintf(cmd.ErrOrStderr(), "note %s has expired, editing %s instead\n", args[0], n.Slug)
			}

			a := c.NewAutosaver(n.Slug, delay, func(_ *client.Note, err error) {
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "autosave failed: %v\n", err)
				}
			})

			var p client.Patch
			if cmd.Flags().Changed("title") {
				p.Title = &title
			}
			if cmd.Flags().Changed("logo") {
				p.LogoText = &logoText
			}
			if rename != "" {
				p.Slug = &rename
			}
			if err := a.Queue(p); err != nil {
				return err
			}

			var content strings.Builder
			sc := bufio.NewScanner(cmd.InOrStdin())
			for sc.Scan() {
				content.WriteString(sc.Text())
				content.WriteByte('\n')
				body := content.String()
				if err := a.Queue(client.Patch{Content: &body}); err != nil {
					return err
				}
			}
			if err := sc.Err(); err != nil {
				return err
			}

			closeErr := a.Close(ctx)
			if closeErr != nil && !client.IsRejected(closeErr) {
				return closeErr
			}
			saved, err := c.GetNote(ctx, a.Slug())
			if err != nil {
				return err
			}
			if err := printNote(cmd.OutOrStdout(), saved); err != nil {
				return err
			}
			// content is saved; still fail on a refused rename or field
			return closeErr
		},
	}

	rf.register(cmd)
	cmd.Flags().StringVar(&title, "title", "", "set the title")
	cmd.Flags().StringVar(&logoText, "logo", "", "set the logo text")
	cmd.Flags().StringVar(&rename, "rename", "", "move the note to a new slug")
	cmd.Flags().DurationVar(&delay, "debounce", client.DefaultAutosaveDelay, "idle time before an autosave")
	return cmd
}

func printNote(w io.Writer, n *client.Note) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(n)
}
