package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/docchat/internal/config"
	"github.com/ziadkadry99/docchat/internal/documents"
	"github.com/ziadkadry99/docchat/internal/profile"
	"github.com/ziadkadry99/docchat/internal/widget"
)

const chatHelp = `Commands:
  /upload <path>   upload a document or a directory of documents
  /docs            list uploaded documents
  /rm <n>          remove document n from the list
  /clear           clear the conversation
  /export <file>   save the conversation as HTML
  /help            show this help
  /quit            leave the chat`

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat with the document backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		term := newTerminal(os.Stdout)
		sess, err := newSession(cfg, term)
		if err != nil {
			return err
		}

		greeting := "there"
		if store, closeDB, err := openProfileStore(cfg); err == nil {
			if p, err := store.Load(cmd.Context()); err == nil && p.Name != "" {
				greeting = profile.DisplayName(p)
			}
			closeDB()
		}
		fmt.Printf("Hi %s! Connected to %s. Type /help for commands.\n\n", greeting, cfg.ServerURL)

		sh := newChatShell(cfg, sess)
		prompt := promptui.Prompt{Label: "You", Validate: sh.validateDraft}
		return sh.loop(cmd.Context(), prompt.Run)
	},
}

// chatShell runs the interactive chat on top of a session.
type chatShell struct {
	sess *widget.Session
	cfg  *config.Config

	// lineContext scopes one line of input. Interrupting a request only
	// cancels that line; the next one starts fresh.
	lineContext func(context.Context) (context.Context, context.CancelFunc)
}

func newChatShell(cfg *config.Config, sess *widget.Session) *chatShell {
	return &chatShell{
		sess: sess,
		cfg:  cfg,
		lineContext: func(ctx context.Context) (context.Context, context.CancelFunc) {
			return signal.NotifyContext(ctx, os.Interrupt)
		},
	}
}

// loop reads lines until EOF, an interrupt at the prompt or /quit.
func (sh *chatShell) loop(ctx context.Context, read func() (string, error)) error {
	for {
		line, err := read()
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return nil
		}
		if err != nil {
			return err
		}

		lineCtx, cancel := sh.lineContext(ctx)
		quit, err := sh.runLine(lineCtx, line)
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

// validateDraft keeps the prompt from accepting a message over the
// character limit. Commands are not counted.
func (sh *chatShell) validateDraft(draft string) error {
	if strings.HasPrefix(strings.TrimSpace(draft), "/") {
		return nil
	}
	c := sh.sess.Count(draft)
	if c.Count > c.Max {
		return fmt.Errorf("%d/%d characters, over the limit", c.Count, c.Max)
	}
	return nil
}

// runLine handles one line of input: a slash command or a message.
// Send and upload failures are shown by the session itself, so only
// command errors are returned.
func (sh *chatShell) runLine(ctx context.Context, line string) (quit bool, err error) {
	sess := sh.sess
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		if line != "" {
			_ = sess.Send(ctx, line)
		}
		return false, nil
	}

	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "/quit", "/exit":
		return true, nil
	case "/help":
		fmt.Println(chatHelp)
	case "/docs":
		fmt.Print(documents.RenderText(sess.Documents().All()))
	case "/upload":
		if arg == "" {
			return false, fmt.Errorf("usage: /upload <path>")
		}
		return false, sh.upload(ctx, arg)
	case "/rm":
		n, err := strconv.Atoi(arg)
		all := sess.Documents().All()
		if err != nil || n < 1 || n > len(all) {
			return false, fmt.Errorf("usage: /rm <n> where n is between 1 and %d", len(all))
		}
		sess.RemoveDocument(all[n-1].ID)
	case "/clear":
		sess.Clear()
	case "/export":
		if arg == "" {
			return false, fmt.Errorf("usage: /export <file>")
		}
		return false, exportTranscript(sess, arg)
	default:
		return false, fmt.Errorf("unknown command %s (try /help)", name)
	}
	return false, nil
}

// upload sends the file at path through the session, or every document
// under it matching the configured types when path is a directory. Only
// errors reading local files are returned.
func (sh *chatShell) upload(ctx context.Context, path string) error {
	paths, err := expandUploads(path, sh.cfg.Server.AllowedTypes, sh.cfg.MaxUploadBytes)
	if err != nil {
		return err
	}
	for _, p := range paths {
		if err := uploadOne(ctx, sh.sess, p); err != nil {
			return err
		}
	}
	return nil
}

func uploadOne(ctx context.Context, sess *widget.Session, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	_ = sess.Upload(ctx, info.Name(), info.Size(), f)
	return nil
}

func exportTranscript(sess *widget.Session, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := sess.WriteTranscript(f, "Document chat"); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("Conversation saved to %s\n", path)
	return nil
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
