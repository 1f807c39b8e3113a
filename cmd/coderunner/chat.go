package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/flexigpt/coderunner-go"
	"github.com/flexigpt/coderunner-go/spec"
)

const (
	chatKey spec.ConversationKey = "terminal"

	promptScript = ">>> "
	promptCont   = "... "
	promptAnswer = "? "
)

const banner = `Hi! Paste a Python script, then an empty line to finish it.
If it asks for input() I will ask you for each value first, then run it.
Commands: /start shows this help, /cancel drops pending questions, /quit exits.`

var errQuit = errors.New("quit")

// lineReader is the part of *liner.State the chat loop needs.
type lineReader interface {
	Prompt(prompt string) (string, error)
	Close() error
}

func newChatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive session: paste scripts, answer their prompts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			eng, err := a.engine(writerSender(out))
			if err != nil {
				return err
			}

			var in lineReader
			if term.IsTerminal(int(os.Stdin.Fd())) {
				ln := liner.NewLiner()
				ln.SetCtrlCAborts(true)
				in = &linerReader{State: ln}
			} else {
				in = newPlainReader(cmd.InOrStdin())
			}
			defer in.Close()

			return chatLoop(cmd.Context(), eng, in, out)
		},
	}
}

func chatLoop(ctx context.Context, eng *coderunner.Engine, in lineReader, out io.Writer) error {
	fmt.Fprintln(out, banner)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		var (
			msg string
			err error
		)
		if eng.Collecting(chatKey) {
			msg, err = in.Prompt(promptAnswer)
		} else {
			msg, err = readScript(in)
		}
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, liner.ErrPromptAborted):
			// Ctrl+C drops the current input only.
			fmt.Fprintln(out)
			continue
		case err != nil:
			return err
		}

		if err := handleCommand(eng, msg, out); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			return err
		}
		if isCommand(msg) {
			continue
		}

		if err := eng.OnIncoming(ctx, chatKey, msg); err != nil {
			fmt.Fprintln(out, "error:", err)
		}
	}
}

func isCommand(msg string) bool {
	m := strings.TrimSpace(msg)
	return strings.HasPrefix(m, "/") && !strings.ContainsAny(m, " \n")
}

func handleCommand(eng *coderunner.Engine, msg string, out io.Writer) error {
	if !isCommand(msg) {
		return nil
	}
	switch strings.TrimSpace(msg) {
	case "/start", "/help":
		fmt.Fprintln(out, banner)
	case "/cancel":
		if eng.Cancel(chatKey) {
			fmt.Fprintln(out, "Cancelled.")
		} else {
			fmt.Fprintln(out, "Nothing to cancel.")
		}
	case "/quit", "/exit":
		return errQuit
	default:
		fmt.Fprintf(out, "unknown command %s\n", strings.TrimSpace(msg))
	}
	return nil
}

// readScript reads lines until an empty line. A lone command is returned
// immediately.
func readScript(in lineReader) (string, error) {
	var b strings.Builder
	for {
		prompt := promptScript
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := in.Prompt(prompt)
		if err != nil {
			if errors.Is(err, io.EOF) && b.Len() > 0 {
				return b.String(), nil
			}
			return "", err
		}
		if b.Len() == 0 && isCommand(line) {
			return line, nil
		}
		if strings.TrimSpace(line) == "" {
			if b.Len() == 0 {
				continue
			}
			return b.String(), nil
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
}

func writerSender(w io.Writer) spec.Sender {
	return spec.SenderFunc(func(_ context.Context, _ spec.ConversationKey, text string) error {
		_, err := fmt.Fprintln(w, text)
		return err
	})
}

type linerReader struct {
	*liner.State
}

func (r *linerReader) Prompt(p string) (string, error) {
	line, err := r.State.Prompt(p)
	if err == nil && strings.TrimSpace(line) != "" {
		r.AppendHistory(line)
	}
	return line, err
}

// plainReader reads piped input without echoing prompts.
type plainReader struct {
	sc *bufio.Scanner
}

func newPlainReader(r io.Reader) *plainReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return &plainReader{sc: sc}
}

func (r *plainReader) Prompt(string) (string, error) {
	if r.sc.Scan() {
		return strings.TrimRight(r.sc.Text(), "\r"), nil
	}
	if err := r.sc.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (r *plainReader) Close() error { return nil }
