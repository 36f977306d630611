package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/taskflow/internal/client/session"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

type backgroundKey struct{}

// inBackground reports whether ctx belongs to a shell line ending in "&".
// Such lines must not read from the terminal: the shell owns it.
func inBackground(ctx context.Context) bool {
	v, _ := ctx.Value(backgroundKey{}).(bool)
	return v
}

// execFunc runs one shell line split into words.
type execFunc func(ctx context.Context, args []string) error

// runREPL starts a simple read–eval–print loop.
//
// Each line is split into words and handed to exec, which runs the same
// commands as the command line ("tasks list -p 7"). A line ending in "&"
// runs in the background, so a second action can be issued while the first
// is still in flight; runREPL waits for background work before returning.
// The loop exits on scanner EOF or when the user types "exit" or "quit".
//
// Errors were already shown by the command; unreported ones (bad syntax,
// unknown commands) are printed here.
func runREPL(ctx context.Context, exec execFunc, statusFn func() string, scanner *bufio.Scanner) {
	var jobs sync.WaitGroup
	defer jobs.Wait()

	for {
		printlnFn(fmt.Sprintf("taskflow %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		background := strings.HasSuffix(line, "&")
		line = strings.TrimSpace(strings.TrimSuffix(line, "&"))

		args, err := splitArgs(line)
		if err != nil {
			printlnFn("Error:", err)
			continue
		}
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "exit", "quit":
			printlnFn("Bye!")
			return
		case "help":
			args = []string{"--help"}
		}

		if background {
			jobs.Add(1)
			go func() {
				defer jobs.Done()
				runLine(context.WithValue(ctx, backgroundKey{}, true), exec, args)
			}()
			continue
		}
		runLine(ctx, exec, args)
	}
}

func runLine(ctx context.Context, exec execFunc, args []string) {
	if err := exec(ctx, args); err != nil && !Reported(err) {
		printlnFn("Error:", err)
	}
}

// exec runs args against a fresh command tree, so flag values never leak
// from one line into the next.
func (a *App) exec(ctx context.Context, args []string) error {
	root := newCommandTree(a)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (a *App) prompt() string {
	var parts []string
	if snap := a.store.Snapshot(); snap.Authenticated {
		parts = append(parts, fmt.Sprintf("user %d", snap.UserID))
	}
	if m := a.Mode(); m != ModeUnknown {
		parts = append(parts, string(m))
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " ") + ") "
}

// Shell runs the interactive shell until EOF or exit, watching backend
// reachability in the background.
func (a *App) Shell(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	unsubscribe := a.store.Subscribe(a.sessionChanged)
	defer unsubscribe()

	a.println("Welcome to taskflow (type 'help' for commands, 'exit' to leave)")
	if _, err := a.store.Validate(ctx); err != nil {
		return err
	}
	if !a.store.Snapshot().Authenticated {
		a.Navigate(ctx, session.RouteLogin)
	}

	a.checkOnline(ctx)
	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a.exec, a.prompt, bufio.NewScanner(lineReader{r: a.reader}))
	return nil
}

func shellCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.report(cmd.Context(), a.Shell(cmd.Context()))
		},
	}
}
