package repl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"

	"courier/internal/cli"
	"courier/internal/credential"
)

// promptPrefixUnicode is the shell prompt prefix on unicode-capable terminals.
const promptPrefixUnicode = "ùóñ"

// promptPrefixASCII is the fallback prefix for terminals without unicode support.
const promptPrefixASCII = "c"

// promptChevronUnicode is the separator used in the prompt.
const promptChevronUnicode = "¬ª"

// promptChevronASCII is the fallback chevron for terminals without unicode support.
const promptChevronASCII = ">"

// StateAuthRequired is shown in the prompt when no usable credentials are on
// file. Uppercase because it requires user action (running 'courier auth login').
const StateAuthRequired = "[AUTH REQUIRED]"

// commandExecutionTimeout bounds a single shell command. Long enough for slow
// operations, short enough that a hung call does not wedge the shell forever.
const commandExecutionTimeout = 5 * time.Minute

// errExit signals a clean shutdown requested by the exit command.
var errExit = errors.New("exit")

// OperationCaller invokes a named operation against the remote API.
type OperationCaller interface {
	Call(ctx context.Context, operation string, params map[string]interface{}) (json.RawMessage, error)
}

// Session exposes the credential state the shell needs for its prompt and the
// auth command.
type Session interface {
	Status() credential.Status
	Invalidate()
}

// REPL is the interactive courier shell. It reads commands with history and
// tab completion, invokes operations against the API, and keeps an
// authentication indicator in the prompt that reacts to external credential
// changes.
type REPL struct {
	caller   OperationCaller
	session  Session
	logger   *Logger
	endpoint string

	rl           *readline.Instance
	authRequired bool
	useUnicode   bool
	mu           sync.RWMutex
}

// NewREPL creates a shell bound to an API endpoint and a credential session.
func NewREPL(caller OperationCaller, session Session, logger *Logger, endpoint string) *REPL {
	return &REPL{
		caller:     caller,
		session:    session,
		logger:     logger,
		endpoint:   endpoint,
		useUnicode: detectUnicodeSupport(),
	}
}

// detectUnicodeSupport checks if the terminal likely supports unicode characters.
func detectUnicodeSupport() bool {
	term := os.Getenv("TERM")

	if term == "" || term == "dumb" {
		return false
	}

	for _, v := range []string{os.Getenv("LANG"), os.Getenv("LC_ALL")} {
		lower := strings.ToLower(v)
		if strings.Contains(lower, "utf-8") || strings.Contains(lower, "utf8") {
			return true
		}
	}

	unicodeTerminals := []string{"xterm", "screen", "tmux", "alacritty", "kitty", "iterm"}
	termLower := strings.ToLower(term)
	for _, ut := range unicodeTerminals {
		if strings.Contains(termLower, ut) {
			return true
		}
	}

	return true
}

// buildPrompt creates the shell prompt. The AUTH REQUIRED marker only appears
// when no usable credentials are stored, so a normal session keeps a clean
// prompt.
func (r *REPL) buildPrompt() string {
	r.mu.RLock()
	authReq := r.authRequired
	useUnicode := r.useUnicode
	r.mu.RUnlock()

	prefix := promptPrefixASCII
	chevron := promptChevronASCII
	if useUnicode {
		prefix = promptPrefixUnicode
		chevron = promptChevronUnicode
	}

	parts := []string{prefix}
	if authReq {
		parts = append(parts, StateAuthRequired)
	}
	parts = append(parts, chevron)

	return strings.Join(parts, " ") + " "
}

// RefreshAuthState re-reads the credential status and updates the prompt.
// Called after login, logout, and whenever the credential file changes on
// disk.
func (r *REPL) RefreshAuthState() {
	status := r.session.Status()
	authRequired := !status.Authenticated || (status.Expired && !status.HasRefreshToken)

	r.mu.Lock()
	changed := r.authRequired != authRequired
	r.authRequired = authRequired
	rl := r.rl
	r.mu.Unlock()

	if !changed {
		return
	}
	if rl != nil {
		rl.SetPrompt(r.buildPrompt())
		rl.Refresh()
	}
	if authRequired {
		r.logger.Info("Authorization needed. Run 'courier auth login' and then retry.")
	}
}

func (r *REPL) createCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("help"),
		readline.PcItem("call"),
		readline.PcItem("auth",
			readline.PcItem("status"),
		),
		readline.PcItem("exit"),
		readline.PcItem("quit"),
	)
}

// filterInput filters input characters for readline.
func filterInput(ch rune) (rune, bool) {
	switch ch {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return ch, false
	}
	return ch, true
}

// Run starts the shell and processes commands until the context is cancelled,
// the user sends EOF, or the exit command runs.
func (r *REPL) Run(ctx context.Context) error {
	config := &readline.Config{
		Prompt:          r.buildPrompt(),
		HistoryFile:     filepath.Join(os.TempDir(), ".courier_history"),
		AutoComplete:    r.createCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	}

	rl, err := readline.NewEx(config)
	if err != nil {
		return fmt.Errorf("failed to create readline instance: %w", err)
	}
	defer rl.Close()

	r.mu.Lock()
	r.rl = rl
	r.mu.Unlock()

	r.RefreshAuthState()
	rl.SetPrompt(r.buildPrompt())

	r.logger.Info("courier shell connected to %s. Type 'help' for available commands.", r.endpoint)
	fmt.Println()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Shutting down...")
			return nil
		default:
		}

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				continue
			}
		} else if err == io.EOF {
			r.logger.Info("Goodbye!")
			return nil
		} else if err != nil {
			return fmt.Errorf("readline error: %w", err)
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		commandCtx, cancel := context.WithTimeout(ctx, commandExecutionTimeout)
		err = r.executeLine(commandCtx, input)
		cancel()

		if errors.Is(err, errExit) {
			r.logger.Info("Goodbye!")
			return nil
		}
		if err != nil {
			r.logger.Error("Error: %v", err)
		}

		fmt.Println()
	}
}

// executeLine parses and dispatches a single shell command.
func (r *REPL) executeLine(ctx context.Context, input string) error {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}

	command := strings.ToLower(parts[0])
	args := parts[1:]

	if command == "?" {
		command = "help"
	}

	switch command {
	case "help":
		r.printHelp()
		return nil
	case "call":
		return r.runCall(ctx, args)
	case "auth":
		return r.runAuth(args)
	case "exit", "quit":
		return errExit
	default:
		return fmt.Errorf("unknown command: %s. Type 'help' for available commands", parts[0])
	}
}

func (r *REPL) printHelp() {
	r.logger.OutputLine("Available commands:")
	r.logger.OutputLine("  call <operation> [key=value ...]  Invoke an operation on the remote API")
	r.logger.OutputLine("  auth status                       Show the stored credential state")
	r.logger.OutputLine("  help                              Show this help")
	r.logger.OutputLine("  exit                              Leave the shell")
}

func (r *REPL) runCall(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: call <operation> [key=value ...]")
	}

	operation := args[0]
	params, err := cli.ParseParams(args[1:])
	if err != nil {
		return err
	}

	spin := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	spin.Suffix = fmt.Sprintf(" calling %s...", operation)
	spin.Start()
	result, err := r.caller.Call(ctx, operation, params)
	spin.Stop()

	// Credentials may have been destroyed by a rejected refresh.
	r.RefreshAuthState()

	if err != nil {
		return err
	}

	var pretty bytes.Buffer
	if indentErr := json.Indent(&pretty, result, "", "  "); indentErr != nil {
		r.logger.OutputLine("%s", string(result))
		return nil
	}
	r.logger.OutputLine("%s", pretty.String())
	return nil
}

func (r *REPL) runAuth(args []string) error {
	if len(args) > 0 && args[0] != "status" {
		return fmt.Errorf("unknown auth subcommand: %s (the shell only supports 'auth status')", args[0])
	}

	status := r.session.Status()
	if !status.Authenticated {
		r.logger.OutputLine("Not authorized. Run 'courier auth login' in another terminal.")
		return nil
	}

	if status.Expired {
		r.logger.OutputLine("Access token expired at %s.", status.ExpiresAt.Format(time.RFC3339))
		if status.HasRefreshToken {
			r.logger.OutputLine("It will be refreshed automatically on the next call.")
		} else {
			r.logger.OutputLine("No refresh token on file. Run 'courier auth login' to re-authorize.")
		}
		return nil
	}

	r.logger.OutputLine("Authorized. Access token valid until %s.", status.ExpiresAt.Format(time.RFC3339))
	return nil
}
