package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/lcfern/converse/directory"
	"github.com/lcfern/converse/graph"
	"github.com/lcfern/converse/summarize"
)

// MenuFunc selects the conversation to start with. The default is
// ChooseSession; tests substitute a canned selection.
type MenuFunc func(ctx context.Context) Selection

// ShellOption configures a Shell.
type ShellOption func(*Shell)

// WithInput overrides the input stream (default os.Stdin).
func WithInput(r io.Reader) ShellOption {
	return func(s *Shell) { s.in = r }
}

// WithOutput overrides the output stream (default os.Stdout).
func WithOutput(w io.Writer) ShellOption {
	return func(s *Shell) {
		s.out = w
		s.agg = NewAggregator(s.agg.streamer, w)
	}
}

// WithMenu overrides the startup session menu.
func WithMenu(m MenuFunc) ShellOption {
	return func(s *Shell) { s.menu = m }
}

// Shell is the interactive read-eval-print loop. It owns command
// dispatch (exit, clear), session bookkeeping, and per-turn error
// reporting; the actual turn work is delegated to the Aggregator
// and the Compactor.
type Shell struct {
	dir         *directory.Directory
	agg         *Aggregator
	compactor   *summarize.Compactor
	checkpoints graph.CheckpointStore
	menu        MenuFunc
	in          io.Reader
	out         io.Writer
}

// NewShell wires the shell over its collaborators.
func NewShell(dir *directory.Directory, streamer TurnStreamer, compactor *summarize.Compactor, checkpoints graph.CheckpointStore, opts ...ShellOption) *Shell {
	s := &Shell{
		dir:         dir,
		compactor:   compactor,
		checkpoints: checkpoints,
		in:          os.Stdin,
		out:         os.Stdout,
	}
	s.agg = NewAggregator(streamer, s.out)
	s.menu = func(ctx context.Context) Selection {
		return ChooseSession(ctx, dir, s.out)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	exitCommands  = map[string]bool{"sair": true, "quit": true, "exit": true, "q": true}
	clearCommands = map[string]bool{"limpar": true, "clear": true, "reset": true}
)

// Run executes the interactive loop until the user exits, input ends,
// or the context is cancelled.
func (s *Shell) Run(ctx context.Context) error {
	s.printBanner()

	selection := s.menu(ctx)

	var current *directory.Session
	if !selection.NewConversation {
		sess := selection.Session
		current = &sess
		s.printResumed(ctx, sess.ThreadID)
	} else {
		fmt.Fprint(s.out, "\n💬 Nova conversa iniciada!\n")
	}

	fmt.Fprint(s.out, "\nDigite 'sair' ou 'quit' para encerrar.\n")
	fmt.Fprint(s.out, "Digite 'limpar' para limpar o histórico da conversa.\n")
	fmt.Fprint(s.out, strings.Repeat("=", 60)+"\n")

	// Terminal reads cannot be unblocked by context cancellation, so a
	// dedicated goroutine feeds lines into a channel and the loop selects
	// against ctx. On interrupt the reader may stay blocked on its final
	// read; it exits with the process.
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		readErr <- scanner.Err()
		close(lines)
	}()

	for {
		fmt.Fprint(s.out, "\n\n👤 Você: ")

		var input string
		select {
		case <-ctx.Done():
			fmt.Fprint(s.out, "\n\n👋 Interrompido pelo usuário. Até logo!\n")
			return nil
		case line, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					return fmt.Errorf("failed to read input: %w", err)
				}
				return nil
			}
			input = strings.TrimSpace(line)
		}

		lower := strings.ToLower(input)

		switch {
		case exitCommands[lower]:
			fmt.Fprint(s.out, "\n👋 Até logo!\n")
			return nil

		case clearCommands[lower]:
			s.clear(ctx, current)
			current = nil
			continue

		case input == "":
			continue
		}

		if current == nil {
			current = s.createSession(ctx, input)
		}

		if err := s.agg.RunTurn(ctx, current.ThreadID, input); err != nil {
			fmt.Fprintf(s.out, "\n❌ Erro: %v\n", err)
			fmt.Fprint(s.out, "Tente novamente ou digite 'sair' para encerrar.\n")
			continue
		}

		if current.ID != 0 {
			if err := s.dir.Touch(ctx, current.ID); err != nil {
				fmt.Fprintf(s.out, "\n\n⚠️ Aviso: Não foi possível salvar no banco de dados: %v\n", err)
			}
		}

		did, err := s.compactor.MaybeSummarize(ctx, current.ThreadID)
		if err != nil {
			fmt.Fprintf(s.out, "\n\n⚠️ Aviso: Erro ao resumir conversa: %v\n", err)
		} else if did {
			fmt.Fprint(s.out, "\n\n📝 Resumindo mensagens antigas... ✅\n")
		}
	}
}

// createSession records the new conversation in the directory before the
// first model call so a thread id exists for the checkpoint. A directory
// failure downgrades to an unsaved session rather than losing the turn.
func (s *Shell) createSession(ctx context.Context, firstMessage string) *directory.Session {
	sess, err := s.dir.Create(ctx, firstMessage)
	if err != nil {
		fmt.Fprintf(s.out, "\n\n⚠️ Aviso: Não foi possível salvar no banco de dados: %v\n", err)
		return &directory.Session{ThreadID: "t-" + uuid.NewString()}
	}
	return &sess
}

// clear deletes the current conversation from the directory and the
// checkpoint store. The next message starts a fresh session.
func (s *Shell) clear(ctx context.Context, current *directory.Session) {
	if current == nil {
		fmt.Fprint(s.out, "\n🧹 Histórico da conversa limpo!\n")
		return
	}

	if current.ID != 0 {
		if _, err := s.dir.Delete(ctx, current.ID); err != nil {
			fmt.Fprintf(s.out, "\n🧹 Histórico da conversa limpo localmente! (Aviso: não foi possível remover do banco: %v)\n", err)
			s.deleteCheckpoint(ctx, current.ThreadID)
			return
		}
	}
	s.deleteCheckpoint(ctx, current.ThreadID)
	fmt.Fprint(s.out, "\n🧹 Histórico da conversa limpo!\n")
}

func (s *Shell) deleteCheckpoint(ctx context.Context, threadID string) {
	if err := s.checkpoints.Delete(ctx, threadID); err != nil {
		fmt.Fprintf(s.out, "\n⚠️ Aviso: não foi possível remover o histórico: %v\n", err)
	}
}

func (s *Shell) printBanner() {
	line := strings.Repeat("=", 60)
	fmt.Fprint(s.out, line+"\n")
	fmt.Fprint(s.out, "🤖 Assistente IA com Function Calling\n")
	fmt.Fprint(s.out, line+"\n")
	fmt.Fprint(s.out, "\nEste assistente pode ajudar você com:\n")
	fmt.Fprint(s.out, "  • Informações sobre países\n")
	fmt.Fprint(s.out, "  • Taxas de câmbio\n")
	fmt.Fprint(s.out, line+"\n")
}

func (s *Shell) printResumed(ctx context.Context, threadID string) {
	cp, ok, err := s.checkpoints.Get(ctx, threadID)
	if err == nil && ok {
		fmt.Fprintf(s.out, "\n✅ Conversa carregada! (%d mensagem(ns) no histórico)\n", len(cp.Messages))
		return
	}
	fmt.Fprint(s.out, "\n✅ Conversa carregada!\n")
}
