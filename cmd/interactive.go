package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/bisegni/ossql/pkg/cursor"
	"github.com/bisegni/ossql/pkg/database"
	"github.com/bisegni/ossql/pkg/directive"
)

const defaultShellRows = 20

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Start the interactive SQL shell",
	Long: `Start a shell that runs one SQL statement per line and prints the first
rows of each result. Backslash commands inspect the type system and page
through the open result:

` + directive.Usage,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunInteractive(cmd)
	},
}

// RunInteractive runs the read-eval-print loop until quit or EOF.
func RunInteractive(cmd *cobra.Command) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close(os.Stderr)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "ossql> ",
		HistoryFile:     "", // In-memory history for this session
		InterruptPrompt: "^C",
		EOFPrompt:       `\quit`,
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	sh := newShell(s, rl.Stdout())
	defer sh.closeResult()

	fmt.Fprintf(rl.Stdout(), "Connected to %s. Type \\help for commands, \\quit to leave.\n", s.cfg.BaseURL())
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue
		} else if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		quit, err := sh.handle(cmd.Context(), line)
		if err != nil {
			fmt.Fprintf(rl.Stderr(), "Error: %v\n", err)
		}
		if quit {
			break
		}
	}
	return nil
}

// shell holds the open result between input lines.
type shell struct {
	s    *session
	out  io.Writer
	rows int
	open *database.CursorIterator
}

func newShell(s *session, out io.Writer) *shell {
	rows := s.cfg.FetchSize
	if rows <= 0 {
		rows = defaultShellRows
	}
	return &shell{s: s, out: out, rows: rows}
}

func (sh *shell) handle(ctx context.Context, line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	if !directive.IsDirective(line) {
		return false, sh.runSQL(ctx, strings.TrimSuffix(line, ";"))
	}

	d, err := directive.Parse(line)
	if err != nil {
		return false, err
	}
	switch d.Kind {
	case directive.Quit:
		return true, nil
	case directive.Help:
		fmt.Fprintln(sh.out, directive.Usage)
	case directive.Types:
		return false, writeTypes(sh.out, sh.s.reg)
	case directive.Describe:
		return false, writeDescribe(sh.out, sh.s.reg, sh.s.conv, d.TypeName)
	case directive.Convert:
		return false, convertLiteral(sh.out, sh.s.reg, sh.s.conv, sh.s.params, d.TypeName, d.Literal, d.Rep)
	case directive.Columns:
		if sh.open == nil {
			return false, fmt.Errorf("no open result")
		}
		for i, col := range sh.open.Cursor().Columns() {
			fmt.Fprintf(sh.out, "%d  %s  %s\n", i, col.Label, col.Descriptor.Name)
		}
	case directive.Fetch:
		if sh.open == nil {
			return false, fmt.Errorf("no open result")
		}
		return false, sh.print(d.Count)
	}
	return false, nil
}

func (sh *shell) runSQL(ctx context.Context, sql string) error {
	sh.closeResult()
	c, err := cursor.Open(ctx, sh.s.fetcher, sql, sh.s.cfg.FetchSize, sh.s.cursorOptions()...)
	if err != nil {
		return err
	}
	sh.open = database.NewCursorIterator(ctx, c)
	return sh.print(sh.rows)
}

// print writes up to n rows of the open result.
func (sh *shell) print(n int) error {
	it := sh.open
	encoder := json.NewEncoder(sh.out)
	printed := 0
	for printed < n && it.Next() {
		if err := encoder.Encode(it.Row().Primitive()); err != nil {
			return err
		}
		printed++
	}
	if err := it.Error(); err != nil {
		sh.closeResult()
		return err
	}

	c := it.Cursor()
	if c.State() == cursor.AfterEnd {
		fmt.Fprintf(sh.out, "(%d row(s), %d total, end of result)\n", printed, c.RowsConsumed())
		sh.closeResult()
		return nil
	}
	fmt.Fprintf(sh.out, "(%d row(s), %d total, \\fetch <n> for more)\n", printed, c.RowsConsumed())
	return nil
}

func (sh *shell) closeResult() {
	if sh.open == nil {
		return
	}
	if err := sh.open.Close(); err != nil {
		sh.s.log.Warn("closing result failed", "error", err)
	}
	sh.open = nil
}
