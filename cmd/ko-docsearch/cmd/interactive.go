package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mfenderov/ko-docsearch/internal/search"
	"github.com/mfenderov/ko-docsearch/pkg/models"
)

const (
	keyCtrlC     = 0x03
	keyCtrlD     = 0x04
	keyBackspace = 0x08
	keyEnter     = 0x0d
	keyCtrlU     = 0x15
	keyEscape    = 0x1b
	keyDelete    = 0x7f
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Type-ahead search in the terminal",
	Long: `Search as you type. Results refresh once typing pauses for
search.debounce; Enter searches immediately. Esc or Ctrl-C quits, Ctrl-U
clears the query.

Example:
  ko-docsearch interactive`,
	Args: cobra.NoArgs,
	RunE: runInteractive,
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

func runInteractive(cmd *cobra.Command, args []string) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("interactive mode requires a terminal")
	}

	cfg := GetConfig()
	scr := &screen{w: os.Stdout}
	scr.open, scr.close = markers(os.Stdout)

	session := search.NewSession(search.SessionOptions{
		Debounce:     cfg.Search.Debounce,
		Limit:        cfg.Search.Limit,
		SuggestLimit: cfg.Search.SuggestLimit,
		OnChange:     scr.draw,
	})
	defer session.Close()

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to enter raw mode: %w", err)
	}
	defer func() {
		term.Restore(fd, oldState)
		fmt.Fprint(os.Stdout, "\r\n")
	}()

	scr.draw(session.State())
	go session.Load(context.Background(), documentLoader(cfg))

	return readQuery(os.Stdin, session)
}

// readQuery feeds keystrokes from r into the session until the user quits
// or r is exhausted.
func readQuery(r io.Reader, session *search.Session) error {
	in := bufio.NewReader(r)
	var query []rune
	var pending []byte

	for {
		b, err := in.ReadByte()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		switch b {
		case keyCtrlC, keyCtrlD, keyEscape:
			return nil
		case keyEnter:
			session.Query(string(query))
			continue
		case keyBackspace, keyDelete:
			if len(query) > 0 {
				query = query[:len(query)-1]
			}
		case keyCtrlU:
			query = query[:0]
		default:
			if b < 0x20 {
				continue
			}
			// Multi-byte input, such as composed Hangul, arrives byte by byte.
			pending = append(pending, b)
			if !utf8.FullRune(pending) {
				continue
			}
			c, _ := utf8.DecodeRune(pending)
			pending = pending[:0]
			if c == utf8.RuneError {
				continue
			}
			query = append(query, c)
		}
		session.SetQuery(string(query))
	}
}

// screen redraws the whole terminal for every session state.
type screen struct {
	mu          sync.Mutex
	w           io.Writer
	open, close string
}

func (s *screen) draw(st search.State) {
	var b strings.Builder
	b.WriteString("\x1b[2J\x1b[H")
	fmt.Fprintf(&b, "검색> %s\r\n", st.Query)

	switch {
	case st.Loading:
		b.WriteString("\r\n  loading index...\r\n")
	case st.Err != nil:
		fmt.Fprintf(&b, "\r\n  error: %v\r\n", st.Err)
	case !st.Ready:
	case strings.TrimSpace(st.Query) == "":
		fmt.Fprintf(&b, "\r\n  %d documents, %d titles\r\n", st.Stats.TotalDocuments, st.Stats.UniqueTitles)
	default:
		if len(st.Suggestions) > 0 {
			fmt.Fprintf(&b, "  %s\r\n", strings.Join(st.Suggestions, " · "))
		}
		b.WriteString("\r\n")
		if len(st.Results) == 0 {
			b.WriteString("  No results found.\r\n")
		}
		for _, r := range st.Results {
			writeResult(&b, r, s.open, s.close)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	io.WriteString(s.w, b.String())
}

func writeResult(b *strings.Builder, r models.SearchResult, open, close string) {
	fmt.Fprintf(b, "  %s  %s\r\n", r.Title, r.Href())
	line := strings.Join(strings.Fields(snippet(r, open, close)), " ")
	fmt.Fprintf(b, "    %s\r\n\r\n", line)
}
