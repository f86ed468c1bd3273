package handle

import (
	"bufio"
	"bytes"
	"html/template"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Default source context: 9 lines before the failing line, 19 in total.
const (
	DefaultLinesBefore = 9
	DefaultLinesTotal  = 19
	defaultStyle       = "github"
)

// SourceLine is one highlighted line of a source snippet.
type SourceLine struct {
	HTML   template.HTML
	Number int
	Error  bool
}

// Snippet is a window of highlighted source around a failing line.
type Snippet struct {
	Lines []SourceLine
	First int
}

// Empty reports whether the snippet has no lines.
func (s Snippet) Empty() bool {
	return len(s.Lines) == 0
}

// Padding returns the left padding in pixels needed by the line numbers
// of the ordered list: 40px plus 8px per digit of First+len(Lines) past
// the first.
func (s Snippet) Padding() int {
	digits := len(strconv.Itoa(max(s.First+len(s.Lines), 1)))
	return 40 + (digits-1)*8
}

// Source reads the default window of lines around line in file.
// An unreadable file yields an empty snippet.
func Source(file string, line int) Snippet {
	s, err := ReadSource(file, line, DefaultLinesBefore, DefaultLinesTotal)
	if err != nil {
		return Snippet{}
	}
	return s
}

// ReadSource reads total lines starting at max(line-before, 1) and
// highlights them for display. The failing line is flagged.
func ReadSource(file string, line, before, total int) (Snippet, error) {
	if file == "" || line <= 0 {
		return Snippet{}, nil
	}

	f, err := os.Open(file)
	if err != nil {
		return Snippet{}, err
	}
	defer f.Close()

	first := max(line-before, 1)
	last := first + total - 1

	var raw []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for n := 1; sc.Scan(); n++ {
		if n < first {
			continue
		}
		if n > last {
			break
		}
		raw = append(raw, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return Snippet{}, err
	}

	snippet := Snippet{First: first, Lines: make([]SourceLine, 0, len(raw))}
	lexer := lexerFor(file)
	for i, text := range raw {
		n := first + i
		snippet.Lines = append(snippet.Lines, SourceLine{
			Number: n,
			Error:  n == line,
			HTML:   highlight(lexer, text),
		})
	}
	return snippet, nil
}

var (
	formatter = chromahtml.New(
		chromahtml.WithClasses(true),
		chromahtml.PreventSurroundingPre(true),
	)

	cssOnce sync.Once
	css     template.CSS
)

// StyleCSS returns the stylesheet for highlighted source lines.
func StyleCSS() template.CSS {
	cssOnce.Do(func() {
		var buf bytes.Buffer
		if err := formatter.WriteCSS(&buf, styles.Get(defaultStyle)); err == nil {
			css = template.CSS(buf.String())
		}
	})
	return css
}

func lexerFor(file string) chroma.Lexer {
	l := lexers.Match(file)
	if l == nil {
		l = lexers.Fallback
	}
	return chroma.Coalesce(l)
}

func highlight(lexer chroma.Lexer, text string) template.HTML {
	text = strings.TrimRight(text, "\r")
	it, err := lexer.Tokenise(nil, text)
	if err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, styles.Get(defaultStyle), it); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String())
}
