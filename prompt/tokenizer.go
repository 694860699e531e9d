package prompt

import (
	"bufio"
	"encoding/base64"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/pkoukk/tiktoken-go"
)

// Tokenizer counts tokens and reports where the count comes from.
type Tokenizer interface {
	Count(text string) int
	Source() string
}

var heuristicPattern = regexp.MustCompile(`[0-9A-Za-z]+|[가-힣]|[^\s]`)

// HeuristicTokenizer counts alphanumeric runs, Hangul syllables and other
// non-space runes as one token each.
type HeuristicTokenizer struct {
	reason string
}

var _ Tokenizer = HeuristicTokenizer{}

// NewHeuristicTokenizer returns a heuristic tokenizer whose source names
// reason, "regex" when empty.
func NewHeuristicTokenizer(reason string) HeuristicTokenizer {
	if reason == "" {
		reason = "regex"
	}
	return HeuristicTokenizer{reason: reason}
}

// Count returns at least 1.
func (h HeuristicTokenizer) Count(text string) int {
	return max(1, len(heuristicPattern.FindAllStringIndex(text, -1)))
}

func (h HeuristicTokenizer) Source() string {
	if h.reason == "" {
		return "heuristic(regex)"
	}
	return "heuristic(" + h.reason + ")"
}

// TiktokenTokenizer counts BPE tokens with a tiktoken encoding.
type TiktokenTokenizer struct {
	enc    *tiktoken.Tiktoken
	source string
}

var _ Tokenizer = (*TiktokenTokenizer)(nil)

func (t *TiktokenTokenizer) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

func (t *TiktokenTokenizer) Source() string { return t.source }

// localBpeLoader serves tiktoken encodings from files in dir named after
// the base name of the ranks URL, e.g. cl100k_base.tiktoken. It never
// touches the network.
type localBpeLoader struct {
	mu  sync.Mutex
	dir string
}

func (l *localBpeLoader) setDir(dir string) {
	l.mu.Lock()
	l.dir = dir
	l.mu.Unlock()
}

func (l *localBpeLoader) LoadTiktokenBpe(file string) (map[string]int, error) {
	l.mu.Lock()
	dir := l.dir
	l.mu.Unlock()
	if dir == "" {
		return nil, errors.New("no local tokenizer directory")
	}

	f, err := os.Open(filepath.Join(dir, path.Base(file)))
	if err != nil {
		return nil, errors.Wrap(err, "open bpe ranks")
	}
	defer f.Close()

	ranks := make(map[string]int)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		token, rank, ok := strings.Cut(line, " ")
		if !ok {
			return nil, errors.Newf("malformed bpe line %q", line)
		}
		raw, err := base64.StdEncoding.DecodeString(token)
		if err != nil {
			return nil, errors.Wrapf(err, "decode bpe token %q", token)
		}
		n, err := strconv.Atoi(rank)
		if err != nil {
			return nil, errors.Wrapf(err, "parse bpe rank %q", rank)
		}
		ranks[string(raw)] = n
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read bpe ranks")
	}
	return ranks, nil
}

var (
	loader     = &localBpeLoader{}
	loaderOnce sync.Once

	tokenizersMu sync.Mutex
	tokenizers   = map[string]Tokenizer{}
)

// LoadTokenizer returns the tokenizer for model, memoized per model,
// directory and fallback. The literal model name is tried first, then
// "sentence-transformers/<model>" when the name has no slash; each
// candidate is tried as a tiktoken model name and then as an encoding
// name, reading ranks only from dir. Embedding models such as
// all-MiniLM-L6-v2 are unknown to tiktoken, so a non-empty fallback
// encoding (e.g. cl100k_base) is tried last. With no dir, or when nothing
// loads, the heuristic tokenizer is returned.
func LoadTokenizer(model, dir, fallback string) Tokenizer {
	key := model + "\x00" + dir + "\x00" + fallback

	tokenizersMu.Lock()
	defer tokenizersMu.Unlock()
	if tok, ok := tokenizers[key]; ok {
		return tok
	}

	var tok Tokenizer
	if dir == "" {
		tok = NewHeuristicTokenizer("no-local-tokenizer")
	} else {
		loaderOnce.Do(func() { tiktoken.SetBpeLoader(loader) })
		loader.setDir(dir)
		tok = loadTiktoken(model, fallback)
	}
	tokenizers[key] = tok
	return tok
}

func loadTiktoken(model, fallback string) Tokenizer {
	candidates := []string{model}
	if !strings.Contains(model, "/") {
		candidates = append(candidates, "sentence-transformers/"+model)
	}
	for _, c := range candidates {
		if enc, err := tiktoken.EncodingForModel(c); err == nil {
			return &TiktokenTokenizer{enc: enc, source: "tiktoken:" + c}
		}
		if enc, err := tiktoken.GetEncoding(c); err == nil {
			return &TiktokenTokenizer{enc: enc, source: "tiktoken:" + c}
		}
	}
	if fallback != "" {
		if enc, err := tiktoken.GetEncoding(fallback); err == nil {
			return &TiktokenTokenizer{enc: enc, source: "tiktoken:" + fallback + "(fallback)"}
		}
	}
	return NewHeuristicTokenizer("regex")
}
