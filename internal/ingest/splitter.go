package ingest

import "strings"

var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter cuts text into overlapping chunks. It prefers splitting at
// paragraph boundaries, then lines, then words, and hard-cuts runs of
// text with no usable separator. Sizes are measured in runes.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 300
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}
	return &Splitter{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: defaultSeparators,
	}
}

func (s *Splitter) Split(input string) []string {
	var out []string
	for _, chunk := range s.split(input, s.separators) {
		chunk = strings.TrimSpace(chunk)
		if chunk != "" {
			out = append(out, chunk)
		}
	}
	return out
}

func (s *Splitter) split(input string, seps []string) []string {
	if runeLen(input) <= s.chunkSize {
		return []string{input}
	}
	sep, rest := pickSeparator(input, seps)
	if sep == "" {
		return s.hardCut(input)
	}
	var pieces []string
	for _, part := range strings.Split(input, sep) {
		if runeLen(part) > s.chunkSize {
			pieces = append(pieces, s.split(part, rest)...)
		} else {
			pieces = append(pieces, part)
		}
	}
	return s.merge(pieces, sep)
}

// merge packs adjacent pieces into chunks up to chunkSize, carrying
// trailing pieces into the next chunk until the overlap budget is met.
func (s *Splitter) merge(pieces []string, sep string) []string {
	sepLen := runeLen(sep)
	var chunks []string
	var cur []string
	curLen := 0
	for _, piece := range pieces {
		pieceLen := runeLen(piece)
		add := pieceLen
		if len(cur) > 0 {
			add += sepLen
		}
		if curLen+add > s.chunkSize && len(cur) > 0 {
			chunks = append(chunks, strings.Join(cur, sep))
			for len(cur) > 0 && (curLen > s.overlap || curLen+sepLen+pieceLen > s.chunkSize) {
				curLen -= runeLen(cur[0])
				if len(cur) > 1 {
					curLen -= sepLen
				}
				cur = cur[1:]
			}
		}
		if len(cur) > 0 {
			curLen += sepLen
		}
		cur = append(cur, piece)
		curLen += pieceLen
	}
	if len(cur) > 0 {
		chunks = append(chunks, strings.Join(cur, sep))
	}
	return chunks
}

func (s *Splitter) hardCut(input string) []string {
	runes := []rune(input)
	step := s.chunkSize - s.overlap
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + s.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}

func pickSeparator(input string, seps []string) (string, []string) {
	for i, sep := range seps {
		if sep == "" {
			return "", nil
		}
		if strings.Contains(input, sep) {
			return sep, seps[i+1:]
		}
	}
	return "", nil
}

func runeLen(s string) int {
	return len([]rune(s))
}
