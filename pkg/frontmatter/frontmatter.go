// Package frontmatter splits a markdown note into its leading yaml block and
// body, and reassembles them.
//
// A frontmatter block starts on the first line of the text with a line that
// is exactly "---" and ends at the next line that is exactly "---". Trailing
// spaces, tabs and carriage returns on a delimiter line are ignored. The body
// is every byte after the closing delimiter line, untouched.
package frontmatter

import (
	"errors"
	"strings"
)

// Delimiter is the line that opens and closes a frontmatter block.
const Delimiter = "---"

const bom = "\uFEFF"

// ErrNilFields is returned when writing through a nil *Fields.
var ErrNilFields = errors.New("frontmatter: nil fields")

// Parsed is the result of Decode.
type Parsed struct {
	// Fields holds the decoded mapping. It is empty, never nil, when the text
	// has no block or the block is not a valid yaml mapping.
	Fields *Fields

	// Body is the text following the block, or the whole text when there was
	// no block. A leading byte order mark is not part of Body.
	Body string

	// HadHeader reports whether the text started with a delimited block.
	HadHeader bool

	// Malformed is set when a block was present but could not be decoded as
	// a mapping; Fields is then empty.
	Malformed bool

	bom bool
}

// Decode splits text into its frontmatter fields and body. It never fails:
// unparseable frontmatter yields empty Fields with HadHeader set.
func Decode(text string) *Parsed {
	p := &Parsed{Fields: NewFields(), Body: text}

	rest := text
	if strings.HasPrefix(rest, bom) {
		rest = rest[len(bom):]
		p.bom = true
		p.Body = rest
	}

	content, body, ok := split(rest)
	if !ok {
		return p
	}

	p.HadHeader = true
	p.Body = body
	if fields, ok := parseFields([]byte(content)); ok {
		p.Fields = fields
	} else {
		p.Malformed = true
	}
	return p
}

// Encode reassembles the note with the current Fields and Body. A document
// that had no frontmatter gains one.
func (p *Parsed) Encode() (string, error) {
	out, err := Encode(p.Fields, p.Body)
	if err != nil {
		return "", err
	}
	if p.bom {
		out = bom + out
	}
	return out, nil
}

// Encode renders fields between delimiter lines followed by body. Empty
// fields produce an empty block.
func Encode(fields *Fields, body string) (string, error) {
	block, err := fields.Marshal()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(len(block) + len(body) + 2*len(Delimiter) + 2)
	b.WriteString(Delimiter)
	b.WriteByte('\n')
	b.WriteString(block)
	b.WriteString(Delimiter)
	b.WriteByte('\n')
	b.WriteString(body)
	return b.String(), nil
}

// split locates the frontmatter block at the start of text. content is the
// raw yaml between the delimiter lines and body is everything after the
// closing delimiter line.
func split(text string) (content, body string, ok bool) {
	first, next, found := cutLine(text, 0)
	if !found || !isDelimiter(first) {
		return "", "", false
	}

	start := next
	pos := next
	for pos <= len(text) {
		line, after, hasNewline := cutLine(text, pos)
		if isDelimiter(line) {
			if !hasNewline {
				return text[start:pos], "", true
			}
			return text[start:pos], text[after:], true
		}
		if !hasNewline {
			break
		}
		pos = after
	}
	return "", "", false
}

// cutLine returns the line starting at pos (without its newline), the offset
// just past the newline, and whether a newline terminated the line.
func cutLine(text string, pos int) (line string, next int, hasNewline bool) {
	if pos >= len(text) {
		return "", len(text) + 1, false
	}
	i := strings.IndexByte(text[pos:], '\n')
	if i < 0 {
		return text[pos:], len(text) + 1, false
	}
	return text[pos : pos+i], pos + i + 1, true
}

func isDelimiter(line string) bool {
	return strings.TrimRight(line, " \t\r") == Delimiter
}
