package bibtex

import (
	"strings"
	"unicode"

	biberr "git.home.luguber.info/inful/bibcheck/internal/errors"
)

// Parse scans a BibTeX source into a Document. The scanner is
// tolerant: text outside entries (comments, stray bytes) is ignored
// and preserved in the source; @comment, @preamble, and @string blocks
// are skipped. A non-nil error reports a truncated trailing entry, but
// the returned document still contains every entry parsed before it.
func Parse(src []byte) (*Document, error) {
	doc := &Document{src: src}
	p := &parser{src: src}
	var firstErr error
	for {
		entry, err := p.nextEntry()
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if entry == nil {
			break
		}
		doc.Entries = append(doc.Entries, entry)
	}
	return doc, firstErr
}

type parser struct {
	src []byte
	pos int
}

// nextEntry advances to the next @entry and parses it. Returns
// (nil, nil) at end of input.
func (p *parser) nextEntry() (*Entry, error) {
	for {
		at := p.indexByte('@')
		if at < 0 {
			return nil, nil
		}
		p.pos = at + 1
		name := p.readIdent()
		if name == "" {
			continue
		}
		kind := strings.ToLower(name)
		switch kind {
		case "comment", "preamble", "string":
			p.skipBlock()
			continue
		}
		entry, err := p.parseEntryBody(kind)
		if entry == nil && err == nil {
			continue
		}
		return entry, err
	}
}

// parseEntryBody parses "{key, field = value, ...}" after the type.
func (p *parser) parseEntryBody(kind string) (*Entry, error) {
	p.skipSpace()
	open, closeDelim := p.peek(), byte(0)
	switch open {
	case '{':
		closeDelim = '}'
	case '(':
		closeDelim = ')'
	default:
		return nil, nil // not an entry, resume scanning
	}
	p.pos++

	key := p.readUntilAny(",")
	if key == "" {
		return nil, nil
	}
	entry := &Entry{
		Type:   kind,
		Key:    strings.TrimSpace(key),
		fields: make(map[string]string),
		spans:  make(map[string]Span),
	}
	if p.peek() == ',' {
		p.pos++
	}

	for {
		p.skipSpace()
		switch {
		case p.pos >= len(p.src):
			return entry, biberr.New(biberr.CategoryParse, biberr.SeverityWarning,
				"unterminated entry").WithContext("key", entry.Key)
		case p.peek() == closeDelim:
			p.pos++
			return entry, nil
		case p.peek() == ',':
			p.pos++
			continue
		}

		name := p.readIdent()
		if name == "" {
			// Unparseable byte inside the entry; skip it rather than fail.
			p.pos++
			continue
		}
		p.skipSpace()
		if p.peek() != '=' {
			continue
		}
		p.pos++
		p.skipSpace()

		value, span, ok := p.readValue(closeDelim)
		if !ok {
			return entry, biberr.New(biberr.CategoryParse, biberr.SeverityWarning,
				"unterminated field value").
				WithContext("key", entry.Key).
				WithContext("field", name)
		}
		entry.setField(name, value, span)
	}
}

// readValue reads one field value: a balanced brace group, a quoted
// string, or a bare token (number or macro name, possibly a # chain).
// The returned span covers the value without its delimiters.
func (p *parser) readValue(closeDelim byte) (string, Span, bool) {
	switch p.peek() {
	case '{':
		start := p.pos + 1
		end, ok := p.scanBraced()
		if !ok {
			return "", Span{}, false
		}
		return string(p.src[start:end]), Span{Start: start, End: end}, true
	case '"':
		start := p.pos + 1
		end, ok := p.scanQuoted()
		if !ok {
			return "", Span{}, false
		}
		return string(p.src[start:end]), Span{Start: start, End: end}, true
	default:
		start := p.pos
		for p.pos < len(p.src) {
			c := p.src[p.pos]
			if c == ',' || c == closeDelim {
				break
			}
			p.pos++
		}
		raw := strings.TrimSpace(string(p.src[start:p.pos]))
		return raw, Span{Start: start, End: p.pos}, true
	}
}

// scanBraced consumes a balanced {..} group starting at the current
// position and returns the index of the closing brace.
func (p *parser) scanBraced() (int, bool) {
	depth := 0
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				end := p.pos
				p.pos++
				return end, true
			}
		}
		p.pos++
	}
	return 0, false
}

// scanQuoted consumes a "…" value. Braces inside the quotes nest, and
// a quote inside a brace group does not terminate the value.
func (p *parser) scanQuoted() (int, bool) {
	p.pos++ // opening quote
	depth := 0
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case '"':
			if depth == 0 {
				end := p.pos
				p.pos++
				return end, true
			}
		}
		p.pos++
	}
	return 0, false
}

// skipBlock consumes a @comment/@preamble/@string block best-effort.
func (p *parser) skipBlock() {
	p.skipSpace()
	switch p.peek() {
	case '{':
		_, _ = p.scanBraced()
	case '(':
		depth := 0
		for p.pos < len(p.src) {
			switch p.src[p.pos] {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					p.pos++
					return
				}
			}
			p.pos++
		}
	}
}

func (p *parser) indexByte(c byte) int {
	for i := p.pos; i < len(p.src); i++ {
		if p.src[i] == c {
			return i
		}
	}
	return -1
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

// readIdent reads an identifier (letters, digits, '-', '_').
func (p *parser) readIdent() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
			(c >= '0' && c <= '9') || c == '-' || c == '_' {
			p.pos++
			continue
		}
		break
	}
	return string(p.src[start:p.pos])
}

// readUntilAny reads up to (not including) any byte in stops, also
// stopping at '}' or ')' or whitespace-then-delimiter boundaries.
func (p *parser) readUntilAny(stops string) string {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if strings.IndexByte(stops, c) >= 0 || c == '}' || c == ')' || c == '\n' {
			break
		}
		p.pos++
	}
	return string(p.src[start:p.pos])
}
