package openpnp

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"

	"github.com/example/pnpimport/internal/models"
)

// entrySpan locates one recognized top-level element inside the raw
// document bytes.
type entrySpan struct {
	id    string
	start int64
	end   int64
}

// document holds one persisted XML file as its exact original bytes plus
// an index of recognized entries. Anything the schema does not recognize
// (foreign elements, unknown attributes, comments) stays inside raw and
// is re-emitted verbatim on write, because writes only ever splice new
// entries in front of the root close tag.
type document struct {
	path      string
	rootName  string
	elemName  string
	raw       []byte
	insertOff int64 // offset of the root close tag
	entries   []entrySpan
	index     map[string]entrySpan
}

// emptySkeleton is the document written for a config that has no
// packages.xml / parts.xml yet, matching what OpenPnP itself creates.
func emptySkeleton(rootName string) []byte {
	return []byte(fmt.Sprintf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<%s>\n</%s>\n", rootName, rootName))
}

// loadDocument reads and indexes one persisted file. A missing file
// yields an empty skeleton; a malformed file is a ParseError and aborts
// the load.
func loadDocument(path, rootName, elemName string) (*document, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		raw = emptySkeleton(rootName)
	} else if err != nil {
		return nil, &models.IOError{Op: "read", Path: path, Err: err}
	}

	doc := &document{
		path:     path,
		rootName: rootName,
		elemName: elemName,
	}
	if err := doc.parse(raw); err != nil {
		return nil, &models.ParseError{Source: path, Err: err}
	}
	return doc, nil
}

// parse walks the token stream recording the byte span of every
// top-level element and the offset of the root close tag.
func (d *document) parse(raw []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(raw))

	var (
		depth     int64
		rootSeen  bool
		insertOff int64 = -1
		spans     []entrySpan
		current   entrySpan
	)

	for {
		off := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth == 1 {
				if t.Name.Local != d.rootName {
					return fmt.Errorf("unexpected root element <%s>, want <%s>", t.Name.Local, d.rootName)
				}
				rootSeen = true
			}
			if depth == 2 {
				current = entrySpan{start: off}
				if t.Name.Local == d.elemName {
					for _, attr := range t.Attr {
						if attr.Name.Local == "id" {
							current.id = attr.Value
							break
						}
					}
				}
			}
		case xml.EndElement:
			if depth == 2 {
				current.end = dec.InputOffset()
				if current.id != "" {
					spans = append(spans, current)
				}
			}
			if depth == 1 {
				insertOff = off
			}
			depth--
		}
	}

	if !rootSeen {
		return fmt.Errorf("document has no <%s> root", d.rootName)
	}
	if depth != 0 || insertOff < 0 {
		return fmt.Errorf("unterminated <%s> root", d.rootName)
	}

	// A self-closing root leaves nowhere to splice entries; normalize it
	// to the open/close skeleton. Only possible on an entry-less file, so
	// nothing to round-trip is lost.
	if !bytes.HasPrefix(raw[insertOff:], []byte("</")) {
		raw = emptySkeleton(d.rootName)
		insertOff = int64(bytes.Index(raw, []byte("</"+d.rootName)))
		spans = nil
	}

	d.raw = raw
	d.insertOff = insertOff
	d.entries = spans
	d.index = make(map[string]entrySpan, len(spans))
	for _, s := range spans {
		d.index[s.id] = s
	}
	return nil
}

// entryRaw returns the exact original bytes of the entry with the given
// id.
func (d *document) entryRaw(id string) ([]byte, bool) {
	s, ok := d.index[id]
	if !ok {
		return nil, false
	}
	return d.raw[s.start:s.end], true
}

// ids returns all recognized entry ids in document order.
func (d *document) ids() []string {
	out := make([]string, 0, len(d.entries))
	for _, s := range d.entries {
		out = append(out, s.id)
	}
	return out
}

// render produces the full document with rendered new entries spliced in
// front of the root close tag. With no new entries the output is
// byte-identical to the loaded document.
func (d *document) render(newEntries []string) []byte {
	if len(newEntries) == 0 {
		return d.raw
	}

	var buf bytes.Buffer
	buf.Grow(len(d.raw) + 256*len(newEntries))
	buf.Write(d.raw[:d.insertOff])
	if d.insertOff > 0 && d.raw[d.insertOff-1] != '\n' {
		buf.WriteByte('\n')
	}
	for _, e := range newEntries {
		buf.WriteString(e)
	}
	buf.Write(d.raw[d.insertOff:])
	return buf.Bytes()
}
