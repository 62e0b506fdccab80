// Package catalog loads gamelist XML metadata into the lookup index
// the matcher runs against.
package catalog

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/ianaindex"

	"github.com/romstackapp/romstack/internal/errors"
	"github.com/romstackapp/romstack/internal/namevar"
)

// maxVariantsPerRecord caps how many variations one record may claim
// in the index. Clean-name entries are prepended and always survive
// the cap.
const maxVariantsPerRecord = 50

// gameRecord mirrors one game element. The name may be an attribute
// or a child element depending on the gamelist dialect.
type gameRecord struct {
	NameAttr string `xml:"name,attr"`
	Name     string `xml:"name"`
	Genre    string `xml:"genre"`
}

// Load parses the gamelist at path. A parse failure yields a nil
// index and a catalog error; callers treat that as no metadata
// available. A well-formed file with no usable records yields an
// empty index and no error.
func Load(path string) (*Index, error) {
	f, err := os.Open(path) //#nosec G304 -- catalog path comes from user configuration
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeNotFound, "open catalog %s", path)
	}
	defer f.Close()

	idx, err := Parse(f)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeCatalogParse, "parse catalog %s", path)
	}
	return idx, nil
}

// Parse reads gamelist XML from r and builds the index. Every game
// element is considered regardless of nesting depth.
func Parse(r io.Reader) (*Index, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader

	idx := newIndex()
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "game" {
			continue
		}

		var rec gameRecord
		if err := dec.DecodeElement(&rec, &start); err != nil {
			return nil, err
		}
		addRecord(idx, rec)
	}
	return idx, nil
}

// charsetReader lets the decoder handle gamelists that declare legacy
// encodings like ISO-8859-1.
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(charset)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", charset)
	}
	return enc.NewDecoder().Reader(input), nil
}

// addRecord turns one game element into an Entry and registers its
// variations. Records without a name are skipped.
func addRecord(idx *Index, rec gameRecord) {
	name := strings.TrimSpace(rec.NameAttr)
	if name == "" {
		name = strings.TrimSpace(rec.Name)
	}
	if name == "" {
		return
	}

	fullGenre := strings.TrimSpace(rec.Genre)
	if fullGenre == "" {
		fullGenre = "Unknown"
	}
	genre := fullGenre
	if i := strings.Index(genre, "/"); i >= 0 {
		genre = strings.TrimSpace(genre[:i])
	}
	if genre == "" {
		genre = "Unknown"
	}

	clean := StripRegionTags(name)

	entry := &Entry{
		OriginalName: name,
		CleanName:    clean,
		Genre:        genre,
		FullGenre:    fullGenre,
	}

	variations := namevar.Generate(name)
	if clean != "" && clean != name {
		// The clean name gets matching priority by occupying the
		// first slots.
		variations = append([]string{clean, strings.ToLower(clean)}, variations...)
	}
	if len(variations) > maxVariantsPerRecord {
		variations = variations[:maxVariantsPerRecord]
	}

	for _, v := range variations {
		if utf8.RuneCountInString(strings.TrimSpace(v)) > 1 {
			idx.insert(v, entry)
		}
	}

	idx.appendName(name)
}
