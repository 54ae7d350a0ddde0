package process

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/h2non/filetype"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"
)

type srcEncoding int

const (
	encUnknown srcEncoding = iota
	encUTF8
	encUTF16BigEndian
	encUTF16LittleEndian
	encUTF32BigEndian
	encUTF32LittleEndian
)

var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// detectUTF looks for byte order mark.
func detectUTF(data []byte) srcEncoding {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return encUTF8
	// UTF-32LE mark starts with UTF-16LE one, so it goes first
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE, 0x00, 0x00}):
		return encUTF32LittleEndian
	case bytes.HasPrefix(data, []byte{0x00, 0x00, 0xFE, 0xFF}):
		return encUTF32BigEndian
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return encUTF16BigEndian
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		return encUTF16LittleEndian
	}
	return encUnknown
}

func (e srcEncoding) decoder() *encoding.Decoder {
	switch e {
	case encUTF8:
		return unicode.UTF8BOM.NewDecoder()
	case encUTF16BigEndian:
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
	case encUTF16LittleEndian:
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
	case encUTF32BigEndian:
		return utf32.UTF32(utf32.BigEndian, utf32.ExpectBOM).NewDecoder()
	case encUTF32LittleEndian:
		return utf32.UTF32(utf32.LittleEndian, utf32.ExpectBOM).NewDecoder()
	}
	return nil
}

// stylesheet text prepared for processing
type source struct {
	text string
	enc  srcEncoding
	// declared by @charset rule, nil for UTF-8
	declared encoding.Encoding
	label    string
}

// encode produces output bytes. Text is encoded back into encoding declared
// by @charset, otherwise result is UTF-8 and BOM is kept only if source had
// UTF-8 BOM.
func (s source) encode(text string) ([]byte, error) {
	if s.declared != nil {
		out, err := s.declared.NewEncoder().Bytes([]byte(text))
		if err != nil {
			return nil, fmt.Errorf("unable to encode result as %s: %w", s.label, err)
		}
		return out, nil
	}
	if s.enc == encUTF8 {
		return append(bytes.Clone(bomUTF8), text...), nil
	}
	return []byte(text), nil
}

var (
	errBinary  = errors.New("not a text file")
	errNotUTF8 = errors.New("text is not valid UTF-8 and no @charset rule declares its encoding")
)

// @charset must be the very first thing in the stylesheet, in exactly this form.
var charsetRule = regexp.MustCompile(`^@charset "([^"]{1,40})";`)

// declaredCharset returns encoding named by leading @charset rule. UTF-8 and
// UTF-16 labels are treated as UTF-8 since stylesheet without BOM cannot be
// UTF-16.
func declaredCharset(data []byte) (encoding.Encoding, string, error) {
	m := charsetRule.FindSubmatch(data)
	if m == nil {
		return nil, "", nil
	}
	label := string(m[1])
	enc, name := charset.Lookup(label)
	if enc == nil {
		return nil, "", fmt.Errorf("unknown @charset %q", label)
	}
	if name == "utf-8" || strings.HasPrefix(name, "utf-16") {
		return nil, "", nil
	}
	return enc, name, nil
}

// decodeSource rejects binary data and converts text in any of UTF
// encodings or in encoding declared by @charset to UTF-8.
func decodeSource(data []byte) (source, error) {
	enc := detectUTF(data)
	if enc == encUnknown && isBinary(data) {
		return source{}, errBinary
	}
	dec := enc.decoder()
	if dec == nil {
		declared, label, err := declaredCharset(data)
		if err != nil {
			return source{}, err
		}
		if declared == nil {
			if !utf8.Valid(data) {
				return source{}, errNotUTF8
			}
			return source{text: string(data), enc: enc}, nil
		}
		out, err := declared.NewDecoder().Bytes(data)
		if err != nil {
			return source{}, fmt.Errorf("unable to decode text as %s: %w", label, err)
		}
		return source{text: string(out), enc: enc, declared: declared, label: label}, nil
	}
	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return source{}, fmt.Errorf("unable to decode text: %w", err)
	}
	return source{text: string(out), enc: enc}, nil
}

// isBinary checks well known binary signatures and falls back to looking for
// zero bytes in the beginning of data.
func isBinary(data []byte) bool {
	head := data[:min(len(data), 8192)]
	if kind, err := filetype.Match(head); err == nil && kind != filetype.Unknown {
		return true
	}
	return bytes.IndexByte(head, 0) >= 0
}

// isArchiveFile checks if file is a zip archive by extension and content.
func isArchiveFile(name string) (bool, error) {
	if !strings.EqualFold(filepath.Ext(name), ".zip") {
		return false, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, 262)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, err
	}
	return filetype.Is(head[:n], "zip"), nil
}
