package knowledge

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"code.sajari.com/docconv"
	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/microcosm-cc/bluemonday"
)

// Extractor turns one file type's bytes into plain text. Implementations
// are stateless and safe for concurrent use.
type Extractor interface {
	// CanExtract reports whether this extractor handles the file, judged by
	// declared MIME type with the filename extension as fallback.
	CanExtract(name, mime string) bool

	// Extract returns the plain text content of the file. The MIME type
	// passed in has already been resolved from the declaration or the
	// filename extension.
	Extract(ctx context.Context, data []byte, mime string) (string, error)

	// Name returns the extractor name for logging.
	Name() string
}

// DefaultExtractors returns the extractor chain in lookup order: plain text,
// HTML, then rich-document formats.
func DefaultExtractors() []Extractor {
	return []Extractor{
		&textExtractor{},
		newHTMLExtractor(),
		&richDocExtractor{},
	}
}

// textExtractor decodes plain-text and markdown files directly.
type textExtractor struct{}

func (e *textExtractor) CanExtract(name, mime string) bool {
	switch baseMIME(mime) {
	case "text/plain", "text/markdown", "text/csv":
		return true
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md", ".csv":
		return true
	}
	return false
}

func (e *textExtractor) Extract(_ context.Context, data []byte, _ string) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("content is not valid UTF-8 text")
	}
	return string(data), nil
}

func (e *textExtractor) Name() string { return "text" }

// htmlExtractor sanitizes HTML and converts it to markdown before chunking.
// Two stages: strip dangerous elements, then normalize to markdown.
type htmlExtractor struct {
	policy    *bluemonday.Policy
	converter *md.Converter
}

func newHTMLExtractor() *htmlExtractor {
	return &htmlExtractor{
		policy:    bluemonday.UGCPolicy(),
		converter: md.NewConverter("", true, nil),
	}
}

func (e *htmlExtractor) CanExtract(name, mime string) bool {
	if baseMIME(mime) == "text/html" {
		return true
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		return true
	}
	return false
}

func (e *htmlExtractor) Extract(_ context.Context, data []byte, _ string) (string, error) {
	sanitized := e.policy.Sanitize(string(data))
	markdown, err := e.converter.ConvertString(sanitized)
	if err != nil {
		return "", fmt.Errorf("convert html: %w", err)
	}
	return markdown, nil
}

func (e *htmlExtractor) Name() string { return "html" }

// richDocExtractor handles PDF, DOCX and ODT through docconv.
type richDocExtractor struct{}

var richMIMEs = map[string]bool{
	"application/pdf": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.oasis.opendocument.text":                                 true,
	"application/msword":                                                      true,
	"application/rtf":                                                         true,
}

var richExts = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".odt":  "application/vnd.oasis.opendocument.text",
	".doc":  "application/msword",
	".rtf":  "application/rtf",
}

func (e *richDocExtractor) CanExtract(name, mime string) bool {
	if richMIMEs[baseMIME(mime)] {
		return true
	}
	_, ok := richExts[strings.ToLower(filepath.Ext(name))]
	return ok
}

func (e *richDocExtractor) Extract(ctx context.Context, data []byte, mime string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	res, err := docconv.Convert(bytes.NewReader(data), mime, false)
	if err != nil {
		return "", fmt.Errorf("docconv: %w", err)
	}
	return res.Body, nil
}

func (e *richDocExtractor) Name() string { return "docconv" }

// resolveMIME returns the effective MIME type for an upload: the declared
// type when present, otherwise one derived from the filename extension.
func resolveMIME(name, declared string) string {
	if m := baseMIME(declared); m != "" && m != "application/octet-stream" {
		return m
	}
	ext := strings.ToLower(filepath.Ext(name))
	if m, ok := richExts[ext]; ok {
		return m
	}
	switch ext {
	case ".txt", ".csv":
		return "text/plain"
	case ".md":
		return "text/markdown"
	case ".html", ".htm":
		return "text/html"
	}
	return baseMIME(declared)
}

// baseMIME strips parameters like "; charset=utf-8".
func baseMIME(mime string) string {
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return strings.ToLower(strings.TrimSpace(mime))
}
