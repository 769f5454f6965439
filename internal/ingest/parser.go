package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
)

var ErrUnsupported = errors.New("unsupported file type")

// Parsed is the plain text pulled out of one input document.
type Parsed struct {
	Title      string
	SourcePath string
	Text       string
}

func ParseFile(path string) (*Parsed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	parsed, err := Parse(filepath.Base(path), raw)
	if err != nil {
		return nil, err
	}
	parsed.SourcePath = path
	return parsed, nil
}

// Parse extracts text from raw, choosing the format by name's extension.
func Parse(name string, raw []byte) (*Parsed, error) {
	ext := strings.ToLower(filepath.Ext(name))
	var (
		text string
		err  error
	)
	switch ext {
	case ".docx":
		text, err = parseDOCX(raw)
	case ".pdf":
		text, err = parsePDF(raw)
	case ".html", ".htm":
		text, err = parseHTML(raw)
	case ".txt", ".md", ".text":
		text, err = parsePlain(raw)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
	if err != nil {
		return nil, err
	}
	return &Parsed{
		Title: strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)),
		Text:  normalizeWhitespace(text),
	}, nil
}

func parseDOCX(raw []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("open docx zip: %w", err)
	}

	var xmlData []byte
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, openErr := f.Open()
		if openErr != nil {
			return "", fmt.Errorf("open document.xml: %w", openErr)
		}
		xmlData, err = io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return "", fmt.Errorf("read document.xml: %w", err)
		}
		break
	}
	if len(xmlData) == 0 {
		return "", fmt.Errorf("word/document.xml not found")
	}

	decoder := xml.NewDecoder(bytes.NewReader(xmlData))
	var b strings.Builder
	inText := false
	for {
		tok, tokenErr := decoder.Token()
		if tokenErr == io.EOF {
			break
		}
		if tokenErr != nil {
			return "", fmt.Errorf("decode document.xml: %w", tokenErr)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "p":
				if b.Len() > 0 {
					b.WriteString("\n")
				}
			case "tab":
				b.WriteString(" ")
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return b.String(), nil
}

func parsePDF(raw []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	total := r.NumPage()
	for i := 1; i <= total; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		content, pageErr := p.GetPlainText(nil)
		if pageErr != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no extractable text found in pdf")
	}
	return b.String(), nil
}

// parseHTML keeps the visible text of block elements, one per line.
func parseHTML(raw []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, noscript, nav, header, footer, aside").Remove()

	var lines []string
	doc.Find("h1, h2, h3, h4, h5, h6, p, li, blockquote, pre, td, figcaption").Each(func(_ int, s *goquery.Selection) {
		if s.Find("p, li").Length() > 0 {
			return
		}
		if text := strings.TrimSpace(s.Text()); text != "" {
			lines = append(lines, text)
		}
	})
	if len(lines) == 0 {
		lines = append(lines, strings.TrimSpace(doc.Find("body").Text()))
	}
	return strings.Join(lines, "\n"), nil
}

func parsePlain(raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("text file is not valid utf-8")
	}
	return strings.TrimPrefix(string(raw), "\ufeff"), nil
}

func normalizeWhitespace(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
