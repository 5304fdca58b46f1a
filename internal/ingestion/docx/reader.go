// Package docx reads Word documents as a flat list of paragraphs with their
// style names. The vocabulary parser only needs paragraph text and enough
// style information to skip a leading title.
package docx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

type Paragraph struct {
	Text  string
	Style string // style id, e.g. "Title", "Heading1"; "" when unstyled
}

// IsHeadingStyle reports whether the paragraph carries a title or heading
// style. Word style ids drop the spaces from display names, so "Heading 1"
// arrives as "Heading1".
func (p Paragraph) IsHeadingStyle() bool {
	return p.Style == "Title" || strings.HasPrefix(p.Style, "Heading")
}

type Document struct {
	Paragraphs []Paragraph
}

// Read opens a .docx file and decodes the main document part.
func Read(path string) (*Document, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open document %s: %w", path, err)
	}
	defer zr.Close()

	var part *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			part = f
			break
		}
	}
	if part == nil {
		return nil, fmt.Errorf("document %s: missing word/document.xml", path)
	}

	rc, err := part.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)

	var (
		doc    Document
		para   *Paragraph
		inText bool
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", path, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				doc.Paragraphs = append(doc.Paragraphs, Paragraph{})
				para = &doc.Paragraphs[len(doc.Paragraphs)-1]
			case "pStyle":
				if para != nil {
					for _, attr := range t.Attr {
						if attr.Name.Local == "val" {
							para.Style = attr.Value
						}
					}
				}
			case "t":
				if para != nil {
					inText = true
				}
			case "tab":
				if para != nil {
					para.Text += "\t"
				}
			case "br":
				if para != nil {
					para.Text += "\n"
				}
			}
		case xml.CharData:
			if inText && para != nil {
				para.Text += string(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				para = nil
			}
		}
	}
	return &doc, nil
}
