// Package pptx reads the text content of PowerPoint decks: slides, their
// paragraphs, and the formatted runs inside each paragraph. It only decodes
// what the extraction pipeline needs — run text and the explicit bold flag —
// and ignores layout, styling inheritance and media.
package pptx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Run is one formatting run inside a paragraph. Bold is only true when the
// run carries an explicit bold attribute; bold inherited from a parent style
// is reported as false, matching how the extractor treats pedagogical
// bolding as a deliberate author action.
type Run struct {
	Text string
	Bold bool
}

type Paragraph struct {
	Runs []Run
}

// Text reassembles the paragraph by concatenating all runs, catching terms
// split across run boundaries.
func (p Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

type Slide struct {
	Number     int // from the slideN.xml part name, so gaps survive
	Paragraphs []Paragraph
}

type Deck struct {
	Slides []Slide
}

var slidePathRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// Read opens a .pptx file and decodes every slide's text runs. A corrupt or
// unreadable file yields an error; callers treat that as a per-file failure,
// not a batch abort.
func Read(path string) (*Deck, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open deck %s: %w", path, err)
	}
	defer zr.Close()

	type numbered struct {
		n int
		f *zip.File
	}
	var slideFiles []numbered
	for _, f := range zr.File {
		m := slidePathRe.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		slideFiles = append(slideFiles, numbered{n: n, f: f})
	}
	if len(slideFiles) == 0 {
		return nil, fmt.Errorf("deck %s: no slides found", path)
	}
	sort.Slice(slideFiles, func(i, j int) bool { return slideFiles[i].n < slideFiles[j].n })

	deck := &Deck{}
	for _, sf := range slideFiles {
		paras, err := parseSlide(sf.f)
		if err != nil {
			return nil, fmt.Errorf("deck %s slide %d: %w", path, sf.n, err)
		}
		deck.Slides = append(deck.Slides, Slide{Number: sf.n, Paragraphs: paras})
	}
	return deck, nil
}

// parseSlide walks a slide part's XML. DrawingML text is nested as
// txBody > a:p > a:r > (a:rPr, a:t); the explicit bold flag is the b
// attribute on a:rPr.
func parseSlide(f *zip.File) ([]Paragraph, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)

	var (
		paras     []Paragraph
		para      *Paragraph
		run       *Run
		inRunText bool
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				paras = append(paras, Paragraph{})
				para = &paras[len(paras)-1]
			case "r":
				if para != nil {
					para.Runs = append(para.Runs, Run{})
					run = &para.Runs[len(para.Runs)-1]
				}
			case "rPr":
				if run != nil {
					for _, attr := range t.Attr {
						if attr.Name.Local == "b" {
							run.Bold = attr.Value == "1" || attr.Value == "true"
						}
					}
				}
			case "t":
				if run != nil {
					inRunText = true
				}
			}
		case xml.CharData:
			if inRunText && run != nil {
				run.Text += string(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inRunText = false
			case "r":
				run = nil
			case "p":
				para = nil
			}
		}
	}
	return paras, nil
}
