// Package textract is the text-extraction capability used to read CV
// documents. The implementation is chosen once at wiring time; callers never
// probe for availability.
package textract

import (
	"fmt"
	"os"

	"code.sajari.com/docconv"
)

// Kind names a document format the capability understands.
type Kind string

const (
	KindPDF  Kind = "pdf"
	KindDocx Kind = "docx"
)

// Extractor extracts plain text from a document on disk.
type Extractor interface {
	ExtractText(path string, kind Kind) (string, error)
}

// Docconv extracts text with the docconv conversion library.
type Docconv struct{}

func (Docconv) ExtractText(path string, kind Kind) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("stat %s document: %w", kind, err)
	}

	res, err := docconv.ConvertPath(path)
	if err != nil {
		return "", fmt.Errorf("converting %s document: %w", kind, err)
	}
	if res == nil {
		return "", nil
	}
	return res.Body, nil
}

// Noop is selected when CV parsing is disabled. It always yields empty text,
// which downstream scoring treats as an unreadable CV.
type Noop struct{}

func (Noop) ExtractText(string, Kind) (string, error) {
	return "", nil
}
