package report

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrPreview wraps every failure to decode a document for preview. The UI
// answers it with a plain download link.
var ErrPreview = errors.New("report preview failed")

// Preview is the extracted text of each page.
type Preview struct {
	Pages []string
}

// Previewer decodes built documents.
type Previewer struct{}

func NewPreviewer() *Previewer {
	return &Previewer{}
}

// Render extracts page text from doc. A page whose text cannot be
// extracted is kept as an empty page; a document that cannot be opened or
// has no pages is an error.
func (p *Previewer) Render(doc []byte) (preview Preview, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: decoder panic: %v", ErrPreview, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(doc), int64(len(doc)))
	if err != nil {
		return Preview{}, fmt.Errorf("%w: %v", ErrPreview, err)
	}
	n := reader.NumPage()
	if n == 0 {
		return Preview{}, fmt.Errorf("%w: document has no pages", ErrPreview)
	}

	preview.Pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			preview.Pages = append(preview.Pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			text = ""
		}
		preview.Pages = append(preview.Pages, strings.TrimSpace(text))
	}
	return preview, nil
}
