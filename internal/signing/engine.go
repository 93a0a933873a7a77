package signing

import (
	"bytes"
	"fmt"

	"github.com/georgepadayatti/gopdf/pdf/generic"
	"github.com/georgepadayatti/gopdf/pdf/reader"
	"github.com/georgepadayatti/gopdf/pdf/writer"
	"github.com/georgepadayatti/gopdf/stamp"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Engine composites signature bitmaps onto PDF pages using incremental
// updates, so existing document bytes are preserved and only new objects
// are appended.
type Engine struct {
	conf *model.Configuration
}

// NewEngine creates a compositing engine.
func NewEngine() *Engine {
	return &Engine{conf: model.NewDefaultConfiguration()}
}

// PageCount parses the document and returns its page count. Used to
// validate uploads and to verify composited output.
func (e *Engine) PageCount(pdfData []byte) (int, error) {
	count, err := api.PageCount(bytes.NewReader(pdfData), e.conf)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDocumentParse, err)
	}
	return count, nil
}

// Compose stamps the signature onto the placement's page and returns the
// updated document. The placement page is 1-based and validated against the
// actual page count; out-of-range pages are rejected, never clamped. The
// output is re-parsed before returning so a corrupted write surfaces as
// ErrSerialize instead of reaching storage.
func (e *Engine) Compose(pdfData []byte, sig SignatureImage, placement Placement) ([]byte, error) {
	placement.Normalize()

	pdfReader, err := reader.NewPdfFileReaderFromBytes(pdfData)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentParse, err)
	}

	pageCount := pdfReader.GetPageCount()
	if placement.Page < 1 || placement.Page > pageCount {
		return nil, &PageRangeError{Requested: placement.Page, PageCount: pageCount}
	}

	pageIndex := placement.Page - 1
	_, pageHeight := pageDimensions(pdfReader, pageIndex)

	imageStamp, err := stamp.NewImageStamp(sig.Data, placement.Width, placement.Height, &stamp.ImageStampStyle{
		ScaleMode: stamp.ImageScaleStretch,
		Position:  stamp.ImagePositionBottomLeft,
		Opacity:   1.0,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}

	incWriter := writer.NewIncrementalPdfFileWriter(pdfReader)

	appearance, extraStreams, err := imageStamp.CreateAppearanceStream()
	if err != nil {
		return nil, fmt.Errorf("build appearance stream: %w", err)
	}

	if err := embedImage(incWriter, appearance, extraStreams); err != nil {
		return nil, err
	}

	x, y := placement.Origin(pageHeight)
	if err := stampPage(incWriter, pdfReader, pageIndex, appearance, x, y); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := incWriter.Write(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialize, err)
	}

	out := buf.Bytes()

	verified, err := e.PageCount(out)
	if err != nil {
		return nil, fmt.Errorf("%w: output failed verification: %v", ErrSerialize, err)
	}
	if verified != pageCount {
		return nil, fmt.Errorf("%w: page count changed from %d to %d", ErrSerialize, pageCount, verified)
	}

	return out, nil
}

// embedImage wires the image XObject (and its soft mask, when the source
// has an alpha channel) into the appearance stream's resources under the
// /Im1 name its content stream references.
func embedImage(w *writer.IncrementalPdfFileWriter, appearance *generic.StreamObject, extraStreams []*generic.StreamObject) error {
	if len(extraStreams) == 0 {
		return fmt.Errorf("appearance stream carries no image")
	}

	resources := appearance.Dictionary.GetDict("Resources")
	if resources == nil {
		resources = generic.NewDictionary()
		appearance.Dictionary.Set("Resources", resources)
	}

	xobjects := resources.GetDict("XObject")
	if xobjects == nil {
		xobjects = generic.NewDictionary()
		resources.Set("XObject", xobjects)
	}

	imageStream := extraStreams[0]
	if len(extraStreams) > 1 {
		alphaRef := w.AddObject(extraStreams[1])
		imageStream.Dictionary.Set("SMask", alphaRef)
	}

	xobjects.Set("Im1", w.AddObject(imageStream))
	return nil
}

// stampPage registers the appearance stream as a page XObject and appends a
// content stream painting it at (x, y). The page object is resolved by
// walking the catalog's page tree in document order, so the update always
// lands on the page the reader indexed, never on a lookup-order artifact.
func stampPage(w *writer.IncrementalPdfFileWriter, r *reader.PdfFileReader, pageIndex int, appearance *generic.StreamObject, x, y float64) error {
	pageObjNum, err := pageObjectNumber(r, pageIndex)
	if err != nil {
		return err
	}

	page, err := r.GetPage(pageIndex)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDocumentParse, err)
	}
	updated := page.Clone().(*generic.DictionaryObject)

	appearanceRef := w.AddObject(appearance)
	// Unique per revision so repeated signings of one page never collide.
	name := fmt.Sprintf("Stamp%d", appearanceRef.ObjectNumber)

	// Bracket the existing content in q/Q so a dangling graphics state
	// cannot displace the stamp.
	push := w.AddObject(generic.NewStream(nil, []byte("q")))
	pop := w.AddObject(generic.NewStream(nil, []byte("Q")))
	paint := w.AddObject(generic.NewStream(nil,
		[]byte(fmt.Sprintf("q 1 0 0 1 %f %f cm /%s Do Q", x, y, name))))

	contents := generic.ArrayObject{push}
	contents = append(contents, contentRefs(updated.Get("Contents"))...)
	contents = append(contents, pop, paint)
	updated.Set("Contents", contents)

	resources := pageResources(r, updated)
	xobjects := resources.GetDict("XObject")
	if xobjects == nil {
		xobjects = generic.NewDictionary()
	} else {
		xobjects = xobjects.Clone().(*generic.DictionaryObject)
	}
	xobjects.Set(name, appearanceRef)
	resources.Set("XObject", xobjects)
	updated.Set("Resources", resources)

	w.UpdateObject(pageObjNum, updated)
	return nil
}

// pageObjectNumber resolves the object number of the pageIndex-th page by
// traversing /Root -> /Pages -> /Kids depth-first, matching the order the
// reader built its page list in.
func pageObjectNumber(r *reader.PdfFileReader, pageIndex int) (int, error) {
	pagesRef, ok := r.Root.Get("Pages").(generic.Reference)
	if !ok {
		return 0, fmt.Errorf("%w: catalog has no page tree", ErrDocumentParse)
	}

	remaining := pageIndex
	objNum, found := findPageLeaf(r, pagesRef, &remaining)
	if !found {
		return 0, fmt.Errorf("%w: page %d not in page tree", ErrDocumentParse, pageIndex+1)
	}
	return objNum, nil
}

func findPageLeaf(r *reader.PdfFileReader, ref generic.Reference, remaining *int) (int, bool) {
	obj, err := r.GetObject(ref.ObjectNumber)
	if err != nil {
		return 0, false
	}
	dict, ok := obj.(*generic.DictionaryObject)
	if !ok {
		return 0, false
	}

	if dict.GetName("Type") == "Page" {
		if *remaining == 0 {
			return ref.ObjectNumber, true
		}
		*remaining--
		return 0, false
	}

	for _, kid := range dict.GetArray("Kids") {
		kidRef, ok := kid.(generic.Reference)
		if !ok {
			continue
		}
		if objNum, found := findPageLeaf(r, kidRef, remaining); found {
			return objNum, true
		}
	}

	return 0, false
}

// contentRefs normalizes a page's Contents entry into an array of stream
// references regardless of how the producer encoded it.
func contentRefs(contents generic.PdfObject) generic.ArrayObject {
	switch c := contents.(type) {
	case nil:
		return nil
	case generic.ArrayObject:
		return c
	case *generic.ArrayObject:
		return *c
	default:
		return generic.ArrayObject{c}
	}
}

// pageResources returns a mutable copy of the page's resource dictionary,
// resolving an indirect reference if the producer stored it that way.
func pageResources(r *reader.PdfFileReader, page *generic.DictionaryObject) *generic.DictionaryObject {
	switch res := page.Get("Resources").(type) {
	case *generic.DictionaryObject:
		return res.Clone().(*generic.DictionaryObject)
	case generic.Reference:
		if obj, err := r.GetObject(res.ObjectNumber); err == nil {
			if dict, ok := obj.(*generic.DictionaryObject); ok {
				return dict.Clone().(*generic.DictionaryObject)
			}
		}
	}
	return generic.NewDictionary()
}

// pageDimensions reads the page MediaBox, defaulting to US Letter when the
// page omits one.
func pageDimensions(r *reader.PdfFileReader, pageIndex int) (width, height float64) {
	page, err := r.GetPage(pageIndex)
	if err != nil {
		return 612, 792
	}

	if arr, ok := page.Get("MediaBox").(generic.ArrayObject); ok && len(arr) >= 4 {
		llx := numericValue(arr[0])
		lly := numericValue(arr[1])
		urx := numericValue(arr[2])
		ury := numericValue(arr[3])
		return urx - llx, ury - lly
	}

	return 612, 792
}

func numericValue(obj generic.PdfObject) float64 {
	switch v := obj.(type) {
	case generic.IntegerObject:
		return float64(v)
	case generic.RealObject:
		return float64(v)
	default:
		return 0
	}
}
