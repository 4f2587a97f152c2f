// Package generate drives batch PDF generation: one output page per data
// row, each page cloning the template's first page and stamping every bound
// field's value into a box resolved by the boxfit package.
//
// A run executes on a single dedicated worker goroutine that exclusively
// owns all intermediate state; progress, completion, cancellation and
// failure are reported back as ordered events on a channel. Cancellation is
// cooperative and observed at row boundaries only. The output document is
// accumulated in memory and written to its destination only on successful
// completion, so a cancelled or failed run leaves no partial artifact.
package generate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/jung-kurt/gofpdf"
	"github.com/jung-kurt/gofpdf/contrib/gofpdi"

	"github.com/lmoreno/stampgen"
	"github.com/lmoreno/stampgen/boxfit"
	"github.com/lmoreno/stampgen/geom"
	"github.com/lmoreno/stampgen/metrics"
)

// ErrRunning indicates a generation run is already in progress on this
// Generator. Issue a fresh call after the current run reaches a terminal
// state.
var ErrRunning = errors.New("generate: a run is already in progress")

// Generator produces multi-page PDF documents from a template and data
// rows. A Generator runs one batch at a time and is reusable after a run
// reaches a terminal state. Cancelled runs are not resumed; the caller
// issues a fresh Generate call.
type Generator struct {
	resolver    *boxfit.Resolver
	log         *slog.Logger
	eventBuffer *int // nil means one slot per row plus the terminal event

	state     atomic.Int32
	cancelled atomic.Bool
}

// Option configures a Generator.
type Option func(*Generator)

// WithResolver sets the box-fit resolver. The default resolver uses the
// standard estimator and tuning constants.
func WithResolver(r *boxfit.Resolver) Option {
	return func(g *Generator) {
		g.resolver = r
	}
}

// WithLogger sets the structured logger for per-field diagnostics. Logging
// is discarded by default.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		g.log = l
	}
}

// WithEventBuffer sets the event channel capacity. The default buffers one
// event per row plus the terminal event, so the worker never blocks on a
// slow or departed consumer. A size of zero makes delivery synchronous.
func WithEventBuffer(n int) Option {
	return func(g *Generator) {
		g.eventBuffer = &n
	}
}

// New creates a Generator.
func New(opts ...Option) *Generator {
	g := &Generator{
		resolver: boxfit.New(nil),
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// State returns the current lifecycle state.
func (g *Generator) State() State {
	return State(g.state.Load())
}

// Cancel requests cooperative cancellation of the running batch. It is
// idempotent and safe to call from any state; it is a no-op unless a run is
// in progress. The worker observes the flag at row boundaries, so an
// in-flight page render is not interrupted.
func (g *Generator) Cancel() {
	g.cancelled.Store(true)
}

// Generate starts a batch run writing the finished document to output. It
// validates preconditions synchronously and returns an error, producing
// nothing, if the template has no fields, there are no rows, or the
// template PDF bytes are not loadable. On success it returns the event
// stream; the channel is closed after the terminal event.
func (g *Generator) Generate(tpl *stampgen.Template, rows []stampgen.DataRow, templatePDF []byte, output io.Writer) (<-chan Event, error) {
	return g.start(tpl, rows, templatePDF, output, "")
}

// GenerateFile is like Generate but writes the finished document to a file.
// The file is created only on successful completion, via a temporary file
// renamed into place, so no truncated document is ever observable at
// outputPath.
func (g *Generator) GenerateFile(tpl *stampgen.Template, rows []stampgen.DataRow, templatePDF []byte, outputPath string) (<-chan Event, error) {
	return g.start(tpl, rows, templatePDF, nil, outputPath)
}

func (g *Generator) start(tpl *stampgen.Template, rows []stampgen.DataRow, templatePDF []byte, output io.Writer, outputPath string) (<-chan Event, error) {
	if tpl == nil || len(tpl.Fields()) == 0 {
		return nil, stampgen.ErrNoFields
	}
	if len(rows) == 0 {
		return nil, stampgen.ErrNoRows
	}
	if !bytes.HasPrefix(templatePDF, []byte("%PDF")) {
		return nil, stampgen.ErrNoTemplate
	}
	cur := g.state.Load()
	if State(cur) == StateRunning || !g.state.CompareAndSwap(cur, int32(StateRunning)) {
		return nil, ErrRunning
	}
	g.cancelled.Store(false)

	buffer := len(rows) + 2
	if g.eventBuffer != nil {
		buffer = *g.eventBuffer
	}
	events := make(chan Event, buffer)
	go g.run(tpl, rows, templatePDF, output, outputPath, events)
	return events, nil
}

func (g *Generator) run(tpl *stampgen.Template, rows []stampgen.DataRow, templatePDF []byte, output io.Writer, outputPath string, events chan Event) {
	defer close(events)

	total := len(rows)

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)

	// The template's first page is imported once; its dimensions become the
	// fixed output page size for every generated page.
	imp := gofpdi.NewImporter()
	tplID, pageW, pageH, err := importFirstPage(pdf, imp, templatePDF)
	if err != nil {
		g.fail(events, total, fmt.Errorf("%w: %v", stampgen.ErrNoTemplate, err))
		return
	}
	if pageW == 0 || pageH == 0 {
		pageW, pageH = tpl.PageWidth(), tpl.PageHeight()
	}
	page := geom.Rect{Width: pageW, Height: pageH}

	g.log.Info("generation started", "rows", total, "fields", len(tpl.Fields()),
		"page_width", pageW, "page_height", pageH)

	var failures []FieldFailure
	for i, row := range rows {
		if g.cancelled.Load() {
			g.log.Info("generation cancelled", "pages_done", i, "total", total)
			g.state.Store(int32(StateCancelled))
			events <- Event{Kind: EventCancelled, Current: i, Total: total, Message: "cancelled by user"}
			return
		}

		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: pageW, Ht: pageH})
		imp.UseImportedTemplate(pdf, tplID, 0, 0, pageW, pageH)

		for _, pl := range tpl.FieldsForRow(row) {
			if !pl.HasValue {
				g.log.Debug("field skipped, no value for row",
					"row", i, "field", pl.Field.ID, "node", pl.Field.DataNode)
				continue
			}
			if f := g.stamp(pdf, page, pl.Field, pl.Text, i); f != nil {
				failures = append(failures, *f)
			}
		}

		events <- Event{
			Kind:    EventProgress,
			Current: i + 1,
			Total:   total,
			Message: fmt.Sprintf("generated page %d of %d", i+1, total),
		}
	}

	if err := pdf.Error(); err != nil {
		g.fail(events, total, fmt.Errorf("generate: building document: %w", err))
		return
	}

	if outputPath != "" {
		if err := writeFileAtomic(pdf, outputPath); err != nil {
			g.fail(events, total, err)
			return
		}
	} else if err := pdf.Output(output); err != nil {
		g.fail(events, total, fmt.Errorf("generate: writing output: %w", err))
		return
	}

	g.log.Info("generation complete", "pages", total, "field_failures", len(failures))
	g.state.Store(int32(StateCompleted))
	events <- Event{
		Kind:     EventCompleted,
		Current:  total,
		Total:    total,
		Message:  "complete",
		Output:   outputPath,
		Failures: failures,
	}
}

// stamp resolves the field's box for the given text and draws the text at
// the field's original font size. If the engine's real metrics report that
// the resolved box is still too small, it retries once with the massive
// fallback box; if that also fails the field is dropped for this row and a
// FieldFailure is returned.
func (g *Generator) stamp(pdf *gofpdf.Fpdf, page geom.Rect, f *stampgen.Field, text string, row int) *FieldFailure {
	size := float64(f.FontSize)
	pdf.SetFont(metrics.CoreFont(f.FontFamily), f.Style(), size)
	pdf.SetTextColor(f.Color.R, f.Color.G, f.Color.B)

	box := g.resolver.Resolve(f, text)
	if box != f.Box() {
		g.log.Debug("box expanded",
			"row", row, "field", f.ID, "node", f.DataNode,
			"from", f.Box(), "to", box)
	}

	if !fits(pdf, text, size, box) {
		g.log.Warn("resolved box too small for engine metrics, retrying with fallback box",
			"row", row, "field", f.ID, "node", f.DataNode,
			"text_width", pdf.GetStringWidth(text), "box_width", box.Width)
		box = boxfit.Massive(box)
		if !fits(pdf, text, size, box) {
			g.log.Error("text does not fit, dropping field for this row",
				"row", row, "field", f.ID, "node", f.DataNode, "font_size", f.FontSize)
			return &FieldFailure{
				Row:      row,
				FieldID:  f.ID,
				DataNode: f.DataNode,
				Reason:   fmt.Sprintf("text of width %.0fpt does not fit at %dpt", pdf.GetStringWidth(text), f.FontSize),
			}
		}
	}

	if !box.Within(page) {
		g.log.Warn("field renders outside page bounds",
			"row", row, "field", f.ID, "node", f.DataNode,
			"box", box, "page_width", page.Width, "page_height", page.Height)
	}

	pdf.SetXY(box.X, box.Y)
	pdf.CellFormat(box.Width, box.Height, text, "", 0, cellAlign(f.Align), false, 0, "")
	return nil
}

// fits reports whether the engine's own font metrics place the text inside
// the box at the given size on a single line.
func fits(pdf *gofpdf.Fpdf, text string, size float64, box geom.Rect) bool {
	return pdf.GetStringWidth(text) <= box.Width && size <= box.Height
}

func (g *Generator) fail(events chan Event, total int, err error) {
	g.log.Error("generation failed", "err", err)
	g.state.Store(int32(StateFailed))
	events <- Event{Kind: EventFailed, Total: total, Message: err.Error(), Err: err}
}

// cellAlign maps a field alignment to the engine's cell alignment string,
// always vertically centered.
func cellAlign(a stampgen.Align) string {
	switch a {
	case stampgen.AlignCenter:
		return "CM"
	case stampgen.AlignRight:
		return "RM"
	}
	return "LM"
}

// importFirstPage imports page 1 of the template into the output document
// and returns its template id and MediaBox dimensions. The importer reports
// parse failures by panicking, so this recovers them into an error.
func importFirstPage(pdf *gofpdf.Fpdf, imp *gofpdi.Importer, data []byte) (tplID int, w, h float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parsing template PDF: %v", r)
		}
	}()
	var rs io.ReadSeeker = bytes.NewReader(data)
	tplID = imp.ImportPageFromStream(pdf, &rs, 1, "/MediaBox")
	if dims, ok := imp.GetPageSizes()[1]; ok {
		if mb, ok := dims["/MediaBox"]; ok {
			w, h = mb["w"], mb["h"]
		}
	}
	return tplID, w, h, nil
}

// writeFileAtomic writes the finished document next to the destination and
// renames it into place, so outputPath never holds a partial document.
func writeFileAtomic(pdf *gofpdf.Fpdf, outputPath string) error {
	dir := filepath.Dir(outputPath)
	tmp, err := os.CreateTemp(dir, ".stampgen-*.pdf")
	if err != nil {
		return fmt.Errorf("generate: creating output: %w", err)
	}
	if err := pdf.Output(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("generate: writing output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("generate: writing output: %w", err)
	}
	if err := os.Rename(tmp.Name(), outputPath); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("generate: writing output: %w", err)
	}
	return nil
}
