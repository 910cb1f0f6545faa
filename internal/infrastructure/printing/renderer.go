package printing

import (
	"context"
	"errors"
	"strings"
	"time"
)

// PaperSize names a supported sheet size
type PaperSize string

const (
	PaperSizeA4     PaperSize = "A4"
	PaperSizeA5     PaperSize = "A5"
	PaperSizeLetter PaperSize = "LETTER"
	PaperSizeLegal  PaperSize = "LEGAL"
)

var paperDimensions = map[PaperSize][2]int{
	PaperSizeA4:     {210, 297},
	PaperSizeA5:     {148, 210},
	PaperSizeLetter: {216, 279},
	PaperSizeLegal:  {216, 356},
}

// ParsePaperSize accepts case-insensitive names and defaults to A4
func ParsePaperSize(s string) PaperSize {
	p := PaperSize(strings.ToUpper(strings.TrimSpace(s)))
	if p.IsValid() {
		return p
	}
	return PaperSizeA4
}

// IsValid reports whether the size is supported
func (p PaperSize) IsValid() bool {
	_, ok := paperDimensions[p]
	return ok
}

// Dimensions returns width and height in millimeters
func (p PaperSize) Dimensions() (int, int) {
	d := paperDimensions[p]
	return d[0], d[1]
}

// Margins in millimeters
type Margins struct {
	Top    int
	Right  int
	Bottom int
	Left   int
}

// DefaultMargins returns 10mm on every side
func DefaultMargins() Margins {
	return Margins{Top: 10, Right: 10, Bottom: 10, Left: 10}
}

// RenderRequest contains the parameters for rendering HTML to PDF
type RenderRequest struct {
	// HTML content to render
	HTML      string
	PaperSize PaperSize
	Landscape bool
	Margins   Margins
	// Title for the PDF document metadata
	Title string
	// FooterHTML is printed on every page when set
	FooterHTML string
	// Timeout overrides the default rendering timeout
	Timeout time.Duration
}

// RenderResult contains the output from PDF rendering
type RenderResult struct {
	PDFData        []byte
	PageCount      int
	RenderDuration time.Duration
}

// PDFRenderer defines the interface for rendering HTML to PDF
type PDFRenderer interface {
	// Render converts HTML content to a PDF document
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	// Close releases any resources held by the renderer
	Close() error
}

// RenderError represents an error during rendering
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout    = "RENDER_TIMEOUT"
	ErrCodeRenderFailed     = "RENDER_FAILED"
	ErrCodeInvalidHTML      = "INVALID_HTML"
	ErrCodeBrowserNotFound  = "BROWSER_NOT_FOUND"
	ErrCodeInvalidPaperSize = "INVALID_PAPER_SIZE"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsUnavailable reports whether err means no browser could be reached,
// as opposed to a document that failed to render
func IsUnavailable(err error) bool {
	var re *RenderError
	if !errors.As(err, &re) {
		return false
	}
	return re.Code == ErrCodeBrowserNotFound || re.Code == ErrCodeRenderTimeout
}
