package printing

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePaperSize(t *testing.T) {
	assert.Equal(t, PaperSizeA5, ParsePaperSize("a5"))
	assert.Equal(t, PaperSizeLetter, ParsePaperSize(" Letter "))
	assert.Equal(t, PaperSizeA4, ParsePaperSize(""))
	assert.Equal(t, PaperSizeA4, ParsePaperSize("tabloid"))
}

func TestPaperSize_Dimensions(t *testing.T) {
	w, h := PaperSizeA5.Dimensions()
	assert.Equal(t, 148, w)
	assert.Equal(t, 210, h)
	assert.False(t, PaperSize("B5").IsValid())
}

func TestRenderError(t *testing.T) {
	cause := errors.New("exec: \"chrome\": executable file not found in $PATH")
	err := NewRenderError(ErrCodeBrowserNotFound, "chrome is not installed", cause)

	assert.Equal(t, "chrome is not installed: "+cause.Error(), err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "empty", NewRenderError(ErrCodeInvalidHTML, "empty", nil).Error())
}

func TestIsUnavailable(t *testing.T) {
	assert.True(t, IsUnavailable(NewRenderError(ErrCodeBrowserNotFound, "x", nil)))
	assert.True(t, IsUnavailable(fmt.Errorf("render: %w", NewRenderError(ErrCodeRenderTimeout, "x", nil))))
	assert.False(t, IsUnavailable(NewRenderError(ErrCodeRenderFailed, "x", nil)))
	assert.False(t, IsUnavailable(errors.New("plain")))
}
