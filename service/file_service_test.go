package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/docchat-be/types"
)

func TestIsPDF(t *testing.T) {
	assert.True(t, isPDF("report.pdf", ""))
	assert.True(t, isPDF("REPORT.PDF", ""))
	assert.True(t, isPDF("whatever", "application/pdf"))
	assert.False(t, isPDF("notes.txt", "text/plain"))
	assert.False(t, isPDF("archive.zip", ""))
}

func TestBlobObjectName(t *testing.T) {
	assert.Equal(t, "abc-123.pdf", blobObjectName("abc-123"))
}

func TestUploadDocumentRejectsNonPDF(t *testing.T) {
	fileService := NewFileService(nil, nil, nil, nil, nil, nil, nil, nil)

	_, err := fileService.UploadDocument(
		context.Background(),
		"notes.txt",
		strings.NewReader("plain text"),
		10,
		"text/plain",
		nil,
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrInvalidMimeType)
}
