package pdf

import (
	"bytes"

	"go.uber.org/zap"
)

var pdfHeader = []byte("%PDF")

// Merge concatenates two documents: leading bytes before the second
// document's %PDF header are dropped, then A + newline + trimmedB.
//
// Known limitation: this does not produce a structurally valid PDF for most
// real documents. It preserves the legacy behavior only; a correct
// multi-document merge belongs to a dedicated document-processing
// collaborator behind this same contract.
func Merge(a, b []byte) []byte {
	if idx := bytes.Index(b, pdfHeader); idx > 0 {
		b = b[idx:]
	}

	zap.L().Warn("PDFs merged by byte concatenation; result may not be a valid PDF",
		zap.Int("first_bytes", len(a)),
		zap.Int("second_bytes", len(b)),
	)

	merged := make([]byte, 0, len(a)+1+len(b))
	merged = append(merged, a...)
	merged = append(merged, '\n')
	merged = append(merged, b...)
	return merged
}
