// Package report decides whether detected text is anomalous and drives the
// remote document-generation function that renders the PDF report.
package report

import "github.com/fpang/text-anomaly-reporter/internal/detect"

// DefaultThreshold is the minimum per-word detection confidence below which
// a word counts as anomalous.
const DefaultThreshold = 0.90

// Evaluate reports whether every detected word meets the confidence
// threshold. An empty result is vacuously clear; a single word strictly below
// the threshold makes the whole image anomalous.
func Evaluate(words []detect.Word, threshold float64) bool {
	for _, w := range words {
		if w.Confidence < threshold {
			return false
		}
	}
	return true
}
