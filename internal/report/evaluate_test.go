package report

import (
	"testing"

	"github.com/fpang/text-anomaly-reporter/internal/detect"
)

func wordsWithConfidences(confidences ...float64) []detect.Word {
	words := make([]detect.Word, 0, len(confidences))
	for _, c := range confidences {
		words = append(words, detect.Word{Text: "w", Confidence: c})
	}
	return words
}

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name        string
		confidences []float64
		threshold   float64
		wantClear   bool
	}{
		{"empty result is vacuously clear", nil, 0.90, true},
		{"all above threshold", []float64{0.95, 0.99}, 0.90, true},
		{"exactly at threshold is clear", []float64{0.90}, 0.90, true},
		{"one word below threshold", []float64{0.95, 0.91, 0.89}, 0.90, false},
		{"all below threshold", []float64{0.10, 0.20}, 0.90, false},
		{"lower threshold admits more", []float64{0.55}, 0.50, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Evaluate(wordsWithConfidences(c.confidences...), c.threshold)
			if got != c.wantClear {
				t.Errorf("Evaluate(%v, %v) = %v, want %v", c.confidences, c.threshold, got, c.wantClear)
			}
		})
	}
}
