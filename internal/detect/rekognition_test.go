package detect

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

func word(text string, confidence float32, vertices ...float32) types.TextDetection {
	td := types.TextDetection{
		DetectedText: aws.String(text),
		Type:         types.TextTypesWord,
		Confidence:   aws.Float32(confidence),
		Geometry:     &types.Geometry{},
	}
	for i := 0; i+1 < len(vertices); i += 2 {
		td.Geometry.Polygon = append(td.Geometry.Polygon, types.Point{
			X: aws.Float32(vertices[i]),
			Y: aws.Float32(vertices[i+1]),
		})
	}
	return td
}

func TestMapWords_NormalizesConfidence(t *testing.T) {
	words := mapWords([]types.TextDetection{
		word("TOTAL", 98.5, 0.1, 0.2, 0.3, 0.2, 0.3, 0.4, 0.1, 0.4),
	})

	if len(words) != 1 {
		t.Fatalf("expected 1 word, got %d", len(words))
	}
	w := words[0]
	if w.Text != "TOTAL" {
		t.Errorf("expected text TOTAL, got %q", w.Text)
	}
	if w.Confidence < 0.984 || w.Confidence > 0.986 {
		t.Errorf("expected confidence ~0.985, got %f", w.Confidence)
	}
	if len(w.Polygon) != 4 {
		t.Fatalf("expected 4 polygon vertices, got %d", len(w.Polygon))
	}
	if w.Polygon[2].X != float64(float32(0.3)) || w.Polygon[2].Y != float64(float32(0.4)) {
		t.Errorf("unexpected third vertex: %+v", w.Polygon[2])
	}
}

func TestMapWords_DropsLineDetections(t *testing.T) {
	line := word("TOTAL 12.50", 99)
	line.Type = types.TextTypesLine

	words := mapWords([]types.TextDetection{
		line,
		word("TOTAL", 99),
		word("12.50", 87),
	})

	if len(words) != 2 {
		t.Fatalf("expected 2 words after dropping the line entry, got %d", len(words))
	}
}

func TestMapWords_Empty(t *testing.T) {
	if words := mapWords(nil); len(words) != 0 {
		t.Errorf("expected no words, got %d", len(words))
	}
}
