// Package detect defines the text-detection contract used by the anomaly
// pipeline and its Amazon Rekognition implementation.
package detect

// Point is one normalized (0..1) vertex of a word's bounding polygon.
type Point struct {
	X float64
	Y float64
}

// Word is a single detected word. Confidence is normalized to [0,1].
// Polygon vertices run clockwise from the top-left corner, so vertices 0 and
// 2 are diagonally opposite corners of the bounding box.
type Word struct {
	Text       string
	Confidence float64
	Polygon    []Point
}
