package report

import (
	"fmt"
	"math"
	"path"
	"strings"

	"github.com/fpang/text-anomaly-reporter/internal/detect"
	"github.com/fpang/text-anomaly-reporter/internal/storage"
)

// Input schema of the document-generation function. The generator fetches the
// template, font, and source image from object storage itself, so the request
// carries storage coordinates rather than embedded bytes.

// StorageSource points the generator at one object it should fetch.
type StorageSource struct {
	Source     string `json:"source"`
	Namespace  string `json:"namespace"`
	BucketName string `json:"bucketName"`
	ObjectName string `json:"objectName"`
}

// OutputTarget tells the generator where to write the rendered PDF.
type OutputTarget struct {
	Target      string `json:"target"`
	Namespace   string `json:"namespace"`
	BucketName  string `json:"bucketName"`
	ObjectName  string `json:"objectName"`
	ContentType string `json:"contentType"`
}

// ImageRef embeds the analyzed image into the report by storage reference.
type ImageRef struct {
	Source     string `json:"source"`
	ObjectName string `json:"objectName"`
	Namespace  string `json:"namespace"`
	BucketName string `json:"bucketName"`
	MediaType  string `json:"mediaType"`
	Height     string `json:"height"`
}

// Corner is one bounding-box corner in normalized coordinates.
type Corner struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// WordEntry is one detected word prepared for display: confidence as a
// percentage with one decimal, diagonal corners with two decimals.
type WordEntry struct {
	Word       string  `json:"word"`
	Confidence float64 `json:"confidence"`
	Corner1    Corner  `json:"corner1"`
	Corner3    Corner  `json:"corner3"`
}

// Data is the report body handed to the generator's template engine.
type Data struct {
	ImageWithAnomalies ImageRef    `json:"image_with_anomalies"`
	Words              []WordEntry `json:"words"`
}

// GeneratorRequest is the complete payload for one document-generation
// invocation: the report data plus static template and font references.
type GeneratorRequest struct {
	RequestType string        `json:"requestType"`
	TagSyntax   string        `json:"tagSyntax"`
	Data        Data          `json:"data"`
	Template    StorageSource `json:"template"`
	FontFile    StorageSource `json:"fontFile"`
	Output      OutputTarget  `json:"output"`
}

// BuildData transforms detection results into the generator's input schema.
// The two diagonal corners are polygon vertices 0 and 2. A word whose polygon
// has fewer than 3 vertices is a malformed upstream response and is returned
// as an error rather than silently skipped.
func BuildData(words []detect.Word, image storage.ObjectRef) (Data, error) {
	data := Data{
		ImageWithAnomalies: ImageRef{
			Source:     "OBJECT_STORAGE",
			ObjectName: image.Key,
			Namespace:  image.Namespace,
			BucketName: image.Bucket,
			MediaType:  "image/png",
			Height:     "450px",
		},
		Words: make([]WordEntry, 0, len(words)),
	}

	for _, w := range words {
		if len(w.Polygon) < 3 {
			return Data{}, fmt.Errorf("word %q: bounding polygon has %d vertices, need at least 3", w.Text, len(w.Polygon))
		}
		data.Words = append(data.Words, WordEntry{
			Word:       w.Text,
			Confidence: RoundPercent(w.Confidence),
			Corner1:    Corner{X: round2(w.Polygon[0].X), Y: round2(w.Polygon[0].Y)},
			Corner3:    Corner{X: round2(w.Polygon[2].X), Y: round2(w.Polygon[2].Y)},
		})
	}
	return data, nil
}

// NewGeneratorRequest assembles the full invocation payload. Template and
// font live in the same bucket as the image; the PDF is written next to it.
func NewGeneratorRequest(data Data, image storage.ObjectRef, templateKey, fontKey string) GeneratorRequest {
	return GeneratorRequest{
		RequestType: "SINGLE",
		TagSyntax:   "DOCGEN_1_0",
		Data:        data,
		Template: StorageSource{
			Source:     "OBJECT_STORAGE",
			Namespace:  image.Namespace,
			BucketName: image.Bucket,
			ObjectName: templateKey,
		},
		FontFile: StorageSource{
			Source:     "OBJECT_STORAGE",
			Namespace:  image.Namespace,
			BucketName: image.Bucket,
			ObjectName: fontKey,
		},
		Output: OutputTarget{
			Target:      "OBJECT_STORAGE",
			Namespace:   image.Namespace,
			BucketName:  image.Bucket,
			ObjectName:  OutputPDFKey(image.Key),
			ContentType: "application/pdf",
		},
	}
}

// OutputPDFKey derives the generated report's object key from the source
// image key by swapping the extension for .pdf. Deterministic, so the link
// stage can name the PDF without a round trip to the generator.
func OutputPDFKey(imageKey string) string {
	return strings.TrimSuffix(imageKey, path.Ext(imageKey)) + ".pdf"
}

// RoundPercent rescales a 0..1 confidence to a percentage rounded to one
// decimal place.
func RoundPercent(confidence float64) float64 {
	return math.Round(confidence*1000) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
