package detect

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/rs/zerolog/log"

	"github.com/fpang/text-anomaly-reporter/internal/storage"
)

// RekognitionDetector runs text detection through Amazon Rekognition on an
// image already stored in S3.
type RekognitionDetector struct {
	client *rekognition.Client
}

// NewRekognitionDetector creates a detector over the given Rekognition client.
func NewRekognitionDetector(client *rekognition.Client) *RekognitionDetector {
	return &RekognitionDetector{client: client}
}

// DetectText submits the stored image to Rekognition and returns the detected
// words in API order. Rekognition reports confidences on a 0..100 scale;
// they are rescaled to 0..1 here. Line detections are dropped, only WORD
// entries survive. Any error from the remote call is returned as-is for the
// caller to propagate.
func (d *RekognitionDetector) DetectText(ctx context.Context, ref storage.ObjectRef) ([]Word, error) {
	out, err := d.client.DetectText(ctx, &rekognition.DetectTextInput{
		Image: &types.Image{
			S3Object: &types.S3Object{
				Bucket: aws.String(ref.Bucket),
				Name:   aws.String(ref.Key),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("detect text in s3://%s/%s: %w", ref.Bucket, ref.Key, err)
	}

	words := mapWords(out.TextDetections)
	log.Info().
		Str("bucket", ref.Bucket).
		Str("key", ref.Key).
		Int("words", len(words)).
		Msg("Text detection complete")
	return words, nil
}

// mapWords converts Rekognition text detections into pipeline words.
func mapWords(detections []types.TextDetection) []Word {
	words := make([]Word, 0, len(detections))
	for _, td := range detections {
		if td.Type != types.TextTypesWord {
			continue
		}
		w := Word{
			Text:       aws.ToString(td.DetectedText),
			Confidence: float64(aws.ToFloat32(td.Confidence)) / 100,
		}
		if td.Geometry != nil {
			for _, p := range td.Geometry.Polygon {
				w.Polygon = append(w.Polygon, Point{
					X: float64(aws.ToFloat32(p.X)),
					Y: float64(aws.ToFloat32(p.Y)),
				})
			}
		}
		words = append(words, w)
	}
	return words
}
