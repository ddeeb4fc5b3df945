// Package main provides a CLI for running the text anomaly pipeline from a
// terminal against real AWS resources, mirroring what the Lambda does behind
// API Gateway. Useful for trying a new template or threshold without a
// deployment round trip.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	lambdasvc "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/text-anomaly-reporter/internal/detect"
	"github.com/fpang/text-anomaly-reporter/internal/fetch"
	"github.com/fpang/text-anomaly-reporter/internal/logging"
	"github.com/fpang/text-anomaly-reporter/internal/pipeline"
	"github.com/fpang/text-anomaly-reporter/internal/report"
	"github.com/fpang/text-anomaly-reporter/internal/storage"
)

// CLI flags
var (
	urlFlag       string
	bucketFlag    string
	namespaceFlag string
	prefixFlag    string
	templateFlag  string
	fontFlag      string
	docGenFlag    string
	thresholdFlag float64
)

var rootCmd = &cobra.Command{
	Use:   "anomaly-cli",
	Short: "Detect low-confidence text in an image and generate a PDF report",
	Long: `anomaly-cli runs the text anomaly pipeline once: it downloads the image at
the given URL, stores it in S3, runs Rekognition text detection, and, when any
word falls below the confidence threshold, invokes the document-generator
Lambda and prints a one-hour download link for the PDF report.

Examples:
  anomaly-cli --url https://example.com/receipt.png --bucket my-bucket --docgen-arn arn:aws:lambda:...:function:doc-generator
  anomaly-cli -u https://example.com/sign.jpg -b my-bucket --docgen-arn arn:... --threshold 0.85`,
	RunE: runPipeline,
}

func init() {
	rootCmd.Flags().StringVarP(&urlFlag, "url", "u", "", "URL of the image to analyze (required)")
	rootCmd.Flags().StringVarP(&bucketFlag, "bucket", "b", "", "S3 bucket for images and reports (required)")
	rootCmd.Flags().StringVar(&namespaceFlag, "namespace", "default", "Logical storage namespace recorded in the report")
	rootCmd.Flags().StringVar(&prefixFlag, "prefix", "anomaly", "Object key prefix")
	rootCmd.Flags().StringVar(&templateFlag, "template", "assets/AnomalyTemplate.docx", "Report template object key")
	rootCmd.Flags().StringVar(&fontFlag, "font", "assets/Monoton.zip", "Report font object key")
	rootCmd.Flags().StringVar(&docGenFlag, "docgen-arn", "", "Document-generator Lambda ARN (required)")
	rootCmd.Flags().Float64Var(&thresholdFlag, "threshold", report.DefaultThreshold, "Minimum per-word confidence (0,1]")

	rootCmd.MarkFlagRequired("url")
	rootCmd.MarkFlagRequired("bucket")
	rootCmd.MarkFlagRequired("docgen-arn")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	logging.Init()
	ctx := context.Background()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("load AWS config: %w", err)
	}
	log.Debug().Str("region", awsCfg.Region).Msg("AWS config loaded")

	cfg := pipeline.Config{
		KeyPrefix:   prefixFlag,
		TemplateKey: templateFlag,
		FontKey:     fontFlag,
		Threshold:   thresholdFlag,
	}

	s3Client := s3.NewFromConfig(awsCfg)
	pipe := pipeline.New(
		cfg,
		fetch.NewClient(nil),
		storage.NewGateway(s3Client, s3.NewPresignClient(s3Client), namespaceFlag, bucketFlag),
		detect.NewRekognitionDetector(rekognition.NewFromConfig(awsCfg)),
		report.NewLambdaGenerator(lambdasvc.NewFromConfig(awsCfg), docGenFlag),
	)

	result, err := pipe.Run(ctx, pipeline.Request{URL: urlFlag})
	if err != nil {
		return fmt.Errorf("pipeline fault: %w", err)
	}

	out := map[string]interface{}{"status": result.Status}
	switch {
	case result.Status == 200:
		out["inputUrl"] = result.InputURL
		out["reportWithAnomalies"] = result.ReportURL
	default:
		out["message"] = result.Message
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	if result.Status == 400 {
		os.Exit(1)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
