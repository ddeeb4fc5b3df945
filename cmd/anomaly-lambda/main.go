// Package main provides the Lambda entry point for the text anomaly
// detection API.
//
// Triggered through API Gateway with a JSON body {"url": "<image url>"}, it
// fetches the image, stores it in S3, runs Rekognition text detection,
// and, when any word falls below the confidence threshold, invokes the
// document-generator Lambda to render a PDF report and returns a one-hour
// presigned download link.
//
// Responses:
//
//	400: missing input or a recognized stage failure, {"message": ...}
//	204: all detected words are clear, no report generated
//	200: {"inputUrl": ..., "reportWithAnomalies": <presigned link>}
//
// Anything else (detection-service failure, malformed upstream response) is
// returned as a handler error so the invocation itself fails.
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	lambdasvc "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/fpang/text-anomaly-reporter/internal/detect"
	"github.com/fpang/text-anomaly-reporter/internal/fetch"
	"github.com/fpang/text-anomaly-reporter/internal/logging"
	"github.com/fpang/text-anomaly-reporter/internal/metrics"
	"github.com/fpang/text-anomaly-reporter/internal/pipeline"
	"github.com/fpang/text-anomaly-reporter/internal/report"
	"github.com/fpang/text-anomaly-reporter/internal/storage"
)

// Initialized at cold start.
var pipe *pipeline.Pipeline

var coldStart = true

func init() {
	initStart := time.Now()
	logging.Init()

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load AWS config")
	}
	log.Debug().Str("region", awsCfg.Region).Msg("AWS config loaded")

	bucket := os.Getenv("ANOMALY_BUCKET_NAME")
	if bucket == "" {
		log.Fatal().Msg("ANOMALY_BUCKET_NAME environment variable is required")
	}
	docGenARN := os.Getenv("DOCGEN_FUNCTION_ARN")
	if docGenARN == "" {
		log.Fatal().Msg("DOCGEN_FUNCTION_ARN environment variable is required")
	}

	namespace := logging.EnvOrDefault("STORAGE_NAMESPACE", "default")
	cfg := pipeline.Config{
		KeyPrefix:   logging.EnvOrDefault("OBJECT_KEY_PREFIX", "anomaly"),
		TemplateKey: logging.EnvOrDefault("TEMPLATE_OBJECT_KEY", "assets/AnomalyTemplate.docx"),
		FontKey:     logging.EnvOrDefault("FONT_OBJECT_KEY", "assets/Monoton.zip"),
	}
	if raw := os.Getenv("CONFIDENCE_THRESHOLD"); raw != "" {
		threshold, err := strconv.ParseFloat(raw, 64)
		if err != nil || threshold <= 0 || threshold > 1 {
			log.Fatal().Str("value", raw).Msg("CONFIDENCE_THRESHOLD must be a float in (0,1]")
		}
		cfg.Threshold = threshold
	}

	s3Client := s3.NewFromConfig(awsCfg)
	pipe = pipeline.New(
		cfg,
		fetch.NewClient(nil),
		storage.NewGateway(s3Client, s3.NewPresignClient(s3Client), namespace, bucket),
		detect.NewRekognitionDetector(rekognition.NewFromConfig(awsCfg)),
		report.NewLambdaGenerator(lambdasvc.NewFromConfig(awsCfg), docGenARN),
	)

	logging.NewStartupLogger("anomaly-lambda").
		InitDuration(time.Since(initStart)).
		S3Bucket("anomalyBucket", bucket).
		LambdaFunc("documentGenerator", docGenARN).
		Config("namespace", namespace).
		Config("keyPrefix", cfg.KeyPrefix).
		Config("templateKey", cfg.TemplateKey).
		Config("fontKey", cfg.FontKey).
		Log()
}

// reportResponse is the success body returned to the caller.
type reportResponse struct {
	InputURL            string `json:"inputUrl"`
	ReportWithAnomalies string `json:"reportWithAnomalies"`
}

// messageResponse is the body for failure and no-anomaly outcomes.
type messageResponse struct {
	Message string `json:"message"`
}

func handler(ctx context.Context, request events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	handlerStart := time.Now()
	if coldStart {
		coldStart = false
		log.Info().Str("function", "anomaly-lambda").Msg("Cold start, first invocation")
	}

	rec := metrics.New("TextAnomalyReporter")
	defer rec.Flush()
	rec.Count("PipelineRuns")

	body, err := requestBody(request)
	if err != nil || len(body) == 0 {
		log.Error().Err(err).Msg("No data provided")
		rec.Dimension("Outcome", "inputError")
		return jsonResponse(http.StatusBadRequest, messageResponse{Message: "No data provided"})
	}

	var req pipeline.Request
	if err := json.Unmarshal(body, &req); err != nil {
		log.Error().Err(err).Msg("Invalid request body")
		rec.Dimension("Outcome", "inputError")
		return jsonResponse(http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
	}
	rec.Property("inputUrl", req.URL)

	result, err := pipe.Run(ctx, req)
	rec.Metric("DurationMs", float64(time.Since(handlerStart).Milliseconds()), metrics.UnitMilliseconds)
	if err != nil {
		// Unhandled fault: fail the invocation rather than shaping a 400.
		log.Error().Err(err).Msg("Pipeline fault")
		rec.Dimension("Outcome", "fault")
		return events.APIGatewayV2HTTPResponse{}, err
	}

	switch result.Status {
	case http.StatusOK:
		rec.Dimension("Outcome", "reportGenerated")
		return jsonResponse(http.StatusOK, reportResponse{
			InputURL:            result.InputURL,
			ReportWithAnomalies: result.ReportURL,
		})
	case http.StatusNoContent:
		rec.Dimension("Outcome", "noAnomaly")
		return jsonResponse(http.StatusNoContent, messageResponse{Message: result.Message})
	default:
		rec.Dimension("Outcome", "stageFailure")
		rec.Property("stage", result.Stage)
		return jsonResponse(result.Status, messageResponse{Message: result.Message})
	}
}

// requestBody returns the raw request body, decoding it when API Gateway has
// base64-encoded it.
func requestBody(request events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if request.IsBase64Encoded {
		return base64.StdEncoding.DecodeString(request.Body)
	}
	return []byte(request.Body), nil
}

func jsonResponse(statusCode int, body interface{}) (events.APIGatewayV2HTTPResponse, error) {
	b, _ := json.Marshal(body)
	return events.APIGatewayV2HTTPResponse{
		StatusCode: statusCode,
		Body:       string(b),
		Headers:    map[string]string{"Content-Type": "application/json"},
	}, nil
}

func main() {
	lambda.Start(handler)
}
