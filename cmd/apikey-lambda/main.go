// Package main provides the Lambda entry point for API-key validation.
//
// API Gateway calls this function as a custom authorizer with a JSON body
// {"data": {"api-key": "..."}}. Known keys come from an SSM parameter
// (comma-separated), overridable through the APIKEY_VALID_KEYS environment
// variable for local runs.
package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/rs/zerolog/log"

	"github.com/fpang/text-anomaly-reporter/internal/auth"
	"github.com/fpang/text-anomaly-reporter/internal/logging"
)

var validKeys auth.KeySet

func init() {
	initStart := time.Now()
	logging.Init()

	paramName := logging.EnvOrDefault("SSM_APIKEY_PARAM", "/text-anomaly-reporter/prod/api-keys")
	validKeys = auth.ParseKeys(loadKeys(paramName))
	if len(validKeys) == 0 {
		log.Fatal().Msg("No API keys configured")
	}

	logging.NewStartupLogger("apikey-lambda").
		InitDuration(time.Since(initStart)).
		SSMParam("apiKeys", paramName).
		Config("keyCount", strconv.Itoa(len(validKeys))).
		Log()
}

// loadKeys reads the comma-separated key list from APIKEY_VALID_KEYS if set,
// otherwise from SSM Parameter Store.
func loadKeys(paramName string) string {
	if raw := os.Getenv("APIKEY_VALID_KEYS"); raw != "" {
		log.Debug().Msg("Using API keys from environment variable")
		return raw
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load AWS config")
	}

	ssmStart := time.Now()
	result, err := ssm.NewFromConfig(cfg).GetParameter(context.Background(), &ssm.GetParameterInput{
		Name:           &paramName,
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		log.Fatal().Err(err).Str("param", paramName).Msg("Failed to read API keys from SSM")
	}
	log.Debug().Str("param", paramName).Dur("elapsed", time.Since(ssmStart)).Msg("API keys loaded from SSM")
	return *result.Parameter.Value
}

// validationResponse is the body returned to API Gateway.
type validationResponse struct {
	Active          bool   `json:"active"`
	WWWAuthenticate string `json:"wwwAuthenticate,omitempty"`
}

func handleValidate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read request body")
		respondJSON(w, http.StatusUnauthorized, validationResponse{Active: false, WWWAuthenticate: "API-key"})
		return
	}

	if validKeys.ValidateRequest(body) {
		log.Info().Msg("Result: authorized")
		respondJSON(w, http.StatusOK, validationResponse{Active: true})
		return
	}

	log.Info().Msg("Result: unauthorized")
	respondJSON(w, http.StatusUnauthorized, validationResponse{Active: false, WWWAuthenticate: "API-key"})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func main() {
	mux := http.NewServeMux()
	mux.HandleFunc("/", handleValidate)

	adapter := httpadapter.NewV2(mux)
	lambda.Start(adapter.ProxyWithContext)
}
