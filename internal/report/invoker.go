package report

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	lambdasvc "github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/rs/zerolog/log"
)

// GenerateResult carries the two status layers of a document-generation
// invocation: the transport status of the function call itself, and the
// application code decoded from the response body. Only 200/200 means a PDF
// was actually produced.
type GenerateResult struct {
	TransportStatus int
	Code            int
}

// generatorResponse is the application-level response body of the
// document-generation function.
type generatorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

// invokeAPI is the slice of the Lambda client the generator needs.
type invokeAPI interface {
	Invoke(ctx context.Context, in *lambdasvc.InvokeInput, optFns ...func(*lambdasvc.Options)) (*lambdasvc.InvokeOutput, error)
}

// LambdaGenerator invokes the document-generation Lambda synchronously.
type LambdaGenerator struct {
	client      invokeAPI
	functionARN string
}

// NewLambdaGenerator creates a generator bound to one function ARN.
func NewLambdaGenerator(client *lambdasvc.Client, functionARN string) *LambdaGenerator {
	return &LambdaGenerator{client: client, functionARN: functionARN}
}

// Generate submits the payload and returns both status layers. An Invoke
// error, an unhandled fault inside the generator, or an undecodable response
// body is returned as an error; a non-200
// transport status or application code is reported through the result for
// the caller to turn into a stage failure. The response body is decoded only
// when the transport status is 200.
func (g *LambdaGenerator) Generate(ctx context.Context, req GeneratorRequest) (GenerateResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("marshal generator request: %w", err)
	}

	log.Debug().
		Str("function", g.functionARN).
		Int("payloadSize", len(payload)).
		Msg("Invoking document generator")

	out, err := g.client.Invoke(ctx, &lambdasvc.InvokeInput{
		FunctionName:   aws.String(g.functionARN),
		InvocationType: lambdatypes.InvocationTypeRequestResponse,
		Payload:        payload,
	})
	if err != nil {
		return GenerateResult{}, fmt.Errorf("invoke document generator: %w", err)
	}

	// An unhandled fault inside the generator still returns transport 200,
	// flagged only through FunctionError.
	if fe := aws.ToString(out.FunctionError); fe != "" {
		return GenerateResult{}, fmt.Errorf("document generator fault %q: %s", fe, out.Payload)
	}

	res := GenerateResult{TransportStatus: int(out.StatusCode)}
	if res.TransportStatus != http.StatusOK {
		log.Warn().Int("status", res.TransportStatus).Msg("Document generator invocation returned non-200 status")
		return res, nil
	}

	var body generatorResponse
	if err := json.Unmarshal(out.Payload, &body); err != nil {
		return GenerateResult{}, fmt.Errorf("decode generator response: %w", err)
	}
	res.Code = body.Code

	if res.Code == http.StatusOK {
		log.Info().Msg("Document generated successfully")
	} else {
		log.Warn().Int("code", res.Code).Str("message", body.Message).Msg("Document generator reported application failure")
	}
	return res, nil
}
