package report

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	lambdasvc "github.com/aws/aws-sdk-go-v2/service/lambda"
)

type fakeInvoker struct {
	out   *lambdasvc.InvokeOutput
	err   error
	input *lambdasvc.InvokeInput
}

func (f *fakeInvoker) Invoke(_ context.Context, in *lambdasvc.InvokeInput, _ ...func(*lambdasvc.Options)) (*lambdasvc.InvokeOutput, error) {
	f.input = in
	return f.out, f.err
}

func TestGenerate_Success(t *testing.T) {
	fake := &fakeInvoker{out: &lambdasvc.InvokeOutput{
		StatusCode: 200,
		Payload:    []byte(`{"code":200,"message":"ok"}`),
	}}
	gen := &LambdaGenerator{client: fake, functionARN: "arn:aws:lambda:us-east-1:123456789012:function:docgen"}

	res, err := gen.Generate(context.Background(), GeneratorRequest{})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if res.TransportStatus != 200 || res.Code != 200 {
		t.Errorf("Generate() = %+v, want transport 200 and code 200", res)
	}
	if aws.ToString(fake.input.FunctionName) != gen.functionARN {
		t.Errorf("FunctionName = %q, want %q", aws.ToString(fake.input.FunctionName), gen.functionARN)
	}
}

func TestGenerate_TransportStatusSkipsBodyDecode(t *testing.T) {
	fake := &fakeInvoker{out: &lambdasvc.InvokeOutput{
		StatusCode: 202,
		Payload:    []byte(`not json`),
	}}
	gen := &LambdaGenerator{client: fake, functionARN: "docgen"}

	res, err := gen.Generate(context.Background(), GeneratorRequest{})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if res.TransportStatus != 202 {
		t.Errorf("TransportStatus = %d, want 202", res.TransportStatus)
	}
	if res.Code != 0 {
		t.Errorf("Code = %d, want 0 (body must not be decoded on non-200 transport)", res.Code)
	}
}

func TestGenerate_ApplicationFailureCode(t *testing.T) {
	fake := &fakeInvoker{out: &lambdasvc.InvokeOutput{
		StatusCode: 200,
		Payload:    []byte(`{"code":500,"message":"template missing"}`),
	}}
	gen := &LambdaGenerator{client: fake, functionARN: "docgen"}

	res, err := gen.Generate(context.Background(), GeneratorRequest{})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if res.TransportStatus != 200 || res.Code != 500 {
		t.Errorf("Generate() = %+v, want transport 200 and code 500", res)
	}
}

func TestGenerate_FunctionErrorIsFault(t *testing.T) {
	fake := &fakeInvoker{out: &lambdasvc.InvokeOutput{
		StatusCode:    200,
		FunctionError: aws.String("Unhandled"),
		Payload:       []byte(`{"errorMessage":"boom"}`),
	}}
	gen := &LambdaGenerator{client: fake, functionARN: "docgen"}

	_, err := gen.Generate(context.Background(), GeneratorRequest{})
	if err == nil {
		t.Fatal("Generate() error = nil, want fault for FunctionError")
	}
	if !strings.Contains(err.Error(), "Unhandled") {
		t.Errorf("error %q does not name the function error", err)
	}
}

func TestGenerate_UndecodableBodyIsFault(t *testing.T) {
	fake := &fakeInvoker{out: &lambdasvc.InvokeOutput{
		StatusCode: 200,
		Payload:    []byte(`<html>`),
	}}
	gen := &LambdaGenerator{client: fake, functionARN: "docgen"}

	if _, err := gen.Generate(context.Background(), GeneratorRequest{}); err == nil {
		t.Fatal("Generate() error = nil, want decode fault")
	}
}

func TestGenerate_InvokeErrorWrapped(t *testing.T) {
	sentinel := errors.New("throttled")
	fake := &fakeInvoker{err: sentinel}
	gen := &LambdaGenerator{client: fake, functionARN: "docgen"}

	_, err := gen.Generate(context.Background(), GeneratorRequest{})
	if !errors.Is(err, sentinel) {
		t.Errorf("Generate() error = %v, want wrapped %v", err, sentinel)
	}
}
