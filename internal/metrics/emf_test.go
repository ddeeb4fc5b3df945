package metrics

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"
)

func TestNew_AutoDimension(t *testing.T) {
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "TestFunction")
	initOnce.Do(func() {})
	functionName = "TestFunction"

	r := New("TestNamespace")
	if r.namespace != "TestNamespace" {
		t.Errorf("expected namespace TestNamespace, got %s", r.namespace)
	}
	if r.dimensions["FunctionName"] != "TestFunction" {
		t.Errorf("expected FunctionName dimension TestFunction, got %s", r.dimensions["FunctionName"])
	}
}

func TestRecorder_FlushOutput(t *testing.T) {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	functionName = "" // test isolation

	rec := New("TextAnomalyReporter")
	rec.Dimension("Outcome", "reportGenerated")
	rec.Metric("DurationMs", 512.5, UnitMilliseconds)
	rec.Count("PipelineRuns")
	rec.Property("inputUrl", "https://example.com/receipt.png")
	rec.Flush()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	buf.ReadFrom(r)
	output := buf.String()

	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(output), &doc); err != nil {
		t.Fatalf("failed to parse EMF output as JSON: %v\nOutput: %s", err, output)
	}

	if _, ok := doc["_aws"]; !ok {
		t.Fatal("missing _aws directive in EMF output")
	}
	if doc["Outcome"] != "reportGenerated" {
		t.Errorf("expected Outcome dimension reportGenerated, got %v", doc["Outcome"])
	}
	if doc["DurationMs"] != 512.5 {
		t.Errorf("expected DurationMs 512.5, got %v", doc["DurationMs"])
	}
	if doc["PipelineRuns"] != float64(1) {
		t.Errorf("expected PipelineRuns 1, got %v", doc["PipelineRuns"])
	}
	if doc["inputUrl"] != "https://example.com/receipt.png" {
		t.Errorf("expected inputUrl property, got %v", doc["inputUrl"])
	}
}

func TestRecorder_FlushEmpty(t *testing.T) {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	New("TextAnomalyReporter").Property("ignored", true).Flush()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	buf.ReadFrom(r)
	if buf.Len() != 0 {
		t.Errorf("expected no output for recorder without metrics, got %q", buf.String())
	}
}
