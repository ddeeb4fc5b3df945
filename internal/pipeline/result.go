package pipeline

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/fpang/text-anomaly-reporter/internal/storage"
)

// Pipeline stage names, used in failure results and logs.
const (
	StageInput    = "input"
	StageFetch    = "fetch"
	StageStore    = "store"
	StageDetect   = "detect"
	StageGenerate = "generate"
	StageLink     = "link"
)

// Request is the caller-supplied pipeline input.
type Request struct {
	URL string `json:"url"`
}

// Result is the caller-facing outcome of one pipeline run. Exactly one arm is
// populated: a stage failure (Status 400, Message + Stage), a clear image
// (Status 204, Message), or a generated report (Status 200, InputURL +
// ReportURL).
type Result struct {
	Status    int
	Message   string
	Stage     string
	InputURL  string
	ReportURL string
}

// failure builds the stage-failure arm and logs it with stage context.
func failure(stage, format string, args ...interface{}) Result {
	msg := fmt.Sprintf(format, args...)
	log.Error().Str("stage", stage).Msg(msg)
	return Result{Status: http.StatusBadRequest, Stage: stage, Message: msg}
}

// noAnomaly builds the clear-image arm.
func noAnomaly(message string) Result {
	return Result{Status: http.StatusNoContent, Message: message}
}

// reportReady builds the success arm.
func reportReady(inputURL string, link storage.AccessLink) Result {
	return Result{Status: http.StatusOK, InputURL: inputURL, ReportURL: link.URL}
}
