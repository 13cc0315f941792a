package payload

import (
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"

	"github.com/enea-iemap/iemap-mi/pkg/models"
)

// Reporter receives the aggregated validation failure of a payload that could
// not be built.
type Reporter func(*models.ValidationError)

// Option configures BuildProjectPayload.
type Option func(*buildOptions)

type buildOptions struct {
	reporter Reporter
}

// WithReporter replaces the default reporter.
func WithReporter(r Reporter) Option {
	return func(o *buildOptions) {
		o.reporter = r
	}
}

// BuildProjectPayload is the lenient counterpart of Parse for batch callers:
// instead of returning an error it hands the failure to a Reporter and
// returns nil, so a caller can skip the record and carry on. By default the
// report is logged with the default hclog logger.
func BuildProjectPayload(raw map[string]any, opts ...Option) *models.CreateProjectRequest {
	o := buildOptions{
		reporter: LogReporter(hclog.Default().Named("payload")),
	}
	for _, opt := range opts {
		opt(&o)
	}

	req, err := Parse(raw)
	if err != nil {
		var verr *models.ValidationError
		if !errors.As(err, &verr) {
			verr = &models.ValidationError{}
			verr.Add("", models.ReasonInvalid, err.Error())
		}
		if o.reporter != nil {
			o.reporter(verr)
		}
		return nil
	}
	return req
}

// LogReporter logs one line per offending field.
func LogReporter(logger hclog.Logger) Reporter {
	return func(verr *models.ValidationError) {
		logger.Error("Validation Error", "fields", len(verr.Fields))
		for _, f := range verr.Fields {
			logger.Error("invalid field", "path", f.Path, "reason", string(f.Reason), "detail", f.Message)
		}
	}
}

// WriterReporter prints the multi-line summary to w.
func WriterReporter(w io.Writer) Reporter {
	return func(verr *models.ValidationError) {
		fmt.Fprintln(w, verr.Summary())
	}
}

// DiscardReporter drops reports.
func DiscardReporter(*models.ValidationError) {}
