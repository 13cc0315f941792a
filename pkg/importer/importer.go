// Package importer submits many project records in one run. Invalid records
// are reported and skipped; the run carries on with the rest.
package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"

	"github.com/enea-iemap/iemap-mi/pkg/models"
	"github.com/enea-iemap/iemap-mi/pkg/payload"
)

// ProjectCreator is the subset of iemap.ProjectHandler the importer needs.
type ProjectCreator interface {
	Create(ctx context.Context, req *models.CreateProjectRequest) (*models.CreateProjectResponse, error)
}

// Config configures an Importer.
type Config struct {
	Creator ProjectCreator

	// Reporter receives validation failures, prefixed with the record index
	// by the importer. Default: logged with Logger.
	Reporter func(index int, verr *models.ValidationError)

	// DryRun validates records without submitting them.
	DryRun bool

	Logger hclog.Logger
}

// Importer builds and submits project records one at a time.
type Importer struct {
	creator  ProjectCreator
	reporter func(int, *models.ValidationError)
	dryRun   bool
	logger   hclog.Logger
}

// Summary describes the outcome of a run.
type Summary struct {
	Total   int
	Valid   int
	Invalid []int
	Failed  []int
	Created []string
	DryRun  bool
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d record(s): %d valid, %d invalid", s.Total, s.Valid, len(s.Invalid))
	if s.DryRun {
		b.WriteString(" (dry run, nothing submitted)")
		return b.String()
	}
	fmt.Fprintf(&b, ", %d created, %d failed", len(s.Created), len(s.Failed))
	return b.String()
}

// New creates an Importer.
func New(cfg Config) (*Importer, error) {
	if cfg.Creator == nil && !cfg.DryRun {
		return nil, fmt.Errorf("project creator is required unless running dry")
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}
	logger := cfg.Logger.Named("importer")

	reporter := cfg.Reporter
	if reporter == nil {
		reporter = func(index int, verr *models.ValidationError) {
			payload.LogReporter(logger.With("record", index))(verr)
		}
	}

	return &Importer{
		creator:  cfg.Creator,
		reporter: reporter,
		dryRun:   cfg.DryRun,
		logger:   logger,
	}, nil
}

// Run builds every record and submits the valid ones in order. Invalid
// records never cause an error; submission failures are aggregated into the
// returned error, one entry per failed record. Run stops early only when ctx
// is done.
func (im *Importer) Run(ctx context.Context, records []map[string]any) (Summary, error) {
	summary := Summary{Total: len(records), DryRun: im.dryRun}
	var result *multierror.Error

	for i, raw := range records {
		if err := ctx.Err(); err != nil {
			result = multierror.Append(result, err)
			break
		}

		req := payload.BuildProjectPayload(raw, payload.WithReporter(func(verr *models.ValidationError) {
			im.reporter(i, verr)
		}))
		if req == nil {
			summary.Invalid = append(summary.Invalid, i)
			continue
		}
		summary.Valid++

		if im.dryRun {
			continue
		}

		resp, err := im.creator.Create(ctx, req)
		if err != nil {
			summary.Failed = append(summary.Failed, i)
			result = multierror.Append(result, fmt.Errorf("record %d (%s): %w", i, req.Project.Name, err))
			im.logger.Error("error creating project", "record", i, "error", err)
			continue
		}
		summary.Created = append(summary.Created, resp.InsertedID)
		im.logger.Info("created project", "record", i, "inserted_id", resp.InsertedID)
	}

	if result != nil {
		result.ErrorFormat = formatErrors
	}
	return summary, result.ErrorOrNil()
}

func formatErrors(errs []error) string {
	lines := make([]string, 0, len(errs)+1)
	lines = append(lines, fmt.Sprintf("%d record(s) could not be imported:", len(errs)))
	for _, err := range errs {
		lines = append(lines, "  * "+err.Error())
	}
	return strings.Join(lines, "\n")
}
