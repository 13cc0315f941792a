package models

import (
	"fmt"
	"reflect"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mitchellh/mapstructure"
)

// ProjectResponse is one page of the project listing.
type ProjectResponse struct {
	Skip       int              `json:"skip"`
	PageSize   int              `json:"page_size"`
	PageNumber int              `json:"page_number"`
	PageTotal  int              `json:"page_tot"`
	NumberDocs int              `json:"number_docs"`
	Data       []map[string]any `json:"data"`
}

// ProjectRecord is a typed view of a stored project as returned in
// ProjectResponse.Data. Fields the platform adds over time are ignored.
type ProjectRecord struct {
	ID           string       `mapstructure:"_id"`
	Identifier   string       `mapstructure:"identifier"`
	Project      Project      `mapstructure:"project"`
	Material     Material     `mapstructure:"material"`
	Process      Process      `mapstructure:"process"`
	Parameters   []Parameter  `mapstructure:"parameters"`
	Properties   []Property   `mapstructure:"properties"`
	Files        []FileRecord `mapstructure:"files"`
	User         UserRecord   `mapstructure:"user"`
	DateCreation string       `mapstructure:"date_creation"`

	// CreatedAt is DateCreation parsed; zero when absent or unparseable.
	CreatedAt time.Time `mapstructure:"-"`
}

// FileRecord is a file attached to a stored project.
type FileRecord struct {
	Hash      string `mapstructure:"hash"`
	Name      string `mapstructure:"name"`
	Extension string `mapstructure:"extention"`
	Size      string `mapstructure:"size"`
}

// UserRecord identifies the owner of a stored project.
type UserRecord struct {
	Email       string `mapstructure:"email"`
	Affiliation string `mapstructure:"affiliation"`
}

// Records decodes Data into typed project records.
func (r *ProjectResponse) Records() ([]ProjectRecord, error) {
	records := make([]ProjectRecord, 0, len(r.Data))
	for i, raw := range r.Data {
		rec, err := DecodeProjectRecord(raw)
		if err != nil {
			return nil, fmt.Errorf("error decoding project record %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// DecodeProjectRecord decodes a single raw record.
func DecodeProjectRecord(raw map[string]any) (ProjectRecord, error) {
	var rec ProjectRecord
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.DecodeHookFuncType(valueDecodeHook),
		WeaklyTypedInput: true,
		Result:           &rec,
	})
	if err != nil {
		return rec, err
	}
	if err := dec.Decode(raw); err != nil {
		return rec, err
	}

	if rec.DateCreation != "" {
		if t, err := dateparse.ParseAny(rec.DateCreation); err == nil {
			rec.CreatedAt = t
		}
	}
	return rec, nil
}

var valueType = reflect.TypeOf(Value{})

// valueDecodeHook turns raw numbers and strings into Value.
func valueDecodeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != valueType {
		return data, nil
	}
	if data == nil {
		return Value{}, nil
	}
	if v, ok := ValueOf(data); ok {
		return v, nil
	}
	return nil, fmt.Errorf("cannot decode %s into a parameter value", from)
}

// AffiliationCount is a per-affiliation counter.
type AffiliationCount struct {
	Affiliation string `json:"affiliation"`
	N           int    `json:"n"`
}

// StatsData holds platform-wide aggregate counts.
type StatsData struct {
	TotalProjects        int                `json:"totalProj"`
	TotalUsers           int                `json:"totalUsers"`
	TotalUsersRegistered int                `json:"totalUsersRegistered"`
	ProjectsPerAffil     []AffiliationCount `json:"countProj"`
	FilesPerAffil        []AffiliationCount `json:"countFiles"`
}

// StatsResponse is the envelope of the stats endpoint.
type StatsResponse struct {
	Data StatsData `json:"data"`
}
