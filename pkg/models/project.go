package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// MaxLabelLength is the longest project label the platform accepts.
const MaxLabelLength = 64

// Project holds the descriptive metadata of a project record.
type Project struct {
	Name        string `json:"name" mapstructure:"name"`
	Label       string `json:"label" mapstructure:"label"`
	Description string `json:"description" mapstructure:"description"`
}

// Validate implements validation.Validatable.
func (p Project) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.Label, validation.Required,
			validation.RuneLength(1, MaxLabelLength)),
		validation.Field(&p.Description, validation.Required),
	)
}

// Material identifies the studied material by its chemical formula.
type Material struct {
	Formula string `json:"formula" mapstructure:"formula"`
}

// Validate implements validation.Validatable.
func (m Material) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Formula, validation.Required),
	)
}

// Agent is the instrument or software that carried out a process.
type Agent struct {
	Name    string  `json:"name" mapstructure:"name"`
	Version *string `json:"version" mapstructure:"version"`
}

// Validate implements validation.Validatable.
func (a Agent) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Name, validation.Required),
	)
}

// Process describes how the data was produced. IsExperiment distinguishes
// experimental from computational provenance.
type Process struct {
	Method       string `json:"method" mapstructure:"method"`
	Agent        Agent  `json:"agent" mapstructure:"agent"`
	IsExperiment bool   `json:"isExperiment" mapstructure:"isExperiment"`
}

// Validate implements validation.Validatable.
func (p Process) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Method, validation.Required),
		validation.Field(&p.Agent),
	)
}

// Parameter is an input setting of the process.
type Parameter struct {
	Name  string `json:"name" mapstructure:"name"`
	Value Value  `json:"value" mapstructure:"value"`
	Unit  string `json:"unit" mapstructure:"unit"`
}

// Validate implements validation.Validatable.
func (p Parameter) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.Value),
	)
}

// Property is an observed outcome. It has the same shape as Parameter.
type Property struct {
	Name  string `json:"name" mapstructure:"name"`
	Value Value  `json:"value" mapstructure:"value"`
	Unit  string `json:"unit" mapstructure:"unit"`
}

// Validate implements validation.Validatable.
func (p Property) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.Value),
	)
}

// CreateProjectRequest is the payload submitted to create a project.
type CreateProjectRequest struct {
	Project    Project     `json:"project"`
	Material   Material    `json:"material"`
	Process    Process     `json:"process"`
	Parameters []Parameter `json:"parameters"`
	Properties []Property  `json:"properties"`
}

// Validate checks every sub-entity and reports all failures together.
func (r CreateProjectRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Project),
		validation.Field(&r.Material),
		validation.Field(&r.Process),
		validation.Field(&r.Parameters, validation.Required),
		validation.Field(&r.Properties, validation.Required),
	)
}

// CreateProjectResponse is returned by the platform after a project has been
// stored.
type CreateProjectResponse struct {
	InsertedID string `json:"inserted_id"`
	Status     string `json:"status"`
}

// FileUploadResponse is the platform's acknowledgement of an uploaded file.
type FileUploadResponse map[string]any

// AuthData holds login credentials.
type AuthData struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate implements validation.Validatable.
func (a AuthData) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Username, validation.Required),
		validation.Field(&a.Password, validation.Required),
	)
}

// TokenResponse is the body returned by the login endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
