package payload

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/enea-iemap/iemap-mi/pkg/models"
)

// Parse builds a validated CreateProjectRequest from a loosely typed nested
// mapping such as decoded JSON or YAML. Every offending field is reported in
// the returned *models.ValidationError; Parse never stops at the first one.
//
// Parse has no side effects and returns equal values for equal input.
func Parse(raw map[string]any) (*models.CreateProjectRequest, error) {
	p := &parser{errs: &models.ValidationError{}}
	if raw == nil {
		for _, key := range []string{"project", "material", "process", "parameters", "properties"} {
			p.errs.Add(key, models.ReasonMissing, "")
		}
		return nil, p.errs
	}

	req := &models.CreateProjectRequest{}

	if m, ok := p.object(raw, "", "project"); ok {
		req.Project = models.Project{
			Name:        p.requiredString(m, "project", "name"),
			Label:       p.requiredString(m, "project", "label"),
			Description: p.requiredString(m, "project", "description"),
		}
	}

	if m, ok := p.object(raw, "", "material"); ok {
		req.Material = models.Material{
			Formula: p.requiredString(m, "material", "formula"),
		}
	}

	if m, ok := p.object(raw, "", "process"); ok {
		req.Process.Method = p.requiredString(m, "process", "method")
		if agent, ok := p.object(m, "process", "agent"); ok {
			req.Process.Agent = models.Agent{
				Name:    p.requiredString(agent, "process.agent", "name"),
				Version: p.optionalString(agent, "process.agent", "version"),
			}
		}
		req.Process.IsExperiment = p.requiredBool(m, "process", "isExperiment")
	}

	for i, item := range p.list(raw, "", "parameters") {
		if item == nil {
			// Keeps indexes aligned; the element is already reported.
			req.Parameters = append(req.Parameters, models.Parameter{})
			continue
		}
		path := joinPath("parameters", strconv.Itoa(i))
		req.Parameters = append(req.Parameters, models.Parameter{
			Name:  p.requiredString(item, path, "name"),
			Value: p.value(item, path, "value"),
			Unit:  p.unit(item, path),
		})
	}

	for i, item := range p.list(raw, "", "properties") {
		if item == nil {
			// Keeps indexes aligned; the element is already reported.
			req.Properties = append(req.Properties, models.Property{})
			continue
		}
		path := joinPath("properties", strconv.Itoa(i))
		req.Properties = append(req.Properties, models.Property{
			Name:  p.requiredString(item, path, "name"),
			Value: p.value(item, path, "value"),
			Unit:  p.unit(item, path),
		})
	}

	// Model rules not expressible as shape checks (e.g. label length). Paths
	// already reported by the structural pass are not repeated.
	for _, fe := range models.FieldErrorsFrom(req.Validate()) {
		if !p.covered(fe.Path) {
			p.errs.Add(fe.Path, models.ReasonInvalid, fe.Message)
		}
	}

	if err := p.errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return req, nil
}

// parser walks a raw mapping and accumulates field errors.
type parser struct {
	errs *models.ValidationError
}

// covered reports whether path, or one of its ancestors, already has an
// error.
func (p *parser) covered(path string) bool {
	for _, fe := range p.errs.Fields {
		if fe.Path == path || strings.HasPrefix(path, fe.Path+".") {
			return true
		}
	}
	return false
}

// lookup finds key in m. Besides the canonical key, any key that normalises
// to it in lower camel case (is_experiment, IsExperiment) is accepted. A nil
// value counts as absent. When several spellings carry a value the field is
// reported as conflicting and treated as absent.
func (p *parser) lookup(m map[string]any, prefix, key string) (any, bool) {
	var matches []string
	for k, v := range m {
		if v == nil {
			continue
		}
		if k == key || strcase.ToLowerCamel(k) == key {
			matches = append(matches, k)
		}
	}

	switch len(matches) {
	case 0:
		return nil, false
	case 1:
		return m[matches[0]], true
	}
	sort.Strings(matches)
	p.errs.Add(joinPath(prefix, key), models.ReasonInvalid,
		fmt.Sprintf("conflicting keys: %s", strings.Join(matches, ", ")))
	return nil, false
}

// missing reports path unless it, or an ancestor, already has an error.
func (p *parser) missing(path string) {
	if !p.covered(path) {
		p.errs.Add(path, models.ReasonMissing, "")
	}
}

func (p *parser) object(m map[string]any, prefix, key string) (map[string]any, bool) {
	path := joinPath(prefix, key)
	v, ok := p.lookup(m, prefix, key)
	if !ok {
		p.missing(path)
		return nil, false
	}
	obj, ok := v.(map[string]any)
	if !ok {
		p.errs.Add(path, models.ReasonWrongType, fmt.Sprintf("expected an object, got %s", typeName(v)))
		return nil, false
	}
	return obj, true
}

func (p *parser) requiredString(m map[string]any, prefix, key string) string {
	path := joinPath(prefix, key)
	v, ok := p.lookup(m, prefix, key)
	if !ok {
		p.missing(path)
		return ""
	}
	s, ok := v.(string)
	if !ok {
		p.errs.Add(path, models.ReasonWrongType, fmt.Sprintf("expected a string, got %s", typeName(v)))
		return ""
	}
	if strings.TrimSpace(s) == "" {
		p.errs.Add(path, models.ReasonEmpty, "")
		return ""
	}
	return s
}

func (p *parser) optionalString(m map[string]any, prefix, key string) *string {
	v, ok := p.lookup(m, prefix, key)
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		p.errs.Add(joinPath(prefix, key), models.ReasonWrongType,
			fmt.Sprintf("expected a string, got %s", typeName(v)))
		return nil
	}
	return &s
}

func (p *parser) requiredBool(m map[string]any, prefix, key string) bool {
	path := joinPath(prefix, key)
	v, ok := p.lookup(m, prefix, key)
	if !ok {
		p.missing(path)
		return false
	}
	b, ok := v.(bool)
	if !ok {
		p.errs.Add(path, models.ReasonWrongType, fmt.Sprintf("expected a boolean, got %s", typeName(v)))
		return false
	}
	return b
}

func (p *parser) value(m map[string]any, prefix, key string) models.Value {
	path := joinPath(prefix, key)
	v, ok := p.lookup(m, prefix, key)
	if !ok {
		p.missing(path)
		return models.Value{}
	}
	val, ok := models.ValueOf(v)
	if !ok {
		p.errs.Add(path, models.ReasonWrongType,
			fmt.Sprintf("expected a finite number or a string, got %s", typeName(v)))
		return models.Value{}
	}
	return val
}

// unit may be absent or empty; both mean dimensionless.
func (p *parser) unit(m map[string]any, prefix string) string {
	if s := p.optionalString(m, prefix, "unit"); s != nil {
		return *s
	}
	return ""
}

// list returns the elements of a required, non-empty list of objects. Bad
// elements are reported and left nil so indexes stay aligned with the input.
func (p *parser) list(m map[string]any, prefix, key string) []map[string]any {
	path := joinPath(prefix, key)
	v, ok := p.lookup(m, prefix, key)
	if !ok {
		p.missing(path)
		return nil
	}

	var items []any
	switch vv := v.(type) {
	case []any:
		items = vv
	case []map[string]any:
		items = make([]any, len(vv))
		for i := range vv {
			items[i] = vv[i]
		}
	default:
		p.errs.Add(path, models.ReasonWrongType, fmt.Sprintf("expected a list, got %s", typeName(v)))
		return nil
	}

	if len(items) == 0 {
		p.errs.Add(path, models.ReasonMissing, "at least one entry is required")
		return nil
	}

	out := make([]map[string]any, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			p.errs.Add(joinPath(path, strconv.Itoa(i)), models.ReasonWrongType,
				fmt.Sprintf("expected an object, got %s", typeName(item)))
			continue
		}
		out[i] = obj
	}
	return out
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func typeName(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case map[string]any:
		return "object"
	case []any, []map[string]any:
		return "list"
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return strconv.FormatFloat(x, 'g', -1, 64)
		}
	case float32:
		if f := float64(x); math.IsNaN(f) || math.IsInf(f, 0) {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
	}
	if _, ok := models.ValueOf(v); ok {
		return "number"
	}
	return fmt.Sprintf("%T", v)
}
