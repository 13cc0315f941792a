package payload

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enea-iemap/iemap-mi/pkg/models"
)

const yamlRecords = `
- project:
    name: Zeolite adsorption
    label: ZEO
    description: CO2 uptake in zeolites
  material:
    formula: NaAlSi3O8
  process:
    method: GCMC
    is_experiment: false
    agent:
      name: RASPA
      version: "2.0"
  parameters:
    - name: pressure
      value: 1
      unit: bar
  properties:
    - name: uptake
      value: 2.4
      unit: mmol/g
- project:
    name: Broken
`

func TestDecodeRecords_YAML(t *testing.T) {
	records, err := DecodeRecords([]byte(yamlRecords), FormatYAML)
	require.NoError(t, err)
	require.Len(t, records, 2)

	req, err := Parse(records[0])
	require.NoError(t, err)
	assert.Equal(t, "RASPA", req.Process.Agent.Name)
	assert.Equal(t, "2.0", *req.Process.Agent.Version)
	assert.Equal(t, models.NumberValue(1), req.Parameters[0].Value)
	assert.Equal(t, models.NumberValue(2.4), req.Properties[0].Value)

	_, err = Parse(records[1])
	assert.Error(t, err)
}

func TestDecodeRecord_JSONNumbers(t *testing.T) {
	raw, err := DecodeRecord([]byte(`{
		"project": {"name": "n", "label": "l", "description": "d"},
		"material": {"formula": "TiO2"},
		"process": {"method": "sol-gel", "isExperiment": true, "agent": {"name": "lab"}},
		"parameters": [
			{"name": "steps", "value": 12345678901},
			{"name": "seed", "value": 9007199254740993},
			{"name": "max", "value": 9223372036854775807}
		],
		"properties": [{"name": "phase", "value": "anatase", "unit": ""}]
	}`), FormatJSON)
	require.NoError(t, err)

	req, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, models.NumberValue(12345678901), req.Parameters[0].Value)
	assert.Equal(t, "9007199254740993", req.Parameters[1].Value.String())
	assert.Equal(t, models.IntValue(math.MaxInt64), req.Parameters[2].Value)
	assert.Nil(t, req.Process.Agent.Version)

	body, err := json.Marshal(req)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"value":9007199254740993`)
	assert.Contains(t, string(body), `"value":9223372036854775807`)
}

func TestParse_IntegersFromGoValuesAreExact(t *testing.T) {
	raw := validRaw()
	raw["parameters"] = []any{
		map[string]any{"name": "max", "value": int64(math.MaxInt64)},
		map[string]any{"name": "umax", "value": uint64(math.MaxUint64)},
	}

	req, err := Parse(raw)
	require.NoError(t, err)

	body, err := json.Marshal(req.Parameters)
	require.NoError(t, err)
	assert.Equal(t,
		`[{"name":"max","value":9223372036854775807,"unit":""},{"name":"umax","value":18446744073709551615,"unit":""}]`,
		string(body))
}

func TestDecodeRecords_Errors(t *testing.T) {
	_, err := DecodeRecords([]byte(`[1, 2]`), FormatJSON)
	assert.ErrorContains(t, err, "record 0 is not an object")

	_, err = DecodeRecords([]byte(`"text"`), FormatJSON)
	assert.Error(t, err)

	_, err = DecodeRecord([]byte(`{`), FormatJSON)
	assert.ErrorContains(t, err, "error parsing JSON")

	single, err := DecodeRecords([]byte(`{"project": {}}`), FormatJSON)
	require.NoError(t, err)
	assert.Len(t, single, 1)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFromPath("rows.YAML"))
	assert.Equal(t, FormatYAML, FormatFromPath("rows.yml"))
	assert.Equal(t, FormatJSON, FormatFromPath("rows.json"))
	assert.Equal(t, FormatJSON, FormatFromPath("rows"))
}
