package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFileInput(t *testing.T) {
	c, err := Parse([]byte(`
input:
  scenario:
    file: line.yaml
control:
  initial_speed: 3.5
output:
  file: report.yaml
  points: true
`))
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	assert.Equal(t, "line.yaml", c.Input.Scenario.File)
	require.NotNil(t, c.Control.InitialSpeed)
	assert.Equal(t, 3.5, *c.Control.InitialSpeed)
	assert.True(t, c.Output.Points)

	rc := NewRuntimeConfig(c)
	assert.Equal(t, 2., rc.C.TimeStep)
	assert.Equal(t, "report.yaml", rc.All.Output.File)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("input:\n  scenario:\n    file: a.yaml\nunknown: 1\n"))
	assert.Error(t, err)
}

func TestValidateMongoInput(t *testing.T) {
	c, err := Parse([]byte(`
input:
  scenario:
    db: envelope
    col: scenarios
    name: line1
control:
  time_step: 0.5
`))
	require.NoError(t, err)
	assert.Error(t, c.Validate())

	c.Input.URI = "mongodb://localhost:27017"
	assert.NoError(t, c.Validate())
	assert.Equal(t, "envelope", c.Input.Scenario.GetDb())
	assert.Equal(t, "scenarios", c.Input.Scenario.GetColl())
	assert.Equal(t, 0.5, NewRuntimeConfig(c).C.TimeStep)

	negative := -1.
	c.Control.InitialSpeed = &negative
	assert.Error(t, c.Validate())
}

func TestValidateRandomInput(t *testing.T) {
	c, err := Parse([]byte(`
input:
  random:
    seed: 7
    length: 300
`))
	require.NoError(t, err)
	require.NotNil(t, c.Input.Random)
	assert.Equal(t, uint64(7), c.Input.Random.Seed)
	assert.Error(t, c.Validate())

	c.Input.Random.Length = 3000
	assert.NoError(t, c.Validate())
}
