package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalPresence(t *testing.T) {
	var req UpdateRepoRequest
	payload := `{"projectname":"renamed","description":null,"fechaFin":"2025-06-30"}`
	require.NoError(t, json.Unmarshal([]byte(payload), &req))

	// projectname: present with a value
	assert.True(t, req.Projectname.Set)
	assert.True(t, req.Projectname.Valid)
	assert.Equal(t, "renamed", req.Projectname.Value)

	// description: present, explicitly null
	assert.True(t, req.Description.Set)
	assert.False(t, req.Description.Valid)

	// fechaInicio: absent from the payload entirely
	assert.False(t, req.FechaInicio.Set)

	assert.True(t, req.FechaFin.Set)
	assert.True(t, req.FechaFin.Valid)
	assert.Equal(t, "2025-06-30", req.FechaFin.Value.String())
}

func TestDateOnlyParse(t *testing.T) {
	d, err := ParseDateOnly("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", d.String())

	_, err = ParseDateOnly("01/03/2024")
	assert.Error(t, err)

	_, err = ParseDateOnly("2024-03-01T10:00:00Z")
	assert.Error(t, err)
}

func TestDateOnlyJSONRoundTrip(t *testing.T) {
	d, err := ParseDateOnly("2024-12-31")
	require.NoError(t, err)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-12-31"`, string(data))

	var back DateOnly
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, d.String(), back.String())
}
