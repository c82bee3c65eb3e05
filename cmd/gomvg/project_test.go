package main

import (
	"testing"

	"github.com/philipparndt/gomvg/pkg/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePoints(t *testing.T) {
	points, err := parsePoints("0.1,0.2; -0.3 , 0.4;0.5,-0.6;")
	require.NoError(t, err)
	assert.Equal(t, []geometry.Vector2{{X: 0.1, Y: 0.2}, {X: -0.3, Y: 0.4}, {X: 0.5, Y: -0.6}}, points)

	_, err = parsePoints("0.1;0.2,0.3")
	assert.ErrorContains(t, err, "point 1")

	_, err = parsePoints("0.1,0.2;a,0.3")
	assert.ErrorContains(t, err, "point 2")
}
