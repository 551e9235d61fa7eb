package types_test

import (
	"testing"

	"github.com/arthur-debert/settle/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		name     string
		notation string
		want     types.Coordinate
		wantErr  bool
	}{
		{
			name:     "with_version",
			notation: "com.squareup.okio:okio:3.4.0",
			want:     types.Coordinate{Group: "com.squareup.okio", Artifact: "okio", Version: "3.4.0"},
		},
		{
			name:     "without_version",
			notation: "junit:junit",
			want:     types.Coordinate{Group: "junit", Artifact: "junit"},
		},
		{
			name:     "surrounding_space",
			notation: "  a:b:1 ",
			want:     types.Coordinate{Group: "a", Artifact: "b", Version: "1"},
		},
		{name: "single_segment", notation: "okio", wantErr: true},
		{name: "too_many_segments", notation: "a:b:c:d", wantErr: true},
		{name: "empty_segment", notation: "a::1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := types.ParseCoordinate(tt.notation)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoordinateString(t *testing.T) {
	c := types.Coordinate{Group: "org.jetbrains.kotlin", Artifact: "kotlin-stdlib", Version: "1.9.0"}
	assert.Equal(t, "org.jetbrains.kotlin:kotlin-stdlib:1.9.0", c.String())
	assert.Equal(t, "org.jetbrains.kotlin:kotlin-stdlib", c.Identity().String())
	assert.Equal(t, "org.jetbrains.kotlin:kotlin-stdlib", c.WithVersion("").String())
}

func TestResolutionContextForce(t *testing.T) {
	rc := types.NewResolutionContext(":core", "implementation", nil)
	rc.Force(types.Coordinate{Group: "b", Artifact: "y", Version: "2"})
	rc.Force(types.Coordinate{Group: "a", Artifact: "x", Version: "1"})

	v, ok := rc.ForcedVersion(types.Identity{Group: "a", Artifact: "x"})
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	_, ok = rc.ForcedVersion(types.Identity{Group: "c", Artifact: "z"})
	assert.False(t, ok)

	forced := rc.Forced()
	require.Len(t, forced, 2)
	assert.Equal(t, "a:x:1", forced[0].String())
	assert.Equal(t, "b:y:2", forced[1].String())
	assert.Equal(t, ":core/implementation", rc.String())
}
