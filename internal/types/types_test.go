package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentityString(t *testing.T) {
	assert.Equal(t, "a@1.0.0", Identity{Name: "a", Version: "1.0.0"}.String())
	assert.Equal(t, "a", Identity{Name: "a"}.String())
	assert.True(t, Identity{}.IsZero())
}

func TestLoadFailure_Error(t *testing.T) {
	f := &LoadFailure{Kind: PartialTypeLoad, Path: "/plugins/c.typelib", Message: "1 of 2 types unresolved"}
	var err error = f
	assert.Equal(t, "c.typelib: 1 of 2 types unresolved (partial-type-load)", err.Error())

	var got *LoadFailure
	assert.True(t, errors.As(err, &got))
	assert.False(t, got.Fatal())
	assert.True(t, (&LoadFailure{Kind: FatalIO}).Fatal())
}

func TestLoadFailure_UnresolvedTypes(t *testing.T) {
	f := &LoadFailure{Causes: []Cause{{Type: "Z", Message: "m"}, {Message: "library level"}, {Type: "W"}}}
	assert.Equal(t, []string{"Z", "W"}, f.UnresolvedTypes())
}
