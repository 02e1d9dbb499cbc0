package models

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/isotools/pcfgen/internal/geometry"
)

func TestClassifyType(t *testing.T) {
	cases := map[string]OutputType{
		"PIPE":      TypePipe,
		"elbow":     TypeBend,
		" Tee ":     TypeTee,
		"WELDOLET":  TypeOlet,
		"HANGER":    TypeSupport,
		"doohickey": TypeMisc,
		"":          TypeMisc,
	}
	for raw, want := range cases {
		if got := ClassifyType(raw); got != want {
			t.Errorf("ClassifyType(%q) = %s, want %s", raw, got, want)
		}
	}
}

func TestNewComponentRecordSkipFlag(t *testing.T) {
	c := NewComponentRecord("R1", map[string]string{FieldSkip: "yes"})
	assert.True(t, c.Skip)

	c = NewComponentRecord("R2", map[string]string{FieldSkip: "no"})
	assert.False(t, c.Skip)

	c = NewComponentRecord("R3", nil)
	assert.False(t, c.Skip)
}

func TestCoordParsing(t *testing.T) {
	c := NewComponentRecord("R1", map[string]string{
		"START-X": "10.5", "START-Y": "20", "START-Z": "-3.25",
		"END-X": "11", "END-Y": "bad", "END-Z": "0",
	})

	v, ok := c.StartCoord()
	assert.True(t, ok)
	assert.Equal(t, geometry.Vec3{X: 10.5, Y: 20, Z: -3.25}, v)

	_, ok = c.EndCoord()
	assert.False(t, ok, "unparseable axis must fail the whole triple")

	_, ok = c.BranchCoord()
	assert.False(t, ok)
}

func TestPointCacheLifecycle(t *testing.T) {
	c := NewComponentRecord("R1", map[string]string{FieldType: "PIPE"})

	if _, ok := c.CachedPoints(); ok {
		t.Fatal("fresh record must not have cached points")
	}

	pd := PointDict{PointEnd1: geometry.Vec3{X: 1}}
	c.StorePoints(pd)
	got, ok := c.CachedPoints()
	assert.True(t, ok)
	assert.Equal(t, pd, got)

	c.InvalidatePoints()
	if _, ok := c.CachedPoints(); ok {
		t.Error("invalidation must drop the cache")
	}
}

func TestNumericFields(t *testing.T) {
	c := NewComponentRecord("R1", map[string]string{FieldBore: "150", FieldLength: " 6050 "})
	nb, ok := c.NominalBore()
	assert.True(t, ok)
	assert.Equal(t, 150.0, nb)

	l, ok := c.Length()
	assert.True(t, ok)
	assert.Equal(t, 6050.0, l)

	c = NewComponentRecord("R2", map[string]string{})
	_, ok = c.NominalBore()
	assert.False(t, ok)
}
