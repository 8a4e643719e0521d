package lots

import (
	"testing"

	"github.com/lehigh-university-libraries/lotcataloger/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLotKey(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		sep      string
		expected string
		err      error
	}{
		{name: "integer prefix", filename: "12-3.jpg", expected: "12"},
		{name: "first separator wins", filename: "7-1-back.png", expected: "7"},
		{name: "leading zeros kept", filename: "007-1.jpg", expected: "007"},
		{name: "custom separator", filename: "4_2.jpeg", sep: "_", expected: "4"},
		{name: "no separator", filename: "cover.jpg", err: ErrNoSeparator},
		{name: "non numeric prefix", filename: "lot-1.jpg", err: ErrInvalidLotKey},
		{name: "empty prefix", filename: "-1.jpg", err: ErrInvalidLotKey},
		{name: "signed prefix", filename: "+3-1.jpg", err: ErrInvalidLotKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := ParseLotKey(tt.filename, tt.sep)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.Empty(t, key)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, key)
		})
	}
}

func TestGroupSortsNumerically(t *testing.T) {
	groups, failures := Group([]string{"10-1.jpg", "2-1.jpg", "2-2.jpg"}, "-")

	assert.Empty(t, failures)
	assert.Equal(t, []models.LotGroup{
		{LotKey: "2", Images: []string{"2-1.jpg", "2-2.jpg"}},
		{LotKey: "10", Images: []string{"10-1.jpg"}},
	}, groups)
}

func TestGroupSkipsInvalidNames(t *testing.T) {
	groups, failures := Group([]string{"1-1.jpg", "notes.png", "abc-2.jpg", "1-2.jpg"}, "-")

	require.Len(t, groups, 1)
	assert.Equal(t, "1", groups[0].LotKey)
	assert.Equal(t, []string{"1-1.jpg", "1-2.jpg"}, groups[0].Images)

	require.Len(t, failures, 2)
	assert.Equal(t, models.StageParse, failures[0].Stage)
	assert.Equal(t, "notes.png", failures[0].Item)
	assert.Equal(t, "abc-2.jpg", failures[1].Item)
}

func TestGroupKeepsDistinctKeysWithSameValue(t *testing.T) {
	groups, _ := Group([]string{"02-1.jpg", "3-1.jpg", "2-1.jpg"}, "-")

	require.Len(t, groups, 3)
	assert.Equal(t, "02", groups[0].LotKey)
	assert.Equal(t, "2", groups[1].LotKey)
	assert.Equal(t, "3", groups[2].LotKey)
}

func TestGroupEmpty(t *testing.T) {
	groups, failures := Group(nil, "-")
	assert.Empty(t, groups)
	assert.Empty(t, failures)
}

func TestGroupPerImage(t *testing.T) {
	groups := GroupPerImage([]string{"photo.jpg", "10-1.jpg", "2-2.jpg", "2-1.jpg"}, "-")

	require.Len(t, groups, 4)
	assert.Equal(t, models.LotGroup{LotKey: "2", Images: []string{"2-2.jpg"}}, groups[0])
	assert.Equal(t, models.LotGroup{LotKey: "2", Images: []string{"2-1.jpg"}}, groups[1])
	assert.Equal(t, models.LotGroup{LotKey: "10", Images: []string{"10-1.jpg"}}, groups[2])
	assert.Equal(t, models.LotGroup{LotKey: "photo.jpg", Images: []string{"photo.jpg"}}, groups[3])
}

func TestParse(t *testing.T) {
	assets, failures := Parse([]string{"7-1.jpg", "front.jpg", "12_2.png"}, "_")
	assert.Equal(t, []models.ImageAsset{{Filename: "12_2.png", LotKey: "12"}}, assets)
	require.Len(t, failures, 2)
	assert.Equal(t, "7-1.jpg", failures[0].Item)
	assert.Equal(t, models.StageParse, failures[1].Stage)
}
