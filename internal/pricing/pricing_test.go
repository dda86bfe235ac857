package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriceForSkin(t *testing.T) {
	assert.Equal(t, uint64(1000), PriceForSkin(1))
	assert.Equal(t, uint64(500), PriceForSkin(2))
	assert.Equal(t, uint64(100), PriceForSkin(3))
	assert.Equal(t, uint64(0), PriceForSkin(0))
	assert.Equal(t, uint64(0), PriceForSkin(999))
}

func TestCatalogue(t *testing.T) {
	skins := Catalogue()
	if assert.Len(t, skins, 3) {
		assert.Equal(t, uint64(1), skins[0].ID)
		assert.Equal(t, uint64(3), skins[2].ID)
	}

	_, ok := Lookup(4)
	assert.False(t, ok)
}
