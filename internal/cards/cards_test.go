// internal/cards/cards_test.go
package cards

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTemplates() []Template {
	return []Template{
		{ID: "penny", Name: "A Penny!", Type: "Loot", Subtype: "Coin", Count: 3},
		{ID: "bomb", Name: "Bomb!", Type: "Loot", Subtype: "Bomb", Count: 2},
		{ID: "dime", Name: "A Dime!!", Type: "Loot", Subtype: "Coin", Count: 1},
	}
}

func TestNewCatalog(t *testing.T) {
	cat, err := NewCatalog(testTemplates())
	require.NoError(t, err)

	assert.Equal(t, 6, cat.DeckSize())
	tpl, ok := cat.Template("bomb")
	require.True(t, ok)
	assert.Equal(t, "Bomb!", tpl.Name)

	// Templates come back sorted by id.
	ids := make([]string, 0)
	for _, tpl := range cat.LootTemplates() {
		ids = append(ids, tpl.ID)
	}
	assert.Equal(t, []string{"bomb", "dime", "penny"}, ids)
}

func TestNewCatalogRejectsBadTemplates(t *testing.T) {
	_, err := NewCatalog([]Template{{ID: "x", Count: 1}, {ID: "x", Count: 1}})
	assert.Error(t, err, "duplicate id")

	_, err = NewCatalog([]Template{{ID: "y", Count: 0}})
	assert.Error(t, err, "non-positive count")

	_, err = NewCatalog([]Template{{Name: "anonymous", Count: 1}})
	assert.Error(t, err, "missing id")
}

func TestBuildLootDeck(t *testing.T) {
	cat, err := NewCatalog(testTemplates())
	require.NoError(t, err)

	deck := BuildLootDeck(cat)
	require.Len(t, deck, 6)

	perTemplate := make(map[string]int)
	entityIDs := make(map[string]struct{})
	for _, card := range deck {
		perTemplate[card.TemplateID]++
		entityIDs[card.EntityID] = struct{}{}
		assert.Equal(t, ZoneLootDeck, card.Zone)
		assert.Equal(t, TypeLoot, card.CardType)
		assert.Empty(t, card.OwnerID)
	}
	assert.Equal(t, 3, perTemplate["penny"])
	assert.Equal(t, 2, perTemplate["bomb"])
	assert.Equal(t, 1, perTemplate["dime"])
	assert.Len(t, entityIDs, 6, "entity ids must be unique")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loot.json")
	data := `[{"id":"penny","name":"A Penny!","type":"Loot","subtype":"Coin","description":"Gain 1 cent.","count":2}]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cat, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cat.DeckSize())

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)
}
