// internal/cards/cards.go
package cards

import "github.com/google/uuid"

// Zone identifies where a card instance currently lives.
type Zone string

const (
	ZoneLootDeck    Zone = "LootDeck"
	ZoneLootDiscard Zone = "LootDiscard"
	ZoneHand        Zone = "Hand"
	ZonePlaying     Zone = "Playing"
	ZoneItem        Zone = "Item"
)

// CardType is the top-level deck a card belongs to. Only loot is
// implemented; the other decks are named for the full game.
type CardType string

const (
	TypeLoot      CardType = "Loot"
	TypeMonster   CardType = "Monster"
	TypeTreasure  CardType = "Treasure"
	TypeCharacter CardType = "Character"
	TypeBonusSoul CardType = "BonusSoul"
)

// Template is one catalogue record. Count is how many copies of the
// card exist in a physical deck.
type Template struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Subtype     string `json:"subtype"`
	Description string `json:"description"`
	Count       int    `json:"count"`
}

// LootCard is a single card instance expanded from a template. EntityID
// is unique per instance; TemplateID refers back to the catalogue.
type LootCard struct {
	EntityID    string   `json:"entity_id"`
	TemplateID  string   `json:"template_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Zone        Zone     `json:"zone"`
	CardType    CardType `json:"card_type"`
	OwnerID     string   `json:"owner_id"`
	Subtype     string   `json:"subtype"`
}

// TemplateSource is what the game engine sees of the catalogue.
type TemplateSource interface {
	LootTemplates() []Template
}

// BuildLootDeck expands every template count-fold into fresh card
// instances. The caller is responsible for shuffling.
func BuildLootDeck(src TemplateSource) []LootCard {
	var deck []LootCard
	for _, tpl := range src.LootTemplates() {
		for i := 0; i < tpl.Count; i++ {
			deck = append(deck, LootCard{
				EntityID:    uuid.NewString(),
				TemplateID:  tpl.ID,
				Name:        tpl.Name,
				Description: tpl.Description,
				Zone:        ZoneLootDeck,
				CardType:    TypeLoot,
				Subtype:     tpl.Subtype,
			})
		}
	}
	return deck
}
