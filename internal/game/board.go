// internal/game/board.go
package game

import (
	"math/rand"

	"github.com/mlundberg/foursouls/internal/apperr"
	"github.com/mlundberg/foursouls/internal/cards"
)

const (
	initialHandSize = 3
	initialHealth   = 2
)

// Player is the in-game view of one participant. Resources beyond hand
// and health live outside the core engine for now.
type Player struct {
	Hand          []cards.LootCard
	MaxHealth     uint8
	CurrentHealth uint8
	LootPlayTurn  bool
	LootPlayChar  bool
}

// Board owns the loot deck, the discard pile and every player's hand.
// The multiset of cards across deck, discard and hands always equals
// the catalogue multiset; cards move between zones, never appear or
// vanish.
type Board struct {
	LootDeck    []cards.LootCard
	LootDiscard []cards.LootCard
	Players     map[string]*Player
}

// NewBoard builds a freshly shuffled deck from the catalogue and deals
// the opening hand to every player.
func NewBoard(src cards.TemplateSource, playerIDs []string) *Board {
	deck := cards.BuildLootDeck(src)
	rand.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})

	b := &Board{
		LootDeck:    deck,
		LootDiscard: make([]cards.LootCard, 0),
		Players:     make(map[string]*Player, len(playerIDs)),
	}
	for _, pid := range playerIDs {
		b.Players[pid] = &Player{
			Hand:          make([]cards.LootCard, 0, initialHandSize),
			MaxHealth:     initialHealth,
			CurrentHealth: initialHealth,
			LootPlayTurn:  true,
			LootPlayChar:  true,
		}
	}
	for _, pid := range playerIDs {
		for i := 0; i < initialHandSize; i++ {
			// Initial deal cannot fail: the catalogue is far larger
			// than 3 cards per seat and the discard is empty.
			if _, err := b.DrawLootForPlayer(pid); err != nil {
				break
			}
		}
	}
	return b
}

// DrawLootForPlayer pops one card from the deck tail into p's hand,
// reshuffling the discard into the deck first if the deck ran dry.
func (b *Board) DrawLootForPlayer(p string) (cards.LootCard, error) {
	player, ok := b.Players[p]
	if !ok {
		return cards.LootCard{}, apperr.ErrPlayerNotFound
	}
	if len(b.LootDeck) == 0 {
		if err := b.reshuffle(); err != nil {
			return cards.LootCard{}, err
		}
	}
	card := b.LootDeck[len(b.LootDeck)-1]
	b.LootDeck = b.LootDeck[:len(b.LootDeck)-1]
	card.Zone = cards.ZoneHand
	card.OwnerID = p
	player.Hand = append(player.Hand, card)
	return card, nil
}

// RemoveCardFromHand removes the first card in p's hand matching the
// template id and returns it.
func (b *Board) RemoveCardFromHand(p, templateID string) (cards.LootCard, error) {
	player, ok := b.Players[p]
	if !ok {
		return cards.LootCard{}, apperr.ErrPlayerNotFound
	}
	for i, card := range player.Hand {
		if card.TemplateID == templateID {
			player.Hand = append(player.Hand[:i], player.Hand[i+1:]...)
			card.OwnerID = ""
			return card, nil
		}
	}
	return cards.LootCard{}, apperr.ErrCardNotInHand
}

// DiscardLootCard appends a card to the discard pile.
func (b *Board) DiscardLootCard(card cards.LootCard) {
	card.Zone = cards.ZoneLootDiscard
	card.OwnerID = ""
	b.LootDiscard = append(b.LootDiscard, card)
}

// reshuffle moves the discard back into the deck and shuffles it. Both
// piles empty means the game has no cards left anywhere but hands.
func (b *Board) reshuffle() error {
	if len(b.LootDiscard) == 0 {
		return apperr.ErrEmptyLootDeck
	}
	for _, card := range b.LootDiscard {
		card.Zone = cards.ZoneLootDeck
		card.OwnerID = ""
		b.LootDeck = append(b.LootDeck, card)
	}
	b.LootDiscard = b.LootDiscard[:0]
	rand.Shuffle(len(b.LootDeck), func(i, j int) {
		b.LootDeck[i], b.LootDeck[j] = b.LootDeck[j], b.LootDeck[i]
	})
	return nil
}
