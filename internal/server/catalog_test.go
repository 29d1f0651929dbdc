package server

import (
	"errors"
	"testing"
)

func TestStaticCatalogDrawsDistinctCards(t *testing.T) {
	catalog := newStaticCatalog()

	hand, err := catalog.DrawCards(7, "tr")
	if err != nil {
		t.Fatalf("draw cards: %v", err)
	}
	if len(hand) != 7 {
		t.Fatalf("expected 7 cards, got %d", len(hand))
	}
	seen := map[string]struct{}{}
	for _, card := range hand {
		if card.ID == "" || card.Content == "" {
			t.Fatalf("incomplete card: %+v", card)
		}
		if _, dup := seen[card.ID]; dup {
			t.Fatalf("duplicate card in hand: %s", card.ID)
		}
		seen[card.ID] = struct{}{}
	}
}

func TestStaticCatalogOverdraw(t *testing.T) {
	catalog := newStaticCatalog()
	if _, err := catalog.DrawCards(len(catalog.cards)+1, "tr"); !errors.Is(err, ErrCatalogUnavailable) {
		t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
	}
}

func TestStaticCatalogDrawPrompt(t *testing.T) {
	catalog := newStaticCatalog()
	prompt, err := catalog.DrawPrompt("tr")
	if err != nil {
		t.Fatalf("draw prompt: %v", err)
	}
	if prompt == "" {
		t.Fatalf("expected a prompt")
	}
}

func TestNewCatalogFallsBackWithoutDatabase(t *testing.T) {
	if _, ok := newCatalog(nil).(*staticCatalog); !ok {
		t.Fatalf("expected static catalog without a database")
	}
}
