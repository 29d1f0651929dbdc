package server

import (
	"fmt"
	"math/rand"

	"memematch/internal/db"

	"gorm.io/gorm"
)

// Catalog is the read-only source of cards and prompts. DrawCards returns n
// distinct cards sampled without replacement; every call is an independent
// draw, so hands are independent across players and rounds.
type Catalog interface {
	DrawCards(n int, language string) ([]Card, error)
	DrawPrompt(language string) (string, error)
}

func newCatalog(conn *gorm.DB) Catalog {
	if conn == nil {
		return newStaticCatalog()
	}
	return &dbCatalog{conn: conn}
}

type dbCatalog struct {
	conn *gorm.DB
}

func (c *dbCatalog) DrawCards(n int, language string) ([]Card, error) {
	if n <= 0 {
		return nil, nil
	}
	var records []db.Card
	if err := c.conn.Where("language = ?", language).Order("random()").Limit(n).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	if len(records) < n {
		return nil, fmt.Errorf("%w: need %d cards, have %d", ErrCatalogUnavailable, n, len(records))
	}
	cards := make([]Card, 0, n)
	for _, record := range records {
		cards = append(cards, Card{
			ID:       record.PublicID,
			Content:  record.Content,
			Language: record.Language,
		})
	}
	return cards, nil
}

func (c *dbCatalog) DrawPrompt(language string) (string, error) {
	var record db.Prompt
	if err := c.conn.Where("language = ?", language).Order("random()").First(&record).Error; err != nil {
		return "", fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return record.Text, nil
}

// staticCatalog backs games when no database is configured. The pool ignores
// the language filter; it exists so local play and tests need no Postgres.
type staticCatalog struct {
	cards   []Card
	prompts []string
}

func newStaticCatalog() *staticCatalog {
	contents := fallbackCardList()
	cards := make([]Card, 0, len(contents))
	for i, content := range contents {
		cards = append(cards, Card{
			ID:      fmt.Sprintf("card-%03d", i+1),
			Content: content,
		})
	}
	return &staticCatalog{
		cards:   cards,
		prompts: fallbackPromptList(),
	}
}

func (c *staticCatalog) DrawCards(n int, language string) ([]Card, error) {
	if n <= 0 {
		return nil, nil
	}
	if n > len(c.cards) {
		return nil, fmt.Errorf("%w: need %d cards, have %d", ErrCatalogUnavailable, n, len(c.cards))
	}
	indexes := rand.Perm(len(c.cards))[:n]
	cards := make([]Card, 0, n)
	for _, idx := range indexes {
		cards = append(cards, c.cards[idx])
	}
	return cards, nil
}

func (c *staticCatalog) DrawPrompt(language string) (string, error) {
	if len(c.prompts) == 0 {
		return "", ErrCatalogUnavailable
	}
	return c.prompts[rand.Intn(len(c.prompts))], nil
}

func fallbackCardList() []string {
	return []string{
		"Distracted boyfriend",
		"Woman yelling at a cat",
		"This is fine dog",
		"Surprised Pikachu",
		"Galaxy brain",
		"Drake approves",
		"Drake disapproves",
		"Hide the pain Harold",
		"Two buttons sweating",
		"Change my mind",
		"Roll safe head tap",
		"Success kid",
		"First world problems",
		"One does not simply",
		"Confused math lady",
		"Grumpy cat",
		"Doge",
		"Stonks",
		"Not stonks",
		"Awkward penguin",
		"Philosoraptor",
		"Spiderman pointing at Spiderman",
		"Is this a pigeon?",
		"Disaster girl",
		"Evil Kermit",
		"Salt bae",
		"Mocking Spongebob",
		"Arthur's fist",
		"Expanding brain, stage four",
		"Monkey puppet side-eye",
		"Gru's plan, last panel",
		"Always has been",
		"They don't know",
		"Crying Jordan",
		"Leonardo raising a glass",
		"Shut up and take my money",
		"Ancient aliens guy",
		"Bad luck Brian",
		"Overly attached girlfriend",
		"Skeptical third world kid",
		"Y U NO guy",
		"Futurama Fry squint",
		"Condescending Wonka",
		"Sad Keanu",
		"Pepperidge Farm remembers",
		"Unsettled Tom",
		"Surprised Tom",
		"Panik Kalm Panik",
		"Buff Doge vs Cheems",
		"Trade offer",
		"Bernie asking for support once again",
		"Me explaining to my mom",
		"Left exit 12 off ramp",
		"Running away balloon",
		"Waiting skeleton",
		"X, X everywhere",
		"Tuxedo Winnie the Pooh",
		"American Chopper argument",
		"Car drifting to exit",
		"Sleeping Shaq",
		"Mr. Incredible becomes uncanny",
		"A train hitting a school bus",
		"Epic handshake",
		"Scroll of truth",
	}
}

func fallbackPromptList() []string {
	return []string{
		"When the wifi goes down for five minutes",
		"Monday morning, 6 AM",
		"When your code works on the first try",
		"Group project, day before the deadline",
		"When someone spoils the season finale",
		"Trying to stay on a diet at a birthday party",
		"When the waiter brings someone else's food first",
		"Explaining your job to your grandparents",
		"When you see your alarm on a day off",
		"Opening the fridge for the third time in an hour",
		"When autocorrect betrays you in a work chat",
		"Walking out of the exam you didn't study for",
	}
}
