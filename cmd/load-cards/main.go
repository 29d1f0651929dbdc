package main

import (
	"encoding/csv"
	"flag"
	"log"
	"os"
	"strings"

	"memematch/internal/config"
	"memematch/internal/db"

	"github.com/google/uuid"
)

type cardRecord struct {
	Kind     string
	Content  string
	Language string
}

// Imports the card and prompt catalog from a CSV with columns
// kind,content,language where kind is "card" or "prompt".
func main() {
	filePath := flag.String("file", "cards.csv", "path to catalog csv")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}

	conn, err := db.Open()
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	records, err := readCatalog(*filePath)
	if err != nil {
		log.Fatalf("failed to read catalog: %v", err)
	}

	cards := 0
	prompts := 0
	for _, record := range records {
		switch record.Kind {
		case "card":
			entry := db.Card{Content: record.Content, Language: record.Language}
			if err := conn.Where(db.Card{Content: entry.Content, Language: entry.Language}).
				Attrs(db.Card{PublicID: uuid.NewString()}).
				FirstOrCreate(&entry).Error; err != nil {
				log.Fatalf("failed to upsert card: %v", err)
			}
			cards++
		case "prompt":
			entry := db.Prompt{Text: record.Content, Language: record.Language}
			if err := conn.FirstOrCreate(&entry, db.Prompt{Text: entry.Text, Language: entry.Language}).Error; err != nil {
				log.Fatalf("failed to upsert prompt: %v", err)
			}
			prompts++
		default:
			log.Fatalf("unknown kind %q", record.Kind)
		}
	}

	log.Printf("loaded %d cards and %d prompts", cards, prompts)
}

func readCatalog(path string) ([]cardRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	var records []cardRecord
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) < 2 {
			continue
		}
		kind := strings.ToLower(strings.TrimSpace(row[0]))
		content := strings.TrimSpace(row[1])
		language := "tr"
		if len(row) > 2 && strings.TrimSpace(row[2]) != "" {
			language = strings.TrimSpace(row[2])
		}
		if kind == "" || content == "" {
			continue
		}
		records = append(records, cardRecord{Kind: kind, Content: content, Language: language})
	}
	return records, nil
}
