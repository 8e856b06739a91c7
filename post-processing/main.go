// Command post-processing ingests exported inventory JSON files into a
// SQLite history database, tracking per-day totals and the first date each
// repository appeared.
package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

type inventoryRecord struct {
	Date       string `json:"date"`
	Service    string `json:"service"`
	Repository string `json:"repository"`
	CloneURL   string `json:"clone_url"`
	Stars      int    `json:"stars"`
}

func main() {
	db, err := sql.Open("sqlite3", "history.db")
	if err != nil {
		panic(err)
	}
	defer db.Close()

	createTables(db)

	path := "../history" // directory containing exported inventory files
	err = filepath.Walk(path, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".json" {
			processFile(db, path)
		}
		return nil
	})

	if err != nil {
		fmt.Printf("Error walking the path %q: %v\n", path, err)
	}
}

func createTables(db *sql.DB) {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS totals (
            date TEXT NOT NULL,
            service TEXT NOT NULL,
            total INTEGER,
            PRIMARY KEY (date, service)
        );
        CREATE TABLE IF NOT EXISTS repositories (
            repository TEXT PRIMARY KEY,
            service TEXT,
            first_seen TEXT
        );
    `)
	if err != nil {
		panic(err)
	}
}

func processFile(db *sql.DB, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Error reading %s: %v\n", path, err)
		return
	}

	var records []inventoryRecord
	if err := json.Unmarshal(data, &records); err != nil {
		fmt.Printf("Error parsing %s: %v\n", path, err)
		return
	}

	counts := map[[2]string]int{}
	for _, rec := range records {
		counts[[2]string{rec.Date, rec.Service}]++
		_, err := db.Exec(
			`INSERT OR IGNORE INTO repositories (repository, service, first_seen) VALUES (?, ?, ?)`,
			rec.Repository, rec.Service, rec.Date)
		if err != nil {
			fmt.Printf("Error inserting repository %s: %v\n", rec.Repository, err)
		}
	}

	for key, total := range counts {
		_, err := db.Exec(
			`INSERT OR REPLACE INTO totals (date, service, total) VALUES (?, ?, ?)`,
			key[0], key[1], total)
		if err != nil {
			fmt.Printf("Error inserting total for %s/%s: %v\n", key[0], key[1], err)
		}
	}
}
