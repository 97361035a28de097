package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/chipchip/sgl-tracker/internal/config"
	"github.com/chipchip/sgl-tracker/internal/database"
)

func main() {
	var dbURLFlag string
	var keysFlag string
	var confirm bool
	flag.StringVar(&dbURLFlag, "database-url", "", "Store connection string (overrides DATABASE_URL)")
	flag.StringVar(&keysFlag, "collections", strings.Join(database.CollectionKeys, ","), "Comma-separated collections to clear")
	flag.BoolVar(&confirm, "yes", false, "Actually clear the data")
	flag.Parse()

	// Loads .env from the working directory when present
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if dbURLFlag != "" {
		cfg.Database.URL = dbURLFlag
	}
	if cfg.Database.Driver == config.DriverMemory {
		log.Fatal("STORE_DRIVER=memory has nothing to clear")
	}

	store, db, err := database.OpenRecordStore(cfg.Database)
	if err != nil {
		log.Fatalf("failed to open record store: %v", err)
	}
	defer db.Close()

	keys := splitKeys(keysFlag)
	fmt.Printf("Connected to %s store. Collections: %s\n", cfg.Database.Driver, strings.Join(keys, ", "))

	stored, err := store.Keys()
	if err != nil {
		log.Fatalf("failed to list stored collections: %v", err)
	}
	fmt.Printf("Stored collections: %s\n", strings.Join(stored, ", "))

	if !confirm {
		printCounts(store, keys)
		fmt.Println("Dry run: pass -yes to clear these collections.")
		return
	}

	if err := database.ClearCollections(store, keys); err != nil {
		log.Fatalf("failed to clear collections: %v", err)
	}
	fmt.Println("Collections cleared.")

	fmt.Println("Post-clear record counts:")
	printCounts(store, keys)
}

func splitKeys(value string) []string {
	var keys []string
	for _, key := range strings.Split(value, ",") {
		if key = strings.TrimSpace(key); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

func printCounts(store database.RecordStore, keys []string) {
	for _, key := range keys {
		count, err := database.CountRecords(store, key)
		if err != nil {
			fmt.Printf("  %s: error: %v\n", key, err)
			continue
		}
		fmt.Printf("  %s: %d\n", key, count)
	}
}
