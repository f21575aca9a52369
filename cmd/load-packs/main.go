package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"snaphunt/internal/config"
	"snaphunt/internal/db"
)

type packFile struct {
	Packs []packRecord `json:"packs"`
}

type packRecord struct {
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Lat         float64  `json:"lat"`
	Lon         float64  `json:"lon"`
	RadiusKM    float64  `json:"radius_km"`
	Area        string   `json:"area"`
	Prompts     []string `json:"prompts"`
}

func main() {
	filePath := flag.String("file", "packs.json", "path to packs json")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}

	conn, err := db.Open()
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	packs, err := readPacks(*filePath)
	if err != nil {
		log.Fatalf("failed to read packs: %v", err)
	}

	loadedPacks := 0
	loadedPrompts := 0
	for _, pack := range packs {
		record := db.Pack{
			Slug:        pack.Slug,
			Name:        pack.Name,
			Description: pack.Description,
			Lat:         pack.Lat,
			Lon:         pack.Lon,
			RadiusKM:    pack.RadiusKM,
			Area:        pack.Area,
		}
		if err := conn.FirstOrCreate(&record, db.Pack{Slug: pack.Slug}).Error; err != nil {
			log.Fatalf("failed to upsert pack %s: %v", pack.Slug, err)
		}
		loadedPacks++
		for _, text := range pack.Prompts {
			prompt := db.Prompt{Pack: pack.Slug, Text: text}
			if err := conn.FirstOrCreate(&prompt, db.Prompt{Pack: pack.Slug, Text: text}).Error; err != nil {
				log.Fatalf("failed to upsert prompt: %v", err)
			}
			loadedPrompts++
		}
	}

	log.Printf("loaded %d packs with %d prompts", loadedPacks, loadedPrompts)
}

func readPacks(path string) ([]packRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file packFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	return file.Packs, nil
}
