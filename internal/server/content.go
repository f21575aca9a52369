package server

import (
	"errors"

	"snaphunt/internal/db"

	"gorm.io/gorm"
)

type Pack struct {
	Slug        string  `json:"slug"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	RadiusKM    float64 `json:"radius_km"`
	Area        string  `json:"area"`
}

type Prompt struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
	Pack string `json:"pack"`
}

// ContentProvider is the read-only prompt catalog. Hunts query it live by
// pack slug, so catalog edits propagate to in-progress hunts.
type ContentProvider interface {
	ListPacks() ([]Pack, error)
	ListPrompts(pack string) ([]Prompt, error)
}

type dbContentProvider struct {
	db *gorm.DB
}

func newDBContentProvider(conn *gorm.DB) *dbContentProvider {
	return &dbContentProvider{db: conn}
}

func (p *dbContentProvider) ListPacks() ([]Pack, error) {
	var records []db.Pack
	if err := p.db.Order("slug").Find(&records).Error; err != nil {
		return nil, err
	}
	packs := make([]Pack, 0, len(records))
	for _, record := range records {
		packs = append(packs, Pack{
			Slug:        record.Slug,
			Name:        record.Name,
			Description: record.Description,
			Lat:         record.Lat,
			Lon:         record.Lon,
			RadiusKM:    record.RadiusKM,
			Area:        record.Area,
		})
	}
	return packs, nil
}

func (p *dbContentProvider) ListPrompts(pack string) ([]Prompt, error) {
	var records []db.Prompt
	if err := p.db.Where("pack = ?", pack).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	prompts := make([]Prompt, 0, len(records))
	for _, record := range records {
		prompts = append(prompts, Prompt{ID: record.ID, Text: record.Text, Pack: record.Pack})
	}
	return prompts, nil
}

// memoryContentProvider backs the catalog when no database is configured.
type memoryContentProvider struct {
	packs   []Pack
	prompts map[string][]Prompt
}

func newMemoryContentProvider(packs []Pack, prompts map[string][]Prompt) *memoryContentProvider {
	return &memoryContentProvider{packs: packs, prompts: prompts}
}

func (p *memoryContentProvider) ListPacks() ([]Pack, error) {
	return append([]Pack(nil), p.packs...), nil
}

func (p *memoryContentProvider) ListPrompts(pack string) ([]Prompt, error) {
	prompts, ok := p.prompts[pack]
	if !ok {
		return nil, errors.New("pack not found")
	}
	return append([]Prompt(nil), prompts...), nil
}

// defaultContent is the built-in starter pack used when running without a
// database.
func defaultContent() *memoryContentProvider {
	pack := Pack{
		Slug:        "downtown",
		Name:        "Downtown Wander",
		Description: "A starter hunt for any city center.",
		RadiusKM:    2,
		Area:        "city center",
	}
	texts := []string{
		"A statue doing something dramatic",
		"The oldest building you can find",
		"A dog that clearly runs the household",
		"Something painted a color it should not be",
		"A stranger's impressive hat",
		"Street art worth framing",
		"The most suspicious pigeon",
		"A door you want to know what is behind",
	}
	prompts := make([]Prompt, 0, len(texts))
	for i, text := range texts {
		prompts = append(prompts, Prompt{ID: uint(i + 1), Text: text, Pack: pack.Slug})
	}
	return newMemoryContentProvider([]Pack{pack}, map[string][]Prompt{pack.Slug: prompts})
}
