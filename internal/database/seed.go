// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// DemoSlug is the slug of the sample project created by Seed.
const DemoSlug = "demo-coffee-shop"

// demoWebsite is a complete description used to showcase every section type
// without calling a generative backend.
const demoWebsite = `{
  "name": "Demo Coffee Shop",
  "description": "A neighbourhood roastery serving single-origin coffee.",
  "theme": {"primaryColor": "#b45309", "secondaryColor": "#1c1917", "fontFamily": "Lora", "mode": "light"},
  "sections": [
    {"id": "hero", "type": "HERO", "title": "Coffee worth waking up for", "subtitle": "Roasted in small batches every morning.", "ctaText": "See the menu"},
    {"id": "features", "type": "FEATURES", "title": "Why people stay", "items": [
      {"title": "Fresh roast", "description": "Beans never older than a week.", "icon": "mug-hot"},
      {"title": "Local milk", "description": "From a farm ten miles away.", "icon": "cow"},
      {"title": "Quiet corners", "description": "Fast wifi and plenty of outlets.", "icon": "wifi"}
    ]},
    {"id": "about", "type": "ABOUT", "title": "Our story", "content": "Started in **2012** with one grinder and a borrowed espresso machine."},
    {"id": "pricing", "type": "PRICING", "title": "Subscriptions", "items": [
      {"title": "Taster", "price": "$12", "features": ["One bag a month", "Free shipping"]},
      {"title": "Regular", "price": "$22", "features": ["Two bags a month", "Free shipping", "Members' blends"]}
    ]},
    {"id": "testimonials", "type": "TESTIMONIALS", "title": "Kind words", "items": [
      {"title": "Maya", "content": "The best flat white in town.", "role": "Designer"}
    ]},
    {"id": "gallery", "type": "GALLERY", "title": "Inside the shop"},
    {"id": "contact", "type": "CONTACT", "title": "Come say hi"},
    {"id": "footer", "type": "FOOTER", "title": "Footer"}
  ]
}`

// Seed populates the database with a sample project when no project exists
// yet. Intended for development.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM projects").Scan(&count); err != nil {
		return fmt.Errorf("seed check projects: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRow(`
		INSERT INTO projects (name, slug, website)
		VALUES ($1, $2, $3)
		RETURNING id
	`, "Demo Coffee Shop", DemoSlug, demoWebsite).Scan(&id)
	if err != nil {
		return fmt.Errorf("seed insert project: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT INTO project_revisions (project_id, website, note)
		VALUES ($1, $2, $3)
	`, id, demoWebsite, "seed"); err != nil {
		return fmt.Errorf("seed insert revision: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with demo project", "slug", DemoSlug)
	return nil
}
