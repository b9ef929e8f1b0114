package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"museum-ticketing/internal/config"
	"museum-ticketing/internal/domain/model"
	pg "museum-ticketing/internal/infra/db/postgres"
	"museum-ticketing/migrations"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	if err := migrations.Apply(ctx, pool); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	museumRepo := pg.NewMuseumRepo(pool)
	ticketRepo := pg.NewTicketTypeRepo(pool)

	// If museums already exist, do nothing.
	museums, err := museumRepo.ListAll(ctx, nil)
	if err != nil {
		log.Fatalf("list museums: %v", err)
	}
	if len(museums) > 0 {
		fmt.Printf("%d museums already present. No changes.\n", len(museums))
		return
	}

	seed := []struct {
		Name    string
		City    string
		Tickets []struct {
			Name       string
			LimitHours int
			Price      int64
		}
	}{
		{"Grand Egyptian Museum", "Giza", []struct {
			Name       string
			LimitHours int
			Price      int64
		}{
			{"Day Pass", 0, 40_000},
			{"Two Hour Tour", 2, 15_000},
		}},
		{"Museum of Islamic Art", "Cairo", []struct {
			Name       string
			LimitHours int
			Price      int64
		}{
			{"Standard Visit", 3, 12_000},
		}},
	}

	for _, s := range seed {
		m, err := model.NewMuseum(s.Name, s.City, "")
		if err != nil {
			log.Fatalf("museum %q: %v", s.Name, err)
		}
		if err := museumRepo.Save(ctx, nil, m); err != nil {
			log.Fatalf("save museum %q: %v", s.Name, err)
		}
		fmt.Printf("seeded museum: %s (id=%s)\n", m.Name, m.ID)

		for _, st := range s.Tickets {
			t, err := model.NewTicketType(m.ID, st.Name, "", st.LimitHours, st.Price, "EGP")
			if err != nil {
				log.Fatalf("ticket %q: %v", st.Name, err)
			}
			if err := ticketRepo.Save(ctx, nil, t); err != nil {
				log.Fatalf("save ticket %q: %v", st.Name, err)
			}
			fmt.Printf("  seeded ticket type: %s (id=%s, limit=%dh, price=%d EGP cents)\n", t.Name, t.ID, t.LimitHours, t.PriceCents)
		}
	}

	fmt.Println("✅ Seeding complete.")
}
