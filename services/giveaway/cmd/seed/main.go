package main

import (
	"context"
	"encoding/base64"
	"flag"
	"fmt"
	"io"
	"net/http"
	"time"

	"ucycle/pkg/config"
	"ucycle/pkg/database"
	"ucycle/pkg/logger"
	"ucycle/services/giveaway/internal/app"
	"ucycle/services/giveaway/internal/usecase"
)

type seedPost struct {
	title       string
	category    string
	description string
	lat, lng    float64
	hours       int
}

var demoPosts = []seedPost{
	{"Wooden bookshelf", "furniture", "Five shelves, a little scuffed.", 51.5074, -0.1278, 48},
	{"Box of paperbacks", "books", "Mostly crime novels.", 51.5155, -0.1419, 24},
	{"Kids bike", "sports", "Fits ages 5-8, needs new tyres.", 51.5033, -0.1196, 72},
	{"Kettle", "kitchen", "Works fine, we upgraded.", 51.4995, -0.1248, 12},
	{"Desk lamp", "electronics", "", 51.5226, -0.1571, 6},
}

func main() {
	var imageBase string
	flag.StringVar(&imageBase, "images", "https://picsum.photos/seed", "base URL for demo photos")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.New()
	defer log.Sync()

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	// Posts go through the same lifecycle as API submissions.
	server, err := app.NewServer(cfg, log, db, nil, nil, nil)
	if err != nil {
		log.Error("Failed to build giveaway service: %v", err)
		panic(err)
	}

	if err := seed(context.Background(), server.PostUseCase, imageBase, log); err != nil {
		log.Error("Failed to seed database: %v", err)
		panic(err)
	}

	log.Info("Database seeded successfully!")
}

func seed(ctx context.Context, posts usecase.PostUseCase, imageBase string, log *logger.Logger) error {
	httpClient := &http.Client{Timeout: 30 * time.Second}

	created := 0
	for i, p := range demoPosts {
		image, err := fetchImage(ctx, httpClient, fmt.Sprintf("%s/ucycle-%d/400/300", imageBase, i))
		if err != nil {
			log.Error("Failed to fetch image for %q: %v", p.title, err)
			continue
		}

		post, err := posts.Submit(ctx, usecase.SubmitInput{
			PrimaryImage: image,
			Title:        p.title,
			Category:     p.category,
			Description:  p.description,
			Latitude:     p.lat,
			Longitude:    p.lng,
			ExpiryHours:  p.hours,
		})
		if err != nil {
			log.Error("Failed to create post %q: %v", p.title, err)
			continue
		}

		log.Info("Created post: %s (%s)", post.Title, post.ID)
		created++
	}

	if created == 0 {
		return fmt.Errorf("no demo posts created")
	}
	return nil
}

func fetchImage(ctx context.Context, client *http.Client, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image host returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read image data: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("received empty image data")
	}

	return "data:" + http.DetectContentType(data) + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
