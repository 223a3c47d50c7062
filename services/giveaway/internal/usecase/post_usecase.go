package usecase

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"ucycle/pkg/clock"
	"ucycle/pkg/geo"
	"ucycle/pkg/imagedata"
	"ucycle/pkg/logger"
	"ucycle/services/giveaway/internal/entity"
	"ucycle/services/giveaway/internal/repo/persistent"
	"ucycle/services/giveaway/internal/safety"

	"github.com/microcosm-cc/bluemonday"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 2000
)

type SubmitInput struct {
	PrimaryImage string
	Images       []string
	Title        string
	Category     string
	Description  string
	Latitude     float64
	Longitude    float64
	ExpiryHours  int
}

// NearFilter keeps posts whose public coordinates lie within RadiusKm.
type NearFilter struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
}

type ListInput struct {
	IncludeExpired bool
	Category       string
	Near           *NearFilter
}

type PostSettings struct {
	DefaultExpiryHours int
	MaxImagesPerPost   int
}

// LocationFuzzer hides a submitter's exact position.
type LocationFuzzer interface {
	Fuzz(lat, lng float64) (float64, float64)
}

type PostUseCase interface {
	Submit(ctx context.Context, input SubmitInput) (*entity.Post, error)
	List(ctx context.Context, input ListInput) ([]*entity.Post, error)
	Get(ctx context.Context, id string) (*entity.Post, error)
	MarkCollected(ctx context.Context, id string) error
	AdminRemove(ctx context.Context, id string) error
	AdminList(ctx context.Context) ([]*entity.Post, error)
	Sweep(ctx context.Context) (int64, error)
	RunSweeper(ctx context.Context, interval time.Duration)
	OpenGraph(ctx context.Context, id string) (*entity.OpenGraph, error)
	AnalyzeImage(ctx context.Context, image string) (*safety.Suggestion, error)
}

type postUseCase struct {
	postRepo  persistent.PostRepository
	gate      *safety.Gate
	analyzer  *safety.Analyzer
	fuzzer    LocationFuzzer
	stats     StatsUseCase
	events    EventPublisher
	mirror    ImageMirror
	clock     clock.Clock
	ids       clock.IDGenerator
	settings  PostSettings
	sanitizer *bluemonday.Policy
	logger    *logger.Logger
}

// NewPostUseCase wires the lifecycle. mirror may be nil when object storage
// is not configured.
func NewPostUseCase(
	postRepo persistent.PostRepository,
	gate *safety.Gate,
	analyzer *safety.Analyzer,
	fuzzer LocationFuzzer,
	stats StatsUseCase,
	events EventPublisher,
	mirror ImageMirror,
	clk clock.Clock,
	ids clock.IDGenerator,
	settings PostSettings,
	logger *logger.Logger,
) PostUseCase {
	if settings.DefaultExpiryHours <= 0 {
		settings.DefaultExpiryHours = 48
	}
	if settings.MaxImagesPerPost <= 0 {
		settings.MaxImagesPerPost = 5
	}
	if events == nil {
		events = NopPublisher{}
	}
	return &postUseCase{
		postRepo:  postRepo,
		gate:      gate,
		analyzer:  analyzer,
		fuzzer:    fuzzer,
		stats:     stats,
		events:    events,
		mirror:    mirror,
		clock:     clk,
		ids:       ids,
		settings:  settings,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger,
	}
}

func (uc *postUseCase) Submit(ctx context.Context, input SubmitInput) (*entity.Post, error) {
	title := uc.plainText(input.Title)
	description := uc.plainText(input.Description)
	images, err := uc.validate(input, title, description)
	if err != nil {
		return nil, err
	}

	if err := uc.gate.CheckAll(ctx, images); err != nil {
		return nil, err
	}

	expiryHours := input.ExpiryHours
	if expiryHours == 0 {
		expiryHours = uc.settings.DefaultExpiryHours
	}

	now := uc.clock.Now()
	lat, lng := uc.fuzzer.Fuzz(input.Latitude, input.Longitude)
	post := &entity.Post{
		ID:            uc.ids.NewID(),
		PrimaryImage:  images[0],
		Images:        images,
		Title:         title,
		Category:      entity.NormalizeCategory(input.Category),
		Description:   description,
		Latitude:      lat,
		Longitude:     lng,
		TrueLatitude:  input.Latitude,
		TrueLongitude: input.Longitude,
		CreatedAt:     now,
		ExpiresAt:     now.Add(time.Duration(expiryHours) * time.Hour),
		Status:        entity.StatusActive,
	}

	if err := uc.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	uc.record(ctx, entity.EventPostCreated, post.Category)
	uc.publish(ctx, entity.Event{Type: entity.EventPostCreated, PostID: post.ID, Category: post.Category, At: now})
	uc.mirrorImages(ctx, post)

	// The caller sees only what readers will see.
	post.TrueLatitude, post.TrueLongitude = 0, 0
	return post, nil
}

// plainText strips markup but keeps the text itself verbatim: the sanitizer
// entity-encodes what it leaves, and posts are stored and served as plain
// text, not HTML.
func (uc *postUseCase) plainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(uc.sanitizer.Sanitize(s)))
}

func (uc *postUseCase) validate(input SubmitInput, title, description string) ([]string, error) {
	if title == "" {
		return nil, entity.NewValidationError("title", "is required")
	}
	if len([]rune(title)) > maxTitleLength {
		return nil, entity.NewValidationError("title", fmt.Sprintf("must be at most %d characters", maxTitleLength))
	}
	if len([]rune(description)) > maxDescriptionLength {
		return nil, entity.NewValidationError("description", fmt.Sprintf("must be at most %d characters", maxDescriptionLength))
	}
	if !geo.ValidCoordinate(input.Latitude, input.Longitude) {
		return nil, entity.NewValidationError("latitude", "coordinates are out of range")
	}
	if input.ExpiryHours < 0 {
		return nil, entity.NewValidationError("expiry_hours", "must not be negative")
	}
	if strings.TrimSpace(input.PrimaryImage) == "" {
		return nil, entity.NewValidationError("image_base64", "is required")
	}

	images := make([]string, 0, 1+len(input.Images))
	images = append(images, input.PrimaryImage)
	for i, img := range input.Images {
		if strings.TrimSpace(img) == "" {
			return nil, entity.NewValidationError("images", fmt.Sprintf("image %d is empty", i+2))
		}
		images = append(images, img)
	}
	if len(images) > uc.settings.MaxImagesPerPost {
		return nil, entity.NewValidationError("images", fmt.Sprintf("at most %d images per post", uc.settings.MaxImagesPerPost))
	}
	return images, nil
}

func (uc *postUseCase) List(ctx context.Context, input ListInput) ([]*entity.Post, error) {
	if input.Near != nil {
		if !geo.ValidCoordinate(input.Near.Latitude, input.Near.Longitude) {
			return nil, entity.NewValidationError("near_lat", "coordinates are out of range")
		}
		if input.Near.RadiusKm <= 0 {
			return nil, entity.NewValidationError("radius_km", "must be positive")
		}
	}

	if _, err := uc.Sweep(ctx); err != nil {
		return nil, err
	}

	filter := persistent.PostFilter{}
	if !input.IncludeExpired {
		filter.Statuses = []entity.PostStatus{entity.StatusActive}
	}
	if input.Category != "" {
		filter.Category = entity.NormalizeCategory(input.Category)
	}

	posts, err := uc.postRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if input.Near == nil {
		return posts, nil
	}

	nearby := make([]*entity.Post, 0, len(posts))
	for _, p := range posts {
		km := geo.Distance(input.Near.Latitude, input.Near.Longitude, p.Latitude, p.Longitude)
		if km <= input.Near.RadiusKm {
			p.Distance = geo.FormatDistance(km)
			nearby = append(nearby, p)
		}
	}
	return nearby, nil
}

// Get does not sweep; a post past its expiry may still read as active until
// the next list, snapshot or background sweep.
func (uc *postUseCase) Get(ctx context.Context, id string) (*entity.Post, error) {
	return uc.postRepo.GetByID(ctx, id)
}

func (uc *postUseCase) MarkCollected(ctx context.Context, id string) error {
	now := uc.clock.Now()
	ok, err := uc.postRepo.MarkCollected(ctx, id, now)
	if err != nil {
		return fmt.Errorf("failed to mark post collected: %w", err)
	}
	if !ok {
		return fmt.Errorf("post %s is not active: %w", id, entity.ErrConflict)
	}

	category := uc.categoryOf(ctx, id)
	uc.record(ctx, entity.EventPostCollected, category)
	uc.publish(ctx, entity.Event{Type: entity.EventPostCollected, PostID: id, Category: category, At: now})
	return nil
}

func (uc *postUseCase) AdminRemove(ctx context.Context, id string) error {
	now := uc.clock.Now()
	ok, err := uc.postRepo.MarkRemoved(ctx, id, now)
	if err != nil {
		return fmt.Errorf("failed to remove post: %w", err)
	}
	if !ok {
		return entity.ErrNotFound
	}

	post, err := uc.postRepo.GetByID(ctx, id)
	category := ""
	if err == nil {
		category = post.Category
		uc.unmirrorImages(ctx, post)
	}
	uc.record(ctx, entity.EventPostRemoved, category)
	uc.publish(ctx, entity.Event{Type: entity.EventPostRemoved, PostID: id, Category: category, At: now})
	return nil
}

func (uc *postUseCase) AdminList(ctx context.Context) ([]*entity.Post, error) {
	return uc.postRepo.List(ctx, persistent.PostFilter{})
}

func (uc *postUseCase) Sweep(ctx context.Context) (int64, error) {
	return sweep(ctx, uc.postRepo, uc.clock, uc.logger)
}

// RunSweeper sweeps every interval until ctx is cancelled.
func (uc *postUseCase) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	uc.logger.Info("[SWEEP] Background sweeper started, interval=%s", interval)
	for {
		select {
		case <-ctx.Done():
			uc.logger.Info("[SWEEP] Background sweeper stopped")
			return
		case <-ticker.C:
			if _, err := uc.Sweep(ctx); err != nil && !errors.Is(err, context.Canceled) {
				uc.logger.Error("[SWEEP] %v", err)
			}
		}
	}
}

func (uc *postUseCase) OpenGraph(ctx context.Context, id string) (*entity.OpenGraph, error) {
	post, err := uc.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	title := post.Title
	if title == "" {
		title = "Free Item"
	}
	description := post.Description
	if description == "" {
		description = "Grab it before it is gone!"
	}

	image := post.PrimaryImage
	if uc.mirror != nil {
		if _, mimeType, err := imagedata.Decode(image); err == nil {
			image = uc.mirror.URL(imageKey(post.ID, 0, mimeType))
		}
	}

	return &entity.OpenGraph{
		Title:       fmt.Sprintf("%s - Free on Ucycle", title),
		Description: fmt.Sprintf("Free pickup available! %s", description),
		Image:       image,
		Category:    post.Category,
		Status:      post.Status,
		URL:         fmt.Sprintf("/post/%s", post.ID),
	}, nil
}

func (uc *postUseCase) AnalyzeImage(ctx context.Context, image string) (*safety.Suggestion, error) {
	if strings.TrimSpace(image) == "" {
		return nil, entity.NewValidationError("image_base64", "is required")
	}
	suggestion, err := uc.analyzer.Analyze(ctx, image)
	if err != nil {
		return nil, err
	}
	return &suggestion, nil
}

func (uc *postUseCase) categoryOf(ctx context.Context, id string) string {
	post, err := uc.postRepo.GetByID(ctx, id)
	if err != nil {
		uc.logger.Warn("[POST] Could not load post %s for stats: %v", id, err)
		return ""
	}
	return post.Category
}

func (uc *postUseCase) record(ctx context.Context, event, category string) {
	if err := uc.stats.Record(ctx, event, category); err != nil {
		uc.logger.Error("[STATS] %v", err)
	}
}

func (uc *postUseCase) publish(ctx context.Context, event entity.Event) {
	if err := uc.events.Publish(ctx, event); err != nil {
		uc.logger.Warn("[EVENTS] Failed to publish %s for post %s: %v", event.Type, event.PostID, err)
	}
}

func (uc *postUseCase) mirrorImages(ctx context.Context, post *entity.Post) {
	if uc.mirror == nil {
		return
	}
	for i, img := range post.Images {
		data, mimeType, err := imagedata.Decode(img)
		if err != nil {
			uc.logger.Warn("[S3] Skipping image %d of post %s: %v", i+1, post.ID, err)
			continue
		}
		if _, err := uc.mirror.Upload(ctx, imageKey(post.ID, i, mimeType), data, mimeType); err != nil {
			uc.logger.Warn("[S3] Failed to mirror image %d of post %s: %v", i+1, post.ID, err)
		}
	}
}

func (uc *postUseCase) unmirrorImages(ctx context.Context, post *entity.Post) {
	if uc.mirror == nil {
		return
	}
	for i, img := range post.Images {
		_, mimeType, err := imagedata.Decode(img)
		if err != nil {
			continue
		}
		if err := uc.mirror.Delete(ctx, imageKey(post.ID, i, mimeType)); err != nil {
			uc.logger.Warn("[S3] Failed to delete image %d of post %s: %v", i+1, post.ID, err)
		}
	}
}

// sweep expires every active post past its expiry. Safe to run from any
// number of goroutines at once.
func sweep(ctx context.Context, repo persistent.PostRepository, clk clock.Clock, log *logger.Logger) (int64, error) {
	n, err := repo.ExpireDue(ctx, clk.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to expire posts: %w", err)
	}
	if n > 0 {
		log.Info("[SWEEP] Expired %d posts", n)
	}
	return n, nil
}
