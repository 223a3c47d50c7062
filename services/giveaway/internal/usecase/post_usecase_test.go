package usecase

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"ucycle/pkg/clock"
	"ucycle/pkg/geo"
	"ucycle/pkg/logger"
	"ucycle/services/giveaway/internal/entity"
	"ucycle/services/giveaway/internal/safety"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

const pngBase64 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

var start = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

type classifierFunc func(ctx context.Context, image string) (safety.Verdict, error)

func (f classifierFunc) Classify(ctx context.Context, image string) (safety.Verdict, error) {
	return f(ctx, image)
}

type fixture struct {
	store   *memoryStore
	clock   *clock.Manual
	events  *recordingPublisher
	mirror  *recordingMirror
	posts   PostUseCase
	reports ReportUseCase
	stats   StatsUseCase
}

func newFixture(t *testing.T, classifier safety.Classifier, withMirror bool) *fixture {
	t.Helper()

	if classifier == nil {
		classifier = safety.AllowAllClassifier{}
	}
	log := logger.NewNop()
	f := &fixture{
		store:  newMemoryStore(),
		clock:  clock.NewManual(start),
		events: &recordingPublisher{},
	}

	var mirror ImageMirror
	if withMirror {
		f.mirror = newRecordingMirror()
		mirror = f.mirror
	}

	posts, reports, stats := memPosts{f.store}, memReports{f.store}, memStats{f.store}
	f.stats = NewStatsUseCase(posts, reports, stats, f.clock, log)
	f.posts = NewPostUseCase(
		posts,
		safety.NewGate(classifier, time.Second, log),
		safety.NewAnalyzer(nil, log),
		geo.NewFuzzer(),
		f.stats,
		f.events,
		mirror,
		f.clock,
		clock.UUID(),
		PostSettings{DefaultExpiryHours: 48, MaxImagesPerPost: 3},
		log,
	)
	f.reports = NewReportUseCase(posts, reports, f.stats, f.events, f.clock, clock.UUID(), log)
	return f
}

func londonInput(hours int) SubmitInput {
	return SubmitInput{
		PrimaryImage: pngBase64,
		Title:        "Oak bookshelf",
		Category:     "Furniture",
		Description:  "Five shelves, minor scratches",
		Latitude:     51.5074,
		Longitude:    -0.1278,
		ExpiryHours:  hours,
	}
}

func (f *fixture) submit(t *testing.T, input SubmitInput) *entity.Post {
	t.Helper()
	post, err := f.posts.Submit(context.Background(), input)
	require.NoError(t, err)
	return post
}

func TestSubmit_London(t *testing.T) {
	f := newFixture(t, nil, false)

	post := f.submit(t, londonInput(2))

	assert.Equal(t, entity.StatusActive, post.Status)
	assert.Equal(t, "furniture", post.Category)
	assert.True(t, start.Equal(post.CreatedAt))
	assert.True(t, start.Add(2*time.Hour).Equal(post.ExpiresAt))
	assert.LessOrEqual(t, math.Abs(post.Latitude-51.5074), geo.MaxOffset)
	assert.LessOrEqual(t, math.Abs(post.Longitude+0.1278), geo.MaxOffset)
	assert.Zero(t, post.TrueLatitude)
	assert.Zero(t, post.TrueLongitude)
	assert.Equal(t, []string{pngBase64}, post.Images)
	assert.Equal(t, pngBase64, post.PrimaryImage)

	stored := f.store.stored(post.ID)
	require.NotNil(t, stored)
	assert.Equal(t, 51.5074, stored.TrueLatitude)
	assert.Equal(t, -0.1278, stored.TrueLongitude)

	assert.Equal(t, int64(1), f.store.counter("2025-06-01", "event/post_created"))
	assert.Equal(t, int64(1), f.store.counter("2025-06-01", "category/furniture"))
	assert.Equal(t, []string{entity.EventPostCreated}, f.events.types())
}

func TestSubmit_DefaultsAndNormalization(t *testing.T) {
	f := newFixture(t, nil, false)

	input := londonInput(0)
	input.Category = "spaceships"
	input.Title = "  <b>Lamp</b>  "
	input.Description = "<script>alert(1)</script>Works fine"
	post := f.submit(t, input)

	assert.True(t, start.Add(48*time.Hour).Equal(post.ExpiresAt))
	assert.Equal(t, entity.CategoryGeneral, post.Category)
	assert.Equal(t, "Lamp", post.Title)
	assert.Equal(t, "Works fine", post.Description)
}

func TestSubmit_PlainTextRoundTrips(t *testing.T) {
	f := newFixture(t, nil, false)
	ctx := context.Background()

	input := londonInput(2)
	input.Title = "Tables & Chairs"
	input.Description = `Shelf depth < 30cm, "solid" oak`
	post := f.submit(t, input)

	assert.Equal(t, "Tables & Chairs", post.Title)
	assert.Equal(t, `Shelf depth < 30cm, "solid" oak`, post.Description)

	got, err := f.posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tables & Chairs", got.Title)
	assert.Equal(t, `Shelf depth < 30cm, "solid" oak`, got.Description)
}

func TestSubmit_LengthCountsUnescapedText(t *testing.T) {
	f := newFixture(t, nil, false)

	input := londonInput(2)
	input.Title = strings.Repeat("&", 200)
	post := f.submit(t, input)
	assert.Equal(t, strings.Repeat("&", 200), post.Title)

	input.Title = strings.Repeat("&", 201)
	_, err := f.posts.Submit(context.Background(), input)
	assert.ErrorIs(t, err, entity.ErrValidation)
}

func TestSubmit_Validation(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(in *SubmitInput)
		field string
	}{
		{name: "missing title", edit: func(in *SubmitInput) { in.Title = "   " }, field: "title"},
		{name: "markup only title", edit: func(in *SubmitInput) { in.Title = "<img src=x>" }, field: "title"},
		{name: "latitude out of range", edit: func(in *SubmitInput) { in.Latitude = 91 }, field: "latitude"},
		{name: "negative expiry", edit: func(in *SubmitInput) { in.ExpiryHours = -1 }, field: "expiry_hours"},
		{name: "no primary image", edit: func(in *SubmitInput) { in.PrimaryImage = "" }, field: "image_base64"},
		{name: "empty extra image", edit: func(in *SubmitInput) { in.Images = []string{""} }, field: "images"},
		{name: "too many images", edit: func(in *SubmitInput) { in.Images = []string{"b", "c", "d"} }, field: "images"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil, false)
			input := londonInput(2)
			tt.edit(&input)

			_, err := f.posts.Submit(context.Background(), input)

			var verr *entity.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Empty(t, f.store.posts)
		})
	}
}

func TestSubmit_SecondImageRejected(t *testing.T) {
	f := newFixture(t, classifierFunc(func(_ context.Context, image string) (safety.Verdict, error) {
		if image == "B" {
			return safety.Verdict{Safe: false, Reason: "weapon"}, nil
		}
		return safety.Verdict{Safe: true}, nil
	}), false)

	input := londonInput(2)
	input.PrimaryImage = "A"
	input.Images = []string{"B"}
	_, err := f.posts.Submit(context.Background(), input)

	var rejected *entity.ContentRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, 2, rejected.Position)
	assert.Equal(t, "weapon", rejected.Reason)

	assert.Empty(t, f.store.posts)
	assert.Zero(t, f.store.counter("2025-06-01", "event/post_created"))
	assert.Empty(t, f.events.types())
}

func TestSubmit_ClassifierDownFailsOpen(t *testing.T) {
	f := newFixture(t, classifierFunc(func(context.Context, string) (safety.Verdict, error) {
		return safety.Verdict{}, errors.New("503 from upstream")
	}), false)

	post := f.submit(t, londonInput(2))
	assert.Equal(t, entity.StatusActive, post.Status)
	assert.NotNil(t, f.store.stored(post.ID))
}

func TestSubmit_MirrorsImages(t *testing.T) {
	f := newFixture(t, nil, true)

	input := londonInput(2)
	input.Images = []string{"data:image/png;base64," + pngBase64}
	post := f.submit(t, input)

	assert.Equal(t, map[string]string{
		"posts/" + post.ID + "/0.png": "image/png",
		"posts/" + post.ID + "/1.png": "image/png",
	}, f.mirror.uploaded)
}

func TestList_ExpiresAndGetIsStale(t *testing.T) {
	f := newFixture(t, nil, false)
	ctx := context.Background()

	short := f.submit(t, londonInput(2))
	long := f.submit(t, londonInput(48))

	f.clock.Advance(3 * time.Hour)

	// Nothing has swept yet.
	got, err := f.posts.Get(ctx, short.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusActive, got.Status)

	active, err := f.posts.List(ctx, ListInput{})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, long.ID, active[0].ID)

	all, err := f.posts.List(ctx, ListInput{IncludeExpired: true})
	require.NoError(t, err)
	require.Len(t, all, 2)

	got, err = f.posts.Get(ctx, short.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusExpired, got.Status)
}

func TestList_ExpiryBoundary(t *testing.T) {
	f := newFixture(t, nil, false)
	ctx := context.Background()

	post := f.submit(t, londonInput(2))

	f.clock.Set(post.ExpiresAt)
	active, err := f.posts.List(ctx, ListInput{})
	require.NoError(t, err)
	assert.Len(t, active, 1)

	f.clock.Advance(time.Nanosecond)
	active, err = f.posts.List(ctx, ListInput{})
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestList_CategoryAndNear(t *testing.T) {
	f := newFixture(t, nil, false)
	ctx := context.Background()

	london := f.submit(t, londonInput(48))

	paris := londonInput(48)
	paris.Latitude, paris.Longitude = 48.8566, 2.3522
	paris.Category = "books"
	f.submit(t, paris)

	books, err := f.posts.List(ctx, ListInput{Category: "BOOKS"})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "books", books[0].Category)

	near, err := f.posts.List(ctx, ListInput{Near: &NearFilter{Latitude: 51.5, Longitude: -0.12, RadiusKm: 5}})
	require.NoError(t, err)
	require.Len(t, near, 1)
	assert.Equal(t, london.ID, near[0].ID)
	assert.NotEmpty(t, near[0].Distance)
	assert.Empty(t, books[0].Distance)

	_, err = f.posts.List(ctx, ListInput{Near: &NearFilter{Latitude: 51.5, Longitude: -0.12}})
	assert.ErrorIs(t, err, entity.ErrValidation)
}

func TestSweep_ConcurrentRunsTransitionOnce(t *testing.T) {
	f := newFixture(t, nil, false)

	const posts = 25
	for i := 0; i < posts; i++ {
		f.submit(t, londonInput(1))
	}
	f.clock.Advance(2 * time.Hour)

	var total atomic.Int64
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			n, err := f.posts.Sweep(ctx)
			total.Add(n)
			return err
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int64(posts), total.Load())

	n, err := f.posts.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMarkCollected(t *testing.T) {
	f := newFixture(t, nil, false)
	ctx := context.Background()

	post := f.submit(t, londonInput(48))
	f.clock.Advance(time.Hour)

	require.NoError(t, f.posts.MarkCollected(ctx, post.ID))

	got, err := f.posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCollected, got.Status)
	require.NotNil(t, got.CollectedAt)
	assert.True(t, start.Add(time.Hour).Equal(*got.CollectedAt))
	assert.Equal(t, int64(1), f.store.counter("2025-06-01", "event/post_collected"))

	err = f.posts.MarkCollected(ctx, post.ID)
	assert.ErrorIs(t, err, entity.ErrConflict)

	err = f.posts.MarkCollected(ctx, "missing")
	assert.ErrorIs(t, err, entity.ErrConflict)
}

func TestMarkCollected_ExpiredConflicts(t *testing.T) {
	f := newFixture(t, nil, false)
	ctx := context.Background()

	post := f.submit(t, londonInput(1))
	f.clock.Advance(2 * time.Hour)
	_, err := f.posts.Sweep(ctx)
	require.NoError(t, err)

	err = f.posts.MarkCollected(ctx, post.ID)
	assert.ErrorIs(t, err, entity.ErrConflict)

	got, err := f.posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusExpired, got.Status)
	assert.Nil(t, got.CollectedAt)
}

func TestAdminRemove(t *testing.T) {
	f := newFixture(t, nil, true)
	ctx := context.Background()

	post := f.submit(t, londonInput(48))
	require.NoError(t, f.posts.MarkCollected(ctx, post.ID))

	require.NoError(t, f.posts.AdminRemove(ctx, post.ID))

	got, err := f.posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRemoved, got.Status)

	assert.ErrorIs(t, f.posts.MarkCollected(ctx, post.ID), entity.ErrConflict)
	assert.ErrorIs(t, f.posts.AdminRemove(ctx, "missing"), entity.ErrNotFound)

	assert.Equal(t, []string{"posts/" + post.ID + "/0.png"}, f.mirror.deleted)
	assert.Equal(t, []string{entity.EventPostCreated, entity.EventPostCollected, entity.EventPostRemoved}, f.events.types())

	all, err := f.posts.AdminList(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	active, err := f.posts.List(ctx, ListInput{})
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestPublishFailureDoesNotFailSubmit(t *testing.T) {
	f := newFixture(t, nil, false)
	f.events.err = errBoom

	post := f.submit(t, londonInput(2))
	assert.NotEmpty(t, post.ID)
}

func TestOpenGraph(t *testing.T) {
	t.Run("inline image", func(t *testing.T) {
		f := newFixture(t, nil, false)
		post := f.submit(t, londonInput(2))

		og, err := f.posts.OpenGraph(context.Background(), post.ID)
		require.NoError(t, err)
		assert.Equal(t, "Oak bookshelf - Free on Ucycle", og.Title)
		assert.Equal(t, "Free pickup available! Five shelves, minor scratches", og.Description)
		assert.Equal(t, pngBase64, og.Image)
		assert.Equal(t, "/post/"+post.ID, og.URL)
		assert.Equal(t, entity.StatusActive, og.Status)
	})

	t.Run("mirrored image", func(t *testing.T) {
		f := newFixture(t, nil, true)
		post := f.submit(t, londonInput(2))

		og, err := f.posts.OpenGraph(context.Background(), post.ID)
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.test/posts/"+post.ID+"/0.png", og.Image)
	})

	t.Run("missing", func(t *testing.T) {
		f := newFixture(t, nil, false)
		_, err := f.posts.OpenGraph(context.Background(), "missing")
		assert.ErrorIs(t, err, entity.ErrNotFound)
	})
}

func TestAnalyzeImage(t *testing.T) {
	f := newFixture(t, nil, false)

	_, err := f.posts.AnalyzeImage(context.Background(), " ")
	assert.ErrorIs(t, err, entity.ErrValidation)

	got, err := f.posts.AnalyzeImage(context.Background(), pngBase64)
	require.NoError(t, err)
	assert.Equal(t, safety.FallbackSuggestion, *got)
}

func TestRunSweeper(t *testing.T) {
	f := newFixture(t, nil, false)
	post := f.submit(t, londonInput(1))
	f.clock.Advance(2 * time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.posts.RunSweeper(ctx, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return f.store.stored(post.ID).Status == entity.StatusExpired
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestRunSweeper_DisabledReturnsImmediately(t *testing.T) {
	f := newFixture(t, nil, false)
	f.posts.RunSweeper(context.Background(), 0)
}
