// Package seed fills a development database with fake users, posts,
// comments, likes and follows. It is intended for development and testing only.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"snapgram/internal/models"
	"snapgram/internal/observability"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the plaintext password of every seeded user.
const DefaultPassword = "password123"

// Factory builds entities and persists them. In DryRun mode nothing is
// written and synthetic IDs are assigned instead.
type Factory struct {
	db     *gorm.DB
	opts   Options
	faker  *gofakeit.Faker
	rng    *rand.Rand
	hash   string
	nextID uint
	seq    int
}

// NewFactory creates a Factory bound to db. db may be nil in DryRun mode.
func NewFactory(db *gorm.DB, opts Options) (*Factory, error) {
	seed := opts.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	cost := bcrypt.DefaultCost
	if opts.FastHash {
		cost = bcrypt.MinCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), cost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}

	//nolint:gosec // Weak random number generator is fine for seeding
	rng := rand.New(rand.NewSource(seed))

	return &Factory{
		db:     db,
		opts:   opts,
		faker:  gofakeit.New(seed),
		rng:    rng,
		hash:   string(hash),
		nextID: 1000,
	}, nil
}

func (f *Factory) assignID() uint {
	f.nextID++
	return f.nextID
}

// BuildUser returns an unsaved user with a unique username and email.
func (f *Factory) BuildUser(overrides ...func(*models.User)) *models.User {
	f.seq++
	base := strings.ToLower(f.faker.Username())
	if len(base) > 40 {
		base = base[:40]
	}
	username := fmt.Sprintf("%s%d", base, f.seq)
	fullName := f.faker.Name()

	user := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@%s", username, f.faker.DomainName()),
		FullName: &fullName,
		Password: f.hash,
		IsActive: models.Bool(true),
	}
	for _, override := range overrides {
		override(user)
	}
	return user
}

// CreateUser builds and persists a user.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(overrides...)
	if f.opts.DryRun {
		user.ID = f.assignID()
		observability.Logger.DebugContext(ctx, "[dry-run] create user", "username", user.Username)
		return user, nil
	}
	if err := f.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost returns an unsaved post by author with a created_at spread over
// the last MaxDays days.
func (f *Factory) BuildPost(author *models.User, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		UserID:    author.ID,
		ImageURL:  fmt.Sprintf("https://picsum.photos/seed/%s/800/800", f.faker.UUID()),
		CreatedAt: f.pastTime(),
	}
	// roughly a quarter of posts go without a caption
	if f.rng.Intn(4) != 0 {
		caption := f.faker.Sentence(f.rng.Intn(8) + 3)
		post.Caption = &caption
	}
	for _, override := range overrides {
		override(post)
	}
	return post
}

// BuildComment returns an unsaved comment by author on post.
func (f *Factory) BuildComment(author *models.User, post *models.Post) *models.Comment {
	created := post.CreatedAt.Add(time.Duration(f.rng.Intn(72*60)) * time.Minute)
	if now := time.Now(); created.After(now) {
		created = now
	}
	return &models.Comment{
		PostID:    post.ID,
		UserID:    author.ID,
		Content:   f.faker.Sentence(f.rng.Intn(10) + 2),
		CreatedAt: created,
	}
}

func (f *Factory) pastTime() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.rng.Intn(maxDays))*24*time.Hour +
		time.Duration(f.rng.Intn(24))*time.Hour +
		time.Duration(f.rng.Intn(60))*time.Minute
	return time.Now().Add(-back)
}

// chance reports true with probability p.
func (f *Factory) chance(p float64) bool {
	return p > 0 && f.rng.Float64() < p
}

// insertBatch persists rows in batches, or assigns IDs in DryRun mode.
func insertBatch[T any](ctx context.Context, f *Factory, rows []*T, setID func(*T, uint)) error {
	if len(rows) == 0 {
		return nil
	}
	if f.opts.DryRun {
		if setID != nil {
			for _, row := range rows {
				setID(row, f.assignID())
			}
		}
		return nil
	}
	return f.db.WithContext(ctx).CreateInBatches(rows, f.opts.batchSize()).Error
}
