package seed

import (
	"context"
	"fmt"
	"time"

	"snapgram/internal/models"
	"snapgram/internal/observability"

	"gorm.io/gorm"
)

// Options controls the size and shape of a seed run.
type Options struct {
	Users              int
	PostsPerUser       int
	MaxCommentsPerPost int
	LikeProbability    float64
	FollowProbability  float64
	MaxDays            int
	BatchSize          int
	RandomSeed         int64
	Clean              bool
	DryRun             bool
	FastHash           bool
}

// DefaultOptions returns the options used by cmd/seed when no flags are given.
func DefaultOptions() Options {
	return Options{
		Users:              20,
		PostsPerUser:       5,
		MaxCommentsPerPost: 4,
		LikeProbability:    0.3,
		FollowProbability:  0.2,
		MaxDays:            90,
		BatchSize:          100,
	}
}

func (o Options) batchSize() int {
	if o.BatchSize <= 0 {
		return 100
	}
	return o.BatchSize
}

// Validate checks option ranges.
func (o Options) Validate() error {
	if o.Users < 0 || o.PostsPerUser < 0 || o.MaxCommentsPerPost < 0 {
		return fmt.Errorf("counts must not be negative")
	}
	for name, p := range map[string]float64{"like": o.LikeProbability, "follow": o.FollowProbability} {
		if p < 0 || p > 1 {
			return fmt.Errorf("%s probability must be within [0,1], got %v", name, p)
		}
	}
	return nil
}

// Summary counts the rows a run created.
type Summary struct {
	Users    int
	Posts    int
	Comments int
	Likes    int
	Follows  int
}

func (s Summary) String() string {
	return fmt.Sprintf("users=%d posts=%d comments=%d likes=%d follows=%d",
		s.Users, s.Posts, s.Comments, s.Likes, s.Follows)
}

// Run seeds db according to opts. Every (user, post) like and every
// (follower, followed) pair is generated at most once and no user follows
// themselves, so a run never trips a uniqueness constraint. Outside DryRun the
// whole run, including Clean, is one transaction.
func Run(ctx context.Context, db *gorm.DB, opts Options) (*Summary, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if db == nil && !opts.DryRun {
		return nil, fmt.Errorf("seed: database is required unless dry-run")
	}

	ctx, span := observability.Tracer.Start(ctx, "seed.run")
	defer span.End()

	start := time.Now()
	observability.Logger.InfoContext(ctx, "seeding database",
		"users", opts.Users, "posts_per_user", opts.PostsPerUser, "dry_run", opts.DryRun)

	f, err := NewFactory(db, opts)
	if err != nil {
		return nil, err
	}
	summary := &Summary{}

	if opts.DryRun {
		err = f.populate(ctx, summary)
	} else {
		err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			f.db = tx
			if opts.Clean {
				if err := Clear(ctx, tx); err != nil {
					return err
				}
			}
			return f.populate(ctx, summary)
		})
	}
	if err != nil {
		observability.RecordErrorInContext(ctx, err)
		return nil, err
	}

	observability.Logger.InfoContext(ctx, "seeding complete",
		"summary", summary.String(), "duration_ms", time.Since(start).Milliseconds())
	return summary, nil
}

func (f *Factory) populate(ctx context.Context, summary *Summary) error {
	opts := f.opts

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		users = append(users, f.BuildUser())
	}
	if err := insertBatch(ctx, f, users, func(u *models.User, id uint) { u.ID = id }); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	summary.Users = len(users)

	posts := make([]*models.Post, 0, opts.Users*opts.PostsPerUser)
	for _, u := range users {
		for i := 0; i < opts.PostsPerUser; i++ {
			posts = append(posts, f.BuildPost(u))
		}
	}
	if err := insertBatch(ctx, f, posts, func(p *models.Post, id uint) { p.ID = id }); err != nil {
		return fmt.Errorf("seed posts: %w", err)
	}
	summary.Posts = len(posts)

	var comments []*models.Comment
	var likes []*models.Like
	if len(users) > 0 {
		for _, p := range posts {
			n := f.rng.Intn(opts.MaxCommentsPerPost + 1)
			for i := 0; i < n; i++ {
				comments = append(comments, f.BuildComment(users[f.rng.Intn(len(users))], p))
			}
			for _, u := range users {
				if f.chance(opts.LikeProbability) {
					likes = append(likes, &models.Like{UserID: u.ID, PostID: p.ID, CreatedAt: time.Now()})
				}
			}
		}
	}
	if err := insertBatch(ctx, f, comments, func(c *models.Comment, id uint) { c.ID = id }); err != nil {
		return fmt.Errorf("seed comments: %w", err)
	}
	summary.Comments = len(comments)
	if err := insertBatch[models.Like](ctx, f, likes, nil); err != nil {
		return fmt.Errorf("seed likes: %w", err)
	}
	summary.Likes = len(likes)

	var follows []*models.Follow
	for _, follower := range users {
		for _, followed := range users {
			if follower.ID == followed.ID {
				continue
			}
			if f.chance(opts.FollowProbability) {
				follows = append(follows, &models.Follow{FollowerID: follower.ID, FollowedID: followed.ID, CreatedAt: time.Now()})
			}
		}
	}
	if err := insertBatch[models.Follow](ctx, f, follows, nil); err != nil {
		return fmt.Errorf("seed follows: %w", err)
	}
	summary.Follows = len(follows)
	return nil
}

// Clear deletes every user; the foreign keys cascade to all other tables.
func Clear(ctx context.Context, db *gorm.DB) error {
	observability.Logger.InfoContext(ctx, "clearing existing data")
	err := db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.User{}).Error
	if err != nil {
		return fmt.Errorf("clear users: %w", err)
	}
	return nil
}
