package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"sync/atomic"
	"text/tabwriter"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/tendant/simple-editorial/pkg/editorial"
	"github.com/tendant/simple-editorial/pkg/editorial/api"
	"github.com/tendant/simple-editorial/pkg/editorial/config"
)

const usage = `Simple Editorial Admin CLI

Maintenance commands for the editorial engine. Uses the same configuration as the server.

USAGE:
  admin <command> [options]

COMMANDS:
  migrate       Create the schema and tables (postgres only)
  publish-due   Publish every scheduled post that is due now
  flush-views   Move buffered view counts from redis into the database
  seed          Insert demo profiles, taxonomy, posts and comments
  posts         List posts
  token         Issue an admin API token for a profile

ENVIRONMENT VARIABLES:
  DATABASE_URL      memory or postgres://... (default: memory)
  DB_SCHEMA         PostgreSQL schema name (default: editorial)
  REDIS_URL         Redis holding buffered view counts
  JWT_SECRET        Secret used to sign tokens

  Configuration can be loaded from a .env file in the current directory.

OPTIONS:
  seed   --n=<count>            Number of posts (default: 25)
         --seed=<int>           Random seed for repeatable data
  posts  --status=<status>      Filter by status (draft, scheduled, published, archived)
         --limit=<n>            Maximum results (default: 20)
         --offset=<n>           Pagination offset
         --json                 Output as JSON
  token  --sub=<uuid>           Profile id
         --role=<role>          admin, editor or author (default: admin)
         --ttl=<duration>       Token lifetime (default: 24h)
`

func main() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	command := os.Args[1]
	if command == "help" || command == "--help" || command == "-h" {
		fmt.Print(usage)
		os.Exit(0)
	}

	cfg, err := config.Load(config.WithEnv(), config.WithSchedules("", ""))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	flags := parseFlags(os.Args[2:])

	switch command {
	case "migrate":
		handleMigrate(ctx, cfg)
	case "token":
		handleToken(cfg, flags)
	case "publish-due", "flush-views", "seed", "posts":
		comps, err := cfg.Build(ctx, cfg.NewLogger())
		if err != nil {
			log.Fatalf("Failed to build service: %v", err)
		}
		defer comps.Close()

		switch command {
		case "publish-due":
			handlePublishDue(ctx, comps.Service)
		case "flush-views":
			handleFlushViews(ctx, comps)
		case "seed":
			handleSeed(ctx, comps.Service, flags)
		case "posts":
			handlePosts(ctx, comps.Service, flags)
		}
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Print(usage)
		os.Exit(1)
	}
}

func parseFlags(args []string) map[string]string {
	flags := make(map[string]string)
	for _, arg := range args {
		if key, value := parseFlag(arg); key != "" {
			flags[key] = value
		}
	}
	return flags
}

func parseFlag(arg string) (string, string) {
	if len(arg) > 2 && arg[:2] == "--" {
		arg = arg[2:]
		for i, c := range arg {
			if c == '=' {
				return arg[:i], arg[i+1:]
			}
		}
		return arg, "true"
	}
	return "", ""
}

func intFlag(flags map[string]string, key string, defaultValue int) int {
	if v, ok := flags[key]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("Invalid --%s value %q", key, v)
		}
		return n
	}
	return defaultValue
}

func handleMigrate(ctx context.Context, cfg *config.ServerConfig) {
	if cfg.DatabaseType != "postgres" {
		log.Fatalf("migrate needs a postgres DATABASE_URL")
	}
	pool, err := config.OpenPostgres(ctx, cfg.DatabaseURL, cfg.DBSchema)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	if err := config.MigratePostgres(ctx, pool, cfg.DBSchema); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	fmt.Printf("Schema %q is up to date\n", cfg.DBSchema)
}

func handlePublishDue(ctx context.Context, svc editorial.Service) {
	n, err := svc.PublishDue(ctx, time.Now())
	if err != nil {
		log.Printf("Publish sweep finished with errors: %v", err)
	}
	fmt.Printf("Published %d scheduled post(s)\n", n)
	if err != nil {
		os.Exit(1)
	}
}

func handleFlushViews(ctx context.Context, comps *config.Components) {
	if comps.ViewCounter == nil {
		fmt.Println("REDIS_URL is not set, views are counted directly in the database")
		return
	}
	n, err := comps.ViewCounter.Flush(ctx)
	if err != nil {
		log.Fatalf("Flush failed after %d post(s): %v", n, err)
	}
	fmt.Printf("Flushed view counts of %d post(s)\n", n)
}

func handleToken(cfg *config.ServerConfig, flags map[string]string) {
	if cfg.JWTSecret == "" {
		log.Fatalf("JWT_SECRET is required to issue tokens")
	}
	sub, err := uuid.Parse(flags["sub"])
	if err != nil {
		log.Fatalf("--sub must be a profile id: %v", err)
	}
	role := editorial.RoleAdmin
	if v, ok := flags["role"]; ok {
		role = editorial.Role(v)
	}
	if !role.IsValid() {
		log.Fatalf("Unknown role %q", role)
	}
	ttl := 24 * time.Hour
	if v, ok := flags["ttl"]; ok {
		if ttl, err = time.ParseDuration(v); err != nil {
			log.Fatalf("Invalid --ttl: %v", err)
		}
	}

	token, err := api.IssueToken(api.NewJWTAuth(cfg.JWTSecret), editorial.Principal{ID: sub, Role: role}, ttl)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}
	fmt.Println(token)
}

func handlePosts(ctx context.Context, svc editorial.Service, flags map[string]string) {
	filter := editorial.PostFilter{
		Limit:  intFlag(flags, "limit", editorial.DefaultPageLimit),
		Offset: intFlag(flags, "offset", 0),
	}
	if v, ok := flags["status"]; ok {
		status := editorial.PostStatus(v)
		filter.Status = &status
	}

	page, err := svc.ListPosts(ctx, filter)
	if err != nil {
		log.Fatalf("Failed to list posts: %v", err)
	}

	if _, ok := flags["json"]; ok {
		data, _ := json.MarshalIndent(page, "", "  ")
		fmt.Println(string(data))
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tSLUG\tSTATUS\tVIEWS\tPUBLISHED\tSCHEDULED\n")
	for _, post := range page.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			post.ID.String()[:8]+"...",
			truncate(post.Slug, 40),
			post.Status,
			post.ViewCount,
			formatTime(post.PublishedAt),
			formatTime(post.ScheduledFor),
		)
	}
	w.Flush()

	fmt.Printf("\nShowing %d of %d", len(page.Items), page.Total)
	if next := filter.Offset + len(page.Items); int64(next) < page.Total {
		fmt.Printf(" (use --offset=%d to continue)", next)
	}
	fmt.Println()
}

var seedCategories = []string{"Politics", "Sports", "Business", "Culture", "Science", "Opinion"}

// handleSeed generates all data up front with one faker, then writes posts concurrently
func handleSeed(ctx context.Context, svc editorial.Service, flags map[string]string) {
	n := intFlag(flags, "n", 25)
	faker := gofakeit.New(int64(intFlag(flags, "seed", int(time.Now().UnixNano()%1_000_000))))

	var authors []editorial.Principal
	for _, role := range []editorial.Role{editorial.RoleAdmin, editorial.RoleEditor, editorial.RoleAuthor, editorial.RoleAuthor} {
		profile, err := svc.CreateProfile(ctx, editorial.CreateProfileRequest{
			Email:       faker.Email(),
			DisplayName: faker.Name(),
			Role:        role,
		})
		if err != nil {
			log.Fatalf("Failed to create profile: %v", err)
		}
		authors = append(authors, editorial.Principal{ID: profile.ID, Role: role})
	}

	var categoryIDs []uuid.UUID
	for _, name := range seedCategories {
		category, err := svc.CreateCategory(ctx, editorial.CreateCategoryRequest{
			Name:        name,
			Description: faker.Sentence(8),
			Color:       faker.HexColor(),
		})
		if errors.Is(err, editorial.ErrConflict) {
			continue
		}
		if err != nil {
			log.Fatalf("Failed to create category: %v", err)
		}
		categoryIDs = append(categoryIDs, category.ID)
	}

	var tagIDs []uuid.UUID
	for i := 0; i < 12; i++ {
		tag, err := svc.CreateTag(ctx, editorial.CreateTagRequest{Name: faker.Noun()})
		if errors.Is(err, editorial.ErrConflict) {
			continue
		}
		if err != nil {
			log.Fatalf("Failed to create tag: %v", err)
		}
		tagIDs = append(tagIDs, tag.ID)
	}

	type seedPost struct {
		author   editorial.Principal
		req      editorial.CreatePostRequest
		archive  bool
		comments []editorial.CreateCommentRequest
	}
	statuses := []string{"draft", "published", "published", "published", "scheduled", "archived"}
	posts := make([]seedPost, n)
	for i := range posts {
		req := editorial.CreatePostRequest{
			Title:   faker.Sentence(faker.Number(3, 8)),
			Content: faker.Paragraph(4, 5, 12, "\n\n"),
			Excerpt: faker.Sentence(18),
			Status:  editorial.PostStatus(faker.RandomString(statuses)),
		}
		if len(categoryIDs) > 0 {
			id := categoryIDs[faker.Number(0, len(categoryIDs)-1)]
			req.CategoryID = &id
		}
		for _, id := range tagIDs {
			if faker.Number(0, 3) == 0 {
				req.TagIDs = append(req.TagIDs, id)
			}
		}
		sp := seedPost{author: authors[faker.Number(0, len(authors)-1)]}
		switch req.Status {
		case editorial.PostStatusScheduled:
			when := time.Now().Add(time.Duration(faker.Number(1, 72)) * time.Hour)
			req.ScheduledFor = &when
		case editorial.PostStatusArchived:
			// archived is only reachable from published
			req.Status = editorial.PostStatusPublished
			sp.archive = true
		}
		sp.req = req
		for c := faker.Number(0, 4); c > 0; c-- {
			sp.comments = append(sp.comments, editorial.CreateCommentRequest{
				AuthorName:  faker.Name(),
				AuthorEmail: faker.Email(),
				Content:     faker.Sentence(faker.Number(5, 20)),
				IPAddress:   faker.IPv4Address(),
				UserAgent:   faker.UserAgent(),
			})
		}
		posts[i] = sp
	}

	var created, comments atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i := range posts {
		sp := posts[i]
		approve := i%2 == 0
		g.Go(func() error {
			post, err := svc.CreatePost(gctx, sp.author, sp.req)
			if err != nil {
				return fmt.Errorf("create post %q: %w", sp.req.Title, err)
			}
			created.Add(1)

			if post.Status != editorial.PostStatusPublished {
				return nil
			}
			defer func() {
				if sp.archive {
					archived := editorial.PostStatusArchived
					if _, err := svc.UpdatePost(gctx, post.ID, editorial.UpdatePostRequest{Status: &archived}); err != nil {
						log.Printf("Failed to archive %s: %v", post.Slug, err)
					}
				}
			}()
			for _, req := range sp.comments {
				req.PostID = post.ID
				comment, err := svc.CreateComment(gctx, req)
				if err != nil {
					return fmt.Errorf("create comment: %w", err)
				}
				comments.Add(1)
				if approve {
					if _, err := svc.SetCommentStatus(gctx, comment.ID, editorial.CommentStatusApproved); err != nil {
						return fmt.Errorf("approve comment: %w", err)
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("Seeding stopped: %v", err)
	}

	fmt.Printf("Seeded %d profiles, %d categories, %d tags, %d posts, %d comments\n",
		len(authors), len(categoryIDs), len(tagIDs), created.Load(), comments.Load())
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
