package main

import (
	"context"
	"errors"
	"log"

	apperr "github.com/oskarkuder/lesson-notes-ai/internal/errors"

	"github.com/oskarkuder/lesson-notes-ai/internal/config"
	"github.com/oskarkuder/lesson-notes-ai/internal/db"
	"github.com/oskarkuder/lesson-notes-ai/internal/model"
	"github.com/oskarkuder/lesson-notes-ai/internal/repository"
)

const demoGoogleID = "seed-demo-google-id"

// Seeds a demo user with a couple of pre-generated notes so the history
// view has content on a fresh install.
func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()
	userRepo := repository.NewUserRepository(gormDB)
	noteRepo := repository.NewNoteRepository(gormDB)

	user, err := ensureDemoUser(ctx, userRepo)
	if err != nil {
		log.Fatalf("Failed to seed demo user: %v", err)
	}
	log.Printf("Demo user ready (id=%d, username=%s)", user.ID, user.Username)

	existing, err := noteRepo.ListByUser(ctx, user.ID)
	if err != nil {
		log.Fatalf("Failed to list demo notes: %v", err)
	}
	if len(existing) > 0 {
		log.Printf("Demo user already has %d notes, nothing to do", len(existing))
		return
	}

	created := 0
	for _, note := range demoNotes(user.ID) {
		n := note
		if err := noteRepo.Save(ctx, &n); err != nil {
			log.Fatalf("Failed to seed note %q: %v", n.Title, err)
		}
		created++
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - Notes created: %d", created)
}

// ensureDemoUser finds the demo user by its fixed Google identity, creating
// it on first run.
func ensureDemoUser(ctx context.Context, repo repository.UserRepository) (*model.User, error) {
	existing, err := repo.FindByGoogleID(ctx, demoGoogleID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	googleID := demoGoogleID
	user := &model.User{
		Username: "demo@example.com",
		Plan:     model.PlanFree,
		GoogleID: &googleID,
	}
	if err := repo.Create(ctx, user); err != nil {
		if errors.Is(err, apperr.ErrUsernameTaken) {
			return nil, errors.New("demo username taken by a non-demo user")
		}
		return nil, err
	}
	return user, nil
}

func demoNotes(userID uint) []model.Note {
	return []model.Note{
		{
			UserID:  userID,
			Title:   "Photosynthesis Basics",
			Summary: "An overview of how plants convert light energy into chemical energy, covering the light-dependent reactions and the Calvin cycle.",
			KeyTopics: model.KeyTopics{
				{Topic: "Light-dependent reactions", Points: []string{"Occur in thylakoid membranes", "Produce ATP and NADPH"}},
				{Topic: "Calvin cycle", Points: []string{"Fixes carbon dioxide into sugar", "Runs in the stroma"}},
			},
			Transcription: "Today we are going to talk about photosynthesis, the process by which plants turn sunlight into food...",
			AudioMIME:     "audio/webm",
		},
		{
			UserID:  userID,
			Title:   "Introduction to the French Revolution",
			Summary: "The social and economic causes of the 1789 revolution, the fall of the Bastille, and the shift from monarchy to republic.",
			KeyTopics: model.KeyTopics{
				{Topic: "Causes", Points: []string{"Financial crisis of the monarchy", "Estates system inequality"}},
				{Topic: "Key events", Points: []string{"Storming of the Bastille, July 1789", "Declaration of the Rights of Man"}},
			},
			Transcription: "Let's begin with the conditions in France at the end of the eighteenth century...",
			AudioMIME:     "audio/webm",
		},
	}
}
