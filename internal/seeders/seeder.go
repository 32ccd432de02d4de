package seeders

import (
	"tastebook/backend/internal/models"
	tblog "tastebook/backend/pkg/log"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// demoPost holds the seed data for one example post.
type demoPost struct {
	Title       string
	Ingredients string
	Steps       string
	Time        string
	Serves      string
	Calories    string
}

func demoPosts() []demoPost {
	return []demoPost{
		{
			Title:       "Weeknight Tomato Pasta",
			Ingredients: "400g spaghetti\n2 tins chopped tomatoes\n3 cloves garlic\nolive oil\nbasil",
			Steps:       "Cook the pasta.\nSoften the garlic in oil, add the tomatoes and simmer 15 minutes.\nToss with the pasta and tear over the basil.",
			Time:        "25 minutes",
			Serves:      "4",
			Calories:    "520",
		},
		{
			Title:       "Overnight Oats",
			Ingredients: "50g rolled oats\n150ml milk\n1 tbsp chia seeds\nhoney\nberries",
			Steps:       "Stir everything together in a jar.\nRefrigerate overnight.\nTop with berries before serving.",
			Time:        "5 minutes",
			Serves:      "1",
			Calories:    "340",
		},
	}
}

// SeedInitialData populates the database with a demo account and a couple of
// example posts. Each step checks for existing data before inserting so the
// seeder is safe to run repeatedly.
func SeedInitialData(db *gorm.DB) error {
	log := tblog.L.Named("SeedInitialData")
	log.Info("Seeding initial data...")

	user, err := seedDemoUser(db)
	if err != nil {
		log.Error("Failed to seed demo user", zap.Error(err))
		return err
	}

	if err := seedDemoPosts(db, user); err != nil {
		log.Error("Failed to seed demo posts", zap.Error(err))
		return err
	}

	log.Info("Initial data seeding completed successfully.")
	return nil
}

func seedDemoUser(db *gorm.DB) (*models.User, error) {
	var user models.User
	err := db.Where("username = ?", "demo").First(&user).Error
	if err == nil {
		return &user, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user = models.User{
		Username:     "demo",
		Email:        "demo@example.com",
		PasswordHash: string(hashedPassword),
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func seedDemoPosts(db *gorm.DB, user *models.User) error {
	for _, p := range demoPosts() {
		var count int64
		if err := db.Model(&models.Post{}).
			Where("user_id = ? AND title = ?", user.ID, p.Title).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		post := models.Post{
			UserID:      user.ID,
			Title:       p.Title,
			Ingredients: p.Ingredients,
			Steps:       p.Steps,
			Time:        p.Time,
			Serves:      p.Serves,
			Calories:    p.Calories,
		}
		if err := db.Create(&post).Error; err != nil {
			return err
		}
	}
	return nil
}
