package bootstrap

import (
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Skedlyze/Skedlyze/internal/model"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Profile{},
		&model.Task{},
		&model.Achievement{},
		&model.UserAchievement{},
		&model.DefaultTask{},
	)
}

// SeedAchievements loads the achievement catalog on an empty table.
func SeedAchievements(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Achievement{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	catalog := []model.Achievement{
		{Name: "First Steps", Description: "Complete your first task", Type: model.AchievementTaskCompletion, RequirementValue: 1, ExperienceReward: 25},
		{Name: "Task Master", Description: "Complete 10 tasks", Type: model.AchievementTaskCompletion, RequirementValue: 10, ExperienceReward: 50},
		{Name: "Productivity Pro", Description: "Complete 50 tasks", Type: model.AchievementTaskCompletion, RequirementValue: 50, ExperienceReward: 100},
		{Name: "Task Champion", Description: "Complete 100 tasks", Type: model.AchievementTaskCompletion, RequirementValue: 100, ExperienceReward: 200},

		{Name: "Getting Started", Description: "Maintain a 3-day streak", Type: model.AchievementStreak, RequirementValue: 3, ExperienceReward: 30},
		{Name: "Week Warrior", Description: "Maintain a 7-day streak", Type: model.AchievementStreak, RequirementValue: 7, ExperienceReward: 75},
		{Name: "Fortnight Fighter", Description: "Maintain a 14-day streak", Type: model.AchievementStreak, RequirementValue: 14, ExperienceReward: 150},
		{Name: "Monthly Master", Description: "Maintain a 30-day streak", Type: model.AchievementStreak, RequirementValue: 30, ExperienceReward: 300},

		{Name: "Level 5", Description: "Reach level 5", Type: model.AchievementLevelUp, RequirementValue: 5, ExperienceReward: 50},
		{Name: "Level 10", Description: "Reach level 10", Type: model.AchievementLevelUp, RequirementValue: 10, ExperienceReward: 100},
		{Name: "Level 25", Description: "Reach level 25", Type: model.AchievementLevelUp, RequirementValue: 25, ExperienceReward: 250},
		{Name: "Level 50", Description: "Reach level 50", Type: model.AchievementLevelUp, RequirementValue: 50, ExperienceReward: 500},
	}

	if err := db.Create(&catalog).Error; err != nil {
		return err
	}

	log.Println("✅ Achievement catalog seeded")
	return nil
}

// SeedDefaultTasks loads the onboarding task templates on an empty table.
func SeedDefaultTasks(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.DefaultTask{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	templates := []model.DefaultTask{
		{Goal: "productivity", Title: "Plan your day", Description: stringPtr("Take 5 minutes to review your schedule and set priorities for the day"), Category: model.CategoryWork, Priority: model.PriorityHigh, ExperienceReward: 15, IsDaily: true, SortOrder: 1},
		{Goal: "productivity", Title: "Clear your workspace", Description: stringPtr("Organize your desk and digital files for better focus"), Category: model.CategoryWork, Priority: model.PriorityMedium, ExperienceReward: 10, IsDaily: true, SortOrder: 2},
		{Goal: "productivity", Title: "Review weekly goals", Description: stringPtr("Check your progress and adjust your weekly objectives"), Category: model.CategoryWork, Priority: model.PriorityMedium, ExperienceReward: 20, IsWeekly: true, SortOrder: 3},
		{Goal: "productivity", Title: "Batch similar tasks", Description: stringPtr("Group similar activities together to work more efficiently"), Category: model.CategoryWork, Priority: model.PriorityMedium, ExperienceReward: 12, IsDaily: true, SortOrder: 4},

		{Goal: "health", Title: "10-minute workout", Description: stringPtr("Quick exercise session - could be jogging, yoga, or bodyweight exercises"), Category: model.CategoryHealth, Priority: model.PriorityHigh, ExperienceReward: 20, IsDaily: true, SortOrder: 1},
		{Goal: "health", Title: "Drink 8 glasses of water", Description: stringPtr("Stay hydrated throughout the day"), Category: model.CategoryHealth, Priority: model.PriorityMedium, ExperienceReward: 8, IsDaily: true, SortOrder: 2},
		{Goal: "health", Title: "Take a 5-minute break", Description: stringPtr("Step away from your screen and stretch or walk around"), Category: model.CategoryHealth, Priority: model.PriorityMedium, ExperienceReward: 5, IsDaily: true, SortOrder: 3},
		{Goal: "health", Title: "Prepare a healthy meal", Description: stringPtr("Cook or prepare a nutritious meal for yourself"), Category: model.CategoryHealth, Priority: model.PriorityMedium, ExperienceReward: 15, IsDaily: true, SortOrder: 4},

		{Goal: "focus", Title: "Deep work session", Description: stringPtr("Work on a single task without interruptions for 25 minutes"), Category: model.CategoryWork, Priority: model.PriorityHigh, ExperienceReward: 25, IsDaily: true, SortOrder: 1},
		{Goal: "focus", Title: "Meditation session", Description: stringPtr("Practice mindfulness or meditation for 10 minutes"), Category: model.CategoryPersonal, Priority: model.PriorityMedium, ExperienceReward: 15, IsDaily: true, SortOrder: 2},
		{Goal: "focus", Title: "Eliminate distractions", Description: stringPtr("Turn off notifications and create a focused environment"), Category: model.CategoryWork, Priority: model.PriorityMedium, ExperienceReward: 8, IsDaily: true, SortOrder: 3},
		{Goal: "focus", Title: "Single-tasking practice", Description: stringPtr("Complete one task completely before moving to the next"), Category: model.CategoryWork, Priority: model.PriorityMedium, ExperienceReward: 12, IsDaily: true, SortOrder: 4},

		{Goal: "learning", Title: "Read for 20 minutes", Description: stringPtr("Read a book, article, or educational content"), Category: model.CategoryLearning, Priority: model.PriorityMedium, ExperienceReward: 18, IsDaily: true, SortOrder: 1},
		{Goal: "learning", Title: "Learn something new", Description: stringPtr("Watch a tutorial, take an online course, or practice a new skill"), Category: model.CategoryLearning, Priority: model.PriorityMedium, ExperienceReward: 20, IsDaily: true, SortOrder: 2},
		{Goal: "learning", Title: "Practice a skill", Description: stringPtr("Dedicate time to improving a specific skill or hobby"), Category: model.CategoryLearning, Priority: model.PriorityMedium, ExperienceReward: 15, IsDaily: true, SortOrder: 3},
		{Goal: "learning", Title: "Reflect on learning", Description: stringPtr("Write down what you learned today and how to apply it"), Category: model.CategoryLearning, Priority: model.PriorityLow, ExperienceReward: 10, IsDaily: true, SortOrder: 4},

		{Goal: "social", Title: "Connect with a friend", Description: stringPtr("Call, message, or meet up with a friend or family member"), Category: model.CategorySocial, Priority: model.PriorityMedium, ExperienceReward: 15, IsDaily: true, SortOrder: 1},
		{Goal: "social", Title: "Express gratitude", Description: stringPtr("Thank someone or write down three things you're grateful for"), Category: model.CategorySocial, Priority: model.PriorityLow, ExperienceReward: 8, IsDaily: true, SortOrder: 2},
		{Goal: "social", Title: "Join a group activity", Description: stringPtr("Participate in a community event, club, or group activity"), Category: model.CategorySocial, Priority: model.PriorityMedium, ExperienceReward: 20, IsWeekly: true, SortOrder: 3},
		{Goal: "social", Title: "Practice active listening", Description: stringPtr("Have a conversation where you focus entirely on the other person"), Category: model.CategorySocial, Priority: model.PriorityMedium, ExperienceReward: 12, IsDaily: true, SortOrder: 4},

		{Goal: "creativity", Title: "Creative expression", Description: stringPtr("Draw, write, paint, or engage in any creative activity"), Category: model.CategoryPersonal, Priority: model.PriorityMedium, ExperienceReward: 18, IsDaily: true, SortOrder: 1},
		{Goal: "creativity", Title: "Brainstorm ideas", Description: stringPtr("Spend time generating new ideas or solutions to problems"), Category: model.CategoryPersonal, Priority: model.PriorityMedium, ExperienceReward: 15, IsDaily: true, SortOrder: 2},
		{Goal: "creativity", Title: "Try something new", Description: stringPtr("Experiment with a new hobby, recipe, or activity"), Category: model.CategoryPersonal, Priority: model.PriorityMedium, ExperienceReward: 20, IsWeekly: true, SortOrder: 3},
		{Goal: "creativity", Title: "Creative problem solving", Description: stringPtr("Approach a challenge with an unconventional solution"), Category: model.CategoryPersonal, Priority: model.PriorityMedium, ExperienceReward: 16, IsDaily: true, SortOrder: 4},
	}

	for i := range templates {
		templates[i].IsActive = true
	}

	if err := db.Create(&templates).Error; err != nil {
		return err
	}

	log.Println("✅ Default task templates seeded")
	return nil
}

// SeedDevUser creates a password login account for local development.
func SeedDevUser(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.User{}).
		Where("email = ?", "dev@skedlyze.local").
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Dev user already exists, skipping seed")
		return nil
	}

	password := "dev12345"
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	devUser := model.User{
		GoogleID:     "dev-local-account",
		Email:        "dev@skedlyze.local",
		Name:         "Dev User",
		PasswordHash: string(hashedPasswordBytes),
		Preferences:  map[string]any{},
	}
	if err := db.Create(&devUser).Error; err != nil {
		return err
	}

	log.Println("✅ Dev user seeded successfully")
	log.Println("   Email: dev@skedlyze.local")
	log.Println("   Password: dev12345")

	return nil
}

func stringPtr(s string) *string {
	return &s
}
