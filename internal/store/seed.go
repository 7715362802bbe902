package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

type seedChallenge struct {
	title       string
	description string
	duration    int
	category    string
	difficulty  string
	tasks       [][2]string
}

var seedChallenges = []seedChallenge{
	{
		title:       "14-Day Sugar Detox",
		description: "Break free from sugar addiction with our 14-day guided program",
		duration:    14,
		category:    "detox",
		difficulty:  "medium",
		tasks: [][2]string{
			{"Log all meals in food journal", "Record everything you eat today and note any sugar cravings"},
			{"Drink 8 glasses of water", "Stay hydrated to help manage cravings"},
			{"Read ingredient labels", "Check for hidden sugars in packaged foods"},
			{"Prepare a sugar-free snack", "Try one of our suggested recipes"},
		},
	},
	{
		title:       "Healthy Breakfast Challenge",
		description: "Start your day right with 7 days of nutritious breakfast recipes",
		duration:    7,
		category:    "nutrition",
		difficulty:  "easy",
		tasks: [][2]string{
			{"Eat protein with breakfast", "Include eggs, Greek yogurt, or another protein source"},
			{"Include a serving of fruit", "Add fresh fruit to your breakfast"},
			{"Skip sugary breakfast drinks", "Choose water, unsweetened tea, or black coffee"},
		},
	},
	{
		title:       "Mindful Eating Workshop",
		description: "Learn to be present and aware during meals with daily mindfulness exercises",
		duration:    10,
		category:    "mindfulness",
		difficulty:  "easy",
		tasks: [][2]string{
			{"Eat without screens", "Focus only on your food during mealtime"},
			{"Practice the 5-senses exercise", "Notice the appearance, smell, texture, sound, and taste of your food"},
			{"Rate your hunger before eating", "Use a scale of 1-10 to gauge your hunger level"},
		},
	},
}

var seedTips = [][5]string{
	{"Meal Prep Essentials", "Save time and stick to your nutrition goals with these meal prep strategies.", "https://images.unsplash.com/photo-1512003867696-6d5ce6835040", "5 min", "meal-prep-101"},
	{"Natural Sugar Alternatives", "Discover healthier ways to satisfy your sweet tooth without refined sugar.", "https://images.unsplash.com/photo-1563729784474-d77dbb933a9e", "4 min", "sugar-alternatives"},
	{"Mindfulness Meditation Guide", "Simple techniques to incorporate mindfulness into your daily routine.", "https://images.unsplash.com/photo-1506126613408-eca07ce68773", "7 min", "mindfulness-basics"},
}

// seedAchievements: title, description, icon, color.
var seedAchievements = [][4]string{
	{"Sugar-Free Week", "Complete 7 consecutive days without consuming added sugar", "trophy", "gold"},
	{"Meal Prep Master", "Prepare meals in advance for 5 days in a row", "utensils", "green"},
	{"Early Bird", "Log breakfast before 9am for 10 days", "sunrise", "blue"},
}

// Seed inserts the catalog when the challenges table is empty.
func Seed(ctx context.Context, db DB) (bool, error) {
	var n int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM challenges`).Scan(&n); err != nil {
		return false, fmt.Errorf("count challenges: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	err := WithTx(ctx, db, func(tx pgx.Tx) error {
		for _, c := range seedChallenges {
			var id int64
			err := tx.QueryRow(ctx, `
				INSERT INTO challenges (title, description, duration, category, difficulty)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING id`,
				c.title, c.description, c.duration, c.category, c.difficulty,
			).Scan(&id)
			if err != nil {
				return fmt.Errorf("seed challenge %q: %w", c.title, err)
			}
			for pos, t := range c.tasks {
				if _, err := tx.Exec(ctx,
					`INSERT INTO tasks (challenge_id, title, description, position) VALUES ($1, $2, $3, $4)`,
					id, t[0], t[1], pos,
				); err != nil {
					return fmt.Errorf("seed task %q: %w", t[0], err)
				}
			}
		}
		for _, t := range seedTips {
			if _, err := tx.Exec(ctx, `
				INSERT INTO health_tips (title, description, image_url, read_time, article_id)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (title) DO NOTHING`,
				t[0], t[1], t[2], t[3], t[4],
			); err != nil {
				return fmt.Errorf("seed health tip %q: %w", t[0], err)
			}
		}
		for _, a := range seedAchievements {
			if _, err := tx.Exec(ctx, `
				INSERT INTO achievements (title, description, icon, color)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (title) DO NOTHING`,
				a[0], a[1], a[2], a[3],
			); err != nil {
				return fmt.Errorf("seed achievement %q: %w", a[0], err)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
