package achievement

import (
	"time"
)

type Achievement struct {
	ID          int64  `json:"id" db:"id"`
	Title       string `json:"title" db:"title"`
	Description string `json:"description" db:"description"`
	Icon        string `json:"icon" db:"icon"`
	Color       string `json:"color" db:"color"`
}

type UserAchievement struct {
	UserID        string    `json:"userId" db:"user_id"`
	AchievementID int64     `json:"achievementId" db:"achievement_id"`
	UnlockedAt    time.Time `json:"unlockedAt" db:"unlocked_at"`
}

// AchievementWithStatus is a catalog entry joined with the user's unlock row.
// UnlockedAt is nil when the user has not unlocked it.
type AchievementWithStatus struct {
	Achievement
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlockedAt"`
}
