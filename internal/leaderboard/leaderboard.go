package leaderboard

type LeaderboardEntry struct {
	UserID   string `json:"userId" db:"user_id"`
	Username string `json:"username" db:"username"`
	Name     string `json:"name" db:"name"`
	ImageURL string `json:"imageUrl" db:"image_url"`
	Points   int    `json:"points" db:"points"`
	Streak   int    `json:"streak" db:"streak"`
	Rank     int    `json:"rank" db:"rank"`
}

type Leaderboard struct {
	Entries    []*LeaderboardEntry `json:"entries"`
	TotalUsers int                 `json:"totalUsers"`
}

// TopSize is the number of entries on the public leaderboard.
const TopSize = 10
