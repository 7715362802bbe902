package healthtip

type HealthTip struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	ReadTime    string `json:"readTime"`
	ArticleID   string `json:"articleId"`
}
