package model

// UserSummary 按用户汇总的答题情况
type UserSummary struct {
	Name      string `json:"name"`
	Total     int    `json:"total"`
	Correct   int    `json:"correct"`
	Incorrect int    `json:"incorrect"`
}
