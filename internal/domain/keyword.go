package domain

import "time"

type Keyword struct {
	ID        uint      `json:"id"`
	Keyword   string    `json:"keyword"`
	Category  *string   `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}
