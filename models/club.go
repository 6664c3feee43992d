package models

import "time"

type Club struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	FoundedYear int       `json:"foundedYear,omitempty"`
	LogoURL     string    `json:"logoUrl,omitempty"`
	LogoKey     string    `json:"logoKey,omitempty"`
	PlayerCount int       `json:"playerCount"` // derived on read
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (c Club) EntityID() string { return c.ID }
