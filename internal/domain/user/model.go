package user

import "time"

type User struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	Username  string    `gorm:"size:150;uniqueIndex;not null"`
	Email     *string   `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
