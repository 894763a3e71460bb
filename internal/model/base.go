package model

import (
	"time"

	"github.com/google/uuid"
)

// BaseModel 仅追加的表使用，没有更新与软删除
type BaseModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	CreatedAt time.Time `json:"-"`
}

func GenerateUUID() string {
	return uuid.New().String()
}
