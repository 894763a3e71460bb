package repository

import (
	"context"
	"math_quiz_backend/internal/model"

	"gorm.io/gorm"
)

// GormResultsRepository MySQL 后端，表结构即表头
type GormResultsRepository struct {
	DB *gorm.DB
}

func NewGormResultsRepository(db *gorm.DB) *GormResultsRepository {
	return &GormResultsRepository{DB: db}
}

func (r *GormResultsRepository) Init(ctx context.Context) error {
	return r.DB.WithContext(ctx).AutoMigrate(&model.AnswerRecord{})
}

func (r *GormResultsRepository) Append(ctx context.Context, records []model.AnswerRecord) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]model.AnswerRecord, len(records))
	copy(rows, records)
	return r.DB.WithContext(ctx).Create(&rows).Error
}

func (r *GormResultsRepository) All(ctx context.Context) ([]model.AnswerRecord, error) {
	var records []model.AnswerRecord
	err := r.DB.WithContext(ctx).Order("id ASC").Find(&records).Error
	return records, err
}

func (r *GormResultsRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
