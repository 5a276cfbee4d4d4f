package database

import (
	"fmt"
	"log"

	"flagdojo_backend/internal/config"
	"flagdojo_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// 唯一索引冲突要翻译成 gorm.ErrDuplicatedKey，
		// 解题账本靠它区分"重复计分"和真正的存储故障
		TranslateError: true,
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")
	return db, nil
}

// MigrateTables 只迁移平台核心表；
// 插件私有表由各插件的 SetupStorage 自己负责
func MigrateTables(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.Challenge{},
		&model.Submission{},
		&model.Solve{},
	)
	if err != nil {
		return err
	}

	log.Println("Database migration completed")
	return nil
}
