package main

import (
	"log"

	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/rizalarfiyan/siakad-backend/internal/config"
	"github.com/rizalarfiyan/siakad-backend/internal/model"
	"github.com/rizalarfiyan/siakad-backend/internal/server"
	"github.com/rizalarfiyan/siakad-backend/internal/service"
	"github.com/rizalarfiyan/siakad-backend/pkg/database"
	"github.com/rizalarfiyan/siakad-backend/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect(cfg.DatabaseURL)
	if err := server.Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	if cfg.AppEnv == "development" {
		if err := seedSuperAdmin(db); err != nil {
			log.Fatalf("failed to seed super admin: %v", err)
		}
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		rdb = redis.NewClient(opts)
	} else {
		log.Println("REDIS_URL not set, rate limiting and live feed disabled")
	}

	var search service.SearchService
	if cfg.MeiliMasterKey != "" {
		client := meilisearch.New(cfg.MeiliSearchHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
		search = service.NewSearchService(client)
	} else {
		log.Println("MEILI_MASTER_KEY not set, student search disabled")
		search = service.NewSearchService(nil)
	}

	files, err := storage.NewCloudinaryStorage()
	if err != nil {
		log.Printf("Cloudinary not configured, submission uploads disabled: %v", err)
		files = nil
	}

	router := server.New(server.Deps{
		DB:     db,
		Redis:  rdb,
		Search: search,
		Files:  files,
		Cfg:    cfg,
	})

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

func seedSuperAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.User{}).
		Where("role = ?", model.RoleSuperAdmin).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Super admin already exists, skipping seed")
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &model.User{
		Name:     "Super Administrator",
		Username: "superadmin",
		Password: string(hashed),
		Role:     model.RoleSuperAdmin,
	}

	if err := db.Create(admin).Error; err != nil {
		return err
	}

	log.Println("Super admin seeded (username: superadmin, password: admin123)")
	return nil
}
