package testhelpers

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/platefeed/backend/internal/database"
	"github.com/platefeed/backend/internal/models"
)

// NewTestDB opens a private in-memory SQLite database with the full schema.
// cache=shared keeps every pooled connection on the same database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb_%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

// CreateUser inserts a user with a throwaway password hash.
func CreateUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()

	user := models.User{
		Email:        fmt.Sprintf("%s@example.com", username),
		Username:     username,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "x",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateIngredient inserts a catalog ingredient.
func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) models.Ingredient {
	t.Helper()

	ingredient := models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(&ingredient).Error; err != nil {
		t.Fatalf("failed to create test ingredient: %v", err)
	}
	return ingredient
}

// CreateTag inserts a catalog tag.
func CreateTag(t *testing.T, db *gorm.DB, name, color, slug string) models.Tag {
	t.Helper()

	tag := models.Tag{Name: name, Color: color, Slug: slug}
	if err := db.Create(&tag).Error; err != nil {
		t.Fatalf("failed to create test tag: %v", err)
	}
	return tag
}

// FakeMediaStore keeps stored blobs in memory and resolves keys to
// deterministic URLs.
type FakeMediaStore struct {
	Objects map[string][]byte
}

func NewFakeMediaStore() *FakeMediaStore {
	return &FakeMediaStore{Objects: make(map[string][]byte)}
}

func (f *FakeMediaStore) Store(ctx context.Context, data []byte, contentType string) (string, error) {
	key := fmt.Sprintf("recipes/%s", uuid.New().String())
	f.Objects[key] = data
	return key, nil
}

func (f *FakeMediaStore) ResolveURL(ctx context.Context, key string) (string, error) {
	return "https://media.test/" + key, nil
}
