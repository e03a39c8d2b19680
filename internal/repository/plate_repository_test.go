package repository

import (
	"context"
	"strconv"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"lpr-service/internal/model"
)

func setupTestRepo(t *testing.T) *PlateRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&LicensePlate{}))

	return NewPlateRepository(db)
}

func seedRecord(t *testing.T, repo *PlateRepository, rec model.PlateRecord) model.PlateRecord {
	t.Helper()

	require.NoError(t, repo.Insert(context.Background(), &rec))
	return rec
}

func TestInsertAndGet(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	ms := 230
	rec := seedRecord(t, repo, model.PlateRecord{
		PlateNumber:    "30A-12345",
		Confidence:     95,
		ImageURL:       "/uploads/a.jpg",
		ProvinceCode:   "30",
		ProvinceName:   "Hà Nội",
		VehicleType:    "car",
		ProcessingTime: &ms,
	})

	require.NotEmpty(t, rec.UUID)
	require.False(t, rec.Date.IsZero())

	got, err := repo.GetByID(ctx, mustID(t, rec.UUID))
	require.NoError(t, err)
	assert.Equal(t, "30A-12345", got.PlateNumber)
	assert.Equal(t, 95, got.Confidence)
	assert.Equal(t, model.LevelSuccess, got.Level)
	assert.Equal(t, "Hà Nội", got.ProvinceName)
	require.NotNil(t, got.ProcessingTime)
	assert.Equal(t, 230, *got.ProcessingTime)
}

func TestPageFiltering(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	seedRecord(t, repo, model.PlateRecord{PlateNumber: "30A-11111", Confidence: 95, ImageURL: "a", ProvinceCode: "30"})
	seedRecord(t, repo, model.PlateRecord{PlateNumber: "43B-22222", Confidence: 80, ImageURL: "b", ProvinceCode: "43"})
	seedRecord(t, repo, model.PlateRecord{PlateNumber: "51C-33333", Confidence: 50, ImageURL: "c", ProvinceCode: "51"})

	t.Run("level filter translates to confidence ranges", func(t *testing.T) {
		page, err := repo.Page(ctx, model.RecordFilter{
			Levels: []model.Level{model.LevelSuccess},
		}, model.DefaultSort, 0, 10)

		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "30A-11111", page[0].PlateNumber)
	})

	t.Run("two levels widen the match", func(t *testing.T) {
		page, err := repo.Page(ctx, model.RecordFilter{
			Levels: []model.Level{model.LevelSuccess, model.LevelWarning},
		}, model.DefaultSort, 0, 10)

		require.NoError(t, err)
		assert.Len(t, page, 2)
	})

	t.Run("plate number substring is case insensitive", func(t *testing.T) {
		page, err := repo.Page(ctx, model.RecordFilter{
			PlateNumber: model.TextConstraint{Contains: "43b"},
		}, model.DefaultSort, 0, 10)

		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "43B-22222", page[0].PlateNumber)
	})

	t.Run("province set match", func(t *testing.T) {
		page, err := repo.Page(ctx, model.RecordFilter{
			ProvinceCode: model.TextConstraint{Any: []string{"30", "43"}},
		}, model.DefaultSort, 0, 10)

		require.NoError(t, err)
		assert.Len(t, page, 2)
	})

	t.Run("confidence range", func(t *testing.T) {
		min, max := 60, 90
		page, err := repo.Page(ctx, model.RecordFilter{
			Confidence: &model.NumberRange{Min: &min, Max: &max},
		}, model.DefaultSort, 0, 10)

		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, 80, page[0].Confidence)
	})

	t.Run("sort by confidence ascending", func(t *testing.T) {
		page, err := repo.Page(ctx, model.RecordFilter{}, model.SortSpec{Key: model.FieldConfidence}, 0, 10)

		require.NoError(t, err)
		require.Len(t, page, 3)
		assert.Equal(t, 50, page[0].Confidence)
		assert.Equal(t, 95, page[2].Confidence)
	})

	t.Run("pagination window", func(t *testing.T) {
		page, err := repo.Page(ctx, model.RecordFilter{}, model.SortSpec{Key: model.FieldConfidence}, 1, 1)

		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, 80, page[0].Confidence)
	})
}

func TestCounts(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	seedRecord(t, repo, model.PlateRecord{PlateNumber: "30A-11111", Confidence: 95, ImageURL: "a"})
	seedRecord(t, repo, model.PlateRecord{PlateNumber: "43B-22222", Confidence: 50, ImageURL: "b"})

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	filtered, err := repo.CountFiltered(ctx, model.RecordFilter{
		Levels: []model.Level{model.LevelError},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, filtered)
}

func TestDelete(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	rec := seedRecord(t, repo, model.PlateRecord{PlateNumber: "30A-11111", Confidence: 95, ImageURL: "a"})

	require.NoError(t, repo.Delete(ctx, mustID(t, rec.UUID)))

	_, err := repo.GetByID(ctx, mustID(t, rec.UUID))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = repo.Delete(ctx, 9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestModeration(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	rec := seedRecord(t, repo, model.PlateRecord{PlateNumber: "30A-11111", Confidence: 95, ImageURL: "a"})
	id := mustID(t, rec.UUID)

	t.Run("mark verified", func(t *testing.T) {
		require.NoError(t, repo.MarkVerified(ctx, id, "inspector"))

		got, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.True(t, got.IsVerified)
		assert.Equal(t, "inspector", got.VerifiedBy)
		require.NotNil(t, got.VerifiedAt)
	})

	t.Run("set violation", func(t *testing.T) {
		require.NoError(t, repo.SetViolation(ctx, id, []string{"speeding"}, "radar flagged"))

		got, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.True(t, got.HasViolation)
		assert.Equal(t, []string{"speeding"}, got.ViolationTypes)
		assert.Equal(t, "radar flagged", got.ViolationDescription)
	})

	t.Run("clearing violations resets the flag", func(t *testing.T) {
		require.NoError(t, repo.SetViolation(ctx, id, nil, ""))

		got, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.False(t, got.HasViolation)
	})

	t.Run("unknown id", func(t *testing.T) {
		assert.ErrorIs(t, repo.MarkVerified(ctx, 9999, "x"), gorm.ErrRecordNotFound)
	})
}

func mustID(t *testing.T, uuid string) int64 {
	t.Helper()

	id, err := strconv.ParseInt(uuid, 10, 64)
	require.NoError(t, err)
	return id
}
