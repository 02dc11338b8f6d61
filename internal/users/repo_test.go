package users

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mzielinski/usermgmt-backend/pkg/db/models"
	"github.com/mzielinski/usermgmt-backend/pkg/pagination"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, conn.AutoMigrate(&models.User{}, &models.Email{}))
	return conn
}

func seedUser(t *testing.T, conn *gorm.DB, firstName, lastName, phone string, addresses ...string) *models.User {
	t.Helper()

	user := &models.User{FirstName: firstName, LastName: lastName, PhoneNumber: phone}
	require.NoError(t, conn.Create(user).Error)

	for i, addr := range addresses {
		email := &models.Email{UserID: user.ID, Address: addr, IsPrimary: i == 0}
		require.NoError(t, conn.Create(email).Error)
	}
	return user
}

func TestRepositoryFindByID(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	seeded := seedUser(t, conn, "Anna", "Nowak", "+48123456789", "anna@example.com", "anna.work@example.com")

	user, err := repo.FindByID(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anna", user.FirstName)
	require.Len(t, user.Emails, 2)
	assert.Equal(t, "anna@example.com", user.Emails[0].Address)
	assert.True(t, user.Emails[0].IsPrimary)
	assert.Equal(t, "anna.work@example.com", user.Emails[1].Address)

	_, err = repo.FindByID(ctx, seeded.ID+1000)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListSearch(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	seedUser(t, conn, "Anna", "Nowak", "+48111111111")
	seedUser(t, conn, "Jan", "Kowalski", "+48222222222")
	seedUser(t, conn, "Joanna", "Wiśniewska", "+48333333333")

	rows, total, err := repo.List(ctx, ListQuery{
		Search: "an",
		Sort:   "id",
		Order:  "asc",
		Page:   pagination.Params{Page: 1, PerPage: 10},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, rows, 3)

	rows, total, err = repo.List(ctx, ListQuery{
		Search: "kowal",
		Sort:   "id",
		Order:  "asc",
		Page:   pagination.Params{Page: 1, PerPage: 10},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, rows, 1)
	assert.Equal(t, "Jan", rows[0].FirstName)

	rows, total, err = repo.List(ctx, ListQuery{
		Search: "48333",
		Page:   pagination.Params{Page: 1, PerPage: 10},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, rows, 1)
	assert.Equal(t, "Joanna", rows[0].FirstName)
}

func TestRepositoryListPagination(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		seedUser(t, conn, fmt.Sprintf("User%d", i), "Test", fmt.Sprintf("+4860000000%d", i))
	}

	rows, total, err := repo.List(ctx, ListQuery{
		Sort:  "id",
		Order: "asc",
		Page:  pagination.Params{Page: 2, PerPage: 2},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, rows, 2)
	assert.Equal(t, "User2", rows[0].FirstName)
	assert.Equal(t, "User3", rows[1].FirstName)
}

func TestRepositoryListSortWhitelist(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	seedUser(t, conn, "Zofia", "Adam", "+48111111111")
	seedUser(t, conn, "Adam", "Zofia", "+48222222222")

	// unknown sort column falls back to created_at instead of leaking
	// user input into the ORDER BY clause
	rows, _, err := repo.List(ctx, ListQuery{
		Sort:  "drop table users",
		Order: "asc",
		Page:  pagination.Params{Page: 1, PerPage: 10},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	rows, _, err = repo.List(ctx, ListQuery{
		Sort:  "first_name",
		Order: "asc",
		Page:  pagination.Params{Page: 1, PerPage: 10},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Adam", rows[0].FirstName)
	assert.Equal(t, "Zofia", rows[1].FirstName)
}

func TestRepositoryUpdateAttributes(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	seeded := seedUser(t, conn, "Anna", "Nowak", "+48123456789")

	err := repo.UpdateAttributes(ctx, seeded.ID, map[string]any{"first_name": "Maria"})
	require.NoError(t, err)

	user, err := repo.FindByID(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria", user.FirstName)
	assert.Equal(t, "Nowak", user.LastName)

	// empty attribute map is a no-op
	require.NoError(t, repo.UpdateAttributes(ctx, seeded.ID, nil))
}

func TestRepositorySoftDelete(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	seeded := seedUser(t, conn, "Anna", "Nowak", "+48123456789")

	require.NoError(t, repo.SoftDelete(ctx, seeded.ID))

	_, err := repo.FindByID(ctx, seeded.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// row survives with deleted_at set
	var count int64
	require.NoError(t, conn.Unscoped().Model(&models.User{}).Where("id = ?", seeded.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRepositoryDeleteUserEmailScopesByOwner(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	owner := seedUser(t, conn, "Anna", "Nowak", "+48111111111", "anna@example.com")
	other := seedUser(t, conn, "Jan", "Kowalski", "+48222222222", "jan@example.com")

	ownerEmails, err := repo.FindUserEmails(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, ownerEmails, 1)

	// other user's id with owner's email id deletes nothing
	affected, err := repo.DeleteUserEmail(ctx, other.ID, ownerEmails[0].ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)

	affected, err = repo.DeleteUserEmail(ctx, owner.ID, ownerEmails[0].ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	remaining, err := repo.FindUserEmails(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestRepositoryDeleteEmailsForUser(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	seeded := seedUser(t, conn, "Anna", "Nowak", "+48123456789", "a@example.com", "b@example.com", "c@example.com")

	require.NoError(t, repo.DeleteEmailsForUser(ctx, seeded.ID))

	var count int64
	require.NoError(t, conn.Model(&models.Email{}).Where("user_id = ?", seeded.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestRepositoryEmailUniquePerUser(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	seeded := seedUser(t, conn, "Anna", "Nowak", "+48123456789", "anna@example.com")

	err := repo.CreateEmail(ctx, &models.Email{UserID: seeded.ID, Address: "anna@example.com"})
	require.Error(t, err)

	// same address under a second user is allowed
	other := seedUser(t, conn, "Jan", "Kowalski", "+48222222222")
	err = repo.CreateEmail(ctx, &models.Email{UserID: other.ID, Address: "anna@example.com"})
	require.NoError(t, err)
}
