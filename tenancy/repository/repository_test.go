package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/brokerdesk/bd-wap/tenancy/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq int

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDBSeq++
	dsn := fmt.Sprintf("file:tenancy_test_%d?mode=memory&cache=shared", testDBSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestTenantGormRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewTenantGormRepository(db)
	require.NoError(t, repo.InitSchema(ctx))

	tenant := &domain.Tenant{Name: "Desk One", Plan: domain.PlanPro}
	require.NoError(t, repo.Create(ctx, tenant))
	require.NotZero(t, tenant.ID)

	got, err := repo.GetByID(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, "Desk One", got.Name)
	assert.Equal(t, domain.PlanPro, got.Plan)

	require.NoError(t, repo.UpdatePlan(ctx, tenant.ID, domain.PlanStarter))
	got, err = repo.GetByID(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanStarter, got.Plan)

	_, err = repo.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrTenantNotFound)

	err = repo.UpdatePlan(ctx, 9999, domain.PlanPro)
	assert.ErrorIs(t, err, domain.ErrTenantNotFound)
}

func TestFlagGormRepository_UpsertAndRead(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewFlagGormRepository(db)
	require.NoError(t, repo.InitSchema(ctx))

	// Absent row reads as disabled.
	enabled, err := repo.IsEnabled(ctx, 1, domain.FeatureRiskRadar)
	require.NoError(t, err)
	assert.False(t, enabled)

	// Set creates, then overwrites without duplicating the row.
	require.NoError(t, repo.Set(ctx, 1, domain.FeatureRiskRadar, true))
	require.NoError(t, repo.Set(ctx, 1, domain.FeatureRiskRadar, true))
	require.NoError(t, repo.Set(ctx, 1, domain.FeatureRiskRadar, false))

	flags, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, flags, 1)
	assert.False(t, flags[domain.FeatureRiskRadar])

	// Another tenant's flags are invisible.
	require.NoError(t, repo.Set(ctx, 2, domain.FeatureMarketBrief, true))
	flags, err = repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.NotContains(t, flags, domain.FeatureMarketBrief)
}

func TestFlagGormRepository_SetMany(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewFlagGormRepository(db)
	require.NoError(t, repo.InitSchema(ctx))

	require.NoError(t, repo.SetMany(ctx, 7, domain.DefaultFlags()))

	flags, err := repo.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultFlags(), flags)
}

func TestMessageLogGormRepository_AppendAndStats(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewMessageLogGormRepository(db)
	require.NoError(t, repo.InitSchema(ctx))

	last, err := repo.LastByTenant(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, last)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Append(ctx, &domain.MessageLog{
			TenantID:  1,
			From:      "15550001111",
			Direction: domain.DirectionInbound,
			Body:      fmt.Sprintf("msg %d", i),
		}))
	}

	count, err := repo.CountByTenant(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	last, err = repo.LastByTenant(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, last)

	logs, err := repo.ListByTenant(ctx, 1, 2)
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

func TestMessageLogGormRepository_ListByContact(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewMessageLogGormRepository(db)
	require.NoError(t, repo.InitSchema(ctx))

	// A conversation is both directions with the same contact number.
	require.NoError(t, repo.Append(ctx, &domain.MessageLog{
		TenantID: 1, From: "15550001111", To: "line", Direction: domain.DirectionInbound, Body: "hi",
	}))
	require.NoError(t, repo.Append(ctx, &domain.MessageLog{
		TenantID: 1, From: "line", To: "15550001111", Direction: domain.DirectionOutbound, Body: "hello back",
	}))
	require.NoError(t, repo.Append(ctx, &domain.MessageLog{
		TenantID: 1, From: "15550002222", To: "line", Direction: domain.DirectionInbound, Body: "other contact",
	}))
	require.NoError(t, repo.Append(ctx, &domain.MessageLog{
		TenantID: 2, From: "15550001111", To: "line", Direction: domain.DirectionInbound, Body: "other tenant",
	}))

	logs, err := repo.ListByContact(ctx, 1, "15550001111", 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "hi", logs[0].Body)
	assert.Equal(t, "hello back", logs[1].Body)
}

func TestMessageLogGormRepository_ListByContactKeepsNewestTail(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewMessageLogGormRepository(db)
	require.NoError(t, repo.InitSchema(ctx))

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Append(ctx, &domain.MessageLog{
			TenantID:  1,
			From:      "15550001111",
			To:        "line",
			Direction: domain.DirectionInbound,
			Body:      fmt.Sprintf("msg %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	// The limit must keep the newest rows, in chronological order.
	logs, err := repo.ListByContact(ctx, 1, "15550001111", 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "msg 3", logs[0].Body)
	assert.Equal(t, "msg 4", logs[1].Body)
}
