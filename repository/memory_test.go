package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerniceZTT/salesiq/models"
)

func TestMemoryStoreSeeded(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	customers, err := s.ListCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 5)
	assert.Equal(t, "Acme Corp", customers[0].Name)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)

	monthly, err := s.MonthlyMetrics(ctx)
	require.NoError(t, err)
	assert.Len(t, monthly, 12)
}

func TestMemoryStoreCustomerCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewEmptyMemoryStore()

	_, err := s.GetCustomer(ctx, "x")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SaveCustomer(ctx, models.Customer{ID: "a", Name: "First"}))
	require.NoError(t, s.SaveCustomer(ctx, models.Customer{ID: "b", Name: "Second"}))
	require.NoError(t, s.SaveCustomer(ctx, models.Customer{ID: "a", Name: "First renamed"}))

	list, err := s.ListCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	// 更新不改变顺序
	assert.Equal(t, "First renamed", list[0].Name)

	// 返回的是副本
	got, err := s.GetCustomer(ctx, "b")
	require.NoError(t, err)
	got.Name = "mutated"
	again, _ := s.GetCustomer(ctx, "b")
	assert.Equal(t, "Second", again.Name)

	require.NoError(t, s.DeleteCustomer(ctx, "a"))
	assert.ErrorIs(t, s.DeleteCustomer(ctx, "a"), ErrNotFound)
	list, _ = s.ListCustomers(ctx)
	assert.Len(t, list, 1)
}

func TestMemoryStoreUpdateAfterDelete(t *testing.T) {
	ctx := context.Background()
	s := NewEmptyMemoryStore()
	require.NoError(t, s.SaveCustomer(ctx, models.Customer{ID: "c", Name: "Acme"}))
	require.NoError(t, s.SaveUser(ctx, models.User{ID: "u", Name: "Anna", IsActive: true}))

	customer, err := s.UpdateCustomer(ctx, "c", func(c *models.Customer) error {
		c.Segment = models.SegmentHighValue
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, models.SegmentHighValue, customer.Segment)

	user, err := s.UpdateUser(ctx, "u", func(u *models.User) error {
		u.IsActive = false
		return nil
	})
	require.NoError(t, err)
	assert.False(t, user.IsActive)

	// 删除后更新不会重新创建记录
	require.NoError(t, s.DeleteCustomer(ctx, "c"))
	require.NoError(t, s.DeleteUser(ctx, "u"))
	_, err = s.UpdateCustomer(ctx, "c", func(c *models.Customer) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.UpdateUser(ctx, "u", func(u *models.User) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)

	customers, _ := s.ListCustomers(ctx)
	assert.Empty(t, customers)
	users, _ := s.ListUsers(ctx)
	assert.Empty(t, users)
}

func TestMemoryStoreUpdateUpload(t *testing.T) {
	ctx := context.Background()
	s := NewEmptyMemoryStore()
	require.NoError(t, s.SaveUpload(ctx, models.FileUpload{ID: "u", Status: models.UploadUploading}))

	updated, err := s.UpdateUpload(ctx, "u", func(u *models.FileUpload) error {
		u.Progress = 50
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 50, updated.Progress)

	boom := errors.New("boom")
	_, err = s.UpdateUpload(ctx, "u", func(u *models.FileUpload) error {
		u.Progress = 99
		return boom
	})
	assert.ErrorIs(t, err, boom)
	current, _ := s.GetUpload(ctx, "u")
	assert.Equal(t, 50, current.Progress)

	_, err = s.UpdateUpload(ctx, "missing", func(*models.FileUpload) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreSalesByUpload(t *testing.T) {
	ctx := context.Background()
	s := NewEmptyMemoryStore()
	require.NoError(t, s.AddSalesRecords(ctx, []models.SalesRecord{
		{ID: "1", UploadID: "a"}, {ID: "2", UploadID: "b"}, {ID: "3", UploadID: "a"},
	}))
	require.NoError(t, s.DeleteSalesRecordsByUpload(ctx, "a"))
	records, _ := s.ListSalesRecords(ctx)
	require.Len(t, records, 1)
	assert.Equal(t, "2", records[0].ID)
}

func TestMemoryStoreOperationLogs(t *testing.T) {
	ctx := context.Background()
	s := NewEmptyMemoryStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < maxOperationLogs+5; i++ {
		require.NoError(t, s.AppendOperationLog(ctx, models.OperationLog{Path: "/x", OperationTime: base.Add(time.Duration(i) * time.Second)}))
	}
	logs, err := s.ListOperationLogs(ctx, 3)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.True(t, logs[0].OperationTime.After(logs[1].OperationTime))

	all, _ := s.ListOperationLogs(ctx, 0)
	assert.Len(t, all, maxOperationLogs)
}

func TestMemoryStoreConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	s := NewEmptyMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.SaveUser(ctx, models.User{ID: string(rune('A' + i)), Name: "u"})
			_, _ = s.ListUsers(ctx)
		}(i)
	}
	wg.Wait()
	users, _ := s.ListUsers(ctx)
	assert.Len(t, users, 50)
}

func TestNotificationSettingsAreCopied(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	settings, err := s.GetNotificationSettings(ctx)
	require.NoError(t, err)
	settings.Metrics[0] = "changed"

	again, _ := s.GetNotificationSettings(ctx)
	assert.Equal(t, "revenue", again.Metrics[0])
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, isRetryableError(errors.New("dial tcp: connection refused")))
	assert.False(t, isRetryableError(errors.New("duplicate key")))
	assert.False(t, isRetryableError(ErrNotFound))
}
