package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/BerniceZTT/salesiq/models"
)

// table 保持插入顺序的内存表
type table[T any] struct {
	order []string
	rows  map[string]T
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]T)}
}

func (t *table[T]) list() []T {
	result := make([]T, 0, len(t.order))
	for _, id := range t.order {
		result = append(result, t.rows[id])
	}
	return result
}

func (t *table[T]) get(id string) (T, bool) {
	row, ok := t.rows[id]
	return row, ok
}

func (t *table[T]) put(id string, row T) {
	if _, exists := t.rows[id]; !exists {
		t.order = append(t.order, id)
	}
	t.rows[id] = row
}

func (t *table[T]) remove(id string) bool {
	if _, exists := t.rows[id]; !exists {
		return false
	}
	delete(t.rows, id)
	for i, existing := range t.order {
		if existing == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// MemoryStore 基于内存的存储，进程重启后数据丢失
type MemoryStore struct {
	mu            sync.RWMutex
	customers     *table[models.Customer]
	users         *table[models.User]
	integrations  *table[models.APIIntegration]
	uploads       *table[models.FileUpload]
	sales         []models.SalesRecord
	monthly       []models.MonthlyMetric
	regions       []models.RegionMetric
	notifications models.NotificationSettings
	operationLogs []models.OperationLog
}

// maxOperationLogs 内存中保留的操作日志条数
const maxOperationLogs = 1000

// NewMemoryStore 创建内存存储并加载示例数据
func NewMemoryStore() *MemoryStore {
	s := NewEmptyMemoryStore()
	seed := SeedData()
	for _, c := range seed.Customers {
		s.customers.put(c.ID, c)
	}
	for _, u := range seed.Users {
		s.users.put(u.ID, u)
	}
	for _, i := range seed.Integrations {
		s.integrations.put(i.ID, i)
	}
	s.sales = append(s.sales, seed.Sales...)
	s.monthly = seed.Monthly
	s.regions = seed.Regions
	s.notifications = seed.Notifications
	return s
}

// NewEmptyMemoryStore 创建不含任何数据的内存存储
func NewEmptyMemoryStore() *MemoryStore {
	return &MemoryStore{
		customers:    newTable[models.Customer](),
		users:        newTable[models.User](),
		integrations: newTable[models.APIIntegration](),
		uploads:      newTable[models.FileUpload](),
	}
}

func (s *MemoryStore) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.customers.list(), nil
}

func (s *MemoryStore) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (s *MemoryStore) SaveCustomer(ctx context.Context, customer models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers.put(customer.ID, customer)
	return nil
}

func (s *MemoryStore) UpdateCustomer(ctx context.Context, id string, update func(*models.Customer) error) (*models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	if err := update(&c); err != nil {
		return nil, err
	}
	s.customers.put(id, c)
	return &c, nil
}

func (s *MemoryStore) DeleteCustomer(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.customers.remove(id) {
		return ErrNotFound
	}
	return nil
}

func (s *MemoryStore) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users.list(), nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) SaveUser(ctx context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users.put(user.ID, user)
	return nil
}

func (s *MemoryStore) UpdateUser(ctx context.Context, id string, update func(*models.User) error) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	if err := update(&u); err != nil {
		return nil, err
	}
	s.users.put(id, u)
	return &u, nil
}

func (s *MemoryStore) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.users.remove(id) {
		return ErrNotFound
	}
	return nil
}

func (s *MemoryStore) ListIntegrations(ctx context.Context) ([]models.APIIntegration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.integrations.list(), nil
}

func (s *MemoryStore) GetIntegration(ctx context.Context, id string) (*models.APIIntegration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.integrations.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return &i, nil
}

func (s *MemoryStore) SaveIntegration(ctx context.Context, integration models.APIIntegration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.integrations.put(integration.ID, integration)
	return nil
}

// UpdateIntegration 在写锁内执行修改，update 返回错误时不保存
func (s *MemoryStore) UpdateIntegration(ctx context.Context, id string, update func(*models.APIIntegration) error) (*models.APIIntegration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.integrations.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	if err := update(&i); err != nil {
		return nil, err
	}
	s.integrations.put(id, i)
	return &i, nil
}

func (s *MemoryStore) DeleteIntegration(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.integrations.remove(id) {
		return ErrNotFound
	}
	return nil
}

func (s *MemoryStore) ListUploads(ctx context.Context) ([]models.FileUpload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.uploads.list(), nil
}

func (s *MemoryStore) GetUpload(ctx context.Context, id string) (*models.FileUpload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.uploads.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) SaveUpload(ctx context.Context, upload models.FileUpload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads.put(upload.ID, upload)
	return nil
}

// UpdateUpload 在写锁内执行修改，update 返回错误时不保存
func (s *MemoryStore) UpdateUpload(ctx context.Context, id string, update func(*models.FileUpload) error) (*models.FileUpload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.uploads.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	if err := update(&u); err != nil {
		return nil, err
	}
	s.uploads.put(id, u)
	return &u, nil
}

func (s *MemoryStore) DeleteUpload(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.uploads.remove(id) {
		return ErrNotFound
	}
	return nil
}

func (s *MemoryStore) AddSalesRecords(ctx context.Context, records []models.SalesRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sales = append(s.sales, records...)
	return nil
}

func (s *MemoryStore) ListSalesRecords(ctx context.Context) ([]models.SalesRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.SalesRecord(nil), s.sales...), nil
}

func (s *MemoryStore) DeleteSalesRecordsByUpload(ctx context.Context, uploadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.sales[:0]
	for _, r := range s.sales {
		if r.UploadID != uploadID {
			kept = append(kept, r)
		}
	}
	s.sales = kept
	return nil
}

func (s *MemoryStore) MonthlyMetrics(ctx context.Context) ([]models.MonthlyMetric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.MonthlyMetric(nil), s.monthly...), nil
}

func (s *MemoryStore) RegionMetrics(ctx context.Context) ([]models.RegionMetric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.RegionMetric(nil), s.regions...), nil
}

func (s *MemoryStore) GetNotificationSettings(ctx context.Context) (models.NotificationSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	settings := s.notifications
	settings.Metrics = append([]string(nil), settings.Metrics...)
	return settings, nil
}

func (s *MemoryStore) SaveNotificationSettings(ctx context.Context, settings models.NotificationSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = settings
	return nil
}

func (s *MemoryStore) AppendOperationLog(ctx context.Context, log models.OperationLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.operationLogs = append(s.operationLogs, log)
	if len(s.operationLogs) > maxOperationLogs {
		s.operationLogs = s.operationLogs[len(s.operationLogs)-maxOperationLogs:]
	}
	return nil
}

// ListOperationLogs 按时间倒序返回最近的操作日志
func (s *MemoryStore) ListOperationLogs(ctx context.Context, limit int) ([]models.OperationLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	logs := append([]models.OperationLog(nil), s.operationLogs...)
	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].OperationTime.After(logs[j].OperationTime)
	})
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

func (s *MemoryStore) Status(ctx context.Context) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := func(n int) map[string]interface{} {
		return map[string]interface{}{"count": n}
	}
	return map[string]interface{}{
		"driver":                "memory",
		CustomersCollection:     count(len(s.customers.order)),
		UsersCollection:         count(len(s.users.order)),
		IntegrationsCollection:  count(len(s.integrations.order)),
		UploadsCollection:       count(len(s.uploads.order)),
		SalesRecordsCollection:  count(len(s.sales)),
		OperationLogsCollection: count(len(s.operationLogs)),
	}, nil
}

func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}
