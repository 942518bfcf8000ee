package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/BerniceZTT/salesiq/config"
	"github.com/BerniceZTT/salesiq/models"
	"github.com/BerniceZTT/salesiq/utils"
)

const (
	// 集合名
	CustomersCollection     = "customers"
	UsersCollection         = "users"
	IntegrationsCollection  = "integrations"
	UploadsCollection       = "uploads"
	SalesRecordsCollection  = "salesRecords"
	MonthlyMetricsColletion = "monthlyMetrics"
	RegionMetricsCollection = "regionMetrics"
	SettingsCollection      = "settings"
	OperationLogsCollection = "apiOperationLogs"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("记录不存在")

// Store 应用唯一的数据源，所有视图通过它读写数据
type Store interface {
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	GetCustomer(ctx context.Context, id string) (*models.Customer, error)
	SaveCustomer(ctx context.Context, customer models.Customer) error
	UpdateCustomer(ctx context.Context, id string, update func(*models.Customer) error) (*models.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error

	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	SaveUser(ctx context.Context, user models.User) error
	UpdateUser(ctx context.Context, id string, update func(*models.User) error) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error

	ListIntegrations(ctx context.Context) ([]models.APIIntegration, error)
	GetIntegration(ctx context.Context, id string) (*models.APIIntegration, error)
	SaveIntegration(ctx context.Context, integration models.APIIntegration) error
	UpdateIntegration(ctx context.Context, id string, update func(*models.APIIntegration) error) (*models.APIIntegration, error)
	DeleteIntegration(ctx context.Context, id string) error

	ListUploads(ctx context.Context) ([]models.FileUpload, error)
	GetUpload(ctx context.Context, id string) (*models.FileUpload, error)
	SaveUpload(ctx context.Context, upload models.FileUpload) error
	UpdateUpload(ctx context.Context, id string, update func(*models.FileUpload) error) (*models.FileUpload, error)
	DeleteUpload(ctx context.Context, id string) error

	AddSalesRecords(ctx context.Context, records []models.SalesRecord) error
	ListSalesRecords(ctx context.Context) ([]models.SalesRecord, error)
	DeleteSalesRecordsByUpload(ctx context.Context, uploadID string) error

	MonthlyMetrics(ctx context.Context) ([]models.MonthlyMetric, error)
	RegionMetrics(ctx context.Context) ([]models.RegionMetric, error)

	GetNotificationSettings(ctx context.Context) (models.NotificationSettings, error)
	SaveNotificationSettings(ctx context.Context, settings models.NotificationSettings) error

	AppendOperationLog(ctx context.Context, log models.OperationLog) error
	ListOperationLogs(ctx context.Context, limit int) ([]models.OperationLog, error)

	Status(ctx context.Context) (map[string]interface{}, error)
	Close(ctx context.Context) error
}

var store Store

// InitStore 按配置创建数据存储
func InitStore(ctx context.Context, cfg *config.Config) error {
	switch cfg.StoreDriver {
	case config.StoreMemory, "":
		store = NewMemoryStore()
		utils.Logger.Info().Msg("使用内存存储，已加载示例数据")
		return nil
	case config.StoreMongo:
		mongoStore, err := NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return err
		}
		if err := mongoStore.Seed(ctx); err != nil {
			return fmt.Errorf("初始化示例数据失败: %w", err)
		}
		store = mongoStore
		return nil
	}
	return fmt.Errorf("未知的存储驱动: %s", cfg.StoreDriver)
}

// GetStore 返回当前数据存储
func GetStore() Store {
	if store == nil {
		store = NewMemoryStore()
	}
	return store
}

// SetStore 替换当前数据存储
func SetStore(s Store) {
	store = s
}

// CloseStore 关闭数据存储
func CloseStore(ctx context.Context) {
	if store == nil {
		return
	}
	if err := store.Close(ctx); err != nil {
		utils.Logger.Error().Err(err).Msg("关闭数据存储失败")
		return
	}
	utils.Logger.Info().Msg("数据存储已关闭")
}
