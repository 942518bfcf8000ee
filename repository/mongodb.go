package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BerniceZTT/salesiq/models"
	"github.com/BerniceZTT/salesiq/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// notificationSettingsID 短信设置在 settings 集合中的文档ID
const notificationSettingsID = "sms"

var allCollections = []string{
	CustomersCollection,
	UsersCollection,
	IntegrationsCollection,
	UploadsCollection,
	SalesRecordsCollection,
	MonthlyMetricsColletion,
	RegionMetricsCollection,
	SettingsCollection,
	OperationLogsCollection,
}

// MongoStore 基于MongoDB的存储
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoStore 连接MongoDB并确保集合存在
func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	// 设置连接超时
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("连接MongoDB失败: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping MongoDB失败: %w", err)
	}

	s := &MongoStore{client: client, db: client.Database(dbName)}
	utils.Logger.Info().Str("database", dbName).Msg("已连接到MongoDB")

	if err := s.initializeCollections(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Close 断开MongoDB连接
func (s *MongoStore) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("断开MongoDB连接失败: %w", err)
	}
	return nil
}

func (s *MongoStore) initializeCollections(ctx context.Context) error {
	existing, err := s.db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("检查集合失败: %w", err)
	}
	found := make(map[string]bool, len(existing))
	for _, name := range existing {
		found[name] = true
	}
	for _, name := range allCollections {
		if found[name] {
			continue
		}
		if err := s.db.CreateCollection(ctx, name); err != nil {
			return fmt.Errorf("创建集合失败: %w", err)
		}
		utils.Logger.Info().Str("collection", name).Msg("创建集合成功")
	}
	return nil
}

// Seed 向空集合写入示例数据
func (s *MongoStore) Seed(ctx context.Context) error {
	seed := SeedData()
	docs := map[string][]interface{}{}
	for _, c := range seed.Customers {
		docs[CustomersCollection] = append(docs[CustomersCollection], c)
	}
	for _, u := range seed.Users {
		docs[UsersCollection] = append(docs[UsersCollection], u)
	}
	for _, i := range seed.Integrations {
		docs[IntegrationsCollection] = append(docs[IntegrationsCollection], i)
	}
	for _, r := range seed.Sales {
		docs[SalesRecordsCollection] = append(docs[SalesRecordsCollection], r)
	}
	for _, m := range seed.Monthly {
		docs[MonthlyMetricsColletion] = append(docs[MonthlyMetricsColletion], m)
	}
	for _, r := range seed.Regions {
		docs[RegionMetricsCollection] = append(docs[RegionMetricsCollection], r)
	}

	for name, items := range docs {
		coll := s.db.Collection(name)
		count, err := coll.CountDocuments(ctx, bson.M{})
		if err != nil {
			return err
		}
		if count > 0 {
			utils.Logger.Info().Str("collection", name).Msg("集合已有数据，跳过示例数据")
			continue
		}
		if _, err := coll.InsertMany(ctx, items); err != nil {
			return fmt.Errorf("写入示例数据失败(%s): %w", name, err)
		}
	}

	err := s.db.Collection(SettingsCollection).FindOne(ctx, bson.M{"_id": notificationSettingsID}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return s.SaveNotificationSettings(ctx, seed.Notifications)
	}
	return err
}

// ExecuteDbOperation 执行数据库操作，网络类错误会重试
func ExecuteDbOperation(ctx context.Context, operation func() error, retries int) error {
	if retries <= 0 {
		retries = 3
	}

	var lastErr error
	for i := 0; i < retries; i++ {
		err := operation()
		if err == nil {
			return nil
		}
		lastErr = err
		utils.Logger.Error().Err(err).Msgf("数据库操作失败，重试 (%d/%d)", i+1, retries)

		if !isRetryableError(err) {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(500*(i+1)) * time.Millisecond):
		}
	}
	return lastErr
}

// retryableCodes MongoDB可重试错误代码
var retryableCodes = map[int32]bool{
	6:     true, // HostUnreachable
	7:     true, // HostNotFound
	89:    true, // NetworkTimeout
	91:    true, // ShutdownInProgress
	189:   true, // PrimarySteppedDown
	10107: true, // NotMaster
	13436: true, // NotMasterNoSlaveOk
	11600: true, // InterruptedAtShutdown
	11602: true, // InterruptedDueToReplStateChange
}

var networkErrors = []string{
	"connection refused",
	"connection reset",
	"connection closed",
	"no reachable servers",
	"server selection error",
}

// isRetryableError 判断错误是否可重试
func isRetryableError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, mongo.ErrNoDocuments) || errors.Is(err, ErrNotFound) {
		return false
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return retryableCodes[cmdErr.Code]
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, ne := range networkErrors {
		if strings.Contains(msg, ne) {
			return true
		}
	}
	return false
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	result := []T{}
	if err := cursor.All(ctx, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, id string) (*T, error) {
	var doc T
	err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// updateDoc 读取-修改-写回，写回时不插入，文档已被删除则返回 ErrNotFound
func updateDoc[T any](ctx context.Context, coll *mongo.Collection, id string, update func(*T) error) (*T, error) {
	doc, err := findOne[T](ctx, coll, id)
	if err != nil {
		return nil, err
	}
	if err := update(doc); err != nil {
		return nil, err
	}

	var matched int64
	err = ExecuteDbOperation(ctx, func() error {
		result, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
		if err != nil {
			return err
		}
		utils.LogDbOperation("replace", coll.Name(), bson.M{"_id": id}, result)
		matched = result.MatchedCount
		return nil
	}, 3)
	if err != nil {
		return nil, err
	}
	if matched == 0 {
		return nil, ErrNotFound
	}
	return doc, nil
}

func (s *MongoStore) replace(ctx context.Context, name, id string, doc interface{}) error {
	return ExecuteDbOperation(ctx, func() error {
		result, err := s.db.Collection(name).ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
		if err != nil {
			return err
		}
		utils.LogDbOperation("replace", name, bson.M{"_id": id}, result)
		return nil
	}, 3)
}

func (s *MongoStore) remove(ctx context.Context, name, id string) error {
	var deleted int64
	err := ExecuteDbOperation(ctx, func() error {
		result, err := s.db.Collection(name).DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		deleted = result.DeletedCount
		return nil
	}, 3)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}

// insertionOrder 示例数据使用自增的字符串ID，按 _id 排序即保持写入顺序
var insertionOrder = options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

func (s *MongoStore) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	return findAll[models.Customer](ctx, s.db.Collection(CustomersCollection), bson.M{}, insertionOrder)
}

func (s *MongoStore) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	return findOne[models.Customer](ctx, s.db.Collection(CustomersCollection), id)
}

func (s *MongoStore) SaveCustomer(ctx context.Context, customer models.Customer) error {
	return s.replace(ctx, CustomersCollection, customer.ID, customer)
}

func (s *MongoStore) UpdateCustomer(ctx context.Context, id string, update func(*models.Customer) error) (*models.Customer, error) {
	return updateDoc(ctx, s.db.Collection(CustomersCollection), id, update)
}

func (s *MongoStore) DeleteCustomer(ctx context.Context, id string) error {
	return s.remove(ctx, CustomersCollection, id)
}

func (s *MongoStore) ListUsers(ctx context.Context) ([]models.User, error) {
	return findAll[models.User](ctx, s.db.Collection(UsersCollection), bson.M{}, insertionOrder)
}

func (s *MongoStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	return findOne[models.User](ctx, s.db.Collection(UsersCollection), id)
}

func (s *MongoStore) SaveUser(ctx context.Context, user models.User) error {
	return s.replace(ctx, UsersCollection, user.ID, user)
}

func (s *MongoStore) UpdateUser(ctx context.Context, id string, update func(*models.User) error) (*models.User, error) {
	return updateDoc(ctx, s.db.Collection(UsersCollection), id, update)
}

func (s *MongoStore) DeleteUser(ctx context.Context, id string) error {
	return s.remove(ctx, UsersCollection, id)
}

func (s *MongoStore) ListIntegrations(ctx context.Context) ([]models.APIIntegration, error) {
	return findAll[models.APIIntegration](ctx, s.db.Collection(IntegrationsCollection), bson.M{}, insertionOrder)
}

func (s *MongoStore) GetIntegration(ctx context.Context, id string) (*models.APIIntegration, error) {
	return findOne[models.APIIntegration](ctx, s.db.Collection(IntegrationsCollection), id)
}

func (s *MongoStore) SaveIntegration(ctx context.Context, integration models.APIIntegration) error {
	return s.replace(ctx, IntegrationsCollection, integration.ID, integration)
}

func (s *MongoStore) UpdateIntegration(ctx context.Context, id string, update func(*models.APIIntegration) error) (*models.APIIntegration, error) {
	return updateDoc(ctx, s.db.Collection(IntegrationsCollection), id, update)
}

func (s *MongoStore) DeleteIntegration(ctx context.Context, id string) error {
	return s.remove(ctx, IntegrationsCollection, id)
}

func (s *MongoStore) ListUploads(ctx context.Context) ([]models.FileUpload, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	return findAll[models.FileUpload](ctx, s.db.Collection(UploadsCollection), bson.M{}, opts)
}

func (s *MongoStore) GetUpload(ctx context.Context, id string) (*models.FileUpload, error) {
	return findOne[models.FileUpload](ctx, s.db.Collection(UploadsCollection), id)
}

func (s *MongoStore) SaveUpload(ctx context.Context, upload models.FileUpload) error {
	return s.replace(ctx, UploadsCollection, upload.ID, upload)
}

func (s *MongoStore) UpdateUpload(ctx context.Context, id string, update func(*models.FileUpload) error) (*models.FileUpload, error) {
	return updateDoc(ctx, s.db.Collection(UploadsCollection), id, update)
}

func (s *MongoStore) DeleteUpload(ctx context.Context, id string) error {
	return s.remove(ctx, UploadsCollection, id)
}

func (s *MongoStore) AddSalesRecords(ctx context.Context, records []models.SalesRecord) error {
	if len(records) == 0 {
		return nil
	}
	docs := make([]interface{}, len(records))
	for i, r := range records {
		docs[i] = r
	}
	return ExecuteDbOperation(ctx, func() error {
		_, err := s.db.Collection(SalesRecordsCollection).InsertMany(ctx, docs)
		return err
	}, 3)
}

func (s *MongoStore) ListSalesRecords(ctx context.Context) ([]models.SalesRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	return findAll[models.SalesRecord](ctx, s.db.Collection(SalesRecordsCollection), bson.M{}, opts)
}

func (s *MongoStore) DeleteSalesRecordsByUpload(ctx context.Context, uploadID string) error {
	return ExecuteDbOperation(ctx, func() error {
		result, err := s.db.Collection(SalesRecordsCollection).DeleteMany(ctx, bson.M{"uploadId": uploadID})
		if err != nil {
			return err
		}
		utils.LogDbOperation("deleteMany", SalesRecordsCollection, bson.M{"uploadId": uploadID}, result)
		return nil
	}, 3)
}

func (s *MongoStore) MonthlyMetrics(ctx context.Context) ([]models.MonthlyMetric, error) {
	// 月份名不能排序，按写入顺序返回
	opts := options.Find().SetSort(bson.D{{Key: "$natural", Value: 1}})
	return findAll[models.MonthlyMetric](ctx, s.db.Collection(MonthlyMetricsColletion), bson.M{}, opts)
}

func (s *MongoStore) RegionMetrics(ctx context.Context) ([]models.RegionMetric, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sales", Value: -1}})
	return findAll[models.RegionMetric](ctx, s.db.Collection(RegionMetricsCollection), bson.M{}, opts)
}

func (s *MongoStore) GetNotificationSettings(ctx context.Context) (models.NotificationSettings, error) {
	var settings models.NotificationSettings
	err := s.db.Collection(SettingsCollection).FindOne(ctx, bson.M{"_id": notificationSettingsID}).Decode(&settings)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return SeedData().Notifications, nil
	}
	return settings, err
}

func (s *MongoStore) SaveNotificationSettings(ctx context.Context, settings models.NotificationSettings) error {
	return s.replace(ctx, SettingsCollection, notificationSettingsID, settings)
}

func (s *MongoStore) AppendOperationLog(ctx context.Context, log models.OperationLog) error {
	_, err := s.db.Collection(OperationLogsCollection).InsertOne(ctx, log)
	return err
}

func (s *MongoStore) ListOperationLogs(ctx context.Context, limit int) ([]models.OperationLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "operationTime", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return findAll[models.OperationLog](ctx, s.db.Collection(OperationLogsCollection), bson.M{}, opts)
}

// Status 获取各集合的文档数量
func (s *MongoStore) Status(ctx context.Context) (map[string]interface{}, error) {
	result := map[string]interface{}{"driver": "mongo"}
	for _, name := range allCollections {
		count, err := s.db.Collection(name).CountDocuments(ctx, bson.M{})
		if err != nil {
			utils.Logger.Error().Err(err).Str("collection", name).Msg("获取集合计数失败")
			result[name] = map[string]interface{}{"count": 0, "error": err.Error()}
			continue
		}
		result[name] = map[string]interface{}{"count": count}
	}
	return result, nil
}
