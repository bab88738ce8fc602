package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"mailbin/backend/internal/config"
	"mailbin/backend/internal/domain"
)

// Store 基于 MongoDB 的邮件存储。
//
// 写路径为高吞吐接收调优：插入使用 w:1 且不等待 journal 落盘，
// 主节点内存应用写入后即确认。代价是进程崩溃瞬间存在一个
// 已确认邮件丢失的窄窗口，这是刻意的吞吐量取舍而非缺陷。
type Store struct {
	client   *mongo.Client
	messages *mongo.Collection
}

// Open 建立 MongoDB 连接并验证连通性。
//
// 连接池由驱动管理：MaxPoolSize/MinPoolSize 约束并发持久化操作数，
// 空闲连接超过 MaxConnIdleTime 后回收。连接失败在启动期即返回错误，
// 由调用方决定终止进程。
func Open(ctx context.Context, cfg config.MongoConfig) (*Store, error) {
	journal := false
	relaxed := &writeconcern.WriteConcern{W: 1, Journal: &journal}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetMaxConnIdleTime(cfg.MaxConnIdleTime).
		SetServerSelectionTimeout(cfg.SelectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	// 启动期快速失败：存储不可达时不应继续启动
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	messages := client.Database(cfg.Database).Collection(
		cfg.Collection,
		options.Collection().SetWriteConcern(relaxed),
	)

	return &Store{
		client:   client,
		messages: messages,
	}, nil
}

// EnsureIndexes 创建查询路径依赖的索引。
//
// 与读写操作解耦，在启动时调用一次；重复调用是幂等的。
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.messages.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "inboxToken", Value: 1}, {Key: "receivedAt", Value: -1}}},
		{Keys: bson.D{{Key: "receivedAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

// SaveMessage 持久化一条新的邮件记录。
func (s *Store) SaveMessage(ctx context.Context, message *domain.Message) error {
	if _, err := s.messages.InsertOne(ctx, message); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// ListMessagesByToken 返回指定令牌下的全部邮件，按 ReceivedAt 降序。
func (s *Store) ListMessagesByToken(ctx context.Context, token string) ([]domain.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "receivedAt", Value: -1}})
	cursor, err := s.messages.Find(ctx, bson.M{"inboxToken": token}, opts)
	if err != nil {
		return nil, fmt.Errorf("find messages: %w", err)
	}
	defer cursor.Close(ctx)

	messages := make([]domain.Message, 0)
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return messages, nil
}

// GetMessage 按 ID 获取邮件，token 非空时记录必须同时属于该令牌。
func (s *Store) GetMessage(ctx context.Context, id, token string) (*domain.Message, error) {
	filter := bson.M{"_id": id}
	if token != "" {
		filter["inboxToken"] = token
	}

	var message domain.Message
	err := s.messages.FindOne(ctx, filter).Decode(&message)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrMessageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find message: %w", err)
	}
	return &message, nil
}

// CountMessagesByToken 返回指定令牌下的邮件数量。
func (s *Store) CountMessagesByToken(ctx context.Context, token string) (int64, error) {
	count, err := s.messages.CountDocuments(ctx, bson.M{"inboxToken": token})
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return count, nil
}

// DeleteMessagesByToken 删除指定令牌下的全部邮件，返回删除数量。
func (s *Store) DeleteMessagesByToken(ctx context.Context, token string) (int64, error) {
	result, err := s.messages.DeleteMany(ctx, bson.M{"inboxToken": token})
	if err != nil {
		return 0, fmt.Errorf("delete messages: %w", err)
	}
	return result.DeletedCount, nil
}

// Health 检查与主节点的连通性。
func (s *Store) Health(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close 断开连接并排空连接池。
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
