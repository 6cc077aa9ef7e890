package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/pixelflowlabs/trendreel/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

type MockTrendStore struct {
	mock.Mock
}

func (m *MockTrendStore) Save(ctx context.Context, snapshot *models.TrendSnapshot) (string, error) {
	args := m.Called(ctx, snapshot)
	return args.String(0), args.Error(1)
}

func (m *MockTrendStore) Latest(ctx context.Context) (*models.TrendSnapshot, error) {
	args := m.Called(ctx)
	if s := args.Get(0); s != nil {
		return s.(*models.TrendSnapshot), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestMongoTrendStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("latest returns newest snapshot", func(mt *mtest.T) {
		oid := primitive.NewObjectID()
		ts := time.Date(2025, 3, 12, 19, 52, 33, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "PixelFlowLabs.trends", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "timestamp", Value: ts},
			{Key: "domain", Value: "crypto"},
			{Key: "top_trends", Value: bson.A{"Bitcoin", "CryptoTechnology"}},
			{Key: "top_hashtags", Value: bson.D{{Key: "crypto", Value: 4}}},
			{Key: "sentiment", Value: bson.D{{Key: "overall_mood", Value: "positive"}}},
		}))

		store := NewMongoTrendStoreFromCollection(mt.Coll)
		snapshot, err := store.Latest(context.Background())
		require.NoError(mt, err)

		assert.Equal(mt, oid.Hex(), snapshot.ID)
		assert.True(mt, ts.Equal(snapshot.Timestamp))
		assert.Equal(mt, "crypto", snapshot.Domain)
		assert.Equal(mt, []string{"Bitcoin", "CryptoTechnology"}, snapshot.TopTrends)
		assert.Equal(mt, 4, snapshot.TopHashtags["crypto"])
		assert.Equal(mt, "positive", snapshot.Sentiment.OverallMood)
	})

	mt.Run("latest on empty collection", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "PixelFlowLabs.trends", mtest.FirstBatch))

		_, err := NewMongoTrendStoreFromCollection(mt.Coll).Latest(context.Background())
		assert.ErrorIs(mt, err, ErrNoTrends)
	})

	mt.Run("latest surfaces server errors", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Message: "bad query",
		}))

		_, err := NewMongoTrendStoreFromCollection(mt.Coll).Latest(context.Background())
		require.Error(mt, err)
		assert.False(mt, errors.Is(err, ErrNoTrends))
		assert.False(mt, errors.Is(err, ErrUnavailable))
	})

	mt.Run("network errors report unavailable", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    6,
			Message: "host unreachable",
			Labels:  []string{"NetworkError"},
		}))

		_, err := NewMongoTrendStoreFromCollection(mt.Coll).Latest(context.Background())
		assert.ErrorIs(mt, err, ErrUnavailable)
	})

	mt.Run("save returns hex id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		snapshot := &models.TrendSnapshot{Timestamp: time.Now(), Domain: "crypto"}
		id, err := NewMongoTrendStoreFromCollection(mt.Coll).Save(context.Background(), snapshot)
		require.NoError(mt, err)

		assert.Len(mt, id, 24)
		assert.Equal(mt, id, snapshot.ID)
	})
}

func TestMongoTrendStore_NoCollection(t *testing.T) {
	store := &MongoTrendStore{}

	_, err := store.Latest(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = store.Save(context.Background(), &models.TrendSnapshot{})
	assert.ErrorIs(t, err, ErrUnavailable)

	assert.NoError(t, store.Close(context.Background()))
}

func TestMongoTrendStore_Unreachable(t *testing.T) {
	store, err := NewMongoTrendStore(context.Background(),
		"mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=200&connectTimeoutMS=200", "PixelFlowLabs", "trends")
	require.NoError(t, err)
	defer store.Close(context.Background())

	assert.ErrorIs(t, store.Ping(context.Background()), ErrUnavailable)

	_, err = store.Latest(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = store.Save(context.Background(), &models.TrendSnapshot{Timestamp: time.Now()})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestMongoTrendStore_BadURI(t *testing.T) {
	_, err := NewMongoTrendStore(context.Background(), "postgres://localhost", "db", "trends")
	assert.Error(t, err)
}

func TestUnavailable(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		unavailable bool
	}{
		{name: "deadline", err: context.DeadlineExceeded, unavailable: true},
		{name: "disconnected", err: fmt.Errorf("find: %w", mongo.ErrClientDisconnected), unavailable: true},
		{name: "network label", err: mongo.CommandError{Code: 6, Labels: []string{"NetworkError"}}, unavailable: true},
		{name: "command error", err: mongo.CommandError{Code: 2, Message: "bad query"}, unavailable: false},
		{name: "no documents", err: mongo.ErrNoDocuments, unavailable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := unavailable(tt.err)
			assert.Equal(t, tt.unavailable, errors.Is(err, ErrUnavailable))
			assert.ErrorContains(t, err, tt.err.Error())
		})
	}
}

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestCachedTrendStore_Latest(t *testing.T) {
	mr, client := newMiniredisClient(t)
	ctx := context.Background()

	next := &MockTrendStore{}
	next.On("Latest", mock.Anything).Return(&models.TrendSnapshot{Domain: "crypto", TopTrends: []string{"Bitcoin"}}, nil).Once()

	store := NewCachedTrendStore(next, client, time.Minute)

	first, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "crypto", first.Domain)
	assert.True(t, mr.Exists(latestKey(0)))

	// served from cache, next is not consulted again
	second, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bitcoin"}, second.TopTrends)
	next.AssertExpectations(t)

	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists(latestKey(0)))
}

func TestCachedTrendStore_SaveInvalidates(t *testing.T) {
	mr, client := newMiniredisClient(t)
	ctx := context.Background()
	require.NoError(t, mr.Set(latestKey(0), `{"domain":"old"}`))

	next := &MockTrendStore{}
	next.On("Save", mock.Anything, mock.Anything).Return("abc123", nil)
	next.On("Latest", mock.Anything).Return(&models.TrendSnapshot{Domain: "new"}, nil).Once()

	store := NewCachedTrendStore(next, client, time.Minute)
	id, err := store.Save(ctx, &models.TrendSnapshot{})
	require.NoError(t, err)
	assert.Equal(t, "abc123", id)
	assert.False(t, mr.Exists(latestKey(0)))

	latest, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", latest.Domain)
	assert.True(t, mr.Exists(latestKey(1)))
}

// savingStore saves a newer snapshot through the cache while a read of the
// older one is in flight
type savingStore struct {
	cache   *CachedTrendStore
	current string
	saved   bool
}

func (s *savingStore) Save(ctx context.Context, snapshot *models.TrendSnapshot) (string, error) {
	s.current = snapshot.Domain
	return "id-" + snapshot.Domain, nil
}

func (s *savingStore) Latest(ctx context.Context) (*models.TrendSnapshot, error) {
	read := &models.TrendSnapshot{Domain: s.current}
	if !s.saved {
		s.saved = true
		if _, err := s.cache.Save(ctx, &models.TrendSnapshot{Domain: "fresh"}); err != nil {
			return nil, err
		}
	}
	return read, nil
}

func TestCachedTrendStore_SaveDuringMiss(t *testing.T) {
	_, client := newMiniredisClient(t)
	ctx := context.Background()

	next := &savingStore{current: "old"}
	store := NewCachedTrendStore(next, client, time.Minute)
	next.cache = store

	first, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "old", first.Domain)

	second, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "fresh", second.Domain)
}

func TestCachedTrendStore_ErrorsNotCached(t *testing.T) {
	mr, client := newMiniredisClient(t)

	next := &MockTrendStore{}
	next.On("Latest", mock.Anything).Return(nil, ErrNoTrends)

	_, err := NewCachedTrendStore(next, client, time.Minute).Latest(context.Background())
	assert.ErrorIs(t, err, ErrNoTrends)
	assert.False(t, mr.Exists(latestKey(0)))
}

func TestCachedTrendStore_RedisDown(t *testing.T) {
	mr, client := newMiniredisClient(t)
	mr.Close()

	next := &MockTrendStore{}
	next.On("Latest", mock.Anything).Return(&models.TrendSnapshot{Domain: "crypto"}, nil)

	snapshot, err := NewCachedTrendStore(next, client, time.Minute).Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "crypto", snapshot.Domain)
}

func TestCachedTrendStore_NilClient(t *testing.T) {
	next := &MockTrendStore{}
	next.On("Latest", mock.Anything).Return(&models.TrendSnapshot{Domain: "crypto"}, nil).Twice()

	store := NewCachedTrendStore(next, nil, time.Minute)
	for i := 0; i < 2; i++ {
		_, err := store.Latest(context.Background())
		require.NoError(t, err)
	}
	next.AssertExpectations(t)
}

func TestNewRedisClient_BadURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestLocalStorage(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Store(ctx, "EcoFresh_Water.mp4", strings.NewReader("video-bytes")))
	require.NoError(t, store.Store(ctx, "other.mp4", strings.NewReader("x")))

	rc, err := store.Open(ctx, "EcoFresh_Water.mp4")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "video-bytes", string(data))

	listed, err := store.List(ctx, "Eco")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "EcoFresh_Water.mp4", listed[0].Name)
	assert.WithinDuration(t, time.Now(), listed[0].Modified, time.Minute)

	require.NoError(t, store.Delete(ctx, "EcoFresh_Water.mp4"))
	_, err = store.Open(ctx, "EcoFresh_Water.mp4")
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting twice is fine
	assert.NoError(t, store.Delete(ctx, "EcoFresh_Water.mp4"))
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	tests := []string{"../escape.mp4", "a/b.mp4", "", "."}
	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, store.Store(ctx, name, strings.NewReader("x")))
			_, err := store.Open(ctx, name)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "video/mp4", contentTypeFor("generated_video_ab12cd34.mp4"))
	assert.Equal(t, "application/json", contentTypeFor("snapshot.json"))
	assert.Equal(t, "application/octet-stream", contentTypeFor("blob"))
}

func TestNewAzureStorage_Validation(t *testing.T) {
	_, err := NewAzureStorage(context.Background(), AzureOptions{Account: "acct"})
	assert.ErrorContains(t, err, "container name is required")

	_, err = NewAzureStorage(context.Background(), AzureOptions{Container: "videos"})
	assert.ErrorContains(t, err, "account name or connection string is required")
}
