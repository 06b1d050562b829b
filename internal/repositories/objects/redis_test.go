package objects_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	sheeterr "github.com/KirkDiggler/aionia-sheet/internal/errors"
	"github.com/KirkDiggler/aionia-sheet/internal/repositories/objects"
	mockobjects "github.com/KirkDiggler/aionia-sheet/internal/repositories/objects/mock"
)

type RedisRepoTestSuite struct {
	suite.Suite
	mockClient   *redis.Client
	mock         redismock.ClientMock
	mockCtrl     *gomock.Controller
	timeProvider *mockobjects.MockTimeProvider
	repo         objects.Repository
	now          time.Time
}

func (s *RedisRepoTestSuite) SetupTest() {
	s.mockClient, s.mock = redismock.NewClientMock()
	s.mockCtrl = gomock.NewController(s.T())
	s.timeProvider = mockobjects.NewMockTimeProvider(s.mockCtrl)
	s.repo = objects.NewRedisRepository(&objects.RedisRepoConfig{
		Client:       s.mockClient,
		TimeProvider: s.timeProvider,
	})
	s.now = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
}

func (s *RedisRepoTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
	s.NoError(s.mock.ExpectationsWereMet())
}

func TestRedisRepoTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepoTestSuite))
}

func (s *RedisRepoTestSuite) stored(key, contentType string, data []byte) []byte {
	raw, err := json.Marshal(struct {
		Key         string    `json:"key"`
		ContentType string    `json:"content_type"`
		Data        []byte    `json:"data"`
		UpdatedAt   time.Time `json:"updated_at"`
	}{key, contentType, data, s.now})
	s.Require().NoError(err)
	return raw
}

func (s *RedisRepoTestSuite) TestPut() {
	ctx := context.Background()
	key := "user-1/char-1.json"
	s.timeProvider.EXPECT().Now().Return(s.now)

	expected := s.stored(key, "application/json", []byte(`{"a":1}`))
	s.mock.ExpectSet("object:"+key, expected, 0).SetVal("OK")
	s.mock.ExpectSAdd("dir:user-1", key).SetVal(1)

	err := s.repo.Put(ctx, &objects.Object{Key: key, ContentType: "application/json", Data: []byte(`{"a":1}`)})
	s.NoError(err)
}

func (s *RedisRepoTestSuite) TestPut_InvalidKey() {
	err := s.repo.Put(context.Background(), &objects.Object{Key: ""})
	s.True(sheeterr.IsInvalidArgument(err))
}

func (s *RedisRepoTestSuite) TestGet() {
	ctx := context.Background()
	key := "user-1/images/1-a.png"
	s.mock.ExpectGet("object:" + key).SetVal(string(s.stored(key, "image/png", []byte("png"))))

	obj, err := s.repo.Get(ctx, key)
	s.Require().NoError(err)
	s.Equal(key, obj.Key)
	s.Equal("image/png", obj.ContentType)
	s.Equal([]byte("png"), obj.Data)
	s.True(s.now.Equal(obj.UpdatedAt))
}

func (s *RedisRepoTestSuite) TestGet_NotFound() {
	s.mock.ExpectGet("object:user-1/missing.json").RedisNil()

	_, err := s.repo.Get(context.Background(), "user-1/missing.json")
	s.True(sheeterr.IsNotFound(err))
}

func (s *RedisRepoTestSuite) TestDelete() {
	key := "user-1/char-1.json"
	s.mock.ExpectDel("object:" + key).SetVal(1)
	s.mock.ExpectSRem("dir:user-1", key).SetVal(1)

	s.NoError(s.repo.Delete(context.Background(), key))
}

func (s *RedisRepoTestSuite) TestDelete_NotFound() {
	key := "user-1/char-1.json"
	s.mock.ExpectDel("object:" + key).SetVal(0)
	s.mock.ExpectSRem("dir:user-1", key).SetVal(0)

	err := s.repo.Delete(context.Background(), key)
	s.True(sheeterr.IsNotFound(err))
}

func (s *RedisRepoTestSuite) TestList() {
	ctx := context.Background()
	s.mock.ExpectSMembers("dir:user-1").SetVal([]string{
		"user-1/images/1-a.png",
		"user-1/b.json",
		"user-1/a.json",
	})
	s.mock.ExpectGet("object:user-1/a.json").SetVal(string(s.stored("user-1/a.json", "application/json", []byte("aa"))))

	list, err := s.repo.List(ctx, "user-1/a")
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal("user-1/a.json", list[0].Key)
	s.Equal(int64(2), list[0].Size)
}

func (s *RedisRepoTestSuite) TestList_SkipsStaleEntries() {
	ctx := context.Background()
	s.mock.ExpectSMembers("dir:user-1").SetVal([]string{"user-1/b.json", "user-1/a.json"})
	s.mock.ExpectGet("object:user-1/a.json").RedisNil()
	s.mock.ExpectGet("object:user-1/b.json").SetVal(string(s.stored("user-1/b.json", "application/json", []byte("b"))))

	list, err := s.repo.List(ctx, "user-1/")
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal("user-1/b.json", list[0].Key)
}

func (s *RedisRepoTestSuite) TestList_RequiresOwner() {
	_, err := s.repo.List(context.Background(), "")
	s.True(sheeterr.IsInvalidArgument(err))
}
