package storage_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"giftlist-tools/core/storage"
	"giftlist-tools/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPublisher_EnsureBucket(t *testing.T) {
	t.Run("Exists", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "reports").Return(true, nil)

		assert.NoError(t, storage.NewPublisher(client, "reports", "", nil).EnsureBucket(context.Background()))
		client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Created", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "reports").Return(false, nil)
		client.On("MakeBucket", mock.Anything, "reports", mock.Anything).Return(nil)

		assert.NoError(t, storage.NewPublisher(client, "reports", "", nil).EnsureBucket(context.Background()))
		client.AssertExpectations(t)
	})

	t.Run("Unreachable", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "reports").Return(false, errors.New("connection refused"))

		assert.Error(t, storage.NewPublisher(client, "reports", "", nil).EnsureBucket(context.Background()))
	})
}

func TestPublisher_Publish(t *testing.T) {
	client := new(mocks.Client)
	pub := storage.NewPublisher(client, "reports", "giftlist", nil)
	pub.Now = func() time.Time { return time.Date(2026, 10, 14, 9, 30, 0, 5, time.UTC) }

	wantKey := "giftlist/promotion/p1/20261014T093000.000000005Z.json"
	var uploaded []byte
	client.On("PutObject", mock.Anything, "reports", wantKey, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			uploaded, _ = io.ReadAll(args.Get(3).(io.Reader))
		}).
		Return(minio.UploadInfo{Key: wantKey}, nil)

	key, err := pub.Publish(context.Background(), storage.KindPromotion, "p1", map[string]string{"productId": "p1"})
	require.NoError(t, err)
	assert.Equal(t, wantKey, key)
	assert.JSONEq(t, `{"productId":"p1"}`, string(uploaded))
}

func TestPublisher_PublishErrors(t *testing.T) {
	client := new(mocks.Client)
	pub := storage.NewPublisher(client, "reports", "", nil)

	_, err := pub.Publish(context.Background(), storage.KindCheck, "p1", func() {})
	assert.ErrorContains(t, err, "encode")

	client.On("PutObject", mock.Anything, "reports", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("denied"))
	_, err = pub.Publish(context.Background(), storage.KindCheck, "p1", map[string]int{})
	assert.ErrorContains(t, err, "upload")
}

func TestPublisher_ListAndLoad(t *testing.T) {
	client := new(mocks.Client)
	pub := storage.NewPublisher(client, "reports", "r", nil)

	ch := make(chan minio.ObjectInfo, 2)
	ch <- minio.ObjectInfo{Key: "r/check/p1/20261014T100000.000000000Z.json"}
	ch <- minio.ObjectInfo{Key: "r/check/p1/20261013T100000.000000000Z.json"}
	close(ch)
	client.On("ListObjects", mock.Anything, "reports", minio.ListObjectsOptions{Prefix: "r/check/p1/", Recursive: true}).
		Return((<-chan minio.ObjectInfo)(ch))

	keys, err := pub.List(context.Background(), storage.KindCheck, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"r/check/p1/20261013T100000.000000000Z.json",
		"r/check/p1/20261014T100000.000000000Z.json",
	}, keys)

	client.On("GetObject", mock.Anything, "reports", keys[0], mock.Anything).
		Return(io.NopCloser(bytes.NewReader([]byte(`{"states":{"test":"IN SYNC"}}`))), nil)

	var report struct {
		States map[string]string `json:"states"`
	}
	require.NoError(t, pub.Load(context.Background(), keys[0], &report))
	assert.Equal(t, "IN SYNC", report.States["test"])
}

func TestPublisher_ListError(t *testing.T) {
	client := new(mocks.Client)
	ch := make(chan minio.ObjectInfo, 1)
	ch <- minio.ObjectInfo{Err: errors.New("access denied")}
	close(ch)
	client.On("ListObjects", mock.Anything, "reports", mock.Anything).Return((<-chan minio.ObjectInfo)(ch))

	_, err := storage.NewPublisher(client, "reports", "", nil).List(context.Background(), storage.KindRepair, "p1")
	assert.Error(t, err)
}

func TestPublisher_Latest(t *testing.T) {
	t.Run("Newest", func(t *testing.T) {
		client := new(mocks.Client)
		ch := make(chan minio.ObjectInfo, 2)
		ch <- minio.ObjectInfo{Key: "repair/p1/20261014T100000.000000000Z.json"}
		ch <- minio.ObjectInfo{Key: "repair/p1/20261013T100000.000000000Z.json"}
		close(ch)
		client.On("ListObjects", mock.Anything, "reports", mock.Anything).Return((<-chan minio.ObjectInfo)(ch))
		client.On("GetObject", mock.Anything, "reports", "repair/p1/20261014T100000.000000000Z.json", mock.Anything).
			Return(io.NopCloser(bytes.NewReader([]byte(`{"test":"Updated: p1"}`))), nil)

		var report map[string]string
		key, err := storage.NewPublisher(client, "reports", "", nil).Latest(context.Background(), storage.KindRepair, "p1", &report)
		require.NoError(t, err)
		assert.Equal(t, "repair/p1/20261014T100000.000000000Z.json", key)
		assert.Equal(t, "Updated: p1", report["test"])
	})

	t.Run("None", func(t *testing.T) {
		client := new(mocks.Client)
		ch := make(chan minio.ObjectInfo)
		close(ch)
		client.On("ListObjects", mock.Anything, "reports", mock.Anything).Return((<-chan minio.ObjectInfo)(ch))

		_, err := storage.NewPublisher(client, "reports", "", nil).Latest(context.Background(), storage.KindCheck, "p1", &struct{}{})
		assert.ErrorIs(t, err, storage.ErrNoReports)
		client.AssertNotCalled(t, "GetObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestIsKind(t *testing.T) {
	assert.True(t, storage.IsKind(storage.KindPromotion))
	assert.False(t, storage.IsKind("promotions"))
}
