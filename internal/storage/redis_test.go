package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore_Save(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(db, "", 0)

	snap := sampleSnapshot()
	data, err := json.Marshal(snap)
	require.NoError(t, err)

	mock.ExpectSet(DefaultRedisKey, string(data), DefaultRedisTTL).SetVal("OK")

	require.NoError(t, store.Save(context.Background(), snap))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Load(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(db, "events:test", 0)

	data, err := json.Marshal(sampleSnapshot())
	require.NoError(t, err)
	mock.ExpectGet("events:test").SetVal(string(data))

	snap, err := store.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "2025-10-15", snap.CachedOn)
	require.Len(t, snap.Events, 1)
	assert.Equal(t, "Robotics Club Meeting", snap.Events[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_LoadMissing(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(db, "", 0)

	mock.ExpectGet(DefaultRedisKey).RedisNil()

	snap, err := store.Load(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, snap)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Errors(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(db, "", 0)
	boom := errors.New("connection refused")

	mock.ExpectGet(DefaultRedisKey).SetErr(boom)
	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, boom)

	mock.ExpectDel(DefaultRedisKey).SetErr(boom)
	assert.ErrorIs(t, store.Clear(context.Background()), boom)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Clear(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(db, "", 0)

	mock.ExpectDel(DefaultRedisKey).SetVal(0)

	assert.NoError(t, store.Clear(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
