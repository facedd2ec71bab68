package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/suxatcode/learn-graph-layout/db"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "layout:malla_n100", key("malla_n100"))
}

func TestRedisStore_SaveLayout_invalidName(t *testing.T) {
	// the name is rejected before the (unreachable) server is contacted
	s := NewRedisStoreWithClient(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), time.Minute)
	defer s.Close()
	err := s.SaveLayout(context.Background(), "../etc", &db.Record{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid layout name")
}
