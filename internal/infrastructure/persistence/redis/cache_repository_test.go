package redis

import (
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestCacheRepository_Key(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{Addr: "localhost:0"})
	defer client.Close()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "prefixed", prefix: "cookbook", key: "usda:tomate", want: "cookbook:usda:tomate"},
		{name: "no prefix", prefix: "", key: "usda:tomate", want: "usda:tomate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewCacheRepository(client, tt.prefix, zap.NewNop())
			assert.Equal(t, tt.want, repo.Key(tt.key))
		})
	}
}
