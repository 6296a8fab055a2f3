//go:build integration

package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestRedisCache(t *testing.T) {
	url := os.Getenv("CELLFORGE_TEST_REDIS")
	if url == "" {
		t.Skip("CELLFORGE_TEST_REDIS not set")
	}
	ctx := context.Background()
	c, err := OpenRedis(ctx, url)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	key := Key("test", t.Name(), time.Now().UnixNano())
	if _, hit, err := c.Get(ctx, key); hit || err != nil {
		t.Fatalf("fresh key: hit=%v err=%v", hit, err)
	}
	if err := c.Set(ctx, key, []byte("<svg/>"), time.Minute); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, key)
	if err != nil || !hit || string(data) != "<svg/>" {
		t.Errorf("Get = (%q, %v, %v)", data, hit, err)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Fatal(err)
	}
}
