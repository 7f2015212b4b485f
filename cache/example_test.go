package cache_test

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/jonwraymond/inspirehep-mcp/cache"
)

func ExampleNewTTLCache() {
	c := cache.NewTTLCache(cache.Policy{TTL: time.Hour, MaxSize: 2})

	c.Set("GET:/literature/1:x", "first")
	c.Set("GET:/literature/2:x", "second")
	c.Set("GET:/literature/3:x", "third")

	_, ok := c.Get("GET:/literature/1:x")
	fmt.Println("oldest still cached:", ok)

	v, _ := c.Get("GET:/literature/3:x")
	fmt.Println("newest:", v)
	// Output:
	// oldest still cached: false
	// newest: third
}

func ExampleWithClock() {
	mock := clock.NewMock()
	c := cache.NewTTLCache(cache.Policy{TTL: time.Minute}, cache.WithClock(mock))

	c.Set("k", "v")
	mock.Add(time.Minute)

	_, ok := c.Get("k")
	fmt.Println("found after TTL:", ok)
	// Output:
	// found after TTL: false
}

func ExampleRequestKeyer_Key() {
	keyer := cache.NewRequestKeyer()

	k1, _ := keyer.Key("GET", "/literature", map[string]any{"q": "higgs", "size": 10})
	k2, _ := keyer.Key("GET", "/literature", map[string]any{"size": 10, "q": "higgs"})

	fmt.Println("same key:", k1 == k2)
	// Output:
	// same key: true
}
