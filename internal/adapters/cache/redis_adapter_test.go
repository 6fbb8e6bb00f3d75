package cache_test

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/srq20-api/internal/adapters/cache"
	"github.com/zatekoja/srq20-api/internal/api/middleware"
	"github.com/zatekoja/srq20-api/internal/domain/providers"
	redisclient "github.com/zatekoja/srq20-api/internal/infrastructure/clients/redis"
	apperrors "github.com/zatekoja/srq20-api/pkg/errors"
)

var _ providers.CacheProvider = (*cache.RedisAdapter)(nil)

// unreachableAdapter points at a port nothing listens on
func unreachableAdapter(t *testing.T) *cache.RedisAdapter {
	t.Helper()
	client := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewRedisAdapter(redisclient.NewFromRedis(client))
}

func TestRedisAdapter_Increment_Unreachable(t *testing.T) {
	adapter := unreachableAdapter(t)

	_, _, err := adapter.Increment(context.Background(), "srq20:ratelimit:10.0.0.1", 60)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to increment counter")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
}

func TestRateLimiter_FallsBackWhenRedisDown(t *testing.T) {
	limiter := middleware.NewRateLimiter(unreachableAdapter(t), 1, time.Minute, nil)
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/predict", nil)
		req.RemoteAddr = "10.0.0.9:4321"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

// counterServer speaks enough RESP for INCR, PTTL and EXPIRE. The first
// failExpires EXPIRE commands are answered with an error.
type counterServer struct {
	mu          sync.Mutex
	counters    map[string]int64
	ttls        map[string]time.Duration
	failExpires int
	expireCalls int
}

func startCounterServer(t *testing.T, failExpires int) (*counterServer, string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	srv := &counterServer{
		counters:    map[string]int64{},
		ttls:        map[string]time.Duration{},
		failExpires: failExpires,
	}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go srv.serve(conn)
		}
	}()
	return srv, ln.Addr().String()
}

func (s *counterServer) serve(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	for {
		args, err := readCommand(r)
		if err != nil {
			return
		}
		if _, err := io.WriteString(conn, s.handle(args)); err != nil {
			return
		}
	}
}

func (s *counterServer) handle(args []string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch strings.ToLower(args[0]) {
	case "ping":
		return "+PONG\r\n"
	case "incr":
		s.counters[args[1]]++
		return fmt.Sprintf(":%d\r\n", s.counters[args[1]])
	case "pttl":
		if _, ok := s.counters[args[1]]; !ok {
			return ":-2\r\n"
		}
		ttl, ok := s.ttls[args[1]]
		if !ok {
			return ":-1\r\n"
		}
		return fmt.Sprintf(":%d\r\n", ttl.Milliseconds())
	case "expire":
		s.expireCalls++
		if s.failExpires > 0 {
			s.failExpires--
			return "-ERR transient\r\n"
		}
		seconds, _ := strconv.Atoi(args[2])
		s.ttls[args[1]] = time.Duration(seconds) * time.Second
		return ":1\r\n"
	default:
		return "-ERR unknown command\r\n"
	}
}

func readCommand(r *bufio.Reader) ([]string, error) {
	header, err := r.ReadString('\n')
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(header, "*")))
	if err != nil || n < 1 {
		return nil, fmt.Errorf("bad command header %q", header)
	}
	args := make([]string, 0, n)
	for i := 0; i < n; i++ {
		lenLine, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		size, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(lenLine, "$")))
		if err != nil {
			return nil, err
		}
		buf := make([]byte, size+2)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		args = append(args, string(buf[:size]))
	}
	return args, nil
}

func TestRedisAdapter_Increment_SetsExpiry(t *testing.T) {
	srv, addr := startCounterServer(t, 0)
	client := goredis.NewClient(&goredis.Options{Addr: addr, Protocol: 2})
	t.Cleanup(func() { _ = client.Close() })
	adapter := cache.NewRedisAdapter(redisclient.NewFromRedis(client))

	count, ttl, err := adapter.Increment(context.Background(), "srq20:ratelimit:10.0.0.2", 60)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, time.Minute, ttl)

	srv.mu.Lock()
	srv.ttls["srq20:ratelimit:10.0.0.2"] = 42 * time.Second
	srv.mu.Unlock()

	count, ttl, err = adapter.Increment(context.Background(), "srq20:ratelimit:10.0.0.2", 60)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Equal(t, 42*time.Second, ttl)

	srv.mu.Lock()
	defer srv.mu.Unlock()
	assert.Equal(t, 1, srv.expireCalls)
}

func TestRedisAdapter_Increment_RetriesFailedExpiry(t *testing.T) {
	srv, addr := startCounterServer(t, 1)
	client := goredis.NewClient(&goredis.Options{Addr: addr, Protocol: 2})
	t.Cleanup(func() { _ = client.Close() })
	adapter := cache.NewRedisAdapter(redisclient.NewFromRedis(client))
	key := "srq20:ratelimit:10.0.0.3"

	count, _, err := adapter.Increment(context.Background(), key, 60)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to set counter expiry")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
	assert.Equal(t, int64(1), count)

	count, ttl, err := adapter.Increment(context.Background(), key, 60)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Equal(t, time.Minute, ttl)

	srv.mu.Lock()
	defer srv.mu.Unlock()
	assert.Equal(t, 2, srv.expireCalls)
	assert.Equal(t, time.Minute, srv.ttls[key])
}
