package intergration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/dmehra2102/flash-sale-inventory/internal/inventory/application"
	"github.com/dmehra2102/flash-sale-inventory/internal/inventory/domain"
	invhttp "github.com/dmehra2102/flash-sale-inventory/internal/inventory/infrastructure/http"
	invredis "github.com/dmehra2102/flash-sale-inventory/internal/inventory/infrastructure/redis"
	"github.com/dmehra2102/flash-sale-inventory/pkg/logging"
)

const stockKey = "product_stock"

func TestInventoryAgainstRedis(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test needs docker")
	}

	ctx := context.Background()
	env, err := Setup(ctx)
	if err != nil {
		t.Skipf("container environment unavailable: %v", err)
	}
	defer env.Teardown(ctx)

	opts, err := goredis.ParseURL(env.URL)
	require.NoError(t, err)
	opts.PoolSize = 100
	rdb := goredis.NewClient(opts)
	defer rdb.Close()

	log := logging.New("inventory-service-test")
	store := invredis.NewStore(log, rdb)
	require.NoError(t, store.Ping(ctx))

	svc := application.NewService(store, stockKey, 50*time.Millisecond)
	srv := httptest.NewServer(invhttp.NewHandler(log, svc, 50).Routes())
	defer srv.Close()

	t.Run("DecrementScript", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, stockKey, 2))

		res, err := store.DecrementIfPositive(ctx, stockKey)
		require.NoError(t, err)
		assert.True(t, res.Decremented)
		assert.EqualValues(t, 1, res.Remaining)

		res, err = store.DecrementIfPositive(ctx, stockKey)
		require.NoError(t, err)
		assert.True(t, res.Decremented)
		assert.EqualValues(t, 0, res.Remaining)

		// Depleted: no decrement, value pinned at zero.
		res, err = store.DecrementIfPositive(ctx, stockKey)
		require.NoError(t, err)
		assert.False(t, res.Decremented)
		assert.EqualValues(t, 0, res.Remaining)

		v, present, err := store.Get(ctx, stockKey)
		require.NoError(t, err)
		assert.True(t, present)
		assert.EqualValues(t, 0, v)
	})

	t.Run("DecrementMissingKey", func(t *testing.T) {
		require.NoError(t, rdb.Del(ctx, stockKey).Err())

		res, err := store.DecrementIfPositive(ctx, stockKey)
		require.NoError(t, err)
		assert.False(t, res.Decremented)
		assert.EqualValues(t, 0, res.Remaining)

		_, present, err := store.Get(ctx, stockKey)
		require.NoError(t, err)
		assert.False(t, present, "failed decrement must not create the key")
	})

	t.Run("SeedOnlyWhenAbsent", func(t *testing.T) {
		require.NoError(t, rdb.Del(ctx, stockKey).Err())

		seeded, err := store.InitIfAbsent(ctx, stockKey, 50)
		require.NoError(t, err)
		assert.True(t, seeded)

		seeded, err = store.InitIfAbsent(ctx, stockKey, 99)
		require.NoError(t, err)
		assert.False(t, seeded)

		v, _, err := store.Get(ctx, stockKey)
		require.NoError(t, err)
		assert.EqualValues(t, 50, v)
	})

	t.Run("SafeFlashSale", func(t *testing.T) {
		successes, failures := runSale(t, srv.URL, "/purchase/safe", 50, 500)
		assert.Equal(t, 50, successes, "exactly the stock may sell")
		assert.Equal(t, 450, failures)
		assert.EqualValues(t, 0, getStock(t, srv.URL))
	})

	t.Run("UnsafeFlashSaleOversells", func(t *testing.T) {
		successes, _ := runSale(t, srv.URL, "/purchase/unsafe", 20, 200)
		assert.Greater(t, successes, 20, "lost updates must oversell")
	})

	t.Run("DepletedCounter", func(t *testing.T) {
		resetStock(t, srv.URL, 0)

		resp, err := http.Post(srv.URL+"/purchase/safe", "application/json", nil)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var outcome domain.PurchaseOutcome
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&outcome))
		assert.False(t, outcome.Success)
		assert.EqualValues(t, 0, getStock(t, srv.URL))
	})

	t.Run("ResetValidation", func(t *testing.T) {
		resetStock(t, srv.URL, 7)

		resp, err := http.Post(srv.URL+"/reset?value=-1", "application/json", nil)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.EqualValues(t, 7, getStock(t, srv.URL), "rejected reset must not mutate")
	})

	t.Run("PoolBound", func(t *testing.T) {
		resetStock(t, srv.URL, 1000)

		bounded := goredis.NewClient(&goredis.Options{Addr: opts.Addr, PoolSize: 5})
		defer bounded.Close()
		boundedStore := invredis.NewStore(log, bounded)

		g, gctx := errgroup.WithContext(ctx)
		for i := 0; i < 100; i++ {
			g.Go(func() error {
				_, err := boundedStore.DecrementIfPositive(gctx, stockKey)
				return err
			})
		}
		require.NoError(t, g.Wait())
		assert.LessOrEqual(t, bounded.PoolStats().TotalConns, uint32(5))
	})
}

func runSale(t *testing.T, baseURL, path string, stock int64, buyers int) (successes, failures int) {
	t.Helper()
	resetStock(t, baseURL, stock)

	results := make(chan bool, buyers)
	g, _ := errgroup.WithContext(context.Background())
	for i := 0; i < buyers; i++ {
		g.Go(func() error {
			resp, err := http.Post(baseURL+path, "application/json", nil)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			var outcome domain.PurchaseOutcome
			if err := json.NewDecoder(resp.Body).Decode(&outcome); err != nil {
				return err
			}
			results <- outcome.Success
			return nil
		})
	}
	require.NoError(t, g.Wait())
	close(results)

	for ok := range results {
		if ok {
			successes++
		} else {
			failures++
		}
	}
	return successes, failures
}

func resetStock(t *testing.T, baseURL string, value int64) {
	t.Helper()
	resp, err := http.Post(baseURL+"/reset?value="+strconv.FormatInt(value, 10), "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func getStock(t *testing.T, baseURL string) int64 {
	t.Helper()
	resp, err := http.Get(baseURL + "/stock")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Stock int64 `json:"stock"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Stock
}
