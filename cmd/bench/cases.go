// README: Bench checks for the shuttle API; HTTP contract, DB/Redis side effects and load.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	StatusPass    = "PASS"
	StatusFail    = "FAIL"
	StatusPending = "PENDING"
	StatusSkip    = "SKIP"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client

	// reservationID is set by the create check and reused by later checks.
	reservationID string
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))
	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-7s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}
	return results
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	travelDate := time.Now().AddDate(0, 0, 10).Format("2006-01-02")

	return []TestCase{
		{Name: "Env: Postgres connect", Run: checkPostgres},
		{Name: "Env: Redis connect", Run: checkRedis},
		{Name: "Migration: apply (optional)", Run: applyMigration},
		{Name: "Migration: tables exist", Run: checkTables},

		httpCase("API: health", http.MethodGet, base+"/health", nil, []int{200}),
		httpCase("API: metrics exposed", http.MethodGet, base+"/metrics", nil, []int{200}),
		httpCase("Rules: fare rule table", http.MethodGet, base+"/api/fare-rules", nil, []int{200}),

		httpCase("Quote: explicit base price", http.MethodPost, base+"/api/quotes", map[string]any{
			"base_price":  60000,
			"destination": "Pucón",
			"travel_date": travelDate,
			"travel_time": "08:00",
		}, []int{200}),
		httpCase("Quote: unparseable date -> 400", http.MethodPost, base+"/api/quotes", map[string]any{
			"base_price":  60000,
			"travel_date": "mañana",
		}, []int{400}),
		httpCase("Quote: unknown destination -> 404", http.MethodPost, base+"/api/quotes", map[string]any{
			"destination": "bench-nowhere",
			"travel_date": travelDate,
		}, []int{404}),
		{
			Name: "Quote: catalogue base price",
			Run: func(ctx context.Context, r *Runner) Result {
				code, latency, err := doJSON(ctx, r, http.MethodPost, base+"/api/quotes", map[string]any{
					"destination": r.cfg.Destination,
					"travel_date": travelDate,
				}, nil)
				return pendingOn404(code, latency, err, []int{200}, "no tariff for "+r.cfg.Destination)
			},
		},
		{Name: "Cache: tariff cached in Redis", Run: checkTariffCached},

		httpCase("Payment: options without promo", http.MethodPost, base+"/api/payment-options", map[string]any{
			"total": 84000,
		}, []int{200}),
		httpCase("Payment: unknown promo -> 404", http.MethodPost, base+"/api/payment-options", map[string]any{
			"total":      84000,
			"promo_code": "BENCH-NOPE",
		}, []int{404}),

		{
			Name: "Reservation: create",
			Run: func(ctx context.Context, r *Runner) Result {
				var out struct {
					ID string `json:"id"`
				}
				code, latency, err := doJSON(ctx, r, http.MethodPost, base+"/api/reservations", map[string]any{
					"passenger_name": "Bench Runner",
					"email":          "bench@example.com",
					"origin":         "Aeropuerto Temuco",
					"destination":    r.cfg.Destination,
					"travel_date":    travelDate,
					"travel_time":    "10:00",
					"passengers":     1,
					"payment_option": "deposit",
				}, &out)
				r.reservationID = out.ID
				return pendingOn404(code, latency, err, []int{201}, "no tariff for "+r.cfg.Destination)
			},
		},
		{Name: "Reservation: row and event persisted", Run: checkReservationPersisted},
		{
			Name: "Concurrency: one cancel wins",
			Run: func(ctx context.Context, r *Runner) Result {
				return concurrentCancel(ctx, r, base)
			},
		},
		httpCase("Admin: confirm without token -> 401", http.MethodPost, base+"/api/admin/reservations/x/confirm", nil, []int{401}),

		{
			Name: "Perf: quote throughput",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, base+"/api/quotes", map[string]any{
					"base_price":  60000,
					"destination": "Pucón",
					"travel_date": travelDate,
					"travel_time": "08:00",
				})
			},
		},
	}
}

func checkPostgres(ctx context.Context, r *Runner) Result {
	if r.db == nil {
		return Result{Status: StatusFail, Note: "db not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := r.db.Ping(ctx); err != nil {
		return Result{Status: StatusFail, Note: err.Error()}
	}
	return Result{Status: StatusPass}
}

func checkRedis(ctx context.Context, r *Runner) Result {
	if r.redis == nil {
		return Result{Status: StatusFail, Note: "redis not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := r.redis.Ping(ctx).Err(); err != nil {
		return Result{Status: StatusFail, Note: err.Error()}
	}
	return Result{Status: StatusPass}
}

func applyMigration(ctx context.Context, r *Runner) Result {
	if !r.cfg.ApplyMigration {
		return Result{Status: StatusSkip, Note: "apply-migration=false"}
	}
	if r.db == nil {
		return Result{Status: StatusFail, Note: "db not configured"}
	}
	sql, err := os.ReadFile(r.cfg.MigrationPath)
	if err != nil {
		return Result{Status: StatusFail, Note: err.Error()}
	}
	for _, s := range splitSQL(string(sql)) {
		if _, err := r.db.Exec(ctx, s); err != nil {
			return Result{Status: StatusFail, Note: err.Error()}
		}
	}
	return Result{Status: StatusPass}
}

func checkTables(ctx context.Context, r *Runner) Result {
	if r.db == nil {
		return Result{Status: StatusFail, Note: "db not configured"}
	}
	tables, err := extractTables(r.cfg.MigrationPath)
	if err != nil {
		return Result{Status: StatusFail, Note: err.Error()}
	}
	for _, t := range tables {
		var exists bool
		err := r.db.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
			t,
		).Scan(&exists)
		if err != nil {
			return Result{Status: StatusFail, Note: err.Error()}
		}
		if !exists {
			return Result{Status: StatusFail, Note: "missing table: " + t}
		}
	}
	return Result{Status: StatusPass, Note: fmt.Sprintf("%d tables", len(tables))}
}

func checkTariffCached(ctx context.Context, r *Runner) Result {
	if r.redis == nil {
		return Result{Status: StatusSkip, Note: "redis not configured"}
	}
	key := "tariff:" + strings.ToLower(r.cfg.Destination)
	n, err := r.redis.Exists(ctx, key).Result()
	if err != nil {
		return Result{Status: StatusFail, Note: err.Error()}
	}
	if n == 0 {
		return Result{Status: StatusPending, Note: "no cache entry " + key}
	}
	ttl, _ := r.redis.TTL(ctx, key).Result()
	return Result{Status: StatusPass, Note: fmt.Sprintf("ttl=%s", ttl)}
}

func checkReservationPersisted(ctx context.Context, r *Runner) Result {
	if r.reservationID == "" {
		return Result{Status: StatusSkip, Note: "no reservation created"}
	}
	if r.db == nil {
		return Result{Status: StatusSkip, Note: "db not configured"}
	}
	var (
		status string
		events int
	)
	err := r.db.QueryRow(ctx, `
        SELECT r.status, (SELECT COUNT(*) FROM reservation_events e WHERE e.reservation_id = r.id)
        FROM reservations r WHERE r.id = $1`, r.reservationID,
	).Scan(&status, &events)
	if err != nil {
		return Result{Status: StatusFail, Note: err.Error()}
	}
	if status != "pending" || events < 1 {
		return Result{Status: StatusFail, Note: fmt.Sprintf("status=%s events=%d", status, events)}
	}
	return Result{Status: StatusPass}
}

func httpCase(name, method, url string, body any, okStatuses []int) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			code, latency, err := doJSON(ctx, r, method, url, body, nil)
			return judge(code, latency, err, okStatuses)
		},
	}
}

// doJSON sends body as JSON and decodes a 2xx response into out when non-nil.
func doJSON(ctx context.Context, r *Runner, method, url string, body, out any) (int, time.Duration, error) {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	start := time.Now()
	resp, err := r.httpc.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		_ = json.NewDecoder(resp.Body).Decode(out)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, time.Since(start), nil
}

func judge(code int, latency time.Duration, err error, ok []int) Result {
	if err != nil {
		return Result{Status: StatusFail, Note: err.Error()}
	}
	note := fmt.Sprintf("status=%d", code)
	if contains(ok, code) {
		return Result{Status: StatusPass, Latency: latency, Note: note}
	}
	return Result{Status: StatusFail, Latency: latency, Note: note}
}

// pendingOn404 reports a missing catalogue entry as PENDING rather than FAIL.
func pendingOn404(code int, latency time.Duration, err error, ok []int, note string) Result {
	if err == nil && code == http.StatusNotFound {
		return Result{Status: StatusPending, Latency: latency, Note: note}
	}
	return judge(code, latency, err, ok)
}

func concurrentCancel(ctx context.Context, r *Runner, base string) Result {
	if r.reservationID == "" {
		return Result{Status: StatusSkip, Note: "no reservation created"}
	}
	url := base + "/api/reservations/" + r.reservationID + "/cancel"

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succ, cfl int
	)
	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			code, _, err := doJSON(ctx, r, http.MethodPost, url, map[string]any{"reason": "bench"}, nil)
			if err != nil {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			switch {
			case code >= 200 && code < 300:
				succ++
			case code == http.StatusConflict:
				cfl++
			}
		}()
	}
	wg.Wait()

	note := fmt.Sprintf("success=%d conflict=%d", succ, cfl)
	if succ == 1 {
		return Result{Status: StatusPass, Note: note}
	}
	return Result{Status: StatusFail, Note: note}
}

func perfLoad(ctx context.Context, r *Runner, url string, payload any) Result {
	end := time.Now().Add(r.cfg.Duration)
	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		latencies []time.Duration
		errCount  int
	)
	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				code, latency, err := doJSON(ctx, r, http.MethodPost, url, payload, nil)
				mu.Lock()
				if err != nil || code >= 500 {
					errCount++
				} else {
					latencies = append(latencies, latency)
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(latencies) == 0 {
		return Result{Status: StatusFail, Note: "no requests completed"}
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	rps := float64(len(latencies)) / r.cfg.Duration.Seconds()
	return Result{Status: StatusPass, Note: fmt.Sprintf("rps=%.1f p50=%s p95=%s errors=%d",
		rps, percentile(latencies, 0.50), percentile(latencies, 0.95), errCount)}
}

// percentile expects sorted input.
func percentile(sorted []time.Duration, p float64) time.Duration {
	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}

func contains(list []int, v int) bool {
	for _, i := range list {
		if i == v {
			return true
		}
	}
	return false
}

func extractTables(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	re := regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)
	matches := re.FindAllStringSubmatch(string(b), -1)
	tables := make([]string, 0, len(matches))
	for _, m := range matches {
		tables = append(tables, m[1])
	}
	return tables, nil
}

func splitSQL(sql string) []string {
	lines := strings.Split(sql, "\n")
	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		l := strings.TrimSpace(line)
		if strings.HasPrefix(l, "--") || l == "" {
			continue
		}
		filtered = append(filtered, line)
	}
	parts := strings.Split(strings.Join(filtered, "\n"), ";")
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
