// http-loadgen is a tiny, dependency-light HTTP load generator for the habit
// API. It reuses HTTP connections (keep-alive) and supports concurrency so
// demo scripts run fast on Windows (Git Bash), Ubuntu (WSL), and macOS
// without relying on external tools.
//
// It registers a user, creates the requested number of habits, then drives
// the chosen mode:
//
//	reads: GET the habit list and habit pages (cache hit path)
//	logs:  POST one habit log per request, walking the date forward so the
//	       workflow commits instead of conflicting
//	mixed: interleave reads and log writes, exercising invalidation
//
// Usage examples:
//
//	http-loadgen -base=http://127.0.0.1:8080 -mode=reads -habits=5 -n=5000 -c=16
//	http-loadgen -base=http://127.0.0.1:8080 -mode=logs -habits=1 -n=300 -c=4
//
// Notes:
//   - Writes are rate limited server-side; 429s are counted, not retried.
//   - Prints a one-line summary with duration and approximate throughput.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type modeType string

const (
	modeReads modeType = "reads"
	modeLogs  modeType = "logs"
	modeMixed modeType = "mixed"
)

type user struct {
	ID string `json:"id"`
}

type habit struct {
	ID string `json:"id"`
}

func main() {
	var (
		base    = flag.String("base", "http://127.0.0.1:8080", "Base URL including scheme and host, e.g. http://127.0.0.1:8080")
		modeS   = flag.String("mode", string(modeReads), "Mode: reads|logs|mixed")
		habitsN = flag.Int("habits", 5, "Number of habits to create and spread load over")
		N       = flag.Int("n", 5000, "Total requests to send")
		conc    = flag.Int("c", 8, "Number of concurrent workers")
		start   = flag.String("start_date", "2020-01-01", "First log date for logs/mixed mode (YYYY-MM-DD)")
		// Timeouts & transport tuning
		timeout    = flag.Duration("timeout", 60*time.Second, "Overall timeout for the loadgen run")
		connIdle   = flag.Duration("idle_timeout", 30*time.Second, "HTTP idle connection timeout")
		maxIdle    = flag.Int("max_idle", 256, "Max idle connections total")
		maxIdlePer = flag.Int("max_idle_per_host", 256, "Max idle connections per host")
	)
	flag.Parse()

	m := modeType(strings.ToLower(*modeS))
	if m != modeReads && m != modeLogs && m != modeMixed {
		fmt.Fprintf(os.Stderr, "unknown -mode=%s (want reads|logs|mixed)\n", *modeS)
		os.Exit(2)
	}
	if *N <= 0 || *conc <= 0 || *habitsN <= 0 {
		fmt.Fprintln(os.Stderr, "-n, -c and -habits must be > 0")
		os.Exit(2)
	}
	startDate, err := time.ParseInLocation("2006-01-02", *start, time.UTC)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad -start_date: %v\n", err)
		os.Exit(2)
	}

	baseURL := strings.TrimRight(*base, "/")

	// Configure HTTP client with connection reuse
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        *maxIdle,
		MaxIdleConnsPerHost: *maxIdlePer,
		IdleConnTimeout:     *connIdle,
	}
	client := &http.Client{Transport: tr, Timeout: 5 * time.Second}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	userID, habitIDs, err := setup(ctx, client, baseURL, *habitsN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "setup failed: %v\n", err)
		os.Exit(1)
	}

	var ok, limited, failed int64
	// Each habit logs its own monotonically advancing date so every write
	// commits instead of hitting the duplicate-date conflict.
	dayCounters := make([]int64, len(habitIDs))

	startT := time.Now()
	worker := func(id, count int) {
		for i := 0; i < count; i++ {
			select {
			case <-ctx.Done():
				return
			default:
			}
			write := m == modeLogs || (m == modeMixed && (i+id)%2 == 0)
			hi := (i + id) % len(habitIDs)

			var req *http.Request
			if write {
				day := atomic.AddInt64(&dayCounters[hi], 1)
				body, _ := json.Marshal(map[string]interface{}{
					"start_date":  startDate.AddDate(0, 0, int(day)).Format(time.RFC3339),
					"logged":      true,
					"length_days": 1,
				})
				req, _ = http.NewRequestWithContext(ctx, http.MethodPost,
					baseURL+"/habits/"+habitIDs[hi]+"/logs", bytes.NewReader(body))
				req.Header.Set("Content-Type", "application/json")
			} else {
				path := "/habits"
				if i%2 == 1 {
					path = "/habits/" + habitIDs[hi] + "/logs?page=1"
				}
				req, _ = http.NewRequestWithContext(ctx, http.MethodGet, baseURL+path, nil)
			}
			req.Header.Set("X-User-ID", userID)

			resp, err := client.Do(req)
			if err != nil {
				atomic.AddInt64(&failed, 1)
				time.Sleep(200 * time.Microsecond)
				continue
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			switch {
			case resp.StatusCode < 300:
				atomic.AddInt64(&ok, 1)
			case resp.StatusCode == http.StatusTooManyRequests:
				atomic.AddInt64(&limited, 1)
			default:
				atomic.AddInt64(&failed, 1)
			}
		}
	}

	// Split N across conc workers
	per := *N / *conc
	rem := *N - per**conc
	var wg sync.WaitGroup
	wg.Add(*conc)
	for w := 0; w < *conc; w++ {
		count := per
		if w == *conc-1 {
			count += rem
		}
		go func(id, n int) {
			defer wg.Done()
			worker(id, n)
		}(w, count)
	}
	wg.Wait()
	elapsed := time.Since(startT)
	if elapsed <= 0 {
		elapsed = time.Millisecond
	}
	ops := float64(*N) / elapsed.Seconds()
	fmt.Printf("LoadGen: mode=%s N=%d c=%d go=%d ok=%d limited=%d failed=%d Duration=%s Throughput=%.0f req/s\n",
		m, *N, *conc, runtime.GOMAXPROCS(0), ok, limited, failed, elapsed.Truncate(time.Millisecond), ops)
}

// setup registers a load-test user and creates the habits the workers drive.
func setup(ctx context.Context, client *http.Client, baseURL string, habits int) (string, []string, error) {
	body, _ := json.Marshal(map[string]string{"name": "loadgen"})
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/users", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("register user: %w", err)
	}
	var u user
	err = json.NewDecoder(resp.Body).Decode(&u)
	_ = resp.Body.Close()
	if err != nil || u.ID == "" {
		return "", nil, fmt.Errorf("register user: bad response (status %d)", resp.StatusCode)
	}

	ids := make([]string, 0, habits)
	for i := 0; i < habits; i++ {
		body, _ := json.Marshal(map[string]string{"name": fmt.Sprintf("habit-%d", i+1)})
		req, _ := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/habits", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-ID", u.ID)
		resp, err := client.Do(req)
		if err != nil {
			return "", nil, fmt.Errorf("create habit %d: %w", i+1, err)
		}
		var h habit
		err = json.NewDecoder(resp.Body).Decode(&h)
		_ = resp.Body.Close()
		if err != nil || h.ID == "" {
			return "", nil, fmt.Errorf("create habit %d: bad response (status %d)", i+1, resp.StatusCode)
		}
		ids = append(ids, h.ID)
	}
	return u.ID, ids, nil
}
