// Command perfchat replays scripted conversations against a running chatbot
// instance and reports turn latency percentiles.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"net/http"
	"os"
	"sort"
	"time"
)

var defaultScript = []string{
	"Hello!",
	"Is there an outlet in Petaling Jaya?",
	"What time does the SS 2 outlet open?",
	"Can you calculate 15 + 25 * 2?",
	"what coffee products do you have",
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
	Intent   string `json:"intent"`
}

func main() {
	var (
		baseURL  = flag.String("url", "http://127.0.0.1:8080", "chatbot base URL")
		sessions = flag.Int("sessions", 4, "number of concurrent-style sessions to replay")
		rounds   = flag.Int("rounds", 10, "script repetitions per session")
		verbose  = flag.Bool("v", false, "print every reply")
	)
	flag.Parse()

	if *sessions < 1 || *rounds < 1 {
		fmt.Fprintln(os.Stderr, "sessions and rounds must be positive")
		os.Exit(2)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	var latencies []float64
	failures := 0

	start := time.Now()
	for s := 0; s < *sessions; s++ {
		sessionID := fmt.Sprintf("perfchat-%d-%d", time.Now().UnixNano(), s)
		for r := 0; r < *rounds; r++ {
			for _, msg := range defaultScript {
				ms, reply, err := sendTurn(client, *baseURL, sessionID, msg)
				if err != nil {
					failures++
					fmt.Fprintf(os.Stderr, "turn failed: %v\n", err)
					continue
				}
				latencies = append(latencies, ms)
				if *verbose {
					fmt.Printf("[%s] %s -> (%s) %s\n", sessionID, msg, reply.Intent, reply.Response)
				}
			}
		}
	}
	elapsed := time.Since(start)

	if len(latencies) == 0 {
		fmt.Fprintln(os.Stderr, "no successful turns")
		os.Exit(1)
	}
	fmt.Print(summarize(latencies, failures, elapsed))
}

func sendTurn(client *http.Client, baseURL, sessionID, message string) (float64, chatResponse, error) {
	body, err := json.Marshal(chatRequest{SessionID: sessionID, Message: message})
	if err != nil {
		return 0, chatResponse{}, err
	}

	start := time.Now()
	resp, err := client.Post(baseURL+"/v1/chat", "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, chatResponse{}, err
	}
	defer resp.Body.Close()
	ms := float64(time.Since(start).Microseconds()) / 1000.0

	if resp.StatusCode != http.StatusOK {
		return 0, chatResponse{}, fmt.Errorf("status %d for %q", resp.StatusCode, message)
	}
	var reply chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return 0, chatResponse{}, err
	}
	return ms, reply, nil
}

func summarize(latencies []float64, failures int, elapsed time.Duration) string {
	sorted := make([]float64, len(latencies))
	copy(sorted, latencies)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}

	return fmt.Sprintf(
		"turns: %d  failures: %d  elapsed: %s\navg: %.2fms  p50: %.2fms  p95: %.2fms  p99: %.2fms  max: %.2fms\n",
		len(sorted), failures, elapsed.Round(time.Millisecond),
		sum/float64(len(sorted)),
		percentile(sorted, 0.50),
		percentile(sorted, 0.95),
		percentile(sorted, 0.99),
		sorted[len(sorted)-1],
	)
}

// percentile interpolates over a sorted sample.
func percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	idx := q * float64(len(sorted)-1)
	lo := int(math.Floor(idx))
	hi := int(math.Ceil(idx))
	if lo == hi {
		return sorted[lo]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
