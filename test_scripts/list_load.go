package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// listQuery is one randomly shaped list request
type listQuery struct {
	resource string
	params   url.Values
}

var searchTerms = map[string][]string{
	"users":        {"ada", "grace", "example"},
	"logs":         {"delivered", "failed", "WhatsApp"},
	"projects":     {"api", "alerts"},
	"transactions": {"top-up", "refund"},
	"campaigns":    {"spring", "launch"},
	"webhooks":     {"hooks"},
}

// randomQuery builds a list request with a random page, limit, search and date window
func randomQuery(rng *rand.Rand) listQuery {
	resources := []string{"users", "logs", "projects", "transactions", "campaigns", "webhooks"}
	res := resources[rng.IntN(len(resources))]

	params := url.Values{}
	params.Set("page", strconv.Itoa(rng.IntN(5)+1))
	params.Set("limit", strconv.Itoa([]int{5, 10, 20, 50}[rng.IntN(4)]))
	if rng.IntN(2) == 0 {
		terms := searchTerms[res]
		params.Set("search", terms[rng.IntN(len(terms))])
	}
	if rng.IntN(3) == 0 {
		params.Set("startDate", "2024-03-01")
		params.Set("endDate", "2024-06-01")
	}
	return listQuery{resource: res, params: params}
}

// login exchanges an email for a bearer token
func login(baseURL, email string) (string, error) {
	body, err := json.Marshal(map[string]string{"email": email})
	if err != nil {
		return "", fmt.Errorf("failed to marshal login: %w", err)
	}

	resp, err := http.Post(baseURL+"/api/auth/login", "application/json", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	var token struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("failed to decode token: %w", err)
	}
	return token.Token, nil
}

// fetchPage sends one list request and checks the page envelope
func fetchPage(client *http.Client, baseURL, token string, q listQuery) error {
	req, err := http.NewRequest(http.MethodGet, baseURL+"/api/"+q.resource+"?"+q.params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	var page struct {
		Items []map[string]interface{} `json:"items"`
		Limit int                      `json:"limit"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return fmt.Errorf("failed to decode page: %w", err)
	}
	if len(page.Items) > page.Limit {
		return fmt.Errorf("page holds %d records, limit is %d", len(page.Items), page.Limit)
	}
	return nil
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run test_scripts/list_load.go <number_of_requests> [server_url] [workers]")
		fmt.Println("Example: go run test_scripts/list_load.go 1000")
		fmt.Println("Example: go run test_scripts/list_load.go 5000 http://localhost:8080 16")
		os.Exit(1)
	}

	numRequests, err := strconv.Atoi(os.Args[1])
	if err != nil || numRequests <= 0 {
		fmt.Printf("Error: Invalid number of requests '%s'. Please provide a positive integer.\n", os.Args[1])
		os.Exit(1)
	}

	serverURL := "http://localhost:8080"
	if len(os.Args) >= 3 {
		serverURL = os.Args[2]
	}
	workers := 8
	if len(os.Args) >= 4 {
		if workers, err = strconv.Atoi(os.Args[3]); err != nil || workers <= 0 {
			fmt.Printf("Error: Invalid worker count '%s'\n", os.Args[3])
			os.Exit(1)
		}
	}

	email := os.Getenv("CPAAS_LOAD_EMAIL")
	if email == "" {
		email = "ada.lovelace@cpaas.example"
	}
	token, err := login(serverURL, email)
	if err != nil {
		fmt.Printf("Error: login as %s failed: %v\n", email, err)
		os.Exit(1)
	}

	fmt.Printf("Starting load test: %d list requests against %s with %d workers\n", numRequests, serverURL, workers)

	client := &http.Client{Timeout: 10 * time.Second}
	startTime := time.Now()
	var successCount, errorCount atomic.Int64

	jobs := make(chan listQuery)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for q := range jobs {
				if err := fetchPage(client, serverURL, token, q); err != nil {
					errorCount.Add(1)
					fmt.Printf("Error listing %s?%s: %v\n", q.resource, q.params.Encode(), err)
					continue
				}
				successCount.Add(1)
			}
		}()
	}

	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	reportInterval := max(1, numRequests/10)
	for i := 0; i < numRequests; i++ {
		jobs <- randomQuery(rng)
		if (i+1)%reportInterval == 0 {
			elapsed := time.Since(startTime)
			fmt.Printf("Progress: %d/%d requests dispatched (%.1f%%) - Rate: %.1f req/sec\n",
				i+1, numRequests, float64(i+1)/float64(numRequests)*100, float64(i+1)/elapsed.Seconds())
		}
	}
	close(jobs)
	wg.Wait()

	totalTime := time.Since(startTime)
	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("LOAD TEST COMPLETE")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Total requests:        %d\n", numRequests)
	fmt.Printf("Successful requests:   %d\n", successCount.Load())
	fmt.Printf("Failed requests:       %d\n", errorCount.Load())
	fmt.Printf("Total time:            %v\n", totalTime)
	fmt.Printf("Average rate:          %.2f req/sec\n", float64(numRequests)/totalTime.Seconds())

	if errorCount.Load() > 0 {
		fmt.Printf("\nWarning: %d errors occurred during the load test\n", errorCount.Load())
		os.Exit(1)
	}
	fmt.Println("\nLoad test completed successfully!")
}
