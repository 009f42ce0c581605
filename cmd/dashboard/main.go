package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"

	appconfig "github.com/apexcrm/leadflow/internal/config"
	"github.com/apexcrm/leadflow/internal/dashboard"
	"github.com/apexcrm/leadflow/internal/leads"
	"github.com/apexcrm/leadflow/pkg/logging"
)

// Text rendering of the lead dashboard, for terminals and smoke
// checks. Falls back to sample data when the API is unreachable.
func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.NewText(cfg.LogLevel)

	baseURL := getenvDefault("API_BASE_URL", "http://localhost:"+cfg.Port)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var source dashboard.LeadSource
	token, err := login(ctx, baseURL, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		logger.Warn("login failed, dashboard will use sample data", "error", err)
		source = &dashboard.SampleSource{Count: cfg.SampleLeadCount}
	} else {
		source = dashboard.NewRemoteSource(baseURL, token, logger)
	}

	vm := dashboard.NewViewModel(source, &dashboard.SampleSource{Count: cfg.SampleLeadCount}, logger)
	if err := vm.Refresh(ctx); err != nil {
		logger.Error("failed to load leads", "error", err)
		return
	}

	render(vm)
}

func render(vm *dashboard.ViewModel) {
	list := vm.Leads()

	fmt.Println("=== Lead Dashboard ===")
	if vm.UsingSample() {
		fmt.Println("(sample data)")
	}
	fmt.Printf("Total leads:     %d\n", len(list))
	fmt.Printf("Conversion rate: %d%%\n", vm.ConversionRate())

	fmt.Println("\nBy status:")
	byStatus := vm.StatusCounts()
	for _, status := range leads.Statuses {
		fmt.Printf("  %-10s %d\n", status, byStatus[status])
	}

	fmt.Println("\nBy source:")
	bySource := vm.SourceCounts()
	sources := make([]string, 0, len(bySource))
	for source := range bySource {
		sources = append(sources, source)
	}
	sort.Slice(sources, func(i, j int) bool {
		if bySource[sources[i]] != bySource[sources[j]] {
			return bySource[sources[i]] > bySource[sources[j]]
		}
		return sources[i] < sources[j]
	})
	for _, source := range sources {
		fmt.Printf("  %-12s %d\n", source, bySource[source])
	}

	fmt.Println("\nLast 7 days:")
	for _, point := range vm.Timeline(time.Now()) {
		fmt.Printf("  %s %s\n", point.Date, strings.Repeat("#", point.Count))
	}

	fmt.Println("\nMost recent:")
	for i, lead := range list {
		if i == 5 {
			break
		}
		fmt.Printf("  %-22s %-32s %-10s %s\n",
			lead.Name, lead.Email, lead.Status, lead.CreatedAt.Format("2006-01-02"))
	}
}

// login fetches a bearer token from the API. Returns an error when
// credentials are missing or rejected.
func login(ctx context.Context, baseURL, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD are required")
	}

	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(baseURL, "/")+"/api/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login: status %d", resp.StatusCode)
	}

	var decoded struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	if decoded.Token == "" {
		return "", fmt.Errorf("login: empty token in response")
	}
	return decoded.Token, nil
}

func getenvDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
