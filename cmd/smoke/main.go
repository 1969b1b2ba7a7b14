// Command smoke drives one split through configure, checkout and payment
// against a running server seeded by cmd/seed.
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
	"time"

	"organizer/internal/shared/config"
	"organizer/internal/shared/constants"

	"github.com/golang-jwt/jwt/v4"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

type StepResult struct {
	Step         string        `json:"step"`
	StatusCode   int           `json:"status_code"`
	ResponseTime time.Duration `json:"response_time"`
	Success      bool          `json:"success"`
	Error        string        `json:"error,omitempty"`
}

type SmokeSuite struct {
	BaseURL string
	Token   string
	Secret  string
	Client  *http.Client
	Results []StepResult
}

type envelope struct {
	Status    string          `json:"status"`
	ErrorCode string          `json:"errorCode"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	base := flag.String("base", fmt.Sprintf("http://localhost:%s", cfg.Port), "server root URL")
	orgID := flag.Uint("org", 1, "organization id")
	bookingID := flag.Uint("booking", 1, "booking id")
	inviteID := flag.Uint("invite-id", 1, "invite id on the booking")
	inviteToken := flag.String("invite-token", "", "token of the same invite")
	subject := flag.String("sub", "6c1f3b8e-2d4a-4b7e-9f0a-1a2b3c4d5e01", "JWT subject of an org booking manager")
	report := flag.String("report", "smoke_results.json", "where to write the JSON report")
	flag.Parse()

	if *inviteToken == "" {
		fmt.Println("❌ -invite-token is required (printed by cmd/seed)")
		os.Exit(2)
	}

	token, err := signToken(cfg, *subject)
	if err != nil {
		fmt.Printf("❌ Failed to sign token: %v\n", err)
		os.Exit(1)
	}

	suite := &SmokeSuite{
		BaseURL: *base,
		Token:   token,
		Secret:  cfg.Internal.WebhookSecret,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}

	fmt.Println("🧪 Starting split smoke run...")
	fmt.Println("==============================")

	if err := testRedisConnection(cfg); err != nil {
		fmt.Printf("❌ Redis connection failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✅ Redis connection: OK")

	splitPath := fmt.Sprintf("%s/org/%d/bookings/%d/split", cfg.GetAPIBasePath(), *orgID, *bookingID)

	suite.call("health", http.MethodGet, "/health", nil, false)
	suite.call("configure split", http.MethodPost, splitPath, map[string]interface{}{
		"pricingMode": "FIXED",
		"deadlineAt":  time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339),
		"participants": []map[string]interface{}{
			{"inviteId": *inviteID},
			{"name": "Walk-in", "contact": "walkin@example.com"},
		},
	}, true)
	suite.call("get split", http.MethodGet, splitPath, nil, true)

	checkout := suite.call("checkout", http.MethodPost,
		fmt.Sprintf("%s/invites/%s/split/checkout", cfg.GetAPIBasePath(), *inviteToken),
		map[string]string{"paymentMethod": "mbway"}, true)

	var quote struct {
		PurchaseID  string `json:"purchaseId"`
		AmountCents int64  `json:"amountCents"`
	}
	if checkout != nil && json.Unmarshal(checkout, &quote) == nil && quote.PurchaseID != "" {
		fmt.Printf("   💶 %s owes %d cents\n", quote.PurchaseID, quote.AmountCents)
		suite.call("confirm payment", http.MethodPost, cfg.GetAPIBasePath()+"/internal/splits/payments", map[string]string{
			"purchaseId":      quote.PurchaseID,
			"paymentIntentId": fmt.Sprintf("pi_smoke_%d", time.Now().Unix()),
		}, false)
	}

	suite.checkFeeCache(cfg)
	suite.generateReport(*report)
}

func signToken(cfg *config.Config, subject string) (string, error) {
	claims := jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(15 * time.Minute).Unix(),
	}
	if cfg.JWT.Issuer != "" {
		claims["iss"] = cfg.JWT.Issuer
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWT.Secret))
}

func testRedisConnection(cfg *config.Config) error {
	client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return client.Ping(ctx).Err()
}

// call records one request and returns the envelope's data on success.
func (s *SmokeSuite) call(step, method, path string, body interface{}, bearer bool) json.RawMessage {
	fmt.Printf("\n🔍 %s: %s %s\n", step, method, path)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			s.record(StepResult{Step: step, Error: err.Error()})
			return nil
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, s.BaseURL+path, reader)
	if err != nil {
		s.record(StepResult{Step: step, Error: err.Error()})
		return nil
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(constants.HeaderRequestID, fmt.Sprintf("smoke-%d", time.Now().UnixNano()))
	if bearer {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}
	if s.Secret != "" {
		req.Header.Set(constants.HeaderInternalSecret, s.Secret)
	}

	start := time.Now()
	resp, err := s.Client.Do(req)
	if err != nil {
		s.record(StepResult{Step: step, ResponseTime: time.Since(start), Error: err.Error()})
		return nil
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	result := StepResult{
		Step:         step,
		StatusCode:   resp.StatusCode,
		ResponseTime: time.Since(start),
		Success:      resp.StatusCode >= 200 && resp.StatusCode < 300,
	}

	var env envelope
	_ = json.Unmarshal(raw, &env)
	if !result.Success {
		result.Error = fmt.Sprintf("HTTP %d %s: %s", resp.StatusCode, env.ErrorCode, env.Message)
	}
	s.record(result)

	if !result.Success {
		return nil
	}
	return env.Data
}

func (s *SmokeSuite) record(result StepResult) {
	s.Results = append(s.Results, result)

	statusIcon := "✅"
	if !result.Success {
		statusIcon = "❌"
	}
	fmt.Printf("   %s [%d] %v %s\n", statusIcon, result.StatusCode, result.ResponseTime, result.Error)
}

// checkFeeCache confirms the configure call populated the platform fee cache.
func (s *SmokeSuite) checkFeeCache(cfg *config.Config) {
	client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	defer client.Close()

	ttl, err := client.TTL(context.Background(), constants.CACHE_KEY_PLATFORM_FEES).Result()
	result := StepResult{Step: "fee cache", Success: err == nil && ttl > 0}
	if !result.Success {
		result.Error = fmt.Sprintf("key %s not cached (ttl=%v, err=%v)", constants.CACHE_KEY_PLATFORM_FEES, ttl, err)
	}
	fmt.Printf("\n🔍 fee cache: %s\n", constants.CACHE_KEY_PLATFORM_FEES)
	s.record(result)
}

func (s *SmokeSuite) generateReport(path string) {
	fmt.Println("\n📊 SMOKE REPORT")
	fmt.Println("===============")

	successful := 0
	var total time.Duration
	for _, result := range s.Results {
		if result.Success {
			successful++
		}
		total += result.ResponseTime
	}

	fmt.Printf("Steps: %d\n", len(s.Results))
	fmt.Printf("Successful: %d\n", successful)
	if len(s.Results) > 0 {
		fmt.Printf("Average Response Time: %v\n", total/time.Duration(len(s.Results)))
	}

	reportData, err := json.MarshalIndent(map[string]interface{}{
		"summary": map[string]interface{}{
			"steps":      len(s.Results),
			"successful": successful,
		},
		"results": s.Results,
	}, "", "  ")
	if err == nil {
		err = os.WriteFile(path, reportData, 0o644)
	}
	if err != nil {
		fmt.Printf("❌ Failed to write report: %v\n", err)
		return
	}
	fmt.Printf("\n💾 Detailed results saved to %s\n", path)

	if successful != len(s.Results) {
		os.Exit(1)
	}
}
