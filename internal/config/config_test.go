package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// Clear environment
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.OrdersFile != "orders.json" {
		t.Errorf("OrdersFile = %q, want %q", cfg.OrdersFile, "orders.json")
	}
	if cfg.TelegramAPIBaseURL != "https://api.telegram.org" {
		t.Errorf("TelegramAPIBaseURL = %q, want default", cfg.TelegramAPIBaseURL)
	}
	if cfg.OTPTTL != "5m" {
		t.Errorf("OTPTTL = %q, want %q", cfg.OTPTTL, "5m")
	}
	if cfg.AdminTokenTTL != "24h" {
		t.Errorf("AdminTokenTTL = %q, want %q", cfg.AdminTokenTTL, "24h")
	}
	if cfg.TelemetryKafkaTopic != "deltamarket-events" {
		t.Errorf("TelemetryKafkaTopic = %q, want default", cfg.TelemetryKafkaTopic)
	}
	if cfg.OTPReturnToClient {
		t.Error("OTPReturnToClient should default to false")
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("ORDERS_FILE", "/var/lib/deltamarket/orders.json")
	os.Setenv("OTP_TTL", "10m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9090")
	}
	if cfg.OrdersFile != "/var/lib/deltamarket/orders.json" {
		t.Errorf("OrdersFile = %q, want override", cfg.OrdersFile)
	}
	if cfg.OTPTTL != "10m" {
		t.Errorf("OTPTTL = %q, want %q", cfg.OTPTTL, "10m")
	}
}

func TestLoad_RequiresOrderStore(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("ORDERS_FILE", "")
	os.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load should fail when both ORDERS_FILE and DATABASE_URL are empty")
	}

	os.Setenv("DATABASE_URL", "postgres://localhost/deltamarket")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with DATABASE_URL: %v", err)
	}
	if cfg.DatabaseURL == "" {
		t.Error("DatabaseURL should be set")
	}
}

func TestLoad_OTPReturnToClientProductionRefused(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("OTP_RETURN_TO_CLIENT", "true")
	os.Setenv("APP_ENV", "production")

	cfg, err := Load()
	if err == nil {
		t.Fatal("Load should return error when OTP_RETURN_TO_CLIENT=true and APP_ENV=production")
	}
	if cfg != nil {
		t.Error("Load should return nil config on error")
	}
}

func TestLoad_OTPReturnToClientDevelopment(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("OTP_RETURN_TO_CLIENT", "true")
	os.Setenv("APP_ENV", "development")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.OTPReturnToClient {
		t.Error("OTPReturnToClient should be true")
	}
}

func TestOTPValidity_ValidDuration(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("OTP_TTL", "90s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.OTPValidity(); got != 90*time.Second {
		t.Errorf("OTPValidity = %v, want %v", got, 90*time.Second)
	}
}

func TestOTPValidity_InvalidDuration(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("OTP_TTL", "invalid")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.OTPValidity(); got != 5*time.Minute {
		t.Errorf("OTPValidity = %v, want %v (default)", got, 5*time.Minute)
	}
}

func TestOTPValidity_NegativeDuration(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("OTP_TTL", "-5m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.OTPValidity(); got != 5*time.Minute {
		t.Errorf("OTPValidity = %v, want %v (default)", got, 5*time.Minute)
	}
}

func TestAdminTokenValidity(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("ADMIN_TOKEN_TTL", "12h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.AdminTokenValidity(); got != 12*time.Hour {
		t.Errorf("AdminTokenValidity = %v, want %v", got, 12*time.Hour)
	}

	os.Setenv("ADMIN_TOKEN_TTL", "bogus")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.AdminTokenValidity(); got != 24*time.Hour {
		t.Errorf("AdminTokenValidity = %v, want %v (default)", got, 24*time.Hour)
	}
}

func TestAdminChatIDList(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("ADMIN_CHAT_IDS", "100, 200 ,,300")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := cfg.AdminChatIDList()
	want := []string{"100", "200", "300"}
	if len(got) != len(want) {
		t.Fatalf("AdminChatIDList = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AdminChatIDList[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAdminChatIDList_Empty(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.AdminChatIDList(); got != nil {
		t.Errorf("AdminChatIDList = %v, want nil", got)
	}
}

func TestTelemetryKafkaBrokersList(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("KAFKA_BROKERS", "localhost:9092, kafka-2:9092")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := cfg.TelemetryKafkaBrokersList()
	if len(got) != 2 || got[0] != "localhost:9092" || got[1] != "kafka-2:9092" {
		t.Errorf("TelemetryKafkaBrokersList = %v, want two brokers", got)
	}
}
