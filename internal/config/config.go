package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config stores runtime configuration loaded from environment variables.
type Config struct {
	Port                  string
	TwilioAccountSID      string
	TwilioAuthToken       string
	TwilioWhatsAppNumber  string
	PatientWhatsAppNumber string
	OpenAIAPIKey          string
	DatabaseURL           string
	LocalTimezone         *time.Location
}

// Load reads configuration values and prepares defaults where applicable.
func Load() *Config {
	_ = godotenv.Load()

	port := getenvDefault("PORT", "8080")
	accountSID := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	whatsAppNumber := os.Getenv("TWILIO_WHATSAPP_NUMBER")
	patientNumber := os.Getenv("PATIENT_WHATSAPP_NUMBER")
	openAIKey := os.Getenv("OPENAI_API_KEY")
	databaseURL := os.Getenv("DATABASE_URL")
	timezoneName := getenvDefault("LOCAL_TIMEZONE", "Local")

	location, err := time.LoadLocation(timezoneName)
	if err != nil {
		log.Printf("config: invalid LOCAL_TIMEZONE %q, defaulting to system local: %v", timezoneName, err)
		location = time.Local
	}

	return &Config{
		Port:                  port,
		TwilioAccountSID:      accountSID,
		TwilioAuthToken:       authToken,
		TwilioWhatsAppNumber:  whatsAppNumber,
		PatientWhatsAppNumber: patientNumber,
		OpenAIAPIKey:          openAIKey,
		DatabaseURL:           databaseURL,
		LocalTimezone:         location,
	}
}

func getenvDefault(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	return value
}
