package config

import (
	"os"
	"strconv"
)

// Config holds the settings of the command line tools. Everything comes from
// the environment (optionally via a .env file); flags override per run.
type Config struct {
	Environment string
	LogLevel    string

	// Observability
	SentryDSN string

	// Model defaults
	Fundamental   float64 // Hz of sa for newly created ragas
	ChunkDuration float64 // seconds per window of the chunked queries

	// Rendering and export
	SampleRate int
	MIDITicks  int // ticks per quarter note in exported SMF files
}

// MaxMIDITicks is the largest metrical resolution a Standard MIDI File can
// carry; the top bit of the division word selects SMPTE timing.
const MaxMIDITicks = 1<<15 - 1

func Load() *Config {
	return &Config{
		Environment:   getEnv("SWARA_ENVIRONMENT", "development"),
		LogLevel:      getEnv("SWARA_LOG_LEVEL", "info"),
		SentryDSN:     getEnv("SENTRY_DSN", ""),
		Fundamental:   getEnvFloat("SWARA_FUNDAMENTAL", 261.63),
		ChunkDuration: getEnvFloat("SWARA_CHUNK_DURATION", 30),
		SampleRate:    getEnvInt("SWARA_SAMPLE_RATE", 44100),
		MIDITicks:     getEnvIntMax("SWARA_MIDI_TICKS", 960, MaxMIDITicks),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

// getEnvIntMax is getEnvInt that also falls back to the default above max.
func getEnvIntMax(key string, defaultValue, max int) int {
	v := getEnvInt(key, defaultValue)
	if v > max {
		return defaultValue
	}
	return v
}

// IsProduction reports whether errors should be shipped to Sentry.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
