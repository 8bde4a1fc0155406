package utils

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// LoadEnv loads environment variables from a .env file. Values already set in
// the system environment win over file values.
func LoadEnv(filename string) error {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return nil
	}

	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("error opening %s: %w", filename, err)
	}
	defer file.Close()

	log.Info().Str("file", filename).Msg("loading environment variables")

	scanner := bufio.NewScanner(file)
	lineNumber := 0

	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			log.Warn().Str("file", filename).Int("line", lineNumber).Msg("skipping invalid .env line")
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if (strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"")) ||
			(strings.HasPrefix(value, "'") && strings.HasSuffix(value, "'")) {
			value = value[1 : len(value)-1]
		}

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading %s: %w", filename, err)
	}
	return nil
}

// LoadEnvWithFallback tries the standard .env file locations in order.
func LoadEnvWithFallback() error {
	locations := []string{
		".env",
		".env.local",
		"config/.env",
	}

	for _, location := range locations {
		if err := LoadEnv(location); err != nil {
			log.Warn().Err(err).Str("file", location).Msg("could not load env file")
		}
	}
	return nil
}
