package util

import (
	"strings"

	"github.com/ValentinKolb/zMap/lib/multimap"
	"github.com/ValentinKolb/zMap/lib/zset/rstore"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupStoreFlags adds common Redis connection and engine flags to a command
func SetupStoreFlags(cmd *cobra.Command) {
	key := "redis-addr"
	cmd.PersistentFlags().String(key, "localhost:6379", WrapString("The address of the Redis server"))

	key = "redis-password"
	cmd.PersistentFlags().String(key, "", WrapString("Password for the Redis server (empty for no auth)"))

	key = "redis-db"
	cmd.PersistentFlags().Int(key, 0, WrapString("Redis database number to use"))

	key = "prefix"
	cmd.PersistentFlags().String(key, "zmap", WrapString("Key prefix - every key name resolves to <prefix>:<name> on the server"))

	key = "ttl"
	cmd.PersistentFlags().Int64(key, multimap.DefaultTTL, WrapString("Time-to-live for inserted values in seconds"))

	key = "log-level"
	cmd.PersistentFlags().String(key, "info", WrapString("Log level (debug, info, warn, error)"))
}

// InitClientConfig initializes configuration from environment variables
func InitClientConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("zmap")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetStoreConfig reads the Redis connection configuration from viper
func GetStoreConfig() rstore.Config {
	return rstore.Config{
		Addr:     viper.GetString("redis-addr"),
		Password: viper.GetString("redis-password"),
		DB:       viper.GetInt("redis-db"),
	}
}

// GetKeyPrefix retrieves the configured key prefix
func GetKeyPrefix() string {
	return viper.GetString("prefix")
}

// GetEngineOptions reads the multimap engine options from viper
func GetEngineOptions() *multimap.Options {
	return &multimap.Options{
		TTL: viper.GetInt64("ttl"),
	}
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}
