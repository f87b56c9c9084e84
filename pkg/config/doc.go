// Package config builds the immutable configuration handed to every
// component at startup.
//
// Sources are layered with the following precedence:
//
//	flags > environment (and .env) > YAML file > DefaultConfig()
//
// The environment variable names match the historical deployment:
// HP_URL, HP_USERNAME, HP_PASSWORD, DISCORD_WEBHOOK_URL,
// CHECK_INTERVAL_SECONDS, HEADLESS_MODE, LOG_TIMEZONE and AUTH_STATE_JSON.
//
// Example:
//
//	cfg, err := config.Load("", map[string]interface{}{"headless": false})
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
