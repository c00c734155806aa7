// Package config loads service configuration with Viper.
//
// LoadConfig resolves a config.yml and a .env file (cmd/<service>/, config/,
// or the working directory), applies registered defaults, and lets every
// environment variable override the matching dotted key: WHISPERCPP_BIN sets
// whispercpp.bin and SEGMENTER_MIN_SILENCE sets segmenter.min_silence.
// Duration strings such as "100ms" and comma-separated lists decode directly.
//
// Services embed ServiceConfig for the name, environment, and logging fields:
//
//	var cfg Config
//	err := config.LoadConfig("whisperd", &cfg, config.WithDefaults(defaults))
package config
