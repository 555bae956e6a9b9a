package database

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"sort"
	"strings"
)

func buildSQLiteDSN(cfg Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}

	params := map[string]string{"_foreign_keys": "1"}
	path := strings.TrimSpace(cfg.Path)
	var target string
	switch {
	case path == "", strings.EqualFold(path, ":memory:"):
		target = "file::memory:"
		params["cache"] = "shared"
	default:
		if err := ensureDir(path); err != nil {
			return "", err
		}
		target = "file:" + filepath.ToSlash(path)
		params["_journal_mode"] = "WAL"
		params["_busy_timeout"] = "5000"
	}

	return target + "?" + joinOptions(params, cfg.Options, "&", url.QueryEscape), nil
}

func buildPostgresDSN(cfg Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	if cfg.User == "" || cfg.Name == "" {
		return "", errors.New("postgres configuration requires user and database name")
	}

	params := []string{
		fmt.Sprintf("host=%s", valueOr(cfg.Host, "localhost")),
		fmt.Sprintf("port=%d", portOr(cfg.Port, 5432)),
		fmt.Sprintf("user=%s", cfg.User),
		fmt.Sprintf("dbname=%s", cfg.Name),
	}
	if cfg.Password != "" {
		params = append(params, fmt.Sprintf("password=%s", cfg.Password))
	}

	options := joinOptions(map[string]string{"sslmode": "disable"}, cfg.Options, " ", nil)
	return strings.Join(params, " ") + " " + options, nil
}

func buildMySQLDSN(cfg Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	if cfg.User == "" || cfg.Name == "" {
		return "", errors.New("mysql configuration requires user and database name")
	}

	user := cfg.User
	if cfg.Password != "" {
		user = cfg.User + ":" + cfg.Password
	}

	options := joinOptions(map[string]string{
		"charset":   "utf8mb4",
		"parseTime": "True",
		"loc":       "Local",
	}, cfg.Options, "&", nil)

	return fmt.Sprintf("%s@tcp(%s:%d)/%s?%s", user, valueOr(cfg.Host, "127.0.0.1"), portOr(cfg.Port, 3306), cfg.Name, options), nil
}

// joinOptions merges overrides over defaults and renders key=value pairs in key order.
func joinOptions(defaults, overrides map[string]string, sep string, escape func(string) string) string {
	merged := make(map[string]string, len(defaults)+len(overrides))
	for key, value := range defaults {
		merged[key] = value
	}
	for key, value := range overrides {
		merged[key] = value
	}

	keys := make([]string, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		value := merged[key]
		if escape != nil {
			value = escape(value)
		}
		pairs = append(pairs, key+"="+value)
	}
	return strings.Join(pairs, sep)
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func portOr(port, fallback int) int {
	if port == 0 {
		return fallback
	}
	return port
}
