package models

import "time"

// Config represents the application configuration
type Config struct {
	Stores   StoreConfig
	Bank     BankConfig
	Server   ServerConfig
	Events   EventsConfig
	Platform PlatformConfig
}

// StoreConfig holds the paths of the two persisted storage tiers
type StoreConfig struct {
	OperationalPath string
	ArchivalPath    string
}

// BankConfig holds the asset subledger database settings
type BankConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// ServerConfig holds the HTTP listener settings
type ServerConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// EventsConfig holds the notification sink settings. With RedisAddr empty,
// events go to the structured log only.
type EventsConfig struct {
	RedisAddr    string
	RedisChannel string
}

// PlatformConfig holds identities and registry files owned by the platform
type PlatformConfig struct {
	Account    string
	AssetsFile string
}
