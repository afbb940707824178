// Package config holds the viper-backed global configuration.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// Global configuration variables
var (
	// ListenAddr is the HTTP server bind address.
	ListenAddr string
	// StoreDBFile is the path to the key-value store database.
	StoreDBFile string
	// PageSize is the search response page size.
	PageSize int
	// RequestTimeout bounds a single provider request.
	RequestTimeout time.Duration
)

// SetDefaults registers every configuration default with viper.
func SetDefaults() {
	viper.SetDefault("listen", ":8008")
	viper.SetDefault("store.dbfile", "./mangamux.db")
	viper.SetDefault("search.pagesize", 20)
	viper.SetDefault("transport.timeout", "10s")
}

// InitConfig snapshots the viper state into the globals.
func InitConfig() {
	SetDefaults()

	ListenAddr = viper.GetString("listen")
	StoreDBFile = viper.GetString("store.dbfile")
	PageSize = viper.GetInt("search.pagesize")
	RequestTimeout = viper.GetDuration("transport.timeout")
}
