package testutil

import (
	"testing"

	"github.com/spf13/viper"

	"github.com/mangamux/mangamux/internal/config"
)

// ResetConfig resets viper and restores the config package globals when
// the test completes, keeping tests isolated from each other.
func ResetConfig(t *testing.T) {
	t.Helper()

	listen := config.ListenAddr
	storeDB := config.StoreDBFile
	pageSize := config.PageSize
	timeout := config.RequestTimeout

	viper.Reset()

	t.Cleanup(func() {
		config.ListenAddr = listen
		config.StoreDBFile = storeDB
		config.PageSize = pageSize
		config.RequestTimeout = timeout
		viper.Reset()
	})
}
