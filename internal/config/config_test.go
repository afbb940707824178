package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestInitConfigDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	InitConfig()

	assert.Equal(t, ":8008", ListenAddr)
	assert.Equal(t, "./mangamux.db", StoreDBFile)
	assert.Equal(t, 20, PageSize)
	assert.Equal(t, 10*time.Second, RequestTimeout)
}

func TestInitConfigReadsOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("listen", ":9999")
	viper.Set("transport.timeout", "3s")

	InitConfig()

	assert.Equal(t, ":9999", ListenAddr)
	assert.Equal(t, 3*time.Second, RequestTimeout)
	assert.Equal(t, 20, PageSize, "unset keys keep their defaults")
}
