package commands

import (
	"testing"

	"github.com/spf13/viper"
)

func TestConfigFlagReachesViper(t *testing.T) {
	if err := rootCmd.PersistentFlags().Set("config", "/tmp/custom.yaml"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	t.Cleanup(func() {
		_ = rootCmd.PersistentFlags().Set("config", "")
	})

	// initConfig selects the config file through viper, so the flag value
	// must be visible there.
	if got := viper.GetString("config"); got != "/tmp/custom.yaml" {
		t.Errorf("viper config = %q, want the flag value", got)
	}
}

func TestGlobalFlagsBound(t *testing.T) {
	if err := rootCmd.PersistentFlags().Set("debug", "true"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	t.Cleanup(func() {
		_ = rootCmd.PersistentFlags().Set("debug", "false")
	})

	if !viper.GetBool("debug") {
		t.Error("debug flag not visible through viper")
	}
}
