package config

import (
	"bytes"
	"testing"

	"github.com/marmos91/hubd/pkg/config"
)

func TestEncodeConfig_YAML(t *testing.T) {
	cfg := config.GetDefaultConfig()
	var buf bytes.Buffer

	if err := encodeConfig(cfg, &buf, "yaml"); err != nil {
		t.Fatalf("encodeConfig(yaml) error = %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("encodeConfig(yaml) produced no output")
	}
}

func TestEncodeConfig_JSON(t *testing.T) {
	cfg := config.GetDefaultConfig()
	var buf bytes.Buffer

	if err := encodeConfig(cfg, &buf, "json"); err != nil {
		t.Fatalf("encodeConfig(json) error = %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("{")) {
		t.Errorf("encodeConfig(json) output doesn't look like JSON: %q", buf.String())
	}
}

func TestEncodeConfig_EmptyFormatDefaultsToYAML(t *testing.T) {
	cfg := config.GetDefaultConfig()
	var buf bytes.Buffer

	if err := encodeConfig(cfg, &buf, ""); err != nil {
		t.Fatalf("encodeConfig(\"\") error = %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("encodeConfig(\"\") produced no output")
	}
}

func TestEncodeConfig_UnknownFormat(t *testing.T) {
	cfg := config.GetDefaultConfig()
	var buf bytes.Buffer

	if err := encodeConfig(cfg, &buf, "xml"); err == nil {
		t.Fatal("expected an error for an unknown output format")
	}
}

func TestShowCmd_HasOutputFlag(t *testing.T) {
	f := showCmd.Flags().Lookup("output")
	if f == nil {
		t.Fatal("showCmd is missing its --output flag")
	}
	if f.DefValue != "yaml" {
		t.Errorf("--output default = %q, want %q", f.DefValue, "yaml")
	}
}
