// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"testing"

	"codeberg.org/oliverandrich/taskboard/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTLSMode(t *testing.T) {
	tests := []struct {
		name string
		tls  config.TLSConfig
		host string
		want TLSMode
	}{
		{"explicit off", config.TLSConfig{Mode: "off"}, "example.com", TLSModeOff},
		{"explicit acme", config.TLSConfig{Mode: "ACME"}, "example.com", TLSModeACME},
		{"explicit manual", config.TLSConfig{Mode: "manual"}, "localhost", TLSModeManual},
		{"auto on localhost", config.TLSConfig{Mode: "auto"}, "localhost", TLSModeOff},
		{"auto with certificates", config.TLSConfig{CertFile: "cert.pem", KeyFile: "key.pem"}, "example.com", TLSModeManual},
		{"auto on ip without certificates", config.TLSConfig{}, "10.0.0.5", TLSModeOff},
		{"unknown falls back to auto", config.TLSConfig{Mode: "bogus"}, "127.0.0.1", TLSModeOff},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{TLS: tt.tls, Server: config.ServerConfig{Host: tt.host}}
			assert.Equal(t, tt.want, resolveTLSMode(cfg))
		})
	}
}

func TestSetupTLS_Off(t *testing.T) {
	res, err := SetupTLS(&config.Config{TLS: config.TLSConfig{Mode: "off"}})

	require.NoError(t, err)
	assert.Equal(t, TLSModeOff, res.Mode)
	assert.Nil(t, res.TLSConfig)
}

func TestSetupManual_MissingFiles(t *testing.T) {
	_, err := setupManual(&config.Config{})
	require.Error(t, err)

	dir := t.TempDir()
	_, err = setupManual(&config.Config{TLS: config.TLSConfig{
		CertFile: dir + "/cert.pem",
		KeyFile:  dir + "/key.pem",
	}})
	require.ErrorContains(t, err, "certificate file not found")
}

func TestValidateACME_RequiresEmail(t *testing.T) {
	err := validateACME(&config.Config{Server: config.ServerConfig{Port: 443}})

	require.ErrorContains(t, err, "TLS_EMAIL")
}
