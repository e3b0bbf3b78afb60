// Package config loads runtime configuration for the DefComm terminal
// client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// # JSON schema
//
//	{
//	  "server_url": "http://localhost:5000",
//	  "chat_interval": "5s",
//	  "groups_interval": "45s"
//	}
//
// The client does not read environment variables.
package config
