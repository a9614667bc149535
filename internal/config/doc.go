// Package config provides configuration management for
// cdm-audio-downloader.
//
// Settings cover the CONTENTdm installation (base URL, default
// collection alias), search pagination, the output layout, the media
// acceptance mode, and the tag-rewrite policy. They load from a JSON
// file with sensible defaults:
//
//	settings := config.DefaultSettings()
//
//	settings, err := config.Load("/path/to/config.json")
//	// Missing file falls back to defaults
//
//	err = settings.Save("/path/to/config.json")
package config
