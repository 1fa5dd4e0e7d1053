// Package extractor delegates media extraction to yt-dlp.
//
// The package never parses site HTML itself. It assembles yt-dlp flags
// from the loaded configuration (format choice, metadata toggles,
// browser cookies) and the organized output path, runs the binary, and
// maps the reported metadata onto the internal models.
package extractor
