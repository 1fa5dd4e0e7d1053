package extractor

import (
	"fmt"
	"strings"

	"smd/pkg/models"
)

// friendlyFormats maps human format names to yt-dlp selector strings.
// Anything not in the map passes through untouched so raw format IDs
// and hand-written selectors keep working.
var friendlyFormats = map[string]string{
	"360p":  "bestvideo[height<=360]+bestaudio/best",
	"480p":  "bestvideo[height<=480]+bestaudio/best",
	"720p":  "bestvideo[height<=720]+bestaudio/best",
	"1080p": "bestvideo[height<=1080]+bestaudio/best",
	"1440p": "bestvideo[height<=1440]+bestaudio/best",
	"2160p": "bestvideo[height<=2160]+bestaudio/best",
	"4320p": "bestvideo[height<=4320]+bestaudio/best",
	"mp3":   "mp3",
	"best":  "bestvideo+bestaudio/best",
}

// ResolveFormat translates a friendly format name into a yt-dlp format
// selector. Unknown choices are returned as-is.
func ResolveFormat(choice string) string {
	if mapped, ok := friendlyFormats[strings.ToLower(choice)]; ok {
		return mapped
	}
	return choice
}

// IsAudioOnly reports whether the choice requests an MP3 extract rather
// than a video download.
func IsAudioOnly(choice string) bool {
	return strings.EqualFold(choice, "mp3")
}

// EnsureAudio appends "+bestaudio" when the chosen format ID exists in
// the format list but carries no audio stream. Selectors that are not
// plain format IDs are left alone.
func EnsureAudio(choice string, info *models.MediaInfo) string {
	if info == nil {
		return choice
	}
	for i := range info.Formats {
		f := &info.Formats[i]
		if f.FormatID != choice {
			continue
		}
		if !f.HasAudio() {
			return fmt.Sprintf("%s+bestaudio", choice)
		}
		return choice
	}
	return choice
}
