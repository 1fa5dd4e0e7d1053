package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"smd/pkg/models"
)

// platformEntry maps a domain fragment to a platform label.
// The table is an ordered slice, not a map: matching is first-wins and
// future entries may shadow each other by substring.
type platformEntry struct {
	fragment string
	label    string
}

var platformTable = []platformEntry{
	{"youtube.com", "YouTube"},
	{"youtu.be", "YouTube"},
	{"tiktok.com", "TikTok"},
	{"instagram.com", "Instagram"},
	{"facebook.com", "Facebook"},
	{"fb.watch", "Facebook"},
	{"x.com", "X"},
	{"twitter.com", "X"},
	{"twitch.tv", "Twitch"},
	{"clips.twitch.tv", "Twitch"},
	{"snapchat.com", "Snapchat"},
	{"reddit.com", "Reddit"},
	{"vimeo.com", "Vimeo"},
	{"dailymotion.com", "Dailymotion"},
	{"dai.ly", "Dailymotion"},
	{"rumble.com", "Rumble"},
	{"odysee.com", "Odysee"},
	{"bilibili.tv", "Bilibili"},
	{"pinterest.com", "Pinterest"},
	{"pin.it", "Pinterest"},
	{"linkedin.com", "LinkedIn"},
	{"weibo.com", "Weibo"},
	{"tumblr.com", "Tumblr"},
}

// SupportedDomains lists every domain accepted by the generic downloader
var SupportedDomains = []string{
	"youtube.com", "youtu.be", "tiktok.com", "facebook.com", "fb.watch",
	"x.com", "twitter.com", "twitch.tv", "clips.twitch.tv", "snapchat.com",
	"reddit.com", "packaged-media.redd.it", "vimeo.com", "streamable.com",
	"pinterest.com", "pin.it", "linkedin.com", "bilibili.tv", "odysee.com",
	"rumble.com", "gameclips.io", "triller.co", "snackvideo.com", "kwai.com",
	"imdb.com", "weibo.com", "dailymotion.com", "dai.ly", "tumblr.com",
	"bsky.app",
}

// InstagramDomains lists the domains handled by the Instagram flows
var InstagramDomains = []string{"instagram.com"}

// DetectPlatform returns the platform label for a URL by case-insensitive
// substring match against the platform table, first match wins. URLs
// matching no entry are labeled "Other".
func DetectPlatform(url string) string {
	lower := strings.ToLower(url)
	for _, entry := range platformTable {
		if strings.Contains(lower, entry.fragment) {
			return entry.label
		}
	}
	return "Other"
}

// IsValidPlatformURL checks whether the URL contains any allowed domain
func IsValidPlatformURL(url string, allowedDomains []string) bool {
	lower := strings.ToLower(url)
	for _, domain := range allowedDomains {
		if strings.Contains(lower, domain) {
			return true
		}
	}
	return false
}

// SanitizeName makes a string safe for use as a directory or file name.
// Blank input and input reduced to nothing both map to "Unknown".
func SanitizeName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Unknown"
	}

	replaced := name
	for _, ch := range `<>:"/\|?*` {
		replaced = strings.ReplaceAll(replaced, string(ch), "_")
	}

	replaced = strings.Trim(replaced, ". ")

	if runes := []rune(replaced); len(runes) > 100 {
		replaced = string(runes[:100])
	}

	if replaced == "" {
		return "Unknown"
	}
	return replaced
}

// Organizer derives per-download output directories from URL and metadata
type Organizer struct {
	baseDir  string
	organize bool
}

// NewOrganizer creates an organizer rooted at baseDir. When organize is
// false every path resolves to baseDir unchanged.
func NewOrganizer(baseDir string, organize bool) *Organizer {
	return &Organizer{baseDir: baseDir, organize: organize}
}

// BaseDir returns the base download directory
func (o *Organizer) BaseDir() string {
	return o.baseDir
}

// OrganizePath computes base/platform/uploader for the given URL and
// creates it on disk. Creation is idempotent; concurrent callers racing
// on the same directory do not error. Uploader precedence: override,
// then metadata, then "Unknown".
func (o *Organizer) OrganizePath(url string, info *models.MediaInfo, uploaderOverride string) (string, error) {
	if !o.organize {
		return o.baseDir, nil
	}

	platform := DetectPlatform(url)

	uploader := "Unknown"
	if uploaderOverride != "" {
		uploader = uploaderOverride
	} else if info != nil {
		uploader = info.BestUploader()
	}
	uploader = SanitizeName(uploader)

	path := filepath.Join(o.baseDir, platform, uploader)
	if err := os.MkdirAll(path, 0755); err != nil {
		return "", fmt.Errorf("failed to create organized directory: %w", err)
	}
	return path, nil
}

// UniqueFilename returns path unchanged if nothing exists there, else the
// first "name (N).ext" variant not present on disk. Termination is bounded
// by the filesystem contents, not an artificial cap.
func UniqueFilename(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}

	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for counter := 1; ; counter++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, counter, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}
