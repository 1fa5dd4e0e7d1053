package models

// MediaInfo holds the metadata yt-dlp reports for a single media item
type MediaInfo struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Uploader   string   `json:"uploader"`
	Channel    string   `json:"channel"`
	UploadDate string   `json:"upload_date"`
	Duration   float64  `json:"duration"`
	IsLive     bool     `json:"is_live"`
	WebpageURL string   `json:"webpage_url"`
	Formats    []Format `json:"formats"`
}

// Format describes one downloadable rendition of a media item
type Format struct {
	FormatID   string  `json:"format_id"`
	Ext        string  `json:"ext"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	FPS        float64 `json:"fps"`
	Filesize   int64   `json:"filesize"`
	VCodec     string  `json:"vcodec"`
	ACodec     string  `json:"acodec"`
	FormatNote string  `json:"format_note"`
}

// BestUploader returns the uploader field, falling back to the channel
// name, then "Unknown"
func (m *MediaInfo) BestUploader() string {
	if m == nil {
		return "Unknown"
	}
	if m.Uploader != "" {
		return m.Uploader
	}
	if m.Channel != "" {
		return m.Channel
	}
	return "Unknown"
}

// HasAudio reports whether the format carries an audio stream
func (f *Format) HasAudio() bool {
	return f.ACodec != "" && f.ACodec != "none"
}

// HasVideo reports whether the format carries a video stream
func (f *Format) HasVideo() bool {
	return f.VCodec != "" && f.VCodec != "none"
}
