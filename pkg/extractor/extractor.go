package extractor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"smd/pkg/config"
	errs "smd/pkg/errors"
	"smd/pkg/logger"
	"smd/pkg/metadata"
	"smd/pkg/models"
	"smd/pkg/retry"
	"smd/pkg/storage"
)

// ProgressFunc receives byte-level progress while a download runs.
type ProgressFunc func(downloadedBytes, totalBytes int64)

// Extractor wraps yt-dlp invocations. All media extraction is delegated
// to the yt-dlp binary; this type only assembles flags from the loaded
// configuration and the organized output path.
type Extractor struct {
	cfg        *config.Config
	organizer  *storage.Organizer
	log        logger.Logger
	retryCfg   *retry.Config
	onProgress ProgressFunc
}

// New creates an Extractor bound to the given configuration and path
// organizer.
func New(cfg *config.Config, organizer *storage.Organizer, log logger.Logger) *Extractor {
	return &Extractor{
		cfg:       cfg,
		organizer: organizer,
		log:       log,
		retryCfg: &retry.Config{
			MaxAttempts: 3,
			Backoff:     retry.DefaultExponentialBackoff(),
			RetryIf:     retry.DefaultRetryIf,
			Context:     context.Background(),
			Logger:      log,
		},
	}
}

// SetProgressFunc registers a callback invoked with download progress.
func (e *Extractor) SetProgressFunc(fn ProgressFunc) {
	e.onProgress = fn
}

// Request describes a single download.
type Request struct {
	URL string
	// Choice is a friendly format name, raw format ID, or yt-dlp
	// selector. Empty means the configured default format.
	Choice string
	// Info, when already fetched, is reused for naming and for the
	// audio-merge check instead of hitting the site again.
	Info *models.MediaInfo
	// UploaderOverride forces the uploader directory, bypassing the
	// metadata fields.
	UploaderOverride string
	// FilenameBase overrides the output filename (without extension).
	FilenameBase string
}

// FetchInfo runs yt-dlp in info-only mode and returns the reported
// metadata without downloading anything.
func (e *Extractor) FetchInfo(ctx context.Context, url string) (*models.MediaInfo, error) {
	dl := ytdlp.New().
		SkipDownload().
		DumpSingleJSON().
		NoPlaylist()

	if e.cfg.Authentication.UseBrowserCookies {
		dl = dl.CookiesFromBrowser(e.cfg.Authentication.CookieBrowser)
	}

	result, err := retry.DoWithResult(func() (*ytdlp.Result, error) {
		res, runErr := dl.Run(ctx, url)
		if runErr != nil {
			return res, errs.Wrap(errs.ErrorTypeExtraction, "fetching media info", runErr)
		}
		return res, nil
	}, e.withContext(ctx))
	if err != nil {
		return nil, err
	}

	info, err := result.GetExtractedInfo()
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeExtraction, "parsing media info", err)
	}
	if len(info) == 0 {
		return nil, errs.New(errs.ErrorTypeExtraction, "no media info returned")
	}

	return convertInfo(info[0]), nil
}

// Download runs yt-dlp for a single URL and returns the path of the
// downloaded file when yt-dlp reports one.
func (e *Extractor) Download(ctx context.Context, req Request) (string, error) {
	choice := req.Choice
	if choice == "" {
		choice = e.cfg.DefaultFormat
	}
	// "show_all" is an interactive sentinel, not a selector
	if strings.EqualFold(choice, "show_all") {
		choice = "best"
	}
	choice = ResolveFormat(choice)

	dir, err := e.organizer.OrganizePath(req.URL, req.Info, req.UploaderOverride)
	if err != nil {
		return "", err
	}

	dl := e.baseCommand()

	if IsAudioOnly(choice) {
		base := req.FilenameBase
		if base == "" {
			base = "%(title)s"
		}
		dl = dl.
			Format("bestaudio/best").
			ExtractAudio().
			AudioFormat("mp3").
			AudioQuality(e.cfg.MP3Quality).
			Output(filepath.Join(dir, base+".%(ext)s"))
	} else {
		choice = EnsureAudio(choice, req.Info)
		base := req.FilenameBase
		if base == "" && req.Info != nil && req.Info.Title != "" {
			base = storage.SanitizeName(req.Info.Title)
		}
		var tmpl string
		if base != "" {
			tmpl = storage.UniqueFilename(filepath.Join(dir, base)) + ".%(ext)s"
		} else {
			tmpl = filepath.Join(dir, "%(title)s.%(ext)s")
		}
		dl = dl.
			Format(choice).
			MergeOutputFormat("mp4").
			Output(tmpl)
	}

	if e.onProgress != nil {
		dl.ProgressFunc(500*time.Millisecond, func(update ytdlp.ProgressUpdate) {
			e.onProgress(int64(update.DownloadedBytes), int64(update.TotalBytes))
		})
	}

	e.log.DebugWithFields("starting download", map[string]interface{}{
		"url":    req.URL,
		"format": choice,
		"dir":    dir,
	})

	result, err := retry.DoWithResult(func() (*ytdlp.Result, error) {
		res, runErr := dl.Run(ctx, req.URL)
		if runErr != nil {
			return res, errs.Wrap(errs.ErrorTypeExtraction, "running yt-dlp", runErr)
		}
		return res, nil
	}, e.withContext(ctx))
	if err != nil {
		return "", err
	}

	if e.cfg.DownloadMetadata {
		metadata.NewProcessor(e.cfg.DownloadComments, e.log).ProcessDir(dir)
	}

	return downloadedFile(result), nil
}

// baseCommand builds the yt-dlp flags shared by every download.
func (e *Extractor) baseCommand() *ytdlp.Command {
	dl := ytdlp.New().NoPlaylist()

	if e.cfg.DownloadMetadata {
		dl = dl.WriteInfoJSON()
	}
	if e.cfg.DownloadComments {
		dl = dl.WriteComments().
			ExtractorArgs(fmt.Sprintf("youtube:max_comments=%d;comment_sort=top", e.cfg.MaxComments)).
			ExtractorArgs(fmt.Sprintf("tiktok:max_comments=%d", e.cfg.MaxComments))
	}
	if e.cfg.DownloadSubtitles {
		dl = dl.WriteSubs().WriteAutoSubs()
	}
	if e.cfg.Authentication.UseBrowserCookies {
		dl = dl.CookiesFromBrowser(e.cfg.Authentication.CookieBrowser)
	}

	return dl
}

func (e *Extractor) withContext(ctx context.Context) *retry.Config {
	cfg := *e.retryCfg
	cfg.Context = ctx
	return &cfg
}

// downloadedFile pulls the output filename out of a yt-dlp result, if
// the extracted info carries one.
func downloadedFile(result *ytdlp.Result) string {
	if result == nil {
		return ""
	}
	info, err := result.GetExtractedInfo()
	if err != nil || len(info) == 0 {
		return ""
	}
	if info[0].Filename != nil {
		return *info[0].Filename
	}
	return ""
}

// convertInfo maps yt-dlp's extracted info onto the internal model.
func convertInfo(in *ytdlp.ExtractedInfo) *models.MediaInfo {
	out := &models.MediaInfo{
		ID:         in.ID,
		Title:      strVal(in.Title),
		Uploader:   strVal(in.Uploader),
		Channel:    strVal(in.Channel),
		UploadDate: strVal(in.UploadDate),
		Duration:   floatVal(in.Duration),
		IsLive:     boolVal(in.IsLive),
		WebpageURL: strVal(in.WebpageURL),
	}

	for _, f := range in.Formats {
		if f == nil {
			continue
		}
		out.Formats = append(out.Formats, models.Format{
			FormatID:   strVal(f.FormatID),
			Ext:        strVal(f.Extension),
			Width:      int(floatVal(f.Width)),
			Height:     int(floatVal(f.Height)),
			FPS:        floatVal(f.FPS),
			Filesize:   int64(intVal(f.FileSize)),
			VCodec:     strVal(f.VCodec),
			ACodec:     strVal(f.ACodec),
			FormatNote: strVal(f.FormatNote),
		})
	}

	return out
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func floatVal(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func intVal(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}

func boolVal(b *bool) bool {
	if b == nil {
		return false
	}
	return *b
}
