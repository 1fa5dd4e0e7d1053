// Package ui holds the terminal output helpers: colored status lines,
// the startup banner, and progress bars for byte-level and batch
// progress.
package ui

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"smd/pkg/models"
)

// Banner printed on interactive startup.
const Banner = `
  ███████╗███╗   ███╗██████╗
  ██╔════╝████╗ ████║██╔══██╗
  ███████╗██╔████╔██║██║  ██║
  ╚════██║██║╚██╔╝██║██║  ██║
  ███████║██║ ╚═╝ ██║██████╔╝
  ╚══════╝╚═╝     ╚═╝╚═════╝   social media downloader
`

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	successColor = color.New(color.FgGreen, color.Bold)
	infoColor    = color.New(color.FgCyan)
	warnColor    = color.New(color.FgYellow)
	labelColor   = color.New(color.FgYellow, color.Bold)

	quiet bool
)

// SetQuiet suppresses non-error output.
func SetQuiet(q bool) {
	quiet = q
}

// SetNoColor disables ANSI colors globally.
func SetNoColor(disable bool) {
	color.NoColor = disable
}

// PrintBanner prints the startup banner.
func PrintBanner() {
	if quiet {
		return
	}
	infoColor.Fprint(os.Stdout, Banner)
	fmt.Println()
}

// PrintError prints an error message in red to stderr.
func PrintError(format string, args ...interface{}) {
	errorColor.Fprintf(os.Stderr, "✗ "+format+"\n", args...)
}

// PrintSuccess prints a success message in green.
func PrintSuccess(format string, args ...interface{}) {
	if quiet {
		return
	}
	successColor.Printf("✓ "+format+"\n", args...)
}

// PrintInfo prints an informational message in cyan.
func PrintInfo(format string, args ...interface{}) {
	if quiet {
		return
	}
	infoColor.Printf(format+"\n", args...)
}

// PrintWarning prints a warning message in yellow.
func PrintWarning(format string, args ...interface{}) {
	if quiet {
		return
	}
	warnColor.Printf("! "+format+"\n", args...)
}

// PrintMediaSummary prints the title/uploader/date header shown before
// format selection.
func PrintMediaSummary(info *models.MediaInfo) {
	if quiet || info == nil {
		return
	}
	labelColor.Print("Title: ")
	fmt.Println(info.Title)
	labelColor.Print("Uploader: ")
	fmt.Println(info.BestUploader())
	if info.UploadDate != "" {
		labelColor.Print("Upload date: ")
		fmt.Println(info.UploadDate)
	}
}

// PrintFormatTable prints the available formats of a media item.
func PrintFormatTable(info *models.MediaInfo) {
	if info == nil || len(info.Formats) == 0 {
		PrintWarning("no formats reported")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEXT\tRESOLUTION\tFPS\tSIZE\tCODECS\tNOTE")
	for i := range info.Formats {
		f := &info.Formats[i]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			f.FormatID, f.Ext, resolution(f), fps(f), size(f), codecs(f), f.FormatNote)
	}
	w.Flush()
}

func resolution(f *models.Format) string {
	if f.Width == 0 && f.Height == 0 {
		if f.HasAudio() && !f.HasVideo() {
			return "audio only"
		}
		return "-"
	}
	return fmt.Sprintf("%dx%d", f.Width, f.Height)
}

func fps(f *models.Format) string {
	if f.FPS == 0 {
		return "-"
	}
	return fmt.Sprintf("%.0f", f.FPS)
}

func size(f *models.Format) string {
	if f.Filesize <= 0 {
		return "-"
	}
	const mb = 1024 * 1024
	return fmt.Sprintf("%.1fMiB", float64(f.Filesize)/mb)
}

func codecs(f *models.Format) string {
	v, a := f.VCodec, f.ACodec
	if v == "" {
		v = "none"
	}
	if a == "" {
		a = "none"
	}
	return v + "+" + a
}

// NewDownloadBar returns a byte progress bar for a single download.
// totalBytes of -1 renders a spinner.
func NewDownloadBar(totalBytes int64, description string) *progressbar.ProgressBar {
	if quiet {
		return progressbar.DefaultBytesSilent(totalBytes, description)
	}
	return progressbar.DefaultBytes(totalBytes, description)
}

// NewBatchBar returns a count progress bar for batch downloads.
func NewBatchBar(total int, description string) *progressbar.ProgressBar {
	if quiet {
		return progressbar.DefaultSilent(int64(total), description)
	}
	return progressbar.Default(int64(total), description)
}
