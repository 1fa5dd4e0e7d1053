// Package storage derives filesystem-safe output locations for downloads.
//
// The storage package handles:
//   - Detecting the platform behind a URL (ordered, first-match-wins table)
//   - Sanitizing uploader names for use as directory names
//   - Deriving organized base/platform/uploader paths
//   - Producing unique "name (N).ext" filenames for duplicates
//
// Path derivation is pure apart from directory creation, which is
// idempotent and safe under concurrent callers creating the same path.
//
// Usage:
//
//	org := storage.NewOrganizer(cfg.DownloadDirectory, cfg.OrganizeDownloads)
//	dir, err := org.OrganizePath(url, info, "")
//	if err != nil {
//	    log.Printf("failed to prepare output directory: %v", err)
//	}
package storage
