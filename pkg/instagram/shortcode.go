package instagram

import "strings"

// ExtractShortcode pulls the post shortcode out of an Instagram URL.
// Post, reel and IGTV URL shapes are recognised; anything else returns
// an empty string.
func ExtractShortcode(url string) string {
	for _, marker := range []string{"/reel/", "/p/", "/tv/"} {
		if _, after, found := strings.Cut(url, marker); found {
			code, _, _ := strings.Cut(after, "/")
			return code
		}
	}
	return ""
}
