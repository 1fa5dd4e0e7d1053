// Package instagram implements the Instagram-specific download flows:
// single posts, MP3 extraction from video posts, and bulk download of
// saved posts collected by the browser session.
package instagram
