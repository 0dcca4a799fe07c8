// Package webfetch provides the fetch_page tool, which fetches a web page
// over HTTP(S) and returns its content as Markdown.
//
// [NewTool] returns a ready-to-register [tool.ToolSpec]; [Fetcher.Fetch] can
// also be called directly. Partial URLs are prefixed with "https://",
// redirects are followed up to [MaxRedirects], and the response body is
// capped at [MaxBodySize].
package webfetch
