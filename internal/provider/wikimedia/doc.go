// Package wikimedia searches Wikimedia Commons for freely licensed media
// files via the MediaWiki API.
package wikimedia
