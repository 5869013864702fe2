// Package archiveorg searches the Internet Archive advancedsearch API for
// reusable image and video items.
package archiveorg
