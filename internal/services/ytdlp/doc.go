// Package ytdlp drives the yt-dlp binary to search for and download a
// performer's songs into a staging directory. It is the acquisition
// collaborator of the search flow and never decodes anything itself.
package ytdlp
