// Package media turns a local path into a [models.SelectedFile] and manages the preview players for it.
//
// A file picked in the TUI and a path passed on the command line both go through [Select]. The MIME type comes from
// the extension when known, otherwise from sniffing the first 512 bytes.
//
// [Previewer] owns one video and one audio [Player]. Each selection tears both down, revokes the previous preview
// URL and attaches a fresh one to the player matching [PreviewKind]. Files that are neither video nor audio are still
// selectable; they just get no preview.
package media
