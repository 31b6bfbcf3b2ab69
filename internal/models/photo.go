// Package models defines the domain types for darkroom.
package models

// Photo references one stored picture.
//
// Filepath locates the stored bytes: a file:// URI in native mode, a bare
// file name in browser mode. DisplayPath is directly renderable; it is
// recomputed on load in browser mode.
type Photo struct {
	Filepath    string `json:"filepath"`
	DisplayPath string `json:"webviewPath"`
}
