// Package drive reads submitted files from Google Drive.
//
// Workspace-native documents, spreadsheets and presentations are exported
// to plain text or CSV. Every other file is downloaded as is, up to a
// configurable size limit.
package drive
