// Package server exposes the analysis pipeline over HTTP: one upload
// endpoint that runs a full lot analysis, plus history, stats, health,
// and Prometheus metrics.
//
// The server tolerates missing infrastructure: without a database the
// detect endpoint still works and history endpoints report not found;
// without an inference service callers must submit detections with the
// image.
package server
