// Package telemetry collects vehicle snapshots at redraw boundaries.
//
// [Recorder] keeps them in memory for storage, plots and analysis.
// [InfluxSink] turns them into InfluxDB points; when no server is reachable
// [BackupWriter] stores the same points as gzipped line protocol.
package telemetry
