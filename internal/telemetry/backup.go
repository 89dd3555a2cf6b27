package telemetry

import (
	"compress/gzip"
	"fmt"
	"os"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
)

// BackupWriter appends points as gzipped line protocol. It stands in for
// the InfluxDB write API when the server is unavailable; the file can be
// imported later with the influx CLI.
type BackupWriter struct {
	file *os.File
	gz   *gzip.Writer
	err  error
}

func OpenBackup(path string) (*BackupWriter, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("error creating backup file: %w", err)
	}
	return &BackupWriter{file: file, gz: gzip.NewWriter(file)}, nil
}

func (b *BackupWriter) WritePoint(p *influxdb2_write.Point) {
	if b.err != nil {
		return
	}
	line := influxdb2_write.PointToLineProtocol(p, time.Nanosecond)
	_, b.err = b.gz.Write([]byte(line))
}

func (b *BackupWriter) Flush() {
	if b.err == nil {
		b.err = b.gz.Flush()
	}
}

// Err returns the first write error, if any.
func (b *BackupWriter) Err() error { return b.err }

func (b *BackupWriter) Close() error {
	if err := b.gz.Close(); err != nil {
		b.file.Close()
		return err
	}
	if err := b.file.Close(); err != nil {
		return err
	}
	return b.err
}
