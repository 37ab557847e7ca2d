package web

import (
	"archive/zip"
	"fmt"
	"io"
	"time"

	"github.com/Manjunath1607/Multi-Layer-Process-Log-Engine/internal/core"
)

// writeArchive writes every artifact as a CSV entry of one ZIP archive.
func writeArchive(w io.Writer, artifacts []core.Artifact) error {
	zw := zip.NewWriter(w)
	modified := time.Now()

	for _, a := range artifacts {
		data, err := a.CSV()
		if err != nil {
			return fmt.Errorf("encode %s: %w", a.Name, err)
		}
		f, err := zw.CreateHeader(&zip.FileHeader{
			Name:     a.Name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return fmt.Errorf("add %s: %w", a.Name, err)
		}
		if _, err := f.Write(data); err != nil {
			return fmt.Errorf("write %s: %w", a.Name, err)
		}
	}

	return zw.Close()
}

// archiveName names the download after the layer or the final mode.
func archiveName(res *core.Result) string {
	for _, a := range res.Artifacts {
		if a.Name == "final_case_log.csv" {
			return "final_logs.zip"
		}
	}
	return fmt.Sprintf("%s_logs.zip", res.Layer)
}
