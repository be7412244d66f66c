package util

import (
	"io"
	"path/filepath"
	"strings"
	"sync/atomic"
)

// ContentType определяет MIME type файла по расширению
func ContentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		return "text/plain"
	case ".csv":
		return "text/csv"
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".zip":
		return "application/zip"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".xls":
		return "application/vnd.ms-excel"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// ProgressReader считает прочитанные байты, счётчик безопасно читать из другой горутины
type ProgressReader struct {
	reader io.Reader
	read   atomic.Int64
}

func NewProgressReader(reader io.Reader) *ProgressReader {
	return &ProgressReader{reader: reader}
}

func (p *ProgressReader) Read(buf []byte) (int, error) {
	n, err := p.reader.Read(buf)
	p.read.Add(int64(n))
	return n, err
}

func (p *ProgressReader) BytesRead() int64 {
	return p.read.Load()
}
